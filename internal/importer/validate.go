package importer

import (
	"fmt"
	"strings"

	"github.com/kinderhub/backend/internal/validation"
)

type ColumnKind int

const (
	TextColumn ColumnKind = iota
	DateColumn
)

// Column is one expected spreadsheet column. Name is the canonical field
// name; headers match it ignoring case, spaces, underscores and dashes.
type Column struct {
	Name     string
	Required bool
	Kind     ColumnKind
}

// Fields holds a row's trimmed values by canonical column name. Date
// columns are already normalized.
type Fields map[string]string

// Schema describes how rows of one collection are checked and turned into
// records. Check runs after the required and date checks and returns a
// rejection reason or "". Build may still reject, e.g. on unknown
// references.
type Schema[T any] struct {
	Collection string
	Columns    []Column
	Check      func(Fields) string
	Build      func(Fields) (T, string)
}

// MissingColumnsError fails a whole batch whose header lacks required columns.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return "missing required columns: " + strings.Join(e.Missing, ", ")
}

// RowValidationError is the reason one row was rejected. Row is 1-based.
type RowValidationError struct {
	Row    int
	Reason string
}

func (e RowValidationError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// ValidationResult is the outcome for one row: a record, or a rejection.
type ValidationResult[T any] struct {
	Row       int
	Record    T
	Rejection *RowValidationError
}

func (r ValidationResult[T]) Accepted() bool {
	return r.Rejection == nil
}

// Validate checks rows against schema. Every row yields exactly one result
// in input order. Only the first violation of a row is reported, in this
// order: required fields, date formats, then the schema's own rules.
func Validate[T any](rows []ImportRow, schema Schema[T]) ([]ValidationResult[T], error) {
	if len(rows) == 0 {
		return nil, nil
	}

	headers := make(map[string]string, len(rows[0].Values))
	for name := range rows[0].Values {
		headers[headerKey(name)] = name
	}

	var missing []string
	for _, col := range schema.Columns {
		if _, ok := headers[headerKey(col.Name)]; col.Required && !ok {
			missing = append(missing, col.Name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Missing: missing}
	}

	results := make([]ValidationResult[T], 0, len(rows))
	for _, row := range rows {
		record, reason := validateRow(row, headers, schema)
		result := ValidationResult[T]{Row: row.Index}
		if reason != "" {
			result.Rejection = &RowValidationError{Row: row.Index, Reason: reason}
		} else {
			result.Record = record
		}
		results = append(results, result)
	}
	return results, nil
}

func validateRow[T any](row ImportRow, headers map[string]string, schema Schema[T]) (T, string) {
	var zero T

	raw := make(map[string]interface{}, len(schema.Columns))
	fields := make(Fields, len(schema.Columns))
	for _, col := range schema.Columns {
		if header, ok := headers[headerKey(col.Name)]; ok {
			raw[col.Name] = row.Values[header]
		}
		fields[col.Name] = cellString(raw[col.Name])
	}

	for _, col := range schema.Columns {
		if col.Required && fields[col.Name] == "" {
			return zero, validation.Label(col.Name) + " is required"
		}
	}

	for _, col := range schema.Columns {
		if col.Kind != DateColumn || fields[col.Name] == "" {
			continue
		}
		date, ok := NormalizeDate(raw[col.Name])
		if !ok {
			return zero, "Invalid date format"
		}
		fields[col.Name] = date
	}

	if schema.Check != nil {
		if reason := schema.Check(fields); reason != "" {
			return zero, reason
		}
	}
	return schema.Build(fields)
}

func headerKey(name string) string {
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(name)))
}
