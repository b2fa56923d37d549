package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ImportRow is one data row keyed by the header row. Values are string,
// float64 for numeric workbook cells, or nil. Index is the 1-based position
// below the header, blank rows included.
type ImportRow struct {
	Index  int
	Values map[string]interface{}
}

// ParseError means the file could not be read as a spreadsheet at all.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to parse spreadsheet: %s: %v", e.Reason, e.Err)
	}
	return "failed to parse spreadsheet: " + e.Reason
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// read returns the next non-blank row and how many blank rows preceded it.
type source interface {
	read() (cells []interface{}, skipped int, ok bool, err error)
	close() error
}

// Rows walks the data rows of a parsed file once, in sheet order.
type Rows struct {
	header  []string
	src     source
	pending []interface{}
	skipped int
	cur     ImportRow
	index   int
	err     error
	closers []io.Closer
}

// Open parses the file at path. The caller must Close the returned Rows.
func Open(path string) (*Rows, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Reason: "cannot open " + filepath.Base(path), Err: err}
	}
	rows, err := Parse(f, path)
	if err != nil {
		f.Close()
		return nil, err
	}
	rows.closers = append(rows.closers, f)
	return rows, nil
}

// Parse reads the header row and peeks the first data row, so an empty file
// fails here instead of on the first Next. CSV is picked by extension,
// everything else is read as a workbook.
func Parse(r io.Reader, fileName string) (*Rows, error) {
	var (
		src source
		err error
	)
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		src = newCSVSource(r)
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		src, err = newWorkbookSource(r)
	default:
		return nil, &ParseError{Reason: "unsupported file type " + filepath.Ext(fileName)}
	}
	if err != nil {
		return nil, err
	}

	headerCells, _, ok, err := src.read()
	if err != nil {
		src.close()
		return nil, &ParseError{Reason: "cannot read header row", Err: err}
	}
	if !ok {
		src.close()
		return nil, &ParseError{Reason: "sheet is empty"}
	}

	first, skipped, ok, err := src.read()
	if err != nil {
		src.close()
		return nil, &ParseError{Reason: "cannot read rows", Err: err}
	}
	if !ok {
		src.close()
		return nil, &ParseError{Reason: "sheet has no data rows"}
	}

	header := make([]string, len(headerCells))
	for i, cell := range headerCells {
		header[i] = strings.TrimPrefix(cellString(cell), "\ufeff")
	}
	return &Rows{header: header, src: src, pending: first, skipped: skipped}, nil
}

// Header returns the column names as written in the file.
func (r *Rows) Header() []string {
	return r.header
}

func (r *Rows) Next() bool {
	if r.err != nil {
		return false
	}

	cells, skipped := r.pending, r.skipped
	r.pending, r.skipped = nil, 0
	if cells == nil {
		var ok bool
		var err error
		cells, skipped, ok, err = r.src.read()
		if err != nil {
			r.err = &ParseError{Reason: fmt.Sprintf("cannot read row %d", r.index+1), Err: err}
			return false
		}
		if !ok {
			return false
		}
	}

	r.index += skipped + 1
	values := make(map[string]interface{}, len(r.header))
	for i, name := range r.header {
		if name == "" {
			continue
		}
		var v interface{}
		if i < len(cells) {
			v = cells[i]
		}
		values[name] = v
	}
	r.cur = ImportRow{Index: r.index, Values: values}
	return true
}

func (r *Rows) Row() ImportRow {
	return r.cur
}

func (r *Rows) Err() error {
	return r.err
}

func (r *Rows) Close() error {
	err := r.src.close()
	for _, c := range r.closers {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Collect drains the remaining rows.
func (r *Rows) Collect() ([]ImportRow, error) {
	var out []ImportRow
	for r.Next() {
		out = append(out, r.Row())
	}
	return out, r.Err()
}

type workbookSource struct {
	file   *excelize.File
	sheet  string
	rows   *excelize.Rows
	rowNum int
}

func newWorkbookSource(r io.Reader) (*workbookSource, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ParseError{Reason: "cannot decode workbook", Err: err}
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, &ParseError{Reason: "workbook has no sheets"}
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		f.Close()
		return nil, &ParseError{Reason: "cannot read sheet " + sheets[0], Err: err}
	}
	return &workbookSource{file: f, sheet: sheets[0], rows: rows}, nil
}

func (s *workbookSource) read() ([]interface{}, int, bool, error) {
	skipped := 0
	for s.rows.Next() {
		s.rowNum++
		raw, err := s.rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, skipped, false, err
		}

		cells := make([]interface{}, len(raw))
		blank := true
		for i, value := range raw {
			cells[i] = s.cell(i+1, value)
			if cells[i] != nil {
				blank = false
			}
		}
		if !blank {
			return cells, skipped, true, nil
		}
		skipped++
	}
	return nil, skipped, false, s.rows.Error()
}

// cell returns numeric cells as float64, whatever their number format, so a
// date serial reaches the date normalizer as a number. Text cells stay text
// even when they hold digits.
func (s *workbookSource) cell(col int, raw string) interface{} {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	name, err := excelize.CoordinatesToCellName(col, s.rowNum)
	if err != nil {
		return raw
	}
	switch typ, err := s.file.GetCellType(s.sheet, name); {
	case err != nil:
		return raw
	case typ == excelize.CellTypeNumber, typ == excelize.CellTypeUnset:
		return n
	}
	return raw
}

func (s *workbookSource) close() error {
	rowsErr := s.rows.Close()
	if err := s.file.Close(); err != nil {
		return err
	}
	return rowsErr
}

type csvSource struct {
	reader *csv.Reader
	// line the previous record ended on
	line int
}

func newCSVSource(r io.Reader) *csvSource {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable fields
	reader.TrimLeadingSpace = true
	return &csvSource{reader: reader}
}

func (s *csvSource) read() ([]interface{}, int, bool, error) {
	skipped := 0
	for {
		record, err := s.reader.Read()
		if errors.Is(err, io.EOF) {
			return nil, skipped, false, nil
		}
		if err != nil {
			return nil, skipped, false, err
		}

		// The reader drops empty lines; count them from the line numbers.
		start, _ := s.reader.FieldPos(0)
		if s.line > 0 && start > s.line+1 {
			skipped += start - s.line - 1
		}
		s.line, _ = s.reader.FieldPos(len(record) - 1)

		cells := make([]interface{}, len(record))
		blank := true
		for i, value := range record {
			value = strings.TrimSpace(value)
			if value == "" {
				continue
			}
			cells[i] = value
			blank = false
		}
		if !blank {
			return cells, skipped, true, nil
		}
		skipped++
	}
}

func (s *csvSource) close() error {
	return nil
}

func cellString(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
