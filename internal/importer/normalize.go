package importer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/kinderhub/backend/internal/domain"
)

// Spreadsheet serials count days from 1899-12-30 (the 1900 date system with
// its leap-year quirk folded in).
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// 31-12-9999
const maxSerial = 2958465

var numericPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)

// NormalizeDate turns a cell value into a canonical DD-MM-YYYY date. It
// accepts canonical strings, spreadsheet serial numbers and anything the
// general date parser understands. Numeric strings (CSV cells) are read as
// serials only; they never reach the general parser, which would take "2024"
// for a year or a long number for a Unix timestamp. ok is false when none of
// them yield a real calendar day.
func NormalizeDate(value interface{}) (string, bool) {
	switch v := value.(type) {
	case float64:
		return fromSerial(v)
	case int:
		return fromSerial(float64(v))
	case int64:
		return fromSerial(float64(v))
	case time.Time:
		if v.IsZero() {
			return "", false
		}
		return domain.FormatDate(v), true
	case string:
		return fromString(v)
	default:
		return "", false
	}
}

func fromSerial(serial float64) (string, bool) {
	if math.IsNaN(serial) || serial < 1 || serial > maxSerial {
		return "", false
	}
	// Fractions are the time of day.
	days := int(math.Floor(serial))
	return domain.FormatDate(serialEpoch.AddDate(0, 0, days)), true
}

func fromString(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if domain.IsCanonicalDateShape(s) {
		if !domain.ValidDate(s) {
			return "", false
		}
		return s, true
	}
	if numericPattern.MatchString(s) {
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return "", false
		}
		return fromSerial(n)
	}

	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return "", false
	}
	return domain.FormatDate(t), true
}
