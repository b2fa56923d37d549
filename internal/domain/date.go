package domain

import (
	"regexp"
	"time"
)

// DateLayout is the canonical DD-MM-YYYY form every stored date uses.
const DateLayout = "02-01-2006"

var canonicalDatePattern = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)

// IsCanonicalDateShape reports whether s looks like DD-MM-YYYY, without
// checking that the day exists.
func IsCanonicalDateShape(s string) bool {
	return canonicalDatePattern.MatchString(s)
}

// ParseDate parses a canonical date and rejects impossible calendar days.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ValidDate reports whether s is a canonical date naming a real calendar day.
func ValidDate(s string) bool {
	if !IsCanonicalDateShape(s) {
		return false
	}
	_, err := ParseDate(s)
	return err == nil
}

// DateOrdered reports whether start is on or before end. Both must be valid.
func DateOrdered(start, end string) bool {
	s, err := ParseDate(start)
	if err != nil {
		return false
	}
	e, err := ParseDate(end)
	if err != nil {
		return false
	}
	return !s.After(e)
}
