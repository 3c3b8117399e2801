package normalize

import (
	"strings"
	"time"

	"github.com/oarkflow/date"
)

// Date formats seen across uploaded census files and the encounter export.
// The export always uses m/d/yyyy; rosters vary by practice-management
// system.
var dateFormats = []string{
	"1/2/2006",
	"01/02/2006",
	"2006-01-02",
	"01-02-2006",
	"2006/01/02",
	"1/2/2006 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"January 2, 2006",
	"Jan 2, 2006",
}

// ParseDate parses a date string and truncates it to a calendar date (no
// time component). The known formats are tried first; anything else falls
// through to loose parsing. Returns nil for empty or unparseable input —
// callers treat nil as the "no date" sentinel, a bad date never aborts a row.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") {
		return nil
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			d := truncate(t)
			return &d
		}
	}
	if t, err := date.Parse(s); err == nil {
		d := truncate(t)
		return &d
	}
	return nil
}

// SameDay reports exact calendar-date equality between two normalized dates.
// Either side nil is never a match.
func SameDay(a, b *time.Time) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Equal(*b)
}

// FormatMDY renders a date as M/D/YYYY without zero padding, the spelling
// the encounter export uses for DOS values.
func FormatMDY(t time.Time) string {
	return t.Format("1/2/2006")
}

// FormatMDYPadded renders a date as MM/DD/YYYY, the spelling downstream
// spreadsheets expect for Patient DOB.
func FormatMDYPadded(t time.Time) string {
	return t.Format("01/02/2006")
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
