package normalize

import (
	"strconv"
	"time"
)

// serialEpoch is the legacy spreadsheet day-zero, 1899-12-30. Surrogate IDs
// built from these serials are cross-referenced against spreadsheet formulas
// downstream, so the epoch must stay exactly here.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// DateSerial returns the day count from the spreadsheet epoch to t.
func DateSerial(t time.Time) int {
	return int(truncate(t).Sub(serialEpoch).Hours() / 24)
}

// SerialString renders a date as its serial day count, or "" for nil. The
// string form is a text fragment for surrogate ID concatenation, not a
// number for arithmetic.
func SerialString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return strconv.Itoa(DateSerial(*t))
}
