package utils

import (
	"fmt"
	"strings"
	"time"
)

// dateLayouts lists the timestamp shapes accepted for a payment date, most specific first.
// The slash forms cover dates entered as browser locale strings.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006, 3:04:05 PM",
	"1/2/2006",
}

// ParseDate parses a stored payment date. Dates without a zone are read as UTC.
// Slash dates are read month first (m/d/yyyy, the US browser locale); a
// day-first d/m/yyyy string is either rejected or read with day and month swapped.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}

// FormatDate renders t in the layout used for server-stamped dates
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
