package models

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

// DateOf truncates t to its calendar date. All dates are naive and carried at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return d, nil
}

// DaysBetween returns to - from in whole calendar days (negative when to is earlier)
func DaysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)).Hours() / 24)
}

// AddDays shifts a calendar date
func AddDays(d time.Time, days int) time.Time {
	return DateOf(d).AddDate(0, 0, days)
}

// FormatDate formats a calendar date as YYYY-MM-DD
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}
