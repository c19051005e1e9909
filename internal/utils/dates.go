package utils

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the only accepted wire format for reservation dates.
const DateLayout = "2006-01-02"

var ErrInvalidMonth = errors.New("month must be between 1 and 12")

// ParseDate parses a YYYY-MM-DD string as a UTC calendar day.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(value), time.UTC)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// TruncateDay drops the clock part of t, keeping its calendar day in UTC.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MonthBounds returns the first and last calendar day of the month.
func MonthBounds(year, month int) (time.Time, time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, ErrInvalidMonth
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first, last, nil
}

// EnumerateDates lists every day of [from, to] clipped to [lower, upper],
// both ends inclusive. An empty intersection yields nil.
func EnumerateDates(from, to, lower, upper time.Time) []time.Time {
	start := TruncateDay(from)
	end := TruncateDay(to)
	if start.Before(lower) {
		start = TruncateDay(lower)
	}
	if end.After(upper) {
		end = TruncateDay(upper)
	}

	var days []time.Time
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		days = append(days, day)
	}
	return days
}
