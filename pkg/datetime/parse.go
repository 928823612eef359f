// Package datetime provides date and time utility functions.
//
// Every date handled here is a calendar date anchored at UTC midnight so that
// day arithmetic and weekday checks never shift with the local time zone or
// daylight-saving transitions.
package datetime

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/payment-plan/pkg/constants"
)

const (
	// ISODateLayout is the format expected in config files and API payloads.
	ISODateLayout = constants.ISODateLayout

	// DisplayDateLayout is the dd/mm/yyyy output date format.
	DisplayDateLayout = constants.DisplayDateLayout
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseISODate interprets a YYYY-MM-DD string as UTC midnight of that day.
func ParseISODate(value string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(value), "-")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}

	var ymd [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
		}
		ymd[i] = n
	}

	t := Date(ymd[0], time.Month(ymd[1]), ymd[2])
	if t.Year() != ymd[0] || int(t.Month()) != ymd[1] || t.Day() != ymd[2] {
		return time.Time{}, fmt.Errorf("invalid date %q: day out of range", value)
	}
	return t, nil
}

// MustParseISODate is ParseISODate for dates known to be valid.
func MustParseISODate(value string) time.Time {
	t, err := ParseISODate(value)
	if err != nil {
		panic(err)
	}
	return t
}

// Date returns UTC midnight of the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Today returns the local calendar date of now, anchored at UTC midnight.
func Today(now time.Time) time.Time {
	local := now.Local()
	return Date(local.Year(), local.Month(), local.Day())
}

// AddDays adds the given number of calendar days.
func AddDays(date time.Time, days int) time.Time {
	return date.AddDate(0, 0, days)
}

// MoveToBusinessDay rolls a Saturday or Sunday forward to the following Monday.
// Weekdays are returned unchanged. A single pass is enough since the result is
// always a Monday.
func MoveToBusinessDay(date time.Time) time.Time {
	switch date.UTC().Weekday() {
	case time.Saturday:
		return AddDays(date, 2)
	case time.Sunday:
		return AddDays(date, 1)
	default:
		return date
	}
}

// FormatISO renders a date as YYYY-MM-DD.
func FormatISO(date time.Time) string {
	return date.UTC().Format(ISODateLayout)
}

// FormatDisplay renders a date as dd/mm/yyyy.
func FormatDisplay(date time.Time) string {
	return date.UTC().Format(DisplayDateLayout)
}
