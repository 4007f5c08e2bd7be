// Package calendar provides the calendar-day primitives shared by the forecasting engine.
//
// A calendar day is a time.Time at midnight UTC. Keeping every day in one location makes
// equality, map keys and day arithmetic exact regardless of the host's time zone.
package calendar

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Layout is the ISO date layout used for every persisted and displayed day.
const Layout = "2006-01-02"

// Day truncates t to its calendar day, read in t's own location, as midnight UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Date builds a calendar day from its parts. Out-of-range parts normalize the way time.Date does.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Parse reads an ISO date ("2024-05-28").
func Parse(s string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}

// Format renders a day as ISO date.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// AddDays moves a day forward (or back) by n days.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// AddMonths moves a day by n calendar months, keeping the day of month.
// Overflow normalizes forward: Jan 31 + 1 month is Mar 3 (Mar 2 in leap years).
func AddMonths(t time.Time, n int) time.Time {
	return t.AddDate(0, n, 0)
}

// AddYears moves a day by n years. Feb 29 normalizes to Mar 1 in non-leap years.
func AddYears(t time.Time, n int) time.Time {
	return t.AddDate(n, 0, 0)
}

// DaysBetween returns the whole number of days from a to b, negative when b is before a.
func DaysBetween(a, b time.Time) int {
	return int(math.Round(Day(b).Sub(Day(a)).Hours() / 24))
}

// Max returns the later of two days.
func Max(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

// Min returns the earlier of two days.
func Min(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// FirstOfMonth returns the first day of t's month.
func FirstOfMonth(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), 1)
}

// WithDay replaces t's day of month.
func WithDay(t time.Time, day int) time.Time {
	return Date(t.Year(), t.Month(), day)
}

// WeekOfMonth returns ceil((dayOfMonth + 6 - weekday) / span), the period index used to label
// weekly (span 7) and biweekly (span 14) buckets. Weekday counts from Sunday = 0.
func WeekOfMonth(t time.Time, span int) int {
	num := t.Day() + 6 - int(t.Weekday())
	return int(math.Ceil(float64(num) / float64(span)))
}
