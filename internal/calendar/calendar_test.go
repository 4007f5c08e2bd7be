package calendar

import (
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := Parse(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func TestParseAndFormat(t *testing.T) {
	d := mustDate(t, " 2024-05-28 ")
	if got := Format(d); got != "2024-05-28" {
		t.Fatalf("Format = %q, want 2024-05-28", got)
	}
	if d.Location() != time.UTC {
		t.Fatalf("Parse location = %v, want UTC", d.Location())
	}
	if _, err := Parse("28/05/2024"); err == nil {
		t.Fatal("Parse accepted a non-ISO date")
	}
}

func TestDayKeepsLocalCalendarDate(t *testing.T) {
	loc := time.FixedZone("east", 10*3600)
	local := time.Date(2024, 6, 1, 0, 30, 0, 0, loc) // 2024-05-31 in UTC
	if got := Format(Day(local)); got != "2024-06-01" {
		t.Fatalf("Day = %s, want 2024-06-01", got)
	}
}

func TestAddMonthsOverflow(t *testing.T) {
	jan31 := mustDate(t, "2023-01-31")
	if got := Format(AddMonths(jan31, 1)); got != "2023-03-03" {
		t.Fatalf("Jan 31 + 1 month = %s, want 2023-03-03", got)
	}
	leap := mustDate(t, "2024-01-31")
	if got := Format(AddMonths(leap, 1)); got != "2024-03-02" {
		t.Fatalf("Jan 31 2024 + 1 month = %s, want 2024-03-02", got)
	}
}

func TestDaysBetween(t *testing.T) {
	a := mustDate(t, "2024-05-10")
	b := mustDate(t, "2024-05-20")
	if got := DaysBetween(a, b); got != 10 {
		t.Fatalf("DaysBetween = %d, want 10", got)
	}
	if got := DaysBetween(b, a); got != -10 {
		t.Fatalf("DaysBetween reversed = %d, want -10", got)
	}
	// DST-free across a month boundary.
	if got := DaysBetween(mustDate(t, "2024-02-28"), mustDate(t, "2024-03-01")); got != 2 {
		t.Fatalf("DaysBetween over leap day = %d, want 2", got)
	}
}

func TestWeekOfMonth(t *testing.T) {
	// 2024-05-01 is a Wednesday: (1 + 6 - 3) / 7 = 4/7 -> 1
	if got := WeekOfMonth(mustDate(t, "2024-05-01"), 7); got != 1 {
		t.Fatalf("WeekOfMonth(May 1) = %d, want 1", got)
	}
	// 2024-05-05 is a Sunday: (5 + 6 - 0) / 7 = 11/7 -> 2
	if got := WeekOfMonth(mustDate(t, "2024-05-05"), 7); got != 2 {
		t.Fatalf("WeekOfMonth(May 5) = %d, want 2", got)
	}
	// biweekly span: (31 + 6 - 5) / 14 = 32/14 -> 3
	if got := WeekOfMonth(mustDate(t, "2024-05-31"), 14); got != 3 {
		t.Fatalf("WeekOfMonth(May 31, 14) = %d, want 3", got)
	}
}

func TestMinMax(t *testing.T) {
	a := mustDate(t, "2024-01-01")
	b := mustDate(t, "2024-02-01")
	if !Max(a, b).Equal(b) || !Min(a, b).Equal(a) {
		t.Fatal("Min/Max picked the wrong day")
	}
}
