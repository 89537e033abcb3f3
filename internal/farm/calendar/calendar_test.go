package calendar

import (
	"testing"
	"time"
)

func TestDateOnly(t *testing.T) {
	loc, _ := time.LoadLocation("America/New_York")
	in := time.Date(2024, 6, 20, 23, 45, 12, 999, loc)
	got := DateOnly(in)

	if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 {
		t.Fatalf("expected midnight, got %v", got)
	}
	if got.Location() != time.UTC {
		t.Fatalf("expected UTC, got %v", got.Location())
	}
	if got.Year() != 2024 || got.Month() != time.June || got.Day() != 20 {
		t.Fatalf("expected 2024-06-20, got %v", got)
	}
}

func TestAddDays(t *testing.T) {
	d := Date(2024, time.February, 27)

	got := AddDays(d, 3)
	if !got.Equal(Date(2024, time.March, 1)) {
		t.Fatalf("leap year rollover: expected 2024-03-01, got %v", got)
	}

	got = AddDays(Date(2024, time.June, 20), -10)
	if !got.Equal(Date(2024, time.June, 10)) {
		t.Fatalf("expected 2024-06-10, got %v", got)
	}
}

func TestWeekBounds(t *testing.T) {
	// 2024-06-20 是周四
	start, end := WeekBounds(Date(2024, time.June, 20))
	if !start.Equal(Date(2024, time.June, 17)) {
		t.Fatalf("expected week start 2024-06-17 (Monday), got %v", start)
	}
	if !end.Equal(Date(2024, time.June, 23)) {
		t.Fatalf("expected week end 2024-06-23 (Sunday), got %v", end)
	}

	// 周日归属上一个周一开始的周
	start, end = WeekBounds(Date(2024, time.June, 23))
	if !start.Equal(Date(2024, time.June, 17)) || !end.Equal(Date(2024, time.June, 23)) {
		t.Fatalf("sunday should close the week: got %v..%v", start, end)
	}

	// 周一是一周的第一天
	start, _ = WeekBounds(Date(2024, time.June, 17))
	if !start.Equal(Date(2024, time.June, 17)) {
		t.Fatalf("monday should start its own week, got %v", start)
	}
}

func TestParseFormatISO(t *testing.T) {
	d, err := ParseISO("2024-06-20")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if FormatISO(d) != "2024-06-20" {
		t.Fatalf("expected 2024-06-20, got %s", FormatISO(d))
	}

	if _, err := ParseISO("20/06/2024"); err == nil {
		t.Fatal("expected error for non-ISO input")
	}
}

func TestDaysBetween(t *testing.T) {
	if got := DaysBetween(Date(2024, time.June, 10), Date(2024, time.June, 20)); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
	if got := DaysBetween(Date(2024, time.June, 20), Date(2024, time.June, 10)); got != -10 {
		t.Fatalf("expected -10, got %d", got)
	}
}
