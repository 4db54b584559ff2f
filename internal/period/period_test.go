package period

import (
	"errors"
	"testing"
	"time"

	"pgregory.net/rapid"
)

// Wednesday 2024-05-15, mid-afternoon local time.
var wednesday = time.Date(2024, 5, 15, 15, 4, 5, 0, time.Local)

// ============================================================
// Daily
// ============================================================

func TestDayRange(t *testing.T) {
	r := DayRange(wednesday)
	if r.Start.Hour() != 0 || r.Start.Minute() != 0 || r.Start.Second() != 0 {
		t.Fatalf("start not at day start: %v", r.Start)
	}
	if r.Start.Day() != 15 || r.End.Day() != 15 {
		t.Fatalf("range should stay on the same day: %v ~ %v", r.Start, r.End)
	}
	if r.End.Hour() != 23 || r.End.Minute() != 59 || r.End.Second() != 59 {
		t.Fatalf("end not at day end: %v", r.End)
	}
	if !r.Start.Before(r.End) {
		t.Fatal("start should be before end")
	}
}

// ============================================================
// Weekly
// ============================================================

func TestWeekRangeSundayStart(t *testing.T) {
	r := WeekRange(wednesday, 0)
	if r.Start.Weekday() != time.Sunday {
		t.Fatalf("expected Sunday start, got %v", r.Start.Weekday())
	}
	if r.Start.Day() != 12 {
		t.Fatalf("expected May 12, got %v", r.Start)
	}
	if r.End.Day() != 18 {
		t.Fatalf("expected May 18 end, got %v", r.End)
	}
}

func TestWeekRangeMondayStart(t *testing.T) {
	r := WeekRange(wednesday, 1)
	if r.Start.Weekday() != time.Monday {
		t.Fatalf("expected Monday start, got %v", r.Start.Weekday())
	}
	if r.Start.Day() != 13 {
		t.Fatalf("expected May 13, got %v", r.Start)
	}
}

func TestWeekRangeStartsTodayWhenWeekdayMatches(t *testing.T) {
	// firstDayOfWeek equals today's weekday: the week starts today, not a
	// week ago.
	r := WeekRange(wednesday, int(wednesday.Weekday()))
	if r.Start.Day() != wednesday.Day() {
		t.Fatalf("expected week to start today, got %v", r.Start)
	}
}

func TestWeekRangeProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		day := rapid.IntRange(0, 4000).Draw(t, "day")
		first := rapid.IntRange(0, 6).Draw(t, "first")
		now := time.Date(2015, 1, 1, 12, 0, 0, 0, time.Local).AddDate(0, 0, day)

		r := WeekRange(now, first)
		if int(r.Start.Weekday()) != first {
			t.Fatalf("start weekday %v != firstDayOfWeek %d", r.Start.Weekday(), first)
		}
		if r.Start.After(now) {
			t.Fatalf("week start %v after now %v", r.Start, now)
		}
		if days := int(r.End.Sub(r.Start).Hours() / 24); days != 6 {
			t.Fatalf("expected 6 whole days between bounds, got %d", days)
		}
	})
}

// ============================================================
// Monthly
// ============================================================

func TestMonthRange(t *testing.T) {
	r := MonthRange(wednesday)
	if r.Start.Day() != 1 || r.Start.Month() != time.May {
		t.Fatalf("expected May 1 start, got %v", r.Start)
	}
	if r.End.Day() != 31 || r.End.Month() != time.May {
		t.Fatalf("expected May 31 end, got %v", r.End)
	}
}

func TestMonthRangeFebruaryLeapYear(t *testing.T) {
	now := time.Date(2024, 2, 10, 8, 0, 0, 0, time.Local)
	r := MonthRange(now)
	if r.End.Day() != 29 {
		t.Fatalf("expected Feb 29 end in 2024, got %v", r.End)
	}
}

// ============================================================
// Custom
// ============================================================

func TestCustomRangeValid(t *testing.T) {
	r, warn := CustomRange(wednesday, "2024-05-01", "2024-05-20")
	if warn != nil {
		t.Fatalf("unexpected warning: %v", warn)
	}
	if r.Start.Day() != 1 || r.End.Day() != 20 {
		t.Fatalf("unexpected bounds: %v ~ %v", r.Start, r.End)
	}
}

func TestCustomRangeUnparsableFallsBackToToday(t *testing.T) {
	r, warn := CustomRange(wednesday, "not-a-date", "")
	if warn != nil {
		t.Fatalf("unexpected warning: %v", warn)
	}
	today := DayRange(wednesday)
	if !r.Start.Equal(today.Start) || !r.End.Equal(today.End) {
		t.Fatalf("expected today's bounds, got %v ~ %v", r.Start, r.End)
	}
}

func TestCustomRangeStartAfterEnd(t *testing.T) {
	r, warn := CustomRange(wednesday, "2024-05-20", "2024-05-01")
	if !errors.Is(warn, ErrStartAfterEnd) {
		t.Fatalf("expected ErrStartAfterEnd, got %v", warn)
	}
	// The out-of-order bounds are still returned.
	if r.Start.Day() != 20 || r.End.Day() != 1 {
		t.Fatalf("bounds should be kept as supplied: %v ~ %v", r.Start, r.End)
	}
}

func TestCustomRangeSpanExceedsYear(t *testing.T) {
	_, warn := CustomRange(wednesday, "2023-01-01", "2024-06-01")
	if !errors.Is(warn, ErrSpanExceedsYear) {
		t.Fatalf("expected ErrSpanExceedsYear, got %v", warn)
	}
}

func TestCustomRangeExactlyOneYearNotFlagged(t *testing.T) {
	_, warn := CustomRange(wednesday, "2024-01-01", "2024-12-31")
	if warn != nil {
		t.Fatalf("under a year should not warn: %v", warn)
	}
}

// ============================================================
// ForType
// ============================================================

func TestForTypeDispatch(t *testing.T) {
	for _, typ := range []Type{Daily, Weekly, Monthly, Custom} {
		r, _ := ForType(wednesday, typ, 0, "", "")
		if r.Start.After(r.End) {
			t.Fatalf("%s: start after end", typ)
		}
	}
}

func TestForTypeUnknownFallsBackToToday(t *testing.T) {
	r, warn := ForType(wednesday, Type("bogus"), 0, "", "")
	if warn != nil {
		t.Fatalf("unexpected warning: %v", warn)
	}
	today := DayRange(wednesday)
	if !r.Start.Equal(today.Start) {
		t.Fatalf("expected today's start, got %v", r.Start)
	}
}
