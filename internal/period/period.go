// Package period computes the absolute start/end instants of a tracking
// period. All functions are pure: callers pass in "now" so results are
// reproducible in tests.
package period

import (
	"errors"
	"time"
)

// Type names a tracking period kind.
type Type string

const (
	Daily   Type = "daily"
	Weekly  Type = "weekly"
	Monthly Type = "monthly"
	Custom  Type = "custom"
)

// DateFormat is the calendar-date layout used for custom bounds and for the
// remote report query parameters.
const DateFormat = "2006-01-02"

// Validation warnings for custom ranges. The returned Range is still usable
// when one of these is reported; the caller decides whether to surface it.
var (
	ErrStartAfterEnd   = errors.New("tracking period start is after end")
	ErrSpanExceedsYear = errors.New("tracking period is longer than one year")
)

// Range is a closed interval of instants. Start is the first millisecond of
// the first day and End the last millisecond of the last day, so that
// date-truncation downstream keeps both boundary days inside the period.
type Range struct {
	Start time.Time
	End   time.Time
}

// DayRange returns the range covering the calendar day of now.
func DayRange(now time.Time) Range {
	return Range{Start: dayStart(now), End: dayEnd(now)}
}

// WeekRange returns the week containing now, where firstDayOfWeek is the
// weekday the week starts on (0 = Sunday .. 6 = Saturday). When now already
// falls on firstDayOfWeek the week starts today.
func WeekRange(now time.Time, firstDayOfWeek int) Range {
	back := (int(now.Weekday()) - firstDayOfWeek + 7) % 7
	start := dayStart(now.AddDate(0, 0, -back))
	return Range{Start: start, End: dayEnd(start.AddDate(0, 0, 6))}
}

// MonthRange returns the calendar month containing now.
func MonthRange(now time.Time) Range {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return Range{Start: first, End: dayEnd(first.AddDate(0, 1, -1))}
}

// CustomRange parses user-supplied calendar dates. A bound that does not
// parse falls back to today's corresponding bound. The returned warning is
// ErrStartAfterEnd or ErrSpanExceedsYear when the parsed bounds are suspect;
// the range is returned regardless so the caller can proceed with it.
func CustomRange(now time.Time, startValue, endValue string) (Range, error) {
	r := DayRange(now)
	if t, err := time.ParseInLocation(DateFormat, startValue, now.Location()); err == nil {
		r.Start = dayStart(t)
	}
	if t, err := time.ParseInLocation(DateFormat, endValue, now.Location()); err == nil {
		r.End = dayEnd(t)
	}

	if r.Start.After(r.End) {
		return r, ErrStartAfterEnd
	}
	if !r.End.Before(r.Start.AddDate(1, 0, 0)) {
		return r, ErrSpanExceedsYear
	}
	return r, nil
}

// ForType dispatches on the period type. Unknown types fall back to today's
// bounds. The warning is only ever non-nil for Custom.
func ForType(now time.Time, t Type, firstDayOfWeek int, customStart, customEnd string) (Range, error) {
	switch t {
	case Daily:
		return DayRange(now), nil
	case Weekly:
		return WeekRange(now, firstDayOfWeek), nil
	case Monthly:
		return MonthRange(now), nil
	case Custom:
		return CustomRange(now, customStart, customEnd)
	default:
		return DayRange(now), nil
	}
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func dayEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}
