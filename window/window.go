// Package window decides which event occurrences are visible in a
// calendar display range. Ranges are closed intervals built per view
// granularity; filtering never re-expands a series, it only tests
// already-materialized occurrences.
package window

import (
	"fmt"
	"time"

	"github.com/halcyde/librecur/event"
)

// Granularity names the calendar views a range can be built for.
type Granularity int

const (
	Year Granularity = iota
	Month
	Week
	Day
)

func (g Granularity) String() string {
	switch g {
	case Year:
		return "year"
	case Month:
		return "month"
	case Week:
		return "week"
	case Day:
		return "day"
	default:
		return fmt.Sprintf("granularity(%d)", int(g))
	}
}

// Range is a closed interval of wall-clock time; both endpoints are
// inside it.
type Range struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether the span [start, end] intersects the
// range. The comparison is closed on both sides: an event ending
// exactly at the range start, or starting exactly at the range end,
// is still visible.
func (r Range) Overlaps(start, end time.Time) bool {
	return !start.After(r.End) && !end.Before(r.Start)
}

// Contains reports whether a single instant falls inside the range.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// DayOf is the range spanning ref's calendar day, from midnight to
// the day's last represented millisecond.
func DayOf(ref time.Time) Range {
	start := startOfDay(ref)
	return Range{Start: start, End: endOfDay(start)}
}

// WeekOf is the range of the week containing ref. Which weekday opens
// the week is a display preference, so firstDay comes from the
// caller's configuration.
func WeekOf(ref time.Time, firstDay time.Weekday) Range {
	back := int(ref.Weekday() - firstDay)
	if back < 0 {
		back += 7
	}
	start := startOfDay(ref).AddDate(0, 0, -back)
	return Range{Start: start, End: endOfDay(start.AddDate(0, 0, 6))}
}

// MonthOf is the range spanning ref's calendar month.
func MonthOf(ref time.Time) Range {
	start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	return Range{Start: start, End: endOfDay(start.AddDate(0, 1, -1))}
}

// YearOf is the range spanning ref's calendar year.
func YearOf(ref time.Time) Range {
	start := time.Date(ref.Year(), time.January, 1, 0, 0, 0, 0, ref.Location())
	last := time.Date(ref.Year(), time.December, 31, 0, 0, 0, 0, ref.Location())
	return Range{Start: start, End: endOfDay(last)}
}

// RangeFor builds the display range for a granularity around a
// reference date. firstDay only matters for Week.
func RangeFor(g Granularity, ref time.Time, firstDay time.Weekday) Range {
	switch g {
	case Year:
		return YearOf(ref)
	case Month:
		return MonthOf(ref)
	case Week:
		return WeekOf(ref, firstDay)
	default:
		return DayOf(ref)
	}
}

// Filter returns the occurrences whose [start, end] span overlaps the
// range, preserving their relative order. The input is not mutated
// and no series is re-expanded; filtering an already-filtered result
// with the same range returns the same set.
func Filter(occurrences []event.Occurrence, r Range) []event.Occurrence {
	visible := make([]event.Occurrence, 0, len(occurrences))
	for _, occ := range occurrences {
		if r.Overlaps(occ.StartInstant(), occ.EndInstant()) {
			visible = append(visible, occ)
		}
	}
	return visible
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// endOfDay is 23:59:59.999, the day's last represented millisecond.
func endOfDay(dayStart time.Time) time.Time {
	return dayStart.AddDate(0, 0, 1).Add(-time.Millisecond)
}
