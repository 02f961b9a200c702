package recurrence

import (
	"time"

	"github.com/samber/mo"
)

// weeklyScanLimit bounds the day-by-day scan of weekly rules.
const weeklyScanLimit = 7 * 8

// Next computes the start of the occurrence following current under
// the rule. It is a pure function of its inputs: no end condition,
// cap or I/O is involved. None means the pattern produces no further
// date, either because the rule is KindNone or because an ordinal
// stays unresolvable one extra period ahead. The time of day of
// current is preserved on every produced instant.
func Next(current time.Time, r Rule) mo.Option[time.Time] {
	r = r.Normalize()
	switch r.Kind {
	case KindDaily:
		return mo.Some(current.AddDate(0, 0, r.Interval))
	case KindWeekly:
		return mo.Some(nextWeekly(current, r))
	case KindMonthly:
		return nextMonthly(current, r)
	case KindYearly:
		return nextYearly(current, r)
	case KindCustom:
		return mo.Some(nextCustom(current, r))
	default:
		// KindNone and unrecognized kinds produce nothing further.
		return mo.None[time.Time]()
	}
}

// nextWeekly scans forward one day at a time. A week boundary is
// counted whenever the scanned weekday value wraps below the previous
// day's, so weeks run Sunday through Saturday here regardless of any
// display preference. A day qualifies when its weekday is selected
// and either no boundary has been crossed yet (a later day in the
// same week) or the crossed count has reached the interval.
func nextWeekly(current time.Time, r Rule) time.Time {
	selected := weekdaySet(current, r)
	crossed := 0
	day := current
	for i := 0; i < weeklyScanLimit; i++ {
		prev := day.Weekday()
		day = day.AddDate(0, 0, 1)
		if day.Weekday() < prev {
			crossed++
		}
		if selected[day.Weekday()] && (crossed == 0 || crossed >= r.Interval) {
			return day
		}
	}
	// Intervals that outrun the scan fall back to a whole interval of
	// weeks from the seed.
	return current.AddDate(0, 0, 7*r.Interval)
}

func weekdaySet(seed time.Time, r Rule) [7]bool {
	var selected [7]bool
	if len(r.Weekdays) == 0 {
		selected[seed.Weekday()] = true
		return selected
	}
	for _, d := range r.Weekdays {
		if d >= time.Sunday && d <= time.Saturday {
			selected[d] = true
		}
	}
	return selected
}

// nextMonthly advances interval months and lands inside the target
// month. An unresolvable ordinal is given exactly one further period
// before the generator gives up.
func nextMonthly(current time.Time, r Rule) mo.Option[time.Time] {
	year, month := addMonths(current.Year(), current.Month(), r.Interval)
	if r.MonthlyMode == MonthlyOnDay {
		return mo.Some(withClock(ClampDayToMonth(year, month, r.MonthDay), current))
	}

	if day, ok := NthWeekdayOfMonth(year, month, r.Weekday, r.Week).Get(); ok {
		return mo.Some(withClock(day, current))
	}
	year, month = addMonths(year, month, r.Interval)
	if day, ok := NthWeekdayOfMonth(year, month, r.Weekday, r.Week).Get(); ok {
		return mo.Some(withClock(day, current))
	}
	return mo.None[time.Time]()
}

// nextYearly advances interval years. YearlyOnDate constructs the
// date directly: a rule fixed to February 29 rolls over to March 1
// outside leap years rather than being clamped.
func nextYearly(current time.Time, r Rule) mo.Option[time.Time] {
	year := current.Year() + r.Interval
	if r.YearlyMode == YearlyOnDate {
		return mo.Some(withClock(time.Date(year, r.Month, r.MonthDay, 0, 0, 0, 0, time.UTC), current))
	}

	if day, ok := NthWeekdayOfMonth(year, r.Month, r.Weekday, r.Week).Get(); ok {
		return mo.Some(withClock(day, current))
	}
	if day, ok := NthWeekdayOfMonth(year+r.Interval, r.Month, r.Weekday, r.Week).Get(); ok {
		return mo.Some(withClock(day, current))
	}
	return mo.None[time.Time]()
}

// nextCustom steps by the rule's unit using native date addition, so
// month and year steps roll over rather than clamp.
func nextCustom(current time.Time, r Rule) time.Time {
	switch r.Unit {
	case UnitWeeks:
		return current.AddDate(0, 0, 7*r.Interval)
	case UnitMonths:
		return current.AddDate(0, r.Interval, 0)
	case UnitYears:
		return current.AddDate(r.Interval, 0, 0)
	default:
		return current.AddDate(0, 0, r.Interval)
	}
}
