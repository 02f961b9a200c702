package recurrence

import (
	"time"

	"github.com/samber/mo"
)

// IsLeapYear reports whether the year has a February 29.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the number of days in the given month. Day zero
// of the following month normalizes to the last day of this one.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// NthWeekdayOfMonth resolves "the nth weekday of the month" at
// midnight UTC. n >= 1 counts from the start of the month; Last picks
// the final occurrence. An ordinal the month does not contain (a
// fifth Monday in a four-Monday month) yields None. Ordinals below
// Last are a precondition violation and also yield None.
func NthWeekdayOfMonth(year int, month time.Month, weekday time.Weekday, n int) mo.Option[time.Time] {
	if n == Last {
		last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
		back := int(last.Weekday() - weekday)
		if back < 0 {
			back += 7
		}
		return mo.Some(last.AddDate(0, 0, -back))
	}
	if n < 1 {
		return mo.None[time.Time]()
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	forward := int(weekday - first.Weekday())
	if forward < 0 {
		forward += 7
	}
	day := 1 + forward + (n-1)*7
	if day > DaysInMonth(year, month) {
		return mo.None[time.Time]()
	}
	return mo.Some(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// ClampDayToMonth returns the given day in the month, pulled back to
// the month's last day when the month is shorter. The result never
// overflows into the next month.
func ClampDayToMonth(year int, month time.Month, day int) time.Time {
	if max := DaysInMonth(year, month); day > max {
		day = max
	}
	if day < 1 {
		day = 1
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// addMonths advances a year/month pair without the day-of-month skid
// time.AddDate produces near month ends.
func addMonths(year int, month time.Month, months int) (int, time.Month) {
	norm := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	return norm.Year(), norm.Month()
}

// withClock copies the time of day from src onto the calendar day of
// day.
func withClock(day time.Time, src time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(),
		src.Hour(), src.Minute(), src.Second(), src.Nanosecond(), src.Location())
}
