package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// step unwraps Next for rules that must produce a date.
func step(t *testing.T, current time.Time, r Rule) time.Time {
	t.Helper()
	next, ok := Next(current, r).Get()
	require.True(t, ok, "expected a next occurrence from %s", current)
	return next
}

func TestNext_Daily(t *testing.T) {
	seed := time.Date(2024, 1, 31, 9, 30, 0, 0, time.UTC)

	next := step(t, seed, Daily(1))
	assert.Equal(t, time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC), next)

	next = step(t, seed, Daily(3))
	assert.Equal(t, time.Date(2024, 2, 3, 9, 30, 0, 0, time.UTC), next)
}

func TestNext_DailyIntervalNormalized(t *testing.T) {
	seed := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

	// Zero and negative intervals degrade to 1 instead of failing or
	// spinning in place.
	assert.Equal(t, seed.AddDate(0, 0, 1), step(t, seed, Daily(0)))
	assert.Equal(t, seed.AddDate(0, 0, 1), step(t, seed, Daily(-5)))
}

func TestNext_WeeklyDefaultsToSeedWeekday(t *testing.T) {
	monday := time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)

	next := step(t, monday, Weekly(1))
	assert.Equal(t, time.Date(2024, 5, 13, 10, 0, 0, 0, time.UTC), next)

	next = step(t, monday, Weekly(2))
	assert.Equal(t, time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC), next)
}

func TestNext_WeeklyCompanionDaysInSameWeek(t *testing.T) {
	// Monday and Wednesday every second week: the Wednesday of the
	// starting week is produced even though no week boundary has been
	// crossed yet, then a full skip week follows.
	r := Weekly(2, time.Monday, time.Wednesday)

	d1 := step(t, time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), r)
	assert.Equal(t, time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC), d1)

	d2 := step(t, d1, r)
	assert.Equal(t, time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC), d2)

	d3 := step(t, d2, r)
	assert.Equal(t, time.Date(2024, 5, 22, 0, 0, 0, 0, time.UTC), d3)

	d4 := step(t, d3, r)
	assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), d4)
}

func TestNext_WeeklyWeekBoundaryIsSundayStart(t *testing.T) {
	// Week crossings are counted when the weekday value wraps below
	// the previous day's, so Saturday to Sunday is a new week even
	// though only one day passed.
	r := Weekly(2, time.Saturday, time.Sunday)

	saturday := time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC)
	next := step(t, saturday, r)
	assert.Equal(t, time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC), next)
}

func TestNext_MonthlyDayClampChain(t *testing.T) {
	// January 31 repeating monthly on day 31 walks through short
	// months without ever rolling into the following month.
	r := MonthlyByDay(1, 31)

	d := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	expected := []time.Time{
		time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), // leap February
		time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC),
	}
	for _, want := range expected {
		d = step(t, d, r)
		assert.Equal(t, want, d)
	}
}

func TestNext_MonthlyDayNonLeapFebruary(t *testing.T) {
	next := step(t, time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC), MonthlyByDay(1, 31))
	assert.Equal(t, time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC), next)
}

func TestNext_MonthlyBaseMonthHasNoSkid(t *testing.T) {
	// Advancing from January 31 must land in February, not skid past
	// it the way naive date addition would.
	next := step(t, time.Date(2024, 1, 31, 8, 0, 0, 0, time.UTC), MonthlyByDay(1, 15))
	assert.Equal(t, time.Date(2024, 2, 15, 8, 0, 0, 0, time.UTC), next)
}

func TestNext_MonthlyNthWeekday(t *testing.T) {
	next := step(t, time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC), MonthlyByWeekday(1, 1, time.Monday))
	assert.Equal(t, time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC), next)

	next = step(t, time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC), MonthlyByWeekday(1, Last, time.Friday))
	assert.Equal(t, time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC), next)
}

func TestNext_MonthlyUnsatisfiableOrdinal(t *testing.T) {
	// A fifth Monday only exists in some months. The generator skips
	// one period to find it, and gives up after that.
	r := Rule{Kind: KindMonthly, Interval: 1, MonthlyMode: MonthlyOnWeekday, Week: 5, Weekday: time.Monday}

	// April 2024 has five Mondays, so the skip from March resolves.
	next := step(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), r)
	assert.Equal(t, time.Date(2024, 4, 29, 0, 0, 0, 0, time.UTC), next)

	// Neither May nor June 2024 has one; one skip is all we allow.
	assert.True(t, Next(time.Date(2024, 4, 29, 0, 0, 0, 0, time.UTC), r).IsAbsent())
}

func TestNext_YearlyDate(t *testing.T) {
	next := step(t, time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC), YearlyByDate(1, time.June, 15))
	assert.Equal(t, time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC), next)
}

func TestNext_YearlyFebruary29RollsOver(t *testing.T) {
	seed := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)

	// Fixed dates are constructed directly: outside leap years the
	// native rollover lands on March 1, with no clamping.
	next := step(t, seed, YearlyByDate(1, time.February, 29))
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), next)

	// A four-year interval keeps hitting real leap days.
	next = step(t, seed, YearlyByDate(4, time.February, 29))
	assert.Equal(t, time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC), next)
}

func TestNext_YearlyNthWeekday(t *testing.T) {
	next := step(t, time.Date(2024, 5, 27, 0, 0, 0, 0, time.UTC), YearlyByWeekday(1, time.May, Last, time.Monday))
	assert.Equal(t, time.Date(2025, 5, 26, 0, 0, 0, 0, time.UTC), next)
}

func TestNext_YearlyUnsatisfiableOrdinal(t *testing.T) {
	r := Rule{Kind: KindYearly, Interval: 1, YearlyMode: YearlyOnWeekday, Month: time.June, Week: 5, Weekday: time.Monday}

	// June 2024 has four Mondays, June 2025 has five: one skip.
	next := step(t, time.Date(2023, 6, 5, 0, 0, 0, 0, time.UTC), r)
	assert.Equal(t, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), next)

	// With a two-year stride both 2022 and 2024 lack a fifth Monday.
	r.Interval = 2
	assert.True(t, Next(time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC), r).IsAbsent())
}

func TestNext_Custom(t *testing.T) {
	seed := time.Date(2024, 5, 6, 7, 15, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 5, 16, 7, 15, 0, 0, time.UTC), step(t, seed, Custom(10, UnitDays)))
	assert.Equal(t, time.Date(2024, 5, 20, 7, 15, 0, 0, time.UTC), step(t, seed, Custom(2, UnitWeeks)))

	// Month and year custom steps use native addition, so month ends
	// roll over instead of clamping.
	next := step(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), Custom(1, UnitMonths))
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), next)

	next = step(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), Custom(1, UnitYears))
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), next)
}

func TestNext_NoneProducesNothing(t *testing.T) {
	assert.True(t, Next(time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), None()).IsAbsent())
}

func TestNext_PreservesTimeOfDay(t *testing.T) {
	seed := time.Date(2024, 1, 31, 14, 45, 0, 0, time.UTC)

	for _, r := range []Rule{
		Daily(1),
		Weekly(1, time.Friday),
		MonthlyByDay(1, 31),
		MonthlyByWeekday(1, 2, time.Tuesday),
		YearlyByDate(1, time.August, 9),
		Custom(3, UnitWeeks),
	} {
		next := step(t, seed, r)
		assert.Equal(t, 14, next.Hour(), "kind %s", r.Kind)
		assert.Equal(t, 45, next.Minute(), "kind %s", r.Kind)
	}
}
