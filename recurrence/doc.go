/*
Package recurrence expands a single event template into a bounded,
ordered series of concrete occurrences.

# Basic Usage

Build a template, pick a rule, and expand:

	engine := recurrence.NewEngine()
	defer engine.Close()

	tmpl := event.Template{
		Title:     "Sprint planning",
		StartDate: event.Date(2024, time.May, 6),
		EndDate:   event.Date(2024, time.May, 6),
		StartTime: event.Clock{Hour: 10},
		EndTime:   event.Clock{Hour: 11},
	}
	rule := recurrence.Weekly(2, time.Monday, time.Wednesday).
		WithEnd(recurrence.After(3))

	series, err := engine.Expand(tmpl, rule)
	if err != nil {
		log.Fatal(err)
	}
	for _, occ := range series.Occurrences {
		fmt.Println(occ.Sequence, occ.StartInstant())
	}

Occurrence 0 is always the template itself, unmodified. Every later
occurrence is the template shifted to a new anchor date; the distance
between start and end is preserved, so a two-hour meeting stays two
hours and an event spanning midnight keeps spanning midnight.

# Rules

A Rule is a plain value: a Kind plus the fields that kind reads.

	recurrence.Daily(3)                                            // every 3 days
	recurrence.Weekly(1, time.Friday)                              // every Friday
	recurrence.MonthlyByDay(1, 31)                                 // the 31st, clamped in short months
	recurrence.MonthlyByWeekday(1, recurrence.Last, time.Friday)   // last Friday of the month
	recurrence.YearlyByDate(1, time.June, 15)                      // June 15 every year
	recurrence.Custom(10, recurrence.UnitDays)                     // every 10 days

Rules terminate through an EndCondition (Never, After(n), OnDate(d))
and, unconditionally, through the MaxOccurrences safety cap. A series
cut short by the cap is returned with Truncated set rather than as an
error; treat it as a hint that the rule cannot reach its end condition.

# Determinism

Next, the single-step generator, is a pure function of (current
instant, rule). Expanding the same template and rule twice yields the
same dates, and expanding from occurrence k's own start reproduces
occurrence k+1. Monthly day-of-month rules clamp into short months
(January 31 repeats on February 29 in a leap year) while yearly fixed
dates roll over natively (February 29 lands on March 1 outside leap
years).

# Caching

The engine can memoize computed start instants keyed by the seed
instant and rule; see EngineConfig and the preset configurations.
Caching only reuses date arithmetic. Each expansion still gets a fresh
series ID.
*/
package recurrence
