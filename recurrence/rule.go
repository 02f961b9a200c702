package recurrence

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrInvalidRule marks a rule whose shape cannot be expanded. All
// structural validation failures wrap it.
var ErrInvalidRule = errors.New("recurrence: invalid rule")

// Kind selects the repetition pattern family.
type Kind int

const (
	KindNone Kind = iota
	KindDaily
	KindWeekly
	KindMonthly
	KindYearly
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindDaily:
		return "daily"
	case KindWeekly:
		return "weekly"
	case KindMonthly:
		return "monthly"
	case KindYearly:
		return "yearly"
	case KindCustom:
		return "custom"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MonthlyMode selects how a monthly rule lands inside each month.
type MonthlyMode int

const (
	// MonthlyOnDay repeats on a fixed day of the month, clamped to
	// the month's last day when the month is shorter.
	MonthlyOnDay MonthlyMode = iota
	// MonthlyOnWeekday repeats on the nth weekday of the month.
	MonthlyOnWeekday
)

// YearlyMode selects how a yearly rule lands inside its month.
type YearlyMode int

const (
	// YearlyOnDate repeats on a fixed month and day.
	YearlyOnDate YearlyMode = iota
	// YearlyOnWeekday repeats on the nth weekday of a fixed month.
	YearlyOnWeekday
)

// Unit is the step unit of a custom-interval rule.
type Unit int

const (
	UnitDays Unit = iota
	UnitWeeks
	UnitMonths
	UnitYears
)

func (u Unit) String() string {
	switch u {
	case UnitDays:
		return "days"
	case UnitWeeks:
		return "weeks"
	case UnitMonths:
		return "months"
	case UnitYears:
		return "years"
	default:
		return fmt.Sprintf("unit(%d)", int(u))
	}
}

// Last selects the final weekday of the month in ordinal-weekday
// rules. Ordinals below Last are not supported.
const Last = -1

// EndMode says how a series terminates.
type EndMode int

const (
	// EndNever leaves the series bounded only by MaxOccurrences.
	EndNever EndMode = iota
	// EndAfter stops after Count occurrences beyond the first.
	EndAfter
	// EndOnDate stops before the first occurrence whose date would
	// exceed Date.
	EndOnDate
)

// EndCondition bounds a series.
type EndCondition struct {
	Mode  EndMode
	Count int       // read when Mode is EndAfter
	Date  time.Time // read when Mode is EndOnDate, day precision
}

// Never returns the unbounded end condition.
func Never() EndCondition {
	return EndCondition{Mode: EndNever}
}

// After ends the series once n occurrences beyond the original have
// been produced, n+1 in total.
func After(n int) EndCondition {
	return EndCondition{Mode: EndAfter, Count: n}
}

// OnDate ends the series after the last occurrence starting on or
// before the given day. Time of day is ignored.
func OnDate(d time.Time) EndCondition {
	return EndCondition{Mode: EndOnDate, Date: d}
}

// Rule describes how an event repeats. Kind picks the variant and
// only the fields documented for that variant are read; everything
// else is ignored. The zero value is a one-off (KindNone) rule.
type Rule struct {
	Kind Kind

	// Interval stretches the base period: every Interval days, weeks,
	// months or years depending on Kind. Values below 1 are repaired
	// to 1 by Normalize, never rejected.
	Interval int

	// Weekdays are the selected days of a weekly rule. Empty means
	// the weekday of the seed date.
	Weekdays []time.Weekday

	// MonthlyMode, MonthDay, Week and Weekday shape monthly rules.
	// Yearly rules read YearlyMode and Month as well.
	MonthlyMode MonthlyMode
	YearlyMode  YearlyMode
	Month       time.Month
	MonthDay    int          // 1..31
	Week        int          // 1..4 or Last
	Weekday     time.Weekday

	// Unit is the step unit of a custom rule.
	Unit Unit

	End EndCondition
}

// None returns the single-occurrence rule.
func None() Rule {
	return Rule{Kind: KindNone}
}

// Daily repeats every interval days.
func Daily(interval int) Rule {
	return Rule{Kind: KindDaily, Interval: interval}
}

// Weekly repeats on the given weekdays every interval weeks. With no
// weekdays the seed date's weekday is used.
func Weekly(interval int, days ...time.Weekday) Rule {
	return Rule{Kind: KindWeekly, Interval: interval, Weekdays: days}
}

// MonthlyByDay repeats on the given day of the month every interval
// months, clamped in shorter months.
func MonthlyByDay(interval, day int) Rule {
	return Rule{Kind: KindMonthly, Interval: interval, MonthlyMode: MonthlyOnDay, MonthDay: day}
}

// MonthlyByWeekday repeats on the nth weekday of the month every
// interval months; week is 1..4 or Last.
func MonthlyByWeekday(interval, week int, day time.Weekday) Rule {
	return Rule{Kind: KindMonthly, Interval: interval, MonthlyMode: MonthlyOnWeekday, Week: week, Weekday: day}
}

// YearlyByDate repeats on the same month and day every interval
// years. The date is constructed directly, so a rule fixed to
// February 29 only lands on that day in leap years.
func YearlyByDate(interval int, month time.Month, day int) Rule {
	return Rule{Kind: KindYearly, Interval: interval, YearlyMode: YearlyOnDate, Month: month, MonthDay: day}
}

// YearlyByWeekday repeats on the nth weekday of the given month every
// interval years; week is 1..4 or Last.
func YearlyByWeekday(interval int, month time.Month, week int, day time.Weekday) Rule {
	return Rule{Kind: KindYearly, Interval: interval, YearlyMode: YearlyOnWeekday, Month: month, Week: week, Weekday: day}
}

// Custom repeats every interval units.
func Custom(interval int, unit Unit) Rule {
	return Rule{Kind: KindCustom, Interval: interval, Unit: unit}
}

// WithEnd returns a copy of the rule bounded by the given end
// condition.
func (r Rule) WithEnd(end EndCondition) Rule {
	r.End = end
	return r
}

// Normalize repairs degenerate numeric fields: a non-positive
// interval becomes 1 and weekly day sets are sorted and de-duplicated.
// Recurrence intervals are user input and degrade gracefully instead
// of failing a whole series.
func (r Rule) Normalize() Rule {
	if r.Interval < 1 {
		r.Interval = 1
	}
	if r.Kind == KindWeekly && len(r.Weekdays) > 1 {
		days := make([]time.Weekday, len(r.Weekdays))
		copy(days, r.Weekdays)
		sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
		deduped := days[:1]
		for _, d := range days[1:] {
			if d != deduped[len(deduped)-1] {
				deduped = append(deduped, d)
			}
		}
		r.Weekdays = deduped
	}
	return r
}

// Validate checks the rule's structural fields and reports the first
// violation wrapped in ErrInvalidRule. Interval is exempt: Normalize
// repairs it instead.
func (r Rule) Validate() error {
	switch r.Kind {
	case KindNone, KindDaily:
	case KindWeekly:
		for _, d := range r.Weekdays {
			if err := validateWeekday(d); err != nil {
				return err
			}
		}
	case KindMonthly:
		switch r.MonthlyMode {
		case MonthlyOnDay:
			if err := validateMonthDay(r.MonthDay); err != nil {
				return err
			}
		case MonthlyOnWeekday:
			if err := validateOrdinal(r.Week, r.Weekday); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: unknown monthly mode %d", ErrInvalidRule, r.MonthlyMode)
		}
	case KindYearly:
		if r.Month < time.January || r.Month > time.December {
			return fmt.Errorf("%w: month %d out of range", ErrInvalidRule, r.Month)
		}
		switch r.YearlyMode {
		case YearlyOnDate:
			if err := validateMonthDay(r.MonthDay); err != nil {
				return err
			}
		case YearlyOnWeekday:
			if err := validateOrdinal(r.Week, r.Weekday); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: unknown yearly mode %d", ErrInvalidRule, r.YearlyMode)
		}
	case KindCustom:
		switch r.Unit {
		case UnitDays, UnitWeeks, UnitMonths, UnitYears:
		default:
			return fmt.Errorf("%w: unknown unit %d", ErrInvalidRule, r.Unit)
		}
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidRule, r.Kind)
	}

	switch r.End.Mode {
	case EndNever, EndOnDate:
	case EndAfter:
		if r.End.Count < 0 {
			return fmt.Errorf("%w: negative occurrence count %d", ErrInvalidRule, r.End.Count)
		}
	default:
		return fmt.Errorf("%w: unknown end mode %d", ErrInvalidRule, r.End.Mode)
	}
	return nil
}

func validateWeekday(d time.Weekday) error {
	if d < time.Sunday || d > time.Saturday {
		return fmt.Errorf("%w: weekday %d out of range", ErrInvalidRule, d)
	}
	return nil
}

func validateMonthDay(day int) error {
	if day < 1 || day > 31 {
		return fmt.Errorf("%w: day of month %d out of range", ErrInvalidRule, day)
	}
	return nil
}

func validateOrdinal(week int, day time.Weekday) error {
	if (week < 1 || week > 4) && week != Last {
		return fmt.Errorf("%w: week ordinal %d out of range", ErrInvalidRule, week)
	}
	return validateWeekday(day)
}

// Describe renders the rule for display, e.g. "every 2 weeks on
// Monday, Wednesday; ends after 3 more times".
func (r Rule) Describe() string {
	r = r.Normalize()
	var b strings.Builder

	switch r.Kind {
	case KindNone:
		return "does not repeat"
	case KindDaily:
		every(&b, r.Interval, "day")
	case KindWeekly:
		every(&b, r.Interval, "week")
		if len(r.Weekdays) > 0 {
			names := make([]string, len(r.Weekdays))
			for i, d := range r.Weekdays {
				names[i] = d.String()
			}
			fmt.Fprintf(&b, " on %s", strings.Join(names, ", "))
		}
	case KindMonthly:
		every(&b, r.Interval, "month")
		if r.MonthlyMode == MonthlyOnDay {
			fmt.Fprintf(&b, " on day %d", r.MonthDay)
		} else {
			fmt.Fprintf(&b, " on the %s %s", ordinalName(r.Week), r.Weekday)
		}
	case KindYearly:
		every(&b, r.Interval, "year")
		if r.YearlyMode == YearlyOnDate {
			fmt.Fprintf(&b, " on %s %d", r.Month, r.MonthDay)
		} else {
			fmt.Fprintf(&b, " on the %s %s of %s", ordinalName(r.Week), r.Weekday, r.Month)
		}
	case KindCustom:
		every(&b, r.Interval, strings.TrimSuffix(r.Unit.String(), "s"))
	default:
		return "unknown repetition"
	}

	switch r.End.Mode {
	case EndAfter:
		fmt.Fprintf(&b, "; ends after %d more time", r.End.Count)
		if r.End.Count != 1 {
			b.WriteString("s")
		}
	case EndOnDate:
		fmt.Fprintf(&b, "; ends on %s", r.End.Date.Format("2006-01-02"))
	}
	return b.String()
}

func every(b *strings.Builder, interval int, noun string) {
	if interval == 1 {
		fmt.Fprintf(b, "every %s", noun)
	} else {
		fmt.Fprintf(b, "every %d %ss", interval, noun)
	}
}

func ordinalName(week int) string {
	switch week {
	case 1:
		return "first"
	case 2:
		return "second"
	case 3:
		return "third"
	case 4:
		return "fourth"
	case Last:
		return "last"
	default:
		return fmt.Sprintf("%dth", week)
	}
}
