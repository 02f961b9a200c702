package ics

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/halcyde/librecur/event"
	"github.com/halcyde/librecur/recurrence"
)

// ErrUnsupportedRule marks an iCalendar recurrence construct with no
// native rule equivalent. Full RRULE coverage is out of scope; such
// rules are rejected, never approximated.
var ErrUnsupportedRule = errors.New("ics: unsupported recurrence construct")

// rrule weekdays index Monday as 0 while time.Weekday starts the week
// on Sunday.
var rruleWeekdays = [...]rrule.Weekday{
	rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA, rrule.SU,
}

func toRRuleWeekday(w time.Weekday) rrule.Weekday {
	return rruleWeekdays[(int(w)+6)%7]
}

func fromRRuleWeekday(wd rrule.Weekday) time.Weekday {
	return time.Weekday((wd.Day() + 1) % 7)
}

func unsupportedErr(what string) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedRule, what)
}

// EncodeRule renders a rule as an RFC 5545 RRULE value. Day-of-month
// rules encode as BYMONTHDAY, which standard consumers skip in months
// missing that day instead of clamping the way the generator does.
func EncodeRule(r recurrence.Rule) (string, error) {
	if err := r.Validate(); err != nil {
		return "", fmt.Errorf("failed to encode rule: %w", err)
	}

	opt, err := toROption(r.Normalize())
	if err != nil {
		return "", err
	}
	if _, err := rrule.NewRRule(opt); err != nil {
		return "", fmt.Errorf("failed to encode rule: %w", err)
	}

	return opt.RRuleString(), nil
}

// ParseRule maps an RRULE value onto a native rule. The seed supplies
// the day of month and month for frequencies that inherit them from
// DTSTART. WKST is ignored; weeks run Sunday-first here regardless.
func ParseRule(value string, seed time.Time) (recurrence.Rule, error) {
	opt, err := rrule.StrToROption(value)
	if err != nil {
		return recurrence.Rule{}, fmt.Errorf("failed to parse RRULE %q: %w", value, err)
	}
	return fromROption(opt, seed)
}

func toROption(r recurrence.Rule) (rrule.ROption, error) {
	opt := rrule.ROption{Interval: r.Interval}

	switch r.Kind {
	case recurrence.KindDaily:
		opt.Freq = rrule.DAILY
	case recurrence.KindWeekly:
		opt.Freq = rrule.WEEKLY
		opt.Wkst = rrule.SU
		for _, day := range r.Weekdays {
			opt.Byweekday = append(opt.Byweekday, toRRuleWeekday(day))
		}
	case recurrence.KindMonthly:
		opt.Freq = rrule.MONTHLY
		if r.MonthlyMode == recurrence.MonthlyOnDay {
			opt.Bymonthday = []int{r.MonthDay}
		} else {
			// Nth has a pointer receiver, so the weekday needs a home first.
			wd := toRRuleWeekday(r.Weekday)
			opt.Byweekday = []rrule.Weekday{wd.Nth(r.Week)}
		}
	case recurrence.KindYearly:
		opt.Freq = rrule.YEARLY
		opt.Bymonth = []int{int(r.Month)}
		if r.YearlyMode == recurrence.YearlyOnDate {
			opt.Bymonthday = []int{r.MonthDay}
		} else {
			wd := toRRuleWeekday(r.Weekday)
			opt.Byweekday = []rrule.Weekday{wd.Nth(r.Week)}
		}
	case recurrence.KindCustom:
		switch r.Unit {
		case recurrence.UnitDays:
			opt.Freq = rrule.DAILY
		case recurrence.UnitWeeks:
			opt.Freq = rrule.WEEKLY
		case recurrence.UnitMonths:
			opt.Freq = rrule.MONTHLY
		case recurrence.UnitYears:
			opt.Freq = rrule.YEARLY
		}
	default:
		return rrule.ROption{}, unsupportedErr("one-off events have no RRULE form")
	}

	switch r.End.Mode {
	case recurrence.EndAfter:
		// COUNT includes the first occurrence.
		opt.Count = r.End.Count + 1
	case recurrence.EndOnDate:
		d := r.End.Date
		opt.Until = time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, time.UTC)
	}

	return opt, nil
}

func fromROption(opt *rrule.ROption, seed time.Time) (recurrence.Rule, error) {
	if len(opt.Bysetpos) > 0 {
		return recurrence.Rule{}, unsupportedErr("BYSETPOS")
	}
	if len(opt.Byyearday) > 0 {
		return recurrence.Rule{}, unsupportedErr("BYYEARDAY")
	}
	if len(opt.Byweekno) > 0 {
		return recurrence.Rule{}, unsupportedErr("BYWEEKNO")
	}
	if len(opt.Byhour)+len(opt.Byminute)+len(opt.Bysecond) > 0 {
		return recurrence.Rule{}, unsupportedErr("sub-daily BY* filters")
	}
	if len(opt.Byeaster) > 0 {
		return recurrence.Rule{}, unsupportedErr("BYEASTER")
	}
	if opt.Count > 0 && !opt.Until.IsZero() {
		return recurrence.Rule{}, unsupportedErr("COUNT combined with UNTIL")
	}

	var rule recurrence.Rule
	switch opt.Freq {
	case rrule.DAILY:
		if len(opt.Byweekday)+len(opt.Bymonthday)+len(opt.Bymonth) > 0 {
			return recurrence.Rule{}, unsupportedErr("BY* filters with FREQ=DAILY")
		}
		rule = recurrence.Daily(opt.Interval)

	case rrule.WEEKLY:
		if len(opt.Bymonthday)+len(opt.Bymonth) > 0 {
			return recurrence.Rule{}, unsupportedErr("BYMONTHDAY or BYMONTH with FREQ=WEEKLY")
		}
		var days []time.Weekday
		for _, wd := range opt.Byweekday {
			if wd.N() != 0 {
				return recurrence.Rule{}, unsupportedErr("ordinal BYDAY with FREQ=WEEKLY")
			}
			days = append(days, fromRRuleWeekday(wd))
		}
		rule = recurrence.Weekly(opt.Interval, days...)

	case rrule.MONTHLY:
		if len(opt.Bymonth) > 0 {
			return recurrence.Rule{}, unsupportedErr("BYMONTH with FREQ=MONTHLY")
		}
		switch {
		case len(opt.Bymonthday) > 1:
			return recurrence.Rule{}, unsupportedErr("multi-valued BYMONTHDAY")
		case len(opt.Bymonthday) == 1:
			if len(opt.Byweekday) > 0 {
				return recurrence.Rule{}, unsupportedErr("BYMONTHDAY combined with BYDAY")
			}
			rule = recurrence.MonthlyByDay(opt.Interval, opt.Bymonthday[0])
		case len(opt.Byweekday) > 1:
			return recurrence.Rule{}, unsupportedErr("multi-valued BYDAY with FREQ=MONTHLY")
		case len(opt.Byweekday) == 1:
			week, weekday, err := ordinalWeekday(opt.Byweekday[0])
			if err != nil {
				return recurrence.Rule{}, err
			}
			rule = recurrence.MonthlyByWeekday(opt.Interval, week, weekday)
		default:
			rule = recurrence.MonthlyByDay(opt.Interval, seed.Day())
		}

	case rrule.YEARLY:
		if len(opt.Bymonth) > 1 {
			return recurrence.Rule{}, unsupportedErr("multi-valued BYMONTH")
		}
		if len(opt.Bymonth) == 0 {
			if len(opt.Bymonthday)+len(opt.Byweekday) > 0 {
				return recurrence.Rule{}, unsupportedErr("BYMONTHDAY or BYDAY without BYMONTH for FREQ=YEARLY")
			}
			rule = recurrence.YearlyByDate(opt.Interval, seed.Month(), seed.Day())
			break
		}
		month := time.Month(opt.Bymonth[0])
		switch {
		case len(opt.Bymonthday) > 1:
			return recurrence.Rule{}, unsupportedErr("multi-valued BYMONTHDAY")
		case len(opt.Bymonthday) == 1:
			if len(opt.Byweekday) > 0 {
				return recurrence.Rule{}, unsupportedErr("BYMONTHDAY combined with BYDAY")
			}
			rule = recurrence.YearlyByDate(opt.Interval, month, opt.Bymonthday[0])
		case len(opt.Byweekday) > 1:
			return recurrence.Rule{}, unsupportedErr("multi-valued BYDAY with FREQ=YEARLY")
		case len(opt.Byweekday) == 1:
			week, weekday, err := ordinalWeekday(opt.Byweekday[0])
			if err != nil {
				return recurrence.Rule{}, err
			}
			rule = recurrence.YearlyByWeekday(opt.Interval, month, week, weekday)
		default:
			rule = recurrence.YearlyByDate(opt.Interval, month, seed.Day())
		}

	default:
		return recurrence.Rule{}, unsupportedErr(fmt.Sprintf("frequency %v", opt.Freq))
	}

	end := recurrence.Never()
	if opt.Count > 0 {
		// COUNT includes the first occurrence.
		end = recurrence.After(opt.Count - 1)
	} else if !opt.Until.IsZero() {
		end = recurrence.OnDate(event.Date(opt.Until.Year(), opt.Until.Month(), opt.Until.Day()))
	}
	rule = rule.WithEnd(end)

	if err := rule.Validate(); err != nil {
		return recurrence.Rule{}, fmt.Errorf("failed to map RRULE: %w", err)
	}

	return rule.Normalize(), nil
}

// ordinalWeekday splits an ordinal BYDAY entry like 3WE or -1FR into
// the native week/weekday pair.
func ordinalWeekday(wd rrule.Weekday) (int, time.Weekday, error) {
	n := wd.N()
	switch {
	case n == 0:
		return 0, 0, unsupportedErr("BYDAY without an ordinal outside FREQ=WEEKLY")
	case n >= 1 && n <= 4:
		return n, fromRRuleWeekday(wd), nil
	case n == -1:
		return recurrence.Last, fromRRuleWeekday(wd), nil
	default:
		return 0, 0, unsupportedErr(fmt.Sprintf("BYDAY ordinal %d", n))
	}
}
