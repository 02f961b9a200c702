// Package ics converts templates, rules and expanded series to and
// from iCalendar objects. The RRULE mapping covers the native rule
// shapes only; constructs outside that subset, like BYSETPOS or
// sub-daily frequencies, are rejected at decode time rather than
// approximated.
package ics

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/samber/mo"

	"github.com/halcyde/librecur/event"
	"github.com/halcyde/librecur/recurrence"
)

const prodID = "-//librecur//NONSGML v1.0//EN"

const dateLayout = "20060102"

// EncodeTemplate renders a template and its rule as a calendar holding
// a single VEVENT, the unexpanded form a ruled event is exchanged in.
func EncodeTemplate(tmpl event.Template, r recurrence.Rule) (*ical.Calendar, error) {
	if err := tmpl.Validate(); err != nil {
		return nil, fmt.Errorf("failed to encode template: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("failed to encode template: %w", err)
	}

	ev := ical.NewEvent()
	ev.Props.SetText(ical.PropUID, uuid.New().String())
	ev.Props.SetDateTime(ical.PropDateTimeStamp, time.Now())
	setEventTimes(ev, tmpl)
	setEventText(ev, tmpl)

	if r.Kind != recurrence.KindNone {
		value, err := EncodeRule(r)
		if err != nil {
			return nil, err
		}
		// RRULE is a RECUR value; TEXT escaping would corrupt its ; and , separators.
		p := ical.NewProp(ical.PropRecurrenceRule)
		p.Value = value
		ev.Props.Set(p)
	}

	return wrapEvents(ev), nil
}

// EncodeSeries renders every occurrence of an expanded series as a
// concrete VEVENT. The occurrences share the series UID and are told
// apart by RECURRENCE-ID and SEQUENCE.
func EncodeSeries(series recurrence.Series) (*ical.Calendar, error) {
	if len(series.Occurrences) == 0 {
		return nil, errors.New("ics: series has no occurrences")
	}

	now := time.Now()
	events := make([]*ical.Event, 0, len(series.Occurrences))
	for _, occ := range series.Occurrences {
		if err := occ.Validate(); err != nil {
			return nil, fmt.Errorf("failed to encode series: %w", err)
		}

		ev := ical.NewEvent()
		ev.Props.SetText(ical.PropUID, series.SeriesID)
		ev.Props.SetDateTime(ical.PropDateTimeStamp, now)
		ev.Props.SetDateTime("RECURRENCE-ID", occ.StartInstant())
		ev.Props.SetText(ical.PropSequence, strconv.Itoa(occ.Sequence))
		setEventTimes(ev, occ.Template)
		setEventText(ev, occ.Template)

		events = append(events, ev)
	}

	return wrapEvents(events...), nil
}

// DecodeTemplate maps a VEVENT onto a template and its recurrence
// rule. Events without both DTSTART and DTEND are rejected, as are
// RRULEs outside the supported subset.
func DecodeTemplate(ev *ical.Event) (event.Template, recurrence.Rule, error) {
	startProp := ev.Props.Get(ical.PropDateTimeStart)
	if startProp == nil || startProp.Value == "" {
		return event.Template{}, recurrence.Rule{}, errors.New("ics: event has no DTSTART")
	}
	endProp := ev.Props.Get(ical.PropDateTimeEnd)
	if endProp == nil || endProp.Value == "" {
		return event.Template{}, recurrence.Rule{}, errors.New("ics: event has no DTEND")
	}

	start, err := startProp.DateTime(nil)
	if err != nil {
		return event.Template{}, recurrence.Rule{}, fmt.Errorf("failed to parse DTSTART: %w", err)
	}
	end, err := endProp.DateTime(nil)
	if err != nil {
		return event.Template{}, recurrence.Rule{}, fmt.Errorf("failed to parse DTEND: %w", err)
	}

	var tmpl event.Template
	tmpl.AllDay = startProp.Params.Get(ical.ParamValue) == string(ical.ValueDate)
	tmpl.StartDate = event.Date(start.Year(), start.Month(), start.Day())
	if tmpl.AllDay {
		// All-day DTEND is exclusive, one day past the last day.
		last := end.AddDate(0, 0, -1)
		if last.Before(start) {
			last = start
		}
		tmpl.EndDate = event.Date(last.Year(), last.Month(), last.Day())
	} else {
		tmpl.EndDate = event.Date(end.Year(), end.Month(), end.Day())
		tmpl.StartTime = event.ClockOf(start)
		tmpl.EndTime = event.ClockOf(end)
	}

	tmpl.Title, _ = ev.Props.Text(ical.PropSummary)
	tmpl.Location, _ = ev.Props.Text(ical.PropLocation)
	tmpl.Description, _ = ev.Props.Text(ical.PropDescription)
	if catProp := ev.Props.Get(ical.PropCategories); catProp != nil && catProp.Value != "" {
		tmpl.CategoryID = mo.Some(catProp.Value)
	}

	if err := tmpl.Validate(); err != nil {
		return event.Template{}, recurrence.Rule{}, fmt.Errorf("ics: invalid event: %w", err)
	}

	rule := recurrence.None()
	if rruleProp := ev.Props.Get(ical.PropRecurrenceRule); rruleProp != nil && rruleProp.Value != "" {
		rule, err = ParseRule(rruleProp.Value, tmpl.StartInstant())
		if err != nil {
			return event.Template{}, recurrence.Rule{}, err
		}
	}

	return tmpl, rule, nil
}

// Entry pairs a decoded template with its recurrence rule.
type Entry struct {
	Template event.Template
	Rule     recurrence.Rule
}

// DecodeCalendar reads an iCalendar stream and decodes every VEVENT
// in it.
func DecodeCalendar(r io.Reader) ([]Entry, error) {
	cal, err := ical.NewDecoder(r).Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode calendar: %w", err)
	}

	var entries []Entry
	for _, ev := range cal.Events() {
		tmpl, rule, err := DecodeTemplate(&ev)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Template: tmpl, Rule: rule})
	}

	return entries, nil
}

func wrapEvents(events ...*ical.Event) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, prodID)
	cal.Props.SetText(ical.PropVersion, "2.0")
	for _, ev := range events {
		cal.Children = append(cal.Children, ev.Component)
	}
	return cal
}

func setEventTimes(ev *ical.Event, tmpl event.Template) {
	if tmpl.AllDay {
		// All-day DTEND is exclusive, one day past the last day.
		setDateProp(ev, ical.PropDateTimeStart, tmpl.StartDate)
		setDateProp(ev, ical.PropDateTimeEnd, tmpl.EndDate.AddDate(0, 0, 1))
		return
	}
	ev.Props.SetDateTime(ical.PropDateTimeStart, tmpl.StartInstant())
	ev.Props.SetDateTime(ical.PropDateTimeEnd, tmpl.EndInstant())
}

func setEventText(ev *ical.Event, tmpl event.Template) {
	ev.Props.SetText(ical.PropSummary, tmpl.Title)
	if tmpl.Location != "" {
		ev.Props.SetText(ical.PropLocation, tmpl.Location)
	}
	if tmpl.Description != "" {
		ev.Props.SetText(ical.PropDescription, tmpl.Description)
	}
	if category, ok := tmpl.CategoryID.Get(); ok {
		ev.Props.SetText(ical.PropCategories, category)
	}
}

func setDateProp(ev *ical.Event, name string, day time.Time) {
	p := ical.NewProp(name)
	p.Params.Set(ical.ParamValue, string(ical.ValueDate))
	p.Value = day.Format(dateLayout)
	ev.Props.Set(p)
}
