// Package event defines the calendar event model shared by the
// expansion engine, the window filter and the stores: the template a
// user authors and the concrete occurrences expanded from it.
package event

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/mo"
)

// ErrInvalidTemplate marks a template that cannot seed an expansion.
var ErrInvalidTemplate = errors.New("event: invalid template")

// Clock is a time of day at minute precision.
type Clock struct {
	Hour   int
	Minute int
}

// ClockOf extracts the time of day from an instant.
func ClockOf(t time.Time) Clock {
	return Clock{Hour: t.Hour(), Minute: t.Minute()}
}

// On places the clock on the given calendar day.
func (c Clock) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, day.Location())
}

// Before reports whether c reads earlier in the day than other.
func (c Clock) Before(other Clock) bool {
	if c.Hour != other.Hour {
		return c.Hour < other.Hour
	}
	return c.Minute < other.Minute
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Date returns the given calendar day at midnight UTC, the form all
// template dates are normalized to.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Template is the user-authored description of an event before any
// expansion. Dates carry day precision only; the time of day lives in
// StartTime and EndTime unless AllDay is set. Templates are passed by
// value and never mutated by the engine.
type Template struct {
	Title       string
	StartDate   time.Time
	EndDate     time.Time
	StartTime   Clock
	EndTime     Clock
	AllDay      bool
	CategoryID  mo.Option[string]
	Location    string
	Description string
}

// StartInstant combines StartDate and StartTime. All-day events start
// at midnight.
func (t Template) StartInstant() time.Time {
	if t.AllDay {
		return startOfDay(t.StartDate)
	}
	return t.StartTime.On(t.StartDate)
}

// EndInstant combines EndDate and EndTime. All-day events end at
// midnight of their last date.
func (t Template) EndInstant() time.Time {
	if t.AllDay {
		return startOfDay(t.EndDate)
	}
	return t.EndTime.On(t.EndDate)
}

// Duration is the span from start to end instant. It is computed from
// the template once and held constant across generated occurrences.
func (t Template) Duration() time.Duration {
	return t.EndInstant().Sub(t.StartInstant())
}

// ShiftTo re-anchors the template so its start instant falls on the
// given time, keeping the original duration. This is a shift of the
// whole event, not an independent edit of the date fields.
func (t Template) ShiftTo(start time.Time) Template {
	end := start.Add(t.Duration())
	t.StartDate = startOfDay(start)
	t.EndDate = startOfDay(end)
	t.StartTime = ClockOf(start)
	t.EndTime = ClockOf(end)
	return t
}

// Validate checks the invariants the expansion engine assumes: a
// present title and an end that does not precede the start. Callers
// feeding user input should validate before expanding.
func (t Template) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title must not be empty", ErrInvalidTemplate)
	}
	start, end := startOfDay(t.StartDate), startOfDay(t.EndDate)
	if end.Before(start) {
		return fmt.Errorf("%w: end date %s before start date %s",
			ErrInvalidTemplate, end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	if !t.AllDay && end.Equal(start) && !t.StartTime.Before(t.EndTime) {
		return fmt.Errorf("%w: end time %s must be after start time %s",
			ErrInvalidTemplate, t.EndTime, t.StartTime)
	}
	return nil
}

// Occurrence is one concrete instance of an expanded series. It owns
// a full copy of the template fields; editing an occurrence never
// reaches back into the rule or its siblings.
type Occurrence struct {
	Template

	// SeriesID is shared by every occurrence of one expansion.
	SeriesID string
	// Sequence is the 0-based position in the series; 0 is the
	// original, unshifted instance.
	Sequence int
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
