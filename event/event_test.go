package event

import (
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateInstants(t *testing.T) {
	tmpl := Template{
		Title:     "Standup",
		StartDate: Date(2024, time.May, 6),
		EndDate:   Date(2024, time.May, 6),
		StartTime: Clock{Hour: 9, Minute: 30},
		EndTime:   Clock{Hour: 10, Minute: 0},
	}

	assert.Equal(t, time.Date(2024, time.May, 6, 9, 30, 0, 0, time.UTC), tmpl.StartInstant())
	assert.Equal(t, time.Date(2024, time.May, 6, 10, 0, 0, 0, time.UTC), tmpl.EndInstant())
	assert.Equal(t, 30*time.Minute, tmpl.Duration())
}

func TestTemplateInstantsAllDay(t *testing.T) {
	tmpl := Template{
		Title:     "Conference",
		StartDate: Date(2024, time.May, 6),
		EndDate:   Date(2024, time.May, 8),
		StartTime: Clock{Hour: 9, Minute: 0}, // ignored when AllDay
		EndTime:   Clock{Hour: 17, Minute: 0},
		AllDay:    true,
	}

	assert.Equal(t, Date(2024, time.May, 6), tmpl.StartInstant())
	assert.Equal(t, Date(2024, time.May, 8), tmpl.EndInstant())
	assert.Equal(t, 48*time.Hour, tmpl.Duration())
}

func TestShiftToPreservesDuration(t *testing.T) {
	tmpl := Template{
		Title:     "Overnight shift",
		StartDate: Date(2024, time.April, 30),
		EndDate:   Date(2024, time.May, 1),
		StartTime: Clock{Hour: 18, Minute: 0},
		EndTime:   Clock{Hour: 2, Minute: 0},
	}
	require.Equal(t, 8*time.Hour, tmpl.Duration())

	shifted := tmpl.ShiftTo(time.Date(2024, time.May, 7, 18, 0, 0, 0, time.UTC))

	assert.Equal(t, Date(2024, time.May, 7), shifted.StartDate)
	assert.Equal(t, Date(2024, time.May, 8), shifted.EndDate)
	assert.Equal(t, Clock{Hour: 18}, shifted.StartTime)
	assert.Equal(t, Clock{Hour: 2}, shifted.EndTime)
	assert.Equal(t, 8*time.Hour, shifted.Duration())
	assert.Equal(t, "Overnight shift", shifted.Title)

	// The original template is untouched.
	assert.Equal(t, Date(2024, time.April, 30), tmpl.StartDate)
}

func TestShiftToAllDay(t *testing.T) {
	tmpl := Template{
		Title:     "Offsite",
		StartDate: Date(2024, time.June, 3),
		EndDate:   Date(2024, time.June, 5),
		AllDay:    true,
	}

	shifted := tmpl.ShiftTo(Date(2024, time.July, 1))

	assert.Equal(t, Date(2024, time.July, 1), shifted.StartDate)
	assert.Equal(t, Date(2024, time.July, 3), shifted.EndDate)
	assert.True(t, shifted.AllDay)
}

func TestTemplateValidate(t *testing.T) {
	valid := Template{
		Title:      "Review",
		StartDate:  Date(2024, time.May, 6),
		EndDate:    Date(2024, time.May, 6),
		StartTime:  Clock{Hour: 14},
		EndTime:    Clock{Hour: 15},
		CategoryID: mo.Some("work"),
	}

	tests := []struct {
		name    string
		mutate  func(*Template)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Template) {}},
		{
			name:    "empty title",
			mutate:  func(tm *Template) { tm.Title = "" },
			wantErr: true,
		},
		{
			name:    "whitespace title",
			mutate:  func(tm *Template) { tm.Title = "   " },
			wantErr: true,
		},
		{
			name:    "end date before start date",
			mutate:  func(tm *Template) { tm.EndDate = Date(2024, time.May, 5) },
			wantErr: true,
		},
		{
			name:    "same day end time not after start time",
			mutate:  func(tm *Template) { tm.EndTime = Clock{Hour: 14} },
			wantErr: true,
		},
		{
			name: "same day all-day ignores times",
			mutate: func(tm *Template) {
				tm.AllDay = true
				tm.EndTime = Clock{}
			},
		},
		{
			name: "multi-day reversed clocks are fine",
			mutate: func(tm *Template) {
				tm.EndDate = Date(2024, time.May, 7)
				tm.StartTime = Clock{Hour: 18}
				tm.EndTime = Clock{Hour: 2}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := valid
			tt.mutate(&tmpl)
			err := tmpl.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidTemplate)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClock(t *testing.T) {
	c := Clock{Hour: 9, Minute: 5}

	assert.Equal(t, "09:05", c.String())
	assert.True(t, c.Before(Clock{Hour: 9, Minute: 6}))
	assert.True(t, c.Before(Clock{Hour: 10}))
	assert.False(t, c.Before(c))

	day := Date(2024, time.May, 6)
	assert.Equal(t, time.Date(2024, time.May, 6, 9, 5, 0, 0, time.UTC), c.On(day))
	assert.Equal(t, c, ClockOf(c.On(day)))
}
