package main

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/emersion/go-ical"

	"github.com/halcyde/librecur/event"
	"github.com/halcyde/librecur/ics"
	"github.com/halcyde/librecur/recurrence"
	"github.com/halcyde/librecur/store"
	"github.com/halcyde/librecur/store/memory"
	"github.com/halcyde/librecur/window"
)

const firstDayOfWeek = time.Monday

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// The engine expands once at creation time; views only filter.
	config := recurrence.DefaultEngineConfig
	config.Logger = logger
	engine := recurrence.NewEngineWithConfig(config)
	defer engine.Close()

	ctx := context.Background()
	st := memory.New(memory.WithLogger(logger))

	// A bi-weekly planning meeting on Mondays and Wednesdays
	planning := event.Template{
		Title:     "Sprint planning",
		StartDate: event.Date(2024, time.May, 6),
		EndDate:   event.Date(2024, time.May, 6),
		StartTime: event.Clock{Hour: 9, Minute: 30},
		EndTime:   event.Clock{Hour: 10, Minute: 30},
		Location:  "Room 2",
	}
	planningRule := recurrence.Weekly(2, time.Monday, time.Wednesday).WithEnd(recurrence.After(3))
	planningSeries := expandAndStore(ctx, engine, st, planning, planningRule)

	// An all-day reminder on the 31st, clamped in shorter months
	rent := event.Template{
		Title:     "Rent due",
		StartDate: event.Date(2024, time.January, 31),
		EndDate:   event.Date(2024, time.January, 31),
		AllDay:    true,
	}
	rentRule := recurrence.MonthlyByDay(1, 31).WithEnd(recurrence.After(3))
	rentSeries := expandAndStore(ctx, engine, st, rent, rentRule)

	// Month view
	may := window.MonthOf(event.Date(2024, time.May, 1))
	inMay, err := st.List(ctx, &store.ListOptions{Window: &may})
	if err != nil {
		log.Fatalf("Listing May failed: %v", err)
	}
	fmt.Printf("Events in %s:\n", may.Start.Format("January 2006"))
	for _, se := range inMay {
		printStored(se)
	}

	// Week view
	week := window.RangeFor(window.Week, event.Date(2024, time.May, 8), firstDayOfWeek)
	inWeek, err := st.List(ctx, &store.ListOptions{Window: &week})
	if err != nil {
		log.Fatalf("Listing week failed: %v", err)
	}
	fmt.Printf("\nWeek of %s:\n", week.Start.Format("Jan 2"))
	for _, se := range inWeek {
		printStored(se)
	}

	// One series on its own, clamp dates included
	rentEvents, err := st.List(ctx, &store.ListOptions{SeriesID: rentSeries.SeriesID})
	if err != nil {
		log.Fatalf("Listing rent series failed: %v", err)
	}
	fmt.Printf("\nAll %q occurrences:\n", rent.Title)
	for _, se := range rentEvents {
		printStored(se)
	}

	// Export the planning series as iCalendar
	cal, err := ics.EncodeSeries(planningSeries)
	if err != nil {
		log.Fatalf("Encoding series failed: %v", err)
	}
	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		log.Fatalf("Writing iCalendar failed: %v", err)
	}
	fmt.Printf("\niCalendar export:\n%s", buf.String())
}

// expandAndStore expands a template under its rule and persists every
// occurrence
func expandAndStore(ctx context.Context, engine *recurrence.Engine, st *memory.Store, tmpl event.Template, rule recurrence.Rule) recurrence.Series {
	series, err := engine.Expand(tmpl, rule)
	if err != nil {
		log.Fatalf("Expanding %q failed: %v", tmpl.Title, err)
	}
	if _, err := st.Put(ctx, series.Occurrences); err != nil {
		log.Fatalf("Storing %q failed: %v", tmpl.Title, err)
	}
	fmt.Printf("%s: %s -> %d occurrences\n", tmpl.Title, rule.Describe(), len(series.Occurrences))
	return series
}

// printStored renders one stored event as a view row
func printStored(se *store.StoredEvent) {
	if se.AllDay {
		fmt.Printf("  %s  all day      %s\n", se.StartDate.Format("Mon Jan 02"), se.Title)
		return
	}
	fmt.Printf("  %s  %s-%s  %s\n", se.StartDate.Format("Mon Jan 02"), se.StartTime, se.EndTime, se.Title)
}
