package recurrence

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/halcyde/librecur/event"
)

// MaxOccurrences is the hard safety cap on the length of any expanded
// series. It guards against rules that cannot terminate (an interval
// normalized up from zero, an end date that is never reached) and
// takes precedence over every end condition.
const MaxOccurrences = 100

// Series is the outcome of one expansion.
type Series struct {
	// SeriesID ties the occurrences together; a fresh one is minted
	// per expansion.
	SeriesID string
	// Occurrences are ordered by start instant, sequence 0 first.
	Occurrences []event.Occurrence
	// Truncated reports that MaxOccurrences cut the series short
	// before its end condition was satisfied. Callers should surface
	// this as a warning rather than treat it as success.
	Truncated bool
}

// Engine expands event templates into occurrence series.
type Engine struct {
	cache  *ExpansionCache
	config EngineConfig
	logger *slog.Logger
}

// NewEngine creates an engine with DefaultEngineConfig.
func NewEngine() *Engine {
	return NewEngineWithConfig(DefaultEngineConfig)
}

// Expand materializes the series for a template under a rule. The
// template itself is occurrence 0; every later occurrence is the
// template shifted to a new anchor date with its duration and time of
// day preserved. Expansion is eager and happens once: the result is a
// plain slice with no live link to the rule, so display filtering
// never re-expands.
//
// A structurally invalid rule is rejected before any expansion; no
// partial series is produced.
func (e *Engine) Expand(tmpl event.Template, r Rule) (Series, error) {
	if err := r.Validate(); err != nil {
		return Series{}, fmt.Errorf("failed to expand series: %w", err)
	}
	r = r.Normalize()

	var starts []time.Time
	truncated, cached := false, false
	if e.cache != nil {
		starts, truncated, cached = e.cache.Get(tmpl, r)
	}
	if !cached {
		starts, truncated = expandStarts(tmpl, r)
		if e.cache != nil {
			e.cache.Set(tmpl, r, starts, truncated)
		}
	}

	series := Series{SeriesID: uuid.New().String(), Truncated: truncated}
	series.Occurrences = make([]event.Occurrence, len(starts))
	for i, start := range starts {
		occ := tmpl
		if i > 0 {
			occ = tmpl.ShiftTo(start)
		}
		series.Occurrences[i] = event.Occurrence{Template: occ, SeriesID: series.SeriesID, Sequence: i}
	}

	if truncated {
		e.logger.Warn("series truncated at safety cap",
			"series_id", series.SeriesID,
			"kind", r.Kind.String(),
			"cap", MaxOccurrences)
	}
	return series, nil
}

// Close stops the expansion cache's background cleanup, if caching is
// enabled. The engine holds no other resources.
func (e *Engine) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
}

// CacheStats reports the state of the expansion cache. The zero value
// is returned when caching is disabled.
func (e *Engine) CacheStats() CacheStats {
	if e.cache == nil {
		return CacheStats{}
	}
	return e.cache.Stats()
}

// expandStarts drives the generator from the template's start instant
// until an end condition, pattern exhaustion or the cap stops it. The
// cap wins unconditionally.
func expandStarts(tmpl event.Template, r Rule) (starts []time.Time, truncated bool) {
	starts = []time.Time{tmpl.StartInstant()}
	if r.Kind == KindNone {
		return starts, false
	}

	// EndAfter counts additional occurrences beyond the original.
	total := -1
	if r.End.Mode == EndAfter {
		total = r.End.Count + 1
		if len(starts) >= total {
			return starts, false
		}
	}

	current := starts[0]
	for {
		if len(starts) >= MaxOccurrences {
			return starts, true
		}
		next, ok := Next(current, r).Get()
		if !ok {
			return starts, false
		}
		if r.End.Mode == EndOnDate && dateAfter(next, r.End.Date) {
			return starts, false
		}
		starts = append(starts, next)
		current = next
		if total >= 0 && len(starts) >= total {
			return starts, false
		}
	}
}

// dateAfter compares two instants at day precision.
func dateAfter(t, bound time.Time) bool {
	ty, tm, td := t.Date()
	by, bm, bd := bound.Date()
	if ty != by {
		return ty > by
	}
	if tm != bm {
		return tm > bm
	}
	return td > bd
}
