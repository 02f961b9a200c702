// memory based implementation for testing and single-process use
package memory

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/halcyde/librecur/event"
	"github.com/halcyde/librecur/store"
)

// Store implements store.Store using in-memory maps
type Store struct {
	mu       sync.RWMutex
	events   map[string]*store.StoredEvent // key: event ID
	bySeries map[string][]string           // key: series ID, value: event IDs
	logger   *slog.Logger
}

// New creates a new in-memory event store
func New(opts ...Option) *Store {
	s := &Store{
		events:   make(map[string]*store.StoredEvent),
		bySeries: make(map[string][]string),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	// Apply options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Option represents a configuration option for the Store
type Option func(*Store)

// WithLogger sets the logger for the store
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Event operations

func (s *Store) Put(_ context.Context, occurrences []event.Occurrence) ([]*store.StoredEvent, error) {
	for i, occ := range occurrences {
		if err := occ.Validate(); err != nil {
			s.logger.Warn("rejected invalid occurrence",
				"index", i,
				"series_id", occ.SeriesID)
			return nil, &store.Error{
				Type:    store.ErrInvalidInput,
				Message: "invalid occurrence",
				Err:     err,
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	stored := make([]*store.StoredEvent, 0, len(occurrences))
	for _, occ := range occurrences {
		se := &store.StoredEvent{
			ID:         uuid.New().String(),
			Occurrence: occ,
			Created:    now,
			Modified:   now,
		}
		s.events[se.ID] = se
		if occ.SeriesID != "" {
			s.bySeries[occ.SeriesID] = append(s.bySeries[occ.SeriesID], se.ID)
		}
		stored = append(stored, se)
	}

	s.logger.Debug("stored occurrence batch",
		"count", len(stored))

	return stored, nil
}

func (s *Store) Get(_ context.Context, id string) (*store.StoredEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	se, ok := s.events[id]
	if !ok {
		return nil, &store.Error{
			Type:    store.ErrNotFound,
			Message: "event not found",
		}
	}

	return se, nil
}

func (s *Store) List(_ context.Context, opts *store.ListOptions) ([]*store.StoredEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*store.StoredEvent
	for _, se := range s.events {
		// Apply filters if provided
		if opts != nil {
			if opts.SeriesID != "" && se.SeriesID != opts.SeriesID {
				continue
			}
			if opts.CategoryID != "" && se.CategoryID.OrEmpty() != opts.CategoryID {
				continue
			}
			if opts.Window != nil && !opts.Window.Overlaps(se.StartInstant(), se.EndInstant()) {
				continue
			}
		}

		results = append(results, se)
	}

	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		ai, bi := a.StartInstant(), b.StartInstant()
		if !ai.Equal(bi) {
			return ai.Before(bi)
		}
		if a.SeriesID != b.SeriesID {
			return a.SeriesID < b.SeriesID
		}
		return a.Sequence < b.Sequence
	})

	return results, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	se, ok := s.events[id]
	if !ok {
		return &store.Error{
			Type:    store.ErrNotFound,
			Message: "event not found",
		}
	}

	delete(s.events, id)
	s.dropFromSeries(se.SeriesID, id)

	return nil
}

func (s *Store) DeleteSeries(_ context.Context, seriesID string) (int, error) {
	if seriesID == "" {
		return 0, &store.Error{
			Type:    store.ErrInvalidInput,
			Message: "series id required",
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids, ok := s.bySeries[seriesID]
	if !ok {
		return 0, &store.Error{
			Type:    store.ErrNotFound,
			Message: "series not found",
		}
	}

	for _, id := range ids {
		delete(s.events, id)
	}
	delete(s.bySeries, seriesID)

	s.logger.Info("series deleted",
		"series_id", seriesID,
		"events", len(ids))

	return len(ids), nil
}

func (s *Store) dropFromSeries(seriesID, id string) {
	if seriesID == "" {
		return
	}
	ids := s.bySeries[seriesID]
	for i, existing := range ids {
		if existing == id {
			s.bySeries[seriesID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(s.bySeries[seriesID]) == 0 {
		delete(s.bySeries, seriesID)
	}
}
