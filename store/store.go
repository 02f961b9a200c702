package store

import (
	"context"
	"fmt"
	"time"

	"github.com/halcyde/librecur/event"
	"github.com/halcyde/librecur/window"
)

// Error types
type ErrorType string

const (
	ErrNotFound      ErrorType = "not_found"
	ErrAlreadyExists ErrorType = "already_exists"
	ErrInvalidInput  ErrorType = "invalid_input"
)

// Error represents a storage-related error
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// StoredEvent is a persisted occurrence with its storage identity
type StoredEvent struct {
	ID string
	event.Occurrence
	Created  time.Time
	Modified time.Time
}

// ListOptions provides filters for listing stored events
type ListOptions struct {
	// Visible time range filter
	Window *window.Range

	// Restrict to one expansion series
	SeriesID string

	// Restrict to one category
	CategoryID string
}

// Store is the interface that must be implemented by event storage backends
type Store interface {
	// Put persists a batch of occurrences and assigns their IDs
	Put(ctx context.Context, occurrences []event.Occurrence) ([]*StoredEvent, error)

	// Get returns the stored event with the given ID
	Get(ctx context.Context, id string) (*StoredEvent, error)

	// List returns stored events matching opts, ordered by start
	// instant and then by sequence within a series
	List(ctx context.Context, opts *ListOptions) ([]*StoredEvent, error)

	// Delete removes a single stored event
	Delete(ctx context.Context, id string) error

	// DeleteSeries removes every event of a series and reports how
	// many were removed
	DeleteSeries(ctx context.Context, seriesID string) (int, error)
}
