package attendance

import (
	"context"
	"time"

	"github.com/nextstep/nextstep/internal/types"
)

// Filter defines query parameters for listing attendance entries.
type Filter struct {
	QueryFilter *types.QueryFilter

	SubscriberIDs []string
	Day           *time.Time
}

// Repository is the persistence contract for attendance entries,
// tenant-scoped via context.
type Repository interface {
	// Create persists the entry. When a row already exists for the
	// subscriber on the same day it returns an ErrAlreadyExists-marked
	// error and writes nothing.
	Create(ctx context.Context, e *Entry) error

	Get(ctx context.Context, id string) (*Entry, error)

	// Update persists a check-out on an existing entry.
	Update(ctx context.Context, e *Entry) error

	// List returns entries newest-first by day then check-in.
	List(ctx context.Context, filter *Filter) ([]*Entry, error)
}
