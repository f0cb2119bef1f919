package subscriber

import (
	"context"
	"time"

	"github.com/nextstep/nextstep/internal/types"
)

// SweepWindow bounds the expiry dates the sweep loads, [From, To] inclusive
// at day granularity.
type SweepWindow struct {
	From time.Time
	To   time.Time
}

// Filter defines query parameters for listing subscribers.
type Filter struct {
	QueryFilter *types.QueryFilter

	SubscriberIDs []string
	Plans         []types.PlanType
	SubStatus     *types.SubscriptionStatus
	ExpiryBefore  *time.Time
	ExpiryAfter   *time.Time
}

// Repository is the persistence contract for subscribers. Every operation is
// scoped to the tenant carried by the context; implementations must never
// return another tenant's rows.
type Repository interface {
	Create(ctx context.Context, s *Subscriber) error
	Get(ctx context.Context, id string) (*Subscriber, error)
	List(ctx context.Context, filter *Filter) ([]*Subscriber, error)

	// Update persists the subscriber using optimistic versioning: the write
	// succeeds only when the stored version matches s.Version, and bumps it.
	Update(ctx context.Context, s *Subscriber) error

	// ListDueForSweep returns subscribers whose expiry date falls inside the
	// window, snapshot-consistent per record.
	ListDueForSweep(ctx context.Context, window SweepWindow) ([]*Subscriber, error)

	// MarkExpiredBefore transitions every ACTIVE subscriber with an expiry
	// day strictly before the given day to EXPIRED, returning the count.
	MarkExpiredBefore(ctx context.Context, day time.Time) (int, error)

	Delete(ctx context.Context, id string) error
}
