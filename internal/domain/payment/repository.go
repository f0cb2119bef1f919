package payment

import (
	"context"

	"github.com/nextstep/nextstep/internal/types"
)

// Filter defines query parameters for listing payments.
type Filter struct {
	QueryFilter *types.QueryFilter

	SubscriberIDs []string
	Modes         []types.PaymentMode
}

// Repository is the persistence contract for payment records, tenant-scoped
// via context.
type Repository interface {
	// Create persists the payment. When a row with the same idempotency key
	// already exists for the tenant it returns an ErrAlreadyExists-marked
	// error and writes nothing.
	Create(ctx context.Context, p *Payment) error

	Get(ctx context.Context, id string) (*Payment, error)

	// GetByIdempotencyKey returns the previously recorded payment for the
	// key, or an ErrNotFound-marked error.
	GetByIdempotencyKey(ctx context.Context, key string) (*Payment, error)

	// List returns payments newest-first by paid_at.
	List(ctx context.Context, filter *Filter) ([]*Payment, error)
}
