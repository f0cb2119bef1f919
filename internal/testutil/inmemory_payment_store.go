package testutil

import (
	"context"

	"github.com/samber/lo"

	"github.com/nextstep/nextstep/internal/domain/payment"
	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/types"
)

// InMemoryPaymentStore implements payment.Repository
type InMemoryPaymentStore struct {
	*InMemoryStore[*payment.Payment]
}

// NewInMemoryPaymentStore creates a new in-memory payment store
func NewInMemoryPaymentStore() *InMemoryPaymentStore {
	return &InMemoryPaymentStore{
		InMemoryStore: NewInMemoryStore[*payment.Payment](),
	}
}

func copyPayment(p *payment.Payment) *payment.Payment {
	if p == nil {
		return nil
	}
	copied := *p
	return &copied
}

func (s *InMemoryPaymentStore) Create(ctx context.Context, p *payment.Payment) error {
	if p == nil {
		return ierr.NewError("payment cannot be nil").
			WithHint("Payment cannot be nil").
			Mark(ierr.ErrValidation)
	}

	// Enforce the unique idempotency key the SQL schema guarantees.
	if existing, err := s.GetByIdempotencyKey(ctx, p.IdempotencyKey); err == nil && existing != nil {
		return ierr.NewError("payment already recorded").
			WithHint("A payment with this idempotency key already exists").
			WithReportableDetails(map[string]any{"idempotency_key": p.IdempotencyKey}).
			Mark(ierr.ErrAlreadyExists)
	}
	return s.InMemoryStore.Create(ctx, p.ID, copyPayment(p))
}

func (s *InMemoryPaymentStore) Get(ctx context.Context, id string) (*payment.Payment, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || p.TenantID != types.GetTenantID(ctx) {
		return nil, ierr.NewError("payment not found").
			WithHint("Payment not found").
			WithReportableDetails(map[string]any{"id": id}).
			Mark(ierr.ErrNotFound)
	}
	return copyPayment(p), nil
}

func (s *InMemoryPaymentStore) GetByIdempotencyKey(ctx context.Context, key string) (*payment.Payment, error) {
	matches, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, p *payment.Payment, _ interface{}) bool {
		return p.TenantID == types.GetTenantID(ctx) && p.IdempotencyKey == key
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ierr.NewError("payment not found").
			WithHint("No payment recorded for this idempotency key").
			WithReportableDetails(map[string]any{"idempotency_key": key}).
			Mark(ierr.ErrNotFound)
	}
	return copyPayment(matches[0]), nil
}

func (s *InMemoryPaymentStore) List(ctx context.Context, filter *payment.Filter) ([]*payment.Payment, error) {
	if filter == nil {
		filter = &payment.Filter{QueryFilter: types.NewDefaultQueryFilter()}
	}

	payments, err := s.InMemoryStore.List(ctx, filter, paymentFilterFn, paymentSortFn)
	if err != nil {
		return nil, err
	}

	result := lo.Map(payments, func(p *payment.Payment, _ int) *payment.Payment {
		return copyPayment(p)
	})

	if filter.QueryFilter != nil && !filter.QueryFilter.IsUnlimited() {
		offset := filter.QueryFilter.GetOffset()
		limit := filter.QueryFilter.GetLimit()
		if offset >= len(result) {
			return []*payment.Payment{}, nil
		}
		end := offset + limit
		if end > len(result) {
			end = len(result)
		}
		result = result[offset:end]
	}
	return result, nil
}

func paymentFilterFn(ctx context.Context, p *payment.Payment, filter interface{}) bool {
	if p == nil || p.TenantID != types.GetTenantID(ctx) {
		return false
	}

	f, ok := filter.(*payment.Filter)
	if !ok || f == nil {
		return true
	}
	if len(f.SubscriberIDs) > 0 && !lo.Contains(f.SubscriberIDs, p.SubscriberID) {
		return false
	}
	if len(f.Modes) > 0 && !lo.Contains(f.Modes, p.Mode) {
		return false
	}
	return true
}

// Newest first by paid_at, matching the SQL repository ordering.
func paymentSortFn(a, b *payment.Payment) bool {
	return a.PaidAt.After(b.PaidAt)
}
