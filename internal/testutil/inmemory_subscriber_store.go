package testutil

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/nextstep/nextstep/internal/domain/subscriber"
	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/types"
)

// InMemorySubscriberStore implements subscriber.Repository
type InMemorySubscriberStore struct {
	*InMemoryStore[*subscriber.Subscriber]
}

// NewInMemorySubscriberStore creates a new in-memory subscriber store
func NewInMemorySubscriberStore() *InMemorySubscriberStore {
	return &InMemorySubscriberStore{
		InMemoryStore: NewInMemoryStore[*subscriber.Subscriber](),
	}
}

func copySubscriber(s *subscriber.Subscriber) *subscriber.Subscriber {
	if s == nil {
		return nil
	}
	copied := *s
	return &copied
}

func (s *InMemorySubscriberStore) Create(ctx context.Context, sub *subscriber.Subscriber) error {
	if sub == nil {
		return ierr.NewError("subscriber cannot be nil").
			WithHint("Subscriber cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, sub.ID, copySubscriber(sub))
}

func (s *InMemorySubscriberStore) Get(ctx context.Context, id string) (*subscriber.Subscriber, error) {
	sub, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("subscriber not found").
			WithHint("Subscriber not found").
			WithReportableDetails(map[string]any{"id": id}).
			Mark(ierr.ErrNotFound)
	}
	if sub.TenantID != types.GetTenantID(ctx) {
		return nil, ierr.NewError("subscriber not found").
			WithHint("Subscriber not found").
			WithReportableDetails(map[string]any{"id": id}).
			Mark(ierr.ErrNotFound)
	}
	return copySubscriber(sub), nil
}

func (s *InMemorySubscriberStore) List(ctx context.Context, filter *subscriber.Filter) ([]*subscriber.Subscriber, error) {
	if filter == nil {
		filter = &subscriber.Filter{QueryFilter: types.NewDefaultQueryFilter()}
	}

	subs, err := s.InMemoryStore.List(ctx, filter, subscriberFilterFn, subscriberSortFn)
	if err != nil {
		return nil, err
	}

	result := lo.Map(subs, func(sub *subscriber.Subscriber, _ int) *subscriber.Subscriber {
		return copySubscriber(sub)
	})

	if filter.QueryFilter != nil && !filter.QueryFilter.IsUnlimited() {
		offset := filter.QueryFilter.GetOffset()
		limit := filter.QueryFilter.GetLimit()
		if offset >= len(result) {
			return []*subscriber.Subscriber{}, nil
		}
		end := offset + limit
		if end > len(result) {
			end = len(result)
		}
		result = result[offset:end]
	}
	return result, nil
}

// Update enforces the same optimistic versioning as the SQL repository.
func (s *InMemorySubscriberStore) Update(ctx context.Context, sub *subscriber.Subscriber) error {
	if sub == nil {
		return ierr.NewError("subscriber cannot be nil").
			WithHint("Subscriber cannot be nil").
			Mark(ierr.ErrValidation)
	}

	existing, err := s.Get(ctx, sub.ID)
	if err != nil {
		return err
	}
	if existing.Version != sub.Version {
		return ierr.NewError("subscriber was modified concurrently").
			WithHint("The subscriber was updated by another request, retry with fresh data").
			WithReportableDetails(map[string]any{
				"id":               sub.ID,
				"expected_version": sub.Version,
			}).
			Mark(ierr.ErrVersionConflict)
	}

	sub.Version++
	sub.UpdatedAt = time.Now().UTC()
	return s.InMemoryStore.Update(ctx, sub.ID, copySubscriber(sub))
}

func (s *InMemorySubscriberStore) ListDueForSweep(ctx context.Context, window subscriber.SweepWindow) ([]*subscriber.Subscriber, error) {
	all, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, sub *subscriber.Subscriber, _ interface{}) bool {
		if sub.TenantID != types.GetTenantID(ctx) || sub.Status != types.StatusPublished {
			return false
		}
		day := sub.ExpiryDate.Truncate(24 * time.Hour)
		return !day.Before(window.From) && !day.After(window.To)
	}, subscriberSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(all, func(sub *subscriber.Subscriber, _ int) *subscriber.Subscriber {
		return copySubscriber(sub)
	}), nil
}

func (s *InMemorySubscriberStore) MarkExpiredBefore(ctx context.Context, day time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for id, sub := range s.items {
		if sub.TenantID != types.GetTenantID(ctx) || sub.Status != types.StatusPublished {
			continue
		}
		if sub.SubStatus == types.SubscriptionStatusActive && sub.ExpiryDate.Before(day) {
			updated := copySubscriber(sub)
			updated.SubStatus = types.SubscriptionStatusExpired
			updated.Version++
			updated.UpdatedAt = time.Now().UTC()
			s.items[id] = updated
			count++
		}
	}
	return count, nil
}

func (s *InMemorySubscriberStore) Delete(ctx context.Context, id string) error {
	sub, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	sub.Status = types.StatusDeleted
	sub.UpdatedAt = time.Now().UTC()
	return s.InMemoryStore.Update(ctx, id, sub)
}

func subscriberFilterFn(ctx context.Context, sub *subscriber.Subscriber, filter interface{}) bool {
	if sub == nil {
		return false
	}
	if sub.TenantID != types.GetTenantID(ctx) {
		return false
	}

	f, ok := filter.(*subscriber.Filter)
	if !ok || f == nil {
		return sub.Status == types.StatusPublished
	}

	status := types.StatusPublished
	if f.QueryFilter != nil && f.QueryFilter.Status != nil {
		status = *f.QueryFilter.Status
	}
	if sub.Status != status {
		return false
	}

	if len(f.SubscriberIDs) > 0 && !lo.Contains(f.SubscriberIDs, sub.ID) {
		return false
	}
	if len(f.Plans) > 0 && !lo.Contains(f.Plans, sub.Plan) {
		return false
	}
	if f.SubStatus != nil && sub.SubStatus != *f.SubStatus {
		return false
	}
	if f.ExpiryBefore != nil && !sub.ExpiryDate.Before(*f.ExpiryBefore) {
		return false
	}
	if f.ExpiryAfter != nil && !sub.ExpiryDate.After(*f.ExpiryAfter) {
		return false
	}
	return true
}

func subscriberSortFn(a, b *subscriber.Subscriber) bool {
	return a.CreatedAt.After(b.CreatedAt)
}
