package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nextstep/nextstep/internal/domain/reminder"
	"github.com/nextstep/nextstep/internal/types"
)

// InMemoryReminderStore implements reminder.Repository with the same
// per-key claim-then-finalize semantics as the SQL dedup ledger.
type InMemoryReminderStore struct {
	mu      sync.Mutex
	records map[string]*reminder.Record
}

// NewInMemoryReminderStore creates a new in-memory reminder store
func NewInMemoryReminderStore() *InMemoryReminderStore {
	return &InMemoryReminderStore{
		records: make(map[string]*reminder.Record),
	}
}

func reminderKey(tenantID string, key reminder.Key) string {
	return fmt.Sprintf("%s:%s:%s:%s",
		tenantID,
		key.SubscriberID,
		key.SendDay.Format("2006-01-02"),
		key.Channel,
	)
}

func copyRecord(r *reminder.Record) *reminder.Record {
	if r == nil {
		return nil
	}
	copied := *r
	return &copied
}

func (s *InMemoryReminderStore) ClaimSend(ctx context.Context, r *reminder.Record, reclaimBefore time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := r.Validate(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := reminderKey(types.GetTenantID(ctx), r.LedgerKey())
	if existing, exists := s.records[k]; exists {
		switch existing.Delivery {
		case types.ReminderDeliverySent:
			return false, nil
		case types.ReminderDeliveryPending:
			// A live claim held by another worker keeps the key; a
			// stale one is taken over as abandoned.
			if !existing.UpdatedAt.Before(reclaimBefore) {
				return false, nil
			}
		}
	}

	claimed := copyRecord(r)
	claimed.Delivery = types.ReminderDeliveryPending
	claimed.FailureReason = ""
	s.records[k] = claimed
	return true, nil
}

func (s *InMemoryReminderStore) FinalizeSend(ctx context.Context, key reminder.Key, delivery types.ReminderDeliveryState, failureReason string, sentAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := reminderKey(types.GetTenantID(ctx), key)
	existing, exists := s.records[k]
	if !exists || existing.Delivery != types.ReminderDeliveryPending {
		return nil
	}
	existing.Delivery = delivery
	existing.FailureReason = failureReason
	existing.SentAt = sentAt
	existing.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *InMemoryReminderStore) ListForDay(ctx context.Context, day time.Time) ([]*reminder.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dayStr := day.Format("2006-01-02")
	result := make([]*reminder.Record, 0)
	for _, r := range s.records {
		if r.TenantID == types.GetTenantID(ctx) && r.SendDay.Format("2006-01-02") == dayStr {
			result = append(result, copyRecord(r))
		}
	}
	return result, nil
}

// Clear removes every record, used between tests.
func (s *InMemoryReminderStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]*reminder.Record)
}
