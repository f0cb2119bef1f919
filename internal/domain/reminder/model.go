package reminder

import (
	"time"

	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/types"
)

// Record is one dedup-ledger entry keyed by (subscriber, calendar day,
// channel). A key is claimed as PENDING before the send goes out and
// finalized afterwards; at most one SENT record may ever exist per key.
type Record struct {
	ID            string                      `json:"id"`
	SubscriberID  string                      `json:"subscriber_id"`
	SendDay       time.Time                   `json:"send_day"`
	Channel       types.NotificationChannel   `json:"channel"`
	Tier          types.ReminderTier          `json:"tier"`
	Delivery      types.ReminderDeliveryState `json:"delivery"`
	FailureReason string                      `json:"failure_reason,omitempty"`
	SentAt        time.Time                   `json:"sent_at"`

	types.BaseModel
}

// LedgerKey returns the dedup key of this record.
func (r *Record) LedgerKey() Key {
	return Key{SubscriberID: r.SubscriberID, SendDay: r.SendDay, Channel: r.Channel}
}

// Key identifies a dedup ledger entry.
type Key struct {
	SubscriberID string
	SendDay      time.Time
	Channel      types.NotificationChannel
}

// Validate checks the record's structural invariants.
func (r *Record) Validate() error {
	if r.SubscriberID == "" {
		return ierr.NewError("subscriber_id is required").
			WithHint("Reminder record must reference a subscriber").
			Mark(ierr.ErrValidation)
	}
	if r.SendDay.IsZero() {
		return ierr.NewError("send_day is required").
			WithHint("Reminder record must carry its calendar day").
			Mark(ierr.ErrValidation)
	}
	if r.Channel == "" {
		return ierr.NewError("channel is required").
			WithHint("Reminder record must carry its channel").
			Mark(ierr.ErrValidation)
	}
	return nil
}
