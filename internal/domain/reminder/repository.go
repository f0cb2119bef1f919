package reminder

import (
	"context"
	"time"

	"github.com/nextstep/nextstep/internal/types"
)

// Repository is the dedup-ledger persistence contract, tenant-scoped via
// context. Implementations must make ClaimSend atomic per key so two
// concurrent workers can never both hold a claim for the same
// (subscriber, day, channel).
type Repository interface {
	// ClaimSend attempts to claim the record's key for a send attempt by
	// upserting a PENDING entry. The claim succeeds when no entry exists,
	// when the existing entry is FAILED, or when it is PENDING but stale
	// (updated before reclaimBefore, taken as an abandoned claim). Returns
	// false when another worker holds the key or it is already SENT.
	ClaimSend(ctx context.Context, r *Record, reclaimBefore time.Time) (bool, error)

	// FinalizeSend resolves a claimed key to SENT or FAILED. Only a PENDING
	// entry is finalized; a lost claim makes this a no-op.
	FinalizeSend(ctx context.Context, key Key, delivery types.ReminderDeliveryState, failureReason string, sentAt time.Time) error

	// ListForDay returns all ledger entries for the given calendar day.
	ListForDay(ctx context.Context, day time.Time) ([]*Record, error)
}
