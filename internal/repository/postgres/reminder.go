package postgres

import (
	"context"
	"time"

	"github.com/nextstep/nextstep/internal/domain/reminder"
	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/logger"
	"github.com/nextstep/nextstep/internal/postgres"
	"github.com/nextstep/nextstep/internal/types"
)

// ReminderRepository implements reminder.Repository on Postgres. The
// reminder_records table has a unique (tenant_id, subscriber_id, send_day,
// channel) index; the conditional upsert in ClaimSend is what makes
// concurrent workers race-safe: only one of two simultaneous claimants can
// win the key, and a SENT entry is never reclaimed.
type ReminderRepository struct {
	client *postgres.Client
	logger *logger.Logger
}

func NewReminderRepository(client *postgres.Client, logger *logger.Logger) reminder.Repository {
	return &ReminderRepository{client: client, logger: logger}
}

func (r *ReminderRepository) ClaimSend(ctx context.Context, rec *reminder.Record, reclaimBefore time.Time) (bool, error) {
	q := r.client.Querier(ctx)

	// The WHERE clause on the conflict branch is the compare-and-set: the
	// key is reclaimed only from a FAILED entry or from a stale PENDING
	// claim abandoned by a crashed worker. A SENT entry always keeps it.
	res, err := q.ExecContext(ctx, `
		INSERT INTO reminder_records (
			id, tenant_id, subscriber_id, send_day, channel, tier,
			delivery_status, failure_reason, sent_at,
			status, created_at, updated_at, created_by, updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (tenant_id, subscriber_id, send_day, channel)
		DO UPDATE SET
			tier = EXCLUDED.tier,
			delivery_status = EXCLUDED.delivery_status,
			failure_reason = '',
			updated_at = EXCLUDED.updated_at
		WHERE reminder_records.delivery_status = $15
		   OR (reminder_records.delivery_status = $7 AND reminder_records.updated_at < $16)`,
		rec.ID, rec.TenantID, rec.SubscriberID, rec.SendDay, rec.Channel, rec.Tier,
		types.ReminderDeliveryPending, rec.FailureReason, rec.SentAt,
		rec.Status, rec.CreatedAt, rec.UpdatedAt, rec.CreatedBy, rec.UpdatedBy,
		types.ReminderDeliveryFailed, reclaimBefore,
	)
	if err != nil {
		return false, ierr.WithError(err).
			WithHint("Failed to claim dedup ledger key").
			WithReportableDetails(map[string]any{
				"subscriber_id": rec.SubscriberID,
				"channel":       rec.Channel,
			}).
			Mark(ierr.ErrDatabase)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, ierr.WithError(err).
			WithHint("Failed to claim dedup ledger key").
			Mark(ierr.ErrDatabase)
	}
	return affected > 0, nil
}

func (r *ReminderRepository) FinalizeSend(ctx context.Context, key reminder.Key, delivery types.ReminderDeliveryState, failureReason string, sentAt time.Time) error {
	q := r.client.Querier(ctx)

	// Only a PENDING entry resolves; if the claim was meanwhile reclaimed
	// as stale and finalized by another worker, this is a no-op.
	_, err := q.ExecContext(ctx, `
		UPDATE reminder_records
		SET delivery_status = $1, failure_reason = $2, sent_at = $3, updated_at = $4
		WHERE tenant_id = $5 AND subscriber_id = $6 AND send_day = $7 AND channel = $8
		  AND delivery_status = $9`,
		delivery, failureReason, sentAt, time.Now().UTC(),
		types.GetTenantID(ctx), key.SubscriberID, key.SendDay, key.Channel,
		types.ReminderDeliveryPending,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to finalize dispatch outcome").
			WithReportableDetails(map[string]any{
				"subscriber_id": key.SubscriberID,
				"channel":       key.Channel,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *ReminderRepository) ListForDay(ctx context.Context, day time.Time) ([]*reminder.Record, error) {
	q := r.client.Querier(ctx)
	rows, err := q.QueryContext(ctx, `
		SELECT id, tenant_id, subscriber_id, send_day, channel, tier,
		       delivery_status, failure_reason, sent_at,
		       status, created_at, updated_at, created_by, updated_by
		FROM reminder_records
		WHERE tenant_id = $1 AND send_day = $2
		ORDER BY subscriber_id, channel`,
		types.GetTenantID(ctx), day,
	)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list dedup ledger entries").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var result []*reminder.Record
	for rows.Next() {
		var rec reminder.Record
		if err := rows.Scan(
			&rec.ID, &rec.TenantID, &rec.SubscriberID, &rec.SendDay, &rec.Channel, &rec.Tier,
			&rec.Delivery, &rec.FailureReason, &rec.SentAt,
			&rec.Status, &rec.CreatedAt, &rec.UpdatedAt, &rec.CreatedBy, &rec.UpdatedBy,
		); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan dedup ledger row").
				Mark(ierr.ErrDatabase)
		}
		result = append(result, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to iterate dedup ledger rows").
			Mark(ierr.ErrDatabase)
	}
	return result, nil
}
