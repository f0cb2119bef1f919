package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/samber/lo"

	"github.com/nextstep/nextstep/internal/domain/subscriber"
	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/logger"
	"github.com/nextstep/nextstep/internal/postgres"
	"github.com/nextstep/nextstep/internal/types"
)

const subscriberColumns = `
	id, tenant_id, name, email, phone, plan, start_date, expiry_date,
	subscription_status, fees_paid, pending_fees, version,
	status, created_at, updated_at, created_by, updated_by`

// SubscriberRepository implements subscriber.Repository on Postgres.
type SubscriberRepository struct {
	client *postgres.Client
	logger *logger.Logger
}

func NewSubscriberRepository(client *postgres.Client, logger *logger.Logger) subscriber.Repository {
	return &SubscriberRepository{client: client, logger: logger}
}

func (r *SubscriberRepository) Create(ctx context.Context, s *subscriber.Subscriber) error {
	q := r.client.Querier(ctx)
	_, err := q.ExecContext(ctx, `
		INSERT INTO subscribers (`+subscriberColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		s.ID, s.TenantID, s.Name, s.Email, s.Phone, s.Plan, s.StartDate, s.ExpiryDate,
		s.SubStatus, s.FeesPaid, s.PendingFees, s.Version,
		s.Status, s.CreatedAt, s.UpdatedAt, s.CreatedBy, s.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create subscriber").
			WithReportableDetails(map[string]any{"id": s.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *SubscriberRepository) Get(ctx context.Context, id string) (*subscriber.Subscriber, error) {
	q := r.client.Querier(ctx)
	row := q.QueryRowContext(ctx, `
		SELECT `+subscriberColumns+`
		FROM subscribers
		WHERE id = $1 AND tenant_id = $2 AND status = $3`,
		id, types.GetTenantID(ctx), types.StatusPublished,
	)

	s, err := scanSubscriber(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewErrorf("subscriber %s not found", id).
				WithHint("Subscriber not found").
				WithReportableDetails(map[string]any{"id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get subscriber").
			Mark(ierr.ErrDatabase)
	}
	return s, nil
}

func (r *SubscriberRepository) List(ctx context.Context, filter *subscriber.Filter) ([]*subscriber.Subscriber, error) {
	if filter == nil {
		filter = &subscriber.Filter{QueryFilter: types.NewDefaultQueryFilter()}
	}

	query := `SELECT ` + subscriberColumns + ` FROM subscribers WHERE tenant_id = $1 AND status = $2`
	args := []any{types.GetTenantID(ctx), types.StatusPublished}

	if len(filter.SubscriberIDs) > 0 {
		args = append(args, pq.Array(filter.SubscriberIDs))
		query += ` AND id = ANY($` + itoa(len(args)) + `)`
	}
	if len(filter.Plans) > 0 {
		plans := lo.Map(filter.Plans, func(p types.PlanType, _ int) string { return string(p) })
		args = append(args, pq.Array(plans))
		query += ` AND plan = ANY($` + itoa(len(args)) + `)`
	}
	if filter.SubStatus != nil {
		args = append(args, *filter.SubStatus)
		query += ` AND subscription_status = $` + itoa(len(args))
	}
	if filter.ExpiryBefore != nil {
		args = append(args, *filter.ExpiryBefore)
		query += ` AND expiry_date < $` + itoa(len(args))
	}
	if filter.ExpiryAfter != nil {
		args = append(args, *filter.ExpiryAfter)
		query += ` AND expiry_date > $` + itoa(len(args))
	}

	query += ` ORDER BY created_at DESC`
	if !filter.QueryFilter.IsUnlimited() {
		args = append(args, filter.QueryFilter.GetLimit())
		query += ` LIMIT $` + itoa(len(args))
		args = append(args, filter.QueryFilter.GetOffset())
		query += ` OFFSET $` + itoa(len(args))
	}

	return r.queryMany(ctx, query, args...)
}

func (r *SubscriberRepository) Update(ctx context.Context, s *subscriber.Subscriber) error {
	q := r.client.Querier(ctx)
	res, err := q.ExecContext(ctx, `
		UPDATE subscribers SET
			name = $1, email = $2, phone = $3, plan = $4,
			start_date = $5, expiry_date = $6, subscription_status = $7,
			fees_paid = $8, pending_fees = $9, version = version + 1,
			updated_at = $10, updated_by = $11
		WHERE id = $12 AND tenant_id = $13 AND version = $14 AND status = $15`,
		s.Name, s.Email, s.Phone, s.Plan,
		s.StartDate, s.ExpiryDate, s.SubStatus,
		s.FeesPaid, s.PendingFees,
		time.Now().UTC(), types.GetUserID(ctx),
		s.ID, s.TenantID, s.Version, types.StatusPublished,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update subscriber").
			WithReportableDetails(map[string]any{"id": s.ID}).
			Mark(ierr.ErrDatabase)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update subscriber").
			Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		return ierr.NewErrorf("subscriber %s was modified concurrently", s.ID).
			WithHint("The record changed underneath this write, retry the operation").
			WithReportableDetails(map[string]any{"id": s.ID, "version": s.Version}).
			Mark(ierr.ErrVersionConflict)
	}

	s.Version++
	return nil
}

func (r *SubscriberRepository) ListDueForSweep(ctx context.Context, window subscriber.SweepWindow) ([]*subscriber.Subscriber, error) {
	return r.queryMany(ctx, `
		SELECT `+subscriberColumns+`
		FROM subscribers
		WHERE tenant_id = $1 AND status = $2
		  AND expiry_date >= $3 AND expiry_date < $4
		ORDER BY expiry_date ASC`,
		types.GetTenantID(ctx), types.StatusPublished,
		window.From, window.To.AddDate(0, 0, 1),
	)
}

func (r *SubscriberRepository) MarkExpiredBefore(ctx context.Context, day time.Time) (int, error) {
	q := r.client.Querier(ctx)
	res, err := q.ExecContext(ctx, `
		UPDATE subscribers SET
			subscription_status = $1, version = version + 1, updated_at = $2
		WHERE tenant_id = $3 AND status = $4
		  AND subscription_status = $5 AND expiry_date < $6`,
		types.SubscriptionStatusExpired, time.Now().UTC(),
		types.GetTenantID(ctx), types.StatusPublished,
		types.SubscriptionStatusActive, day,
	)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to expire subscribers").
			Mark(ierr.ErrDatabase)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to expire subscribers").
			Mark(ierr.ErrDatabase)
	}
	return int(affected), nil
}

func (r *SubscriberRepository) Delete(ctx context.Context, id string) error {
	q := r.client.Querier(ctx)
	res, err := q.ExecContext(ctx, `
		UPDATE subscribers SET status = $1, updated_at = $2, updated_by = $3
		WHERE id = $4 AND tenant_id = $5 AND status = $6`,
		types.StatusDeleted, time.Now().UTC(), types.GetUserID(ctx),
		id, types.GetTenantID(ctx), types.StatusPublished,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete subscriber").
			Mark(ierr.ErrDatabase)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ierr.NewErrorf("subscriber %s not found", id).
			WithHint("Subscriber not found").
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *SubscriberRepository) queryMany(ctx context.Context, query string, args ...any) ([]*subscriber.Subscriber, error) {
	q := r.client.Querier(ctx)
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list subscribers").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var result []*subscriber.Subscriber
	for rows.Next() {
		s, err := scanSubscriber(rows)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan subscriber row").
				Mark(ierr.ErrDatabase)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to iterate subscriber rows").
			Mark(ierr.ErrDatabase)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscriber(row rowScanner) (*subscriber.Subscriber, error) {
	var s subscriber.Subscriber
	err := row.Scan(
		&s.ID, &s.TenantID, &s.Name, &s.Email, &s.Phone, &s.Plan, &s.StartDate, &s.ExpiryDate,
		&s.SubStatus, &s.FeesPaid, &s.PendingFees, &s.Version,
		&s.Status, &s.CreatedAt, &s.UpdatedAt, &s.CreatedBy, &s.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
