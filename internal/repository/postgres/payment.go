package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/samber/lo"

	"github.com/nextstep/nextstep/internal/domain/payment"
	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/logger"
	"github.com/nextstep/nextstep/internal/postgres"
	"github.com/nextstep/nextstep/internal/types"
)

const paymentColumns = `
	id, idempotency_key, tenant_id, subscriber_id, amount, mode,
	payment_status, transaction_id, remarks, paid_at,
	status, created_at, updated_at, created_by, updated_by`

// PaymentRepository implements payment.Repository on Postgres. The
// payments table carries a unique (tenant_id, idempotency_key) index that
// backs duplicate-event absorption.
type PaymentRepository struct {
	client *postgres.Client
	logger *logger.Logger
}

func NewPaymentRepository(client *postgres.Client, logger *logger.Logger) payment.Repository {
	return &PaymentRepository{client: client, logger: logger}
}

func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	q := r.client.Querier(ctx)
	_, err := q.ExecContext(ctx, `
		INSERT INTO payments (`+paymentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		p.ID, p.IdempotencyKey, p.TenantID, p.SubscriberID, p.Amount, p.Mode,
		p.PaymentStatus, p.TransactionID, p.Remarks, p.PaidAt,
		p.Status, p.CreatedAt, p.UpdatedAt, p.CreatedBy, p.UpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("A payment with this idempotency key already exists").
				WithReportableDetails(map[string]any{"idempotency_key": p.IdempotencyKey}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create payment").
			WithReportableDetails(map[string]any{"id": p.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *PaymentRepository) Get(ctx context.Context, id string) (*payment.Payment, error) {
	q := r.client.Querier(ctx)
	row := q.QueryRowContext(ctx, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE id = $1 AND tenant_id = $2 AND status = $3`,
		id, types.GetTenantID(ctx), types.StatusPublished,
	)
	return r.scanOne(row, id)
}

func (r *PaymentRepository) GetByIdempotencyKey(ctx context.Context, key string) (*payment.Payment, error) {
	q := r.client.Querier(ctx)
	row := q.QueryRowContext(ctx, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE idempotency_key = $1 AND tenant_id = $2 AND status = $3`,
		key, types.GetTenantID(ctx), types.StatusPublished,
	)
	return r.scanOne(row, key)
}

func (r *PaymentRepository) List(ctx context.Context, filter *payment.Filter) ([]*payment.Payment, error) {
	if filter == nil {
		filter = &payment.Filter{QueryFilter: types.NewDefaultQueryFilter()}
	}

	query := `SELECT ` + paymentColumns + ` FROM payments WHERE tenant_id = $1 AND status = $2`
	args := []any{types.GetTenantID(ctx), types.StatusPublished}

	if len(filter.SubscriberIDs) > 0 {
		args = append(args, pq.Array(filter.SubscriberIDs))
		query += ` AND subscriber_id = ANY($` + itoa(len(args)) + `)`
	}
	if len(filter.Modes) > 0 {
		modes := lo.Map(filter.Modes, func(m types.PaymentMode, _ int) string { return string(m) })
		args = append(args, pq.Array(modes))
		query += ` AND mode = ANY($` + itoa(len(args)) + `)`
	}

	query += ` ORDER BY paid_at DESC`
	if !filter.QueryFilter.IsUnlimited() {
		args = append(args, filter.QueryFilter.GetLimit())
		query += ` LIMIT $` + itoa(len(args))
		args = append(args, filter.QueryFilter.GetOffset())
		query += ` OFFSET $` + itoa(len(args))
	}

	q := r.client.Querier(ctx)
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list payments").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var result []*payment.Payment
	for rows.Next() {
		var p payment.Payment
		if err := scanPayment(rows, &p); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan payment row").
				Mark(ierr.ErrDatabase)
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to iterate payment rows").
			Mark(ierr.ErrDatabase)
	}
	return result, nil
}

func (r *PaymentRepository) scanOne(row *sql.Row, ref string) (*payment.Payment, error) {
	var p payment.Payment
	if err := scanPayment(row, &p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewErrorf("payment %s not found", ref).
				WithHint("Payment not found").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get payment").
			Mark(ierr.ErrDatabase)
	}
	return &p, nil
}

func scanPayment(row rowScanner, p *payment.Payment) error {
	return row.Scan(
		&p.ID, &p.IdempotencyKey, &p.TenantID, &p.SubscriberID, &p.Amount, &p.Mode,
		&p.PaymentStatus, &p.TransactionID, &p.Remarks, &p.PaidAt,
		&p.Status, &p.CreatedAt, &p.UpdatedAt, &p.CreatedBy, &p.UpdatedBy,
	)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// 23505 = unique_violation
		return pqErr.Code == "23505"
	}
	return false
}
