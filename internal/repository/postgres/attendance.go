package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/nextstep/nextstep/internal/domain/attendance"
	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/logger"
	"github.com/nextstep/nextstep/internal/postgres"
	"github.com/nextstep/nextstep/internal/types"
)

const attendanceColumns = `
	id, tenant_id, subscriber_id, day, check_in, check_out, source,
	status, created_at, updated_at, created_by, updated_by`

// AttendanceRepository implements attendance.Repository on Postgres. The
// attendance table carries a unique (tenant_id, subscriber_id, day) index
// that makes double check-ins for the same day a conflict.
type AttendanceRepository struct {
	client *postgres.Client
	logger *logger.Logger
}

func NewAttendanceRepository(client *postgres.Client, logger *logger.Logger) attendance.Repository {
	return &AttendanceRepository{client: client, logger: logger}
}

func (r *AttendanceRepository) Create(ctx context.Context, e *attendance.Entry) error {
	q := r.client.Querier(ctx)
	_, err := q.ExecContext(ctx, `
		INSERT INTO attendance (`+attendanceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		e.ID, e.TenantID, e.SubscriberID, e.Day, e.CheckIn, e.CheckOut, e.Source,
		e.Status, e.CreatedAt, e.UpdatedAt, e.CreatedBy, e.UpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("Attendance is already marked for this subscriber today").
				WithReportableDetails(map[string]any{"subscriber_id": e.SubscriberID}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create attendance entry").
			WithReportableDetails(map[string]any{"id": e.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *AttendanceRepository) Get(ctx context.Context, id string) (*attendance.Entry, error) {
	q := r.client.Querier(ctx)
	row := q.QueryRowContext(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendance
		WHERE id = $1 AND tenant_id = $2 AND status = $3`,
		id, types.GetTenantID(ctx), types.StatusPublished,
	)

	e, err := scanAttendance(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewErrorf("attendance entry %s not found", id).
				WithHint("Attendance entry not found").
				WithReportableDetails(map[string]any{"id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get attendance entry").
			Mark(ierr.ErrDatabase)
	}
	return e, nil
}

func (r *AttendanceRepository) Update(ctx context.Context, e *attendance.Entry) error {
	q := r.client.Querier(ctx)
	res, err := q.ExecContext(ctx, `
		UPDATE attendance SET check_out = $1, updated_at = $2, updated_by = $3
		WHERE id = $4 AND tenant_id = $5 AND status = $6`,
		e.CheckOut, time.Now().UTC(), types.GetUserID(ctx),
		e.ID, e.TenantID, types.StatusPublished,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update attendance entry").
			WithReportableDetails(map[string]any{"id": e.ID}).
			Mark(ierr.ErrDatabase)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ierr.NewErrorf("attendance entry %s not found", e.ID).
			WithHint("Attendance entry not found").
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *AttendanceRepository) List(ctx context.Context, filter *attendance.Filter) ([]*attendance.Entry, error) {
	if filter == nil {
		filter = &attendance.Filter{QueryFilter: types.NewDefaultQueryFilter()}
	}

	query := `SELECT ` + attendanceColumns + ` FROM attendance WHERE tenant_id = $1 AND status = $2`
	args := []any{types.GetTenantID(ctx), types.StatusPublished}

	if len(filter.SubscriberIDs) > 0 {
		args = append(args, pq.Array(filter.SubscriberIDs))
		query += ` AND subscriber_id = ANY($` + itoa(len(args)) + `)`
	}
	if filter.Day != nil {
		args = append(args, *filter.Day)
		query += ` AND day = $` + itoa(len(args))
	}

	query += ` ORDER BY day DESC, check_in DESC`
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
			WithHint("Failed to list attendance entries").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var result []*attendance.Entry
	for rows.Next() {
		e, err := scanAttendance(rows)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan attendance row").
				Mark(ierr.ErrDatabase)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to iterate attendance rows").
			Mark(ierr.ErrDatabase)
	}
	return result, nil
}

func scanAttendance(row rowScanner) (*attendance.Entry, error) {
	var e attendance.Entry
	err := row.Scan(
		&e.ID, &e.TenantID, &e.SubscriberID, &e.Day, &e.CheckIn, &e.CheckOut, &e.Source,
		&e.Status, &e.CreatedAt, &e.UpdatedAt, &e.CreatedBy, &e.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
