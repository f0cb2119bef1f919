package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/nextstep/nextstep/internal/domain/settings"
	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/logger"
	"github.com/nextstep/nextstep/internal/postgres"
	"github.com/nextstep/nextstep/internal/types"
)

// SettingsRepository implements settings.Repository on Postgres.
type SettingsRepository struct {
	client *postgres.Client
	logger *logger.Logger
}

func NewSettingsRepository(client *postgres.Client, logger *logger.Logger) settings.Repository {
	return &SettingsRepository{client: client, logger: logger}
}

func (r *SettingsRepository) GetConfig(ctx context.Context, key string) (*settings.ReminderConfig, error) {
	q := r.client.Querier(ctx)
	var cfg settings.ReminderConfig
	err := q.QueryRowContext(ctx, `
		SELECT id, tenant_id, key, value, created_at, created_by, updated_at, updated_by, status
		FROM reminder_configs
		WHERE tenant_id = $1 AND key = $2 AND status = $3`,
		types.GetTenantID(ctx), key, types.StatusPublished,
	).Scan(
		&cfg.ID, &cfg.TenantID, &cfg.Key, &cfg.Value,
		&cfg.CreatedAt, &cfg.CreatedBy, &cfg.UpdatedAt, &cfg.UpdatedBy, &cfg.Status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewErrorf("reminder config %s not found", key).
				WithHint("Tenant has no override for this configuration key").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to read reminder config").
			Mark(ierr.ErrDatabase)
	}
	return &cfg, nil
}

func (r *SettingsRepository) SetConfig(ctx context.Context, cfg *settings.ReminderConfig) error {
	q := r.client.Querier(ctx)
	_, err := q.ExecContext(ctx, `
		INSERT INTO reminder_configs (
			id, tenant_id, key, value, created_at, created_by, updated_at, updated_by, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (tenant_id, key)
		DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at,
			updated_by = EXCLUDED.updated_by`,
		cfg.ID, cfg.TenantID, cfg.Key, cfg.Value,
		cfg.CreatedAt, cfg.CreatedBy, cfg.UpdatedAt, cfg.UpdatedBy, cfg.Status,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to write reminder config").
			WithReportableDetails(map[string]any{"key": cfg.Key}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *SettingsRepository) CreateConfigAudit(ctx context.Context, audit *settings.ReminderConfigAudit) error {
	q := r.client.Querier(ctx)
	_, err := q.ExecContext(ctx, `
		INSERT INTO reminder_config_audits (
			id, tenant_id, config_id, key, previous_value, new_value, changed_at, changed_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		audit.ID, audit.TenantID, audit.ConfigID, audit.Key,
		audit.PreviousValue, audit.NewValue, audit.ChangedAt, audit.ChangedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to write reminder config audit").
			Mark(ierr.ErrDatabase)
	}
	return nil
}
