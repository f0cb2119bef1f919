package settings

import "context"

// Repository is the persistence contract for tenant reminder configuration,
// tenant-scoped via context.
type Repository interface {
	// GetConfig returns the config row for the key, or an ErrNotFound-marked
	// error when the tenant has no override.
	GetConfig(ctx context.Context, key string) (*ReminderConfig, error)

	// SetConfig creates or replaces the config row for its key.
	SetConfig(ctx context.Context, config *ReminderConfig) error

	// CreateConfigAudit appends an audit entry for a config change.
	CreateConfigAudit(ctx context.Context, audit *ReminderConfigAudit) error
}
