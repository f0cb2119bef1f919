package settings

import (
	"time"
)

// ReminderConfig is one per-tenant reminder configuration row, stored as a
// string key/value pair.
type ReminderConfig struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by"`
	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy string    `json:"updated_by"`
	Status    string    `json:"status"`
}

// ReminderConfigAudit is an audit log entry for a configuration change.
type ReminderConfigAudit struct {
	ID            string    `json:"id"`
	TenantID      string    `json:"tenant_id"`
	ConfigID      string    `json:"config_id"`
	Key           string    `json:"key"`
	PreviousValue string    `json:"previous_value"`
	NewValue      string    `json:"new_value"`
	ChangedAt     time.Time `json:"changed_at"`
	ChangedBy     string    `json:"changed_by"`
}

const (
	// Configuration keys
	ConfigKeyThresholdDays = "reminder_threshold_days" // comma-separated ints, e.g. "3,1,0,-1"
	ConfigKeyDayTimezone   = "day_boundary_timezone"   // IANA name, e.g. "Asia/Kolkata"

	// Default values
	DefaultDayTimezone = "UTC"
)
