package types

import (
	"context"
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Status is the soft-delete / visibility status every record carries.
type Status string

const (
	StatusPublished Status = "published"
	StatusDeleted   Status = "deleted"
	StatusArchived  Status = "archived"
)

// UUID prefixes keep identifiers self-describing in logs and payloads.
const (
	UUID_PREFIX_SUBSCRIBER      = "subs"
	UUID_PREFIX_PAYMENT         = "pay"
	UUID_PREFIX_REMINDER_RECORD = "remr"
	UUID_PREFIX_ATTENDANCE      = "att"
	UUID_PREFIX_SETTINGS        = "cfg"
	UUID_PREFIX_REQUEST         = "req"
)

// BaseModel carries the audit and tenancy columns shared by every entity.
type BaseModel struct {
	TenantID  string    `json:"tenant_id"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy string    `json:"created_by,omitempty"`
	UpdatedBy string    `json:"updated_by,omitempty"`
}

// GetDefaultBaseModel returns a BaseModel stamped from the request context.
func GetDefaultBaseModel(ctx context.Context) BaseModel {
	now := time.Now().UTC()
	return BaseModel{
		TenantID:  GetTenantID(ctx),
		Status:    StatusPublished,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: GetUserID(ctx),
		UpdatedBy: GetUserID(ctx),
	}
}

// GenerateUUID returns a lowercase ULID. ULIDs sort by creation time which
// keeps index pages hot for append-heavy tables.
func GenerateUUID() string {
	return strings.ToLower(ulid.MustNew(ulid.Timestamp(time.Now().UTC()), rand.Reader).String())
}

// GenerateUUIDWithPrefix returns an id of the form "<prefix>_<ulid>".
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return prefix + "_" + GenerateUUID()
}
