package types

const (
	HeaderTenantID   = "X-Tenant-ID"
	HeaderUserID     = "X-User-ID"
	HeaderRequestID  = "X-Request-ID"
	HeaderCronSecret = "x-cron-secret"
)
