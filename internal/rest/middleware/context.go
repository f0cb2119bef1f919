package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/nextstep/nextstep/internal/types"
)

// ContextMiddleware propagates the tenant, user and request id from headers
// into the request context. A missing tenant falls back to the default
// tenant, a missing request id gets generated.
func ContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		tenantID := c.GetHeader(types.HeaderTenantID)
		if tenantID == "" {
			tenantID = types.DefaultTenantID
		}
		ctx = types.SetTenantID(ctx, tenantID)

		if userID := c.GetHeader(types.HeaderUserID); userID != "" {
			ctx = types.SetUserID(ctx, userID)
		}

		requestID := c.GetHeader(types.HeaderRequestID)
		if requestID == "" {
			requestID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REQUEST)
		}
		ctx = types.SetRequestID(ctx, requestID)
		c.Header(types.HeaderRequestID, requestID)

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
