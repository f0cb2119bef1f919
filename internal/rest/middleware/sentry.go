package middleware

import (
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"

	"github.com/nextstep/nextstep/internal/config"
	"github.com/nextstep/nextstep/internal/types"
)

// SentryMiddleware returns a middleware that captures errors and performance data
func SentryMiddleware(cfg *config.Configuration) gin.HandlerFunc {
	if !cfg.Sentry.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         2 * time.Second,
	})
}

// SentryTenantContextMiddleware sets tenant_id on the Sentry scope when it is
// present in the request context. Add this after ContextMiddleware so the
// auto-captured span includes the tag.
func SentryTenantContextMiddleware(c *gin.Context) {
	hub := sentrygin.GetHubFromContext(c)
	if hub == nil {
		c.Next()
		return
	}
	if tenantID := types.GetTenantID(c.Request.Context()); tenantID != "" {
		hub.Scope().SetTag("tenant_id", tenantID)
	}
	c.Next()
}
