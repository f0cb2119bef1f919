package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nextstep/nextstep/internal/logger"
	"github.com/nextstep/nextstep/internal/types"
)

// LoggingMiddleware returns a gin middleware that logs HTTP requests using our standard logger
func LoggingMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := []interface{}{
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", path,
			"query", raw,
			"latency_ms", latency.Milliseconds(),
		}

		ctx := c.Request.Context()
		if requestID := types.GetRequestID(ctx); requestID != "" {
			fields = append(fields, "request_id", requestID)
		}
		if tenantID := types.GetTenantID(ctx); tenantID != "" {
			fields = append(fields, "tenant_id", tenantID)
		}
		if userID := types.GetUserID(ctx); userID != "" {
			fields = append(fields, "user_id", userID)
		}

		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		statusCode := c.Writer.Status()
		switch {
		case statusCode >= 500:
			log.Errorw("HTTP_REQUEST_ERROR", fields...)
		case statusCode >= 400:
			log.Warnw("HTTP_REQUEST_WARNING", fields...)
		default:
			log.Infow("HTTP_REQUEST_INFO", fields...)
		}
	}
}
