package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/nextstep/nextstep/internal/config"
	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/types"
)

// CronSecretMiddleware guards cron endpoints with a shared secret header.
// When no secret is configured the endpoints stay closed.
func CronSecretMiddleware(cfg *config.Configuration) gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := cfg.Server.CronSecret
		given := c.GetHeader(types.HeaderCronSecret)

		if secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(given)) != 1 {
			c.AbortWithStatusJSON(401, ierr.NewErrorResponse(
				ierr.NewError("unauthorized").
					WithHint("Valid cron secret header is required").
					Mark(ierr.ErrPermissionDenied)))
			return
		}
		c.Next()
	}
}
