package middleware

import (
	"github.com/gin-gonic/gin"

	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/logger"
)

// ErrorHandler converts errors attached via c.Error into the standard JSON
// error envelope. Handlers only call c.Error(err) and return.
func ErrorHandler(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status := ierr.HTTPStatusFromErr(err)
		if status >= 500 {
			log.Errorw("request failed", "error", err, "path", c.Request.URL.Path)
		}
		c.JSON(status, ierr.NewErrorResponse(err))
	}
}
