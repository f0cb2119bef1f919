package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nextstep/nextstep/internal/logger"
	"github.com/nextstep/nextstep/internal/service"
)

type NotificationHandler struct {
	service service.NotificationFeedService
	log     *logger.Logger
}

func NewNotificationHandler(service service.NotificationFeedService, log *logger.Logger) *NotificationHandler {
	return &NotificationHandler{service: service, log: log}
}

// ListNotifications returns the dashboard alerts for subscriptions about to
// lapse.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	resp, err := h.service.ExpiringSoon(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
