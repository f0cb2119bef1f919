package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nextstep/nextstep/internal/api/dto"
	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/logger"
	"github.com/nextstep/nextstep/internal/service"
)

type ReminderConfigHandler struct {
	service service.ReminderConfigService
	log     *logger.Logger
}

func NewReminderConfigHandler(service service.ReminderConfigService, log *logger.Logger) *ReminderConfigHandler {
	return &ReminderConfigHandler{service: service, log: log}
}

func (h *ReminderConfigHandler) GetConfig(c *gin.Context) {
	resp, err := h.service.GetConfig(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReminderConfigHandler) UpdateConfig(c *gin.Context) {
	var req dto.UpdateReminderConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdateConfig(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
