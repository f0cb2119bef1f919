package cron

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nextstep/nextstep/internal/api/dto"
	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/logger"
	"github.com/nextstep/nextstep/internal/service"
)

// SweepCronHandler handles the reminder sweep cron job
type SweepCronHandler struct {
	sweepService service.SweepService
	logger       *logger.Logger
}

// NewSweepCronHandler creates a new sweep cron handler
func NewSweepCronHandler(
	sweepService service.SweepService,
	logger *logger.Logger,
) *SweepCronHandler {
	return &SweepCronHandler{
		sweepService: sweepService,
		logger:       logger,
	}
}

// RunSweep executes the daily reminder sweep for the calling tenant
func (h *SweepCronHandler) RunSweep(c *gin.Context) {
	h.logger.Infow("starting reminder sweep cron job", "time", time.Now().UTC().Format(time.RFC3339))

	var req dto.RunSweepRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid query parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.sweepService.Run(c.Request.Context(), &req)
	if err != nil {
		h.logger.Errorw("reminder sweep failed", "error", err)
		c.Error(err)
		return
	}

	h.logger.Infow("completed reminder sweep cron job", "sent", resp.Sent, "failed", resp.Failed)
	c.JSON(http.StatusOK, gin.H{"status": "success", "result": resp})
}
