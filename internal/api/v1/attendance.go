package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nextstep/nextstep/internal/api/dto"
	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/logger"
	"github.com/nextstep/nextstep/internal/service"
)

type AttendanceHandler struct {
	service service.AttendanceService
	log     *logger.Logger
}

func NewAttendanceHandler(service service.AttendanceService, log *logger.Logger) *AttendanceHandler {
	return &AttendanceHandler{service: service, log: log}
}

func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	var req dto.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CheckIn(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	resp, err := h.service.CheckOut(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AttendanceHandler) ListAttendance(c *gin.Context) {
	var req dto.ListAttendanceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid query parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListAttendance(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
