package v1

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nextstep/nextstep/internal/api/dto"
	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/logger"
	"github.com/nextstep/nextstep/internal/service"
)

type SubscriberHandler struct {
	service       service.SubscriberService
	exportService service.ExportService
	log           *logger.Logger
}

func NewSubscriberHandler(service service.SubscriberService, exportService service.ExportService, log *logger.Logger) *SubscriberHandler {
	return &SubscriberHandler{service: service, exportService: exportService, log: log}
}

func (h *SubscriberHandler) CreateSubscriber(c *gin.Context) {
	var req dto.CreateSubscriberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateSubscriber(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *SubscriberHandler) GetSubscriber(c *gin.Context) {
	resp, err := h.service.GetSubscriber(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SubscriberHandler) ListSubscribers(c *gin.Context) {
	var req dto.ListSubscribersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid query parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListSubscribers(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SubscriberHandler) UpdateSubscriber(c *gin.Context) {
	var req dto.UpdateSubscriberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdateSubscriber(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SubscriberHandler) RenewSubscriber(c *gin.Context) {
	var req dto.RenewSubscriberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.RenewSubscriber(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ExportSubscribers streams the tenant's subscriber roster as a CSV download.
func (h *SubscriberHandler) ExportSubscribers(c *gin.Context) {
	var req dto.ListSubscribersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid query parameters").
			Mark(ierr.ErrValidation))
		return
	}

	csvBytes, records, err := h.exportService.ExportSubscribers(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	h.log.Infow("serving subscriber export", "records", records)
	filename := fmt.Sprintf("subscribers_%s.csv", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", csvBytes)
}

func (h *SubscriberHandler) DeleteSubscriber(c *gin.Context) {
	if err := h.service.DeleteSubscriber(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
