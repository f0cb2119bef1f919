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

type PaymentHandler struct {
	service       service.PaymentService
	exportService service.ExportService
	log           *logger.Logger
}

func NewPaymentHandler(service service.PaymentService, exportService service.ExportService, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{service: service, exportService: exportService, log: log}
}

func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.RecordPayment(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	status := http.StatusCreated
	if resp.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, resp)
}

func (h *PaymentHandler) GetPayment(c *gin.Context) {
	resp, err := h.service.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) ListPayments(c *gin.Context) {
	var req dto.ListPaymentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid query parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListPayments(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ExportPayments streams the tenant's payment history as a CSV download.
func (h *PaymentHandler) ExportPayments(c *gin.Context) {
	var req dto.ListPaymentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid query parameters").
			Mark(ierr.ErrValidation))
		return
	}

	csvBytes, records, err := h.exportService.ExportPayments(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	h.log.Infow("serving payment export", "records", records)
	filename := fmt.Sprintf("payments_%s.csv", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", csvBytes)
}
