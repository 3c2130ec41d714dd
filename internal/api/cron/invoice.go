package cron

import (
	"net/http"

	"github.com/billcraft/billcraft/internal/logger"
	"github.com/billcraft/billcraft/internal/service"
	"github.com/gin-gonic/gin"
)

// InvoiceHandler handles invoice related cron jobs
type InvoiceHandler struct {
	invoiceService service.InvoiceService
	logger         *logger.Logger
}

// NewInvoiceCronHandler creates a new invoice cron handler
func NewInvoiceCronHandler(
	invoiceService service.InvoiceService,
	logger *logger.Logger,
) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		logger:         logger,
	}
}

// ProcessOverdue marks confirmed invoices past their due date as overdue.
// The as_of query parameter overrides the sweep time for replays.
func (h *InvoiceHandler) ProcessOverdue(c *gin.Context) {
	h.logger.Infow("starting overdue invoice cron job")

	asOf, err := parseAsOf(c)
	if err != nil {
		c.Error(err)
		return
	}

	response, err := h.invoiceService.ProcessOverdue(c.Request.Context(), asOf)
	if err != nil {
		h.logger.Errorw("failed to process overdue invoices",
			"error", err)
		c.Error(err)
		return
	}

	h.logger.Infow("completed overdue invoice cron job",
		"processed", response.Processed,
		"marked_count", response.MarkedCount,
		"failed", response.Failed,
	)
	c.JSON(http.StatusOK, response)
}
