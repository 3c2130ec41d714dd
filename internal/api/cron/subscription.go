package cron

import (
	"net/http"
	"time"

	ierr "github.com/billcraft/billcraft/internal/errors"
	"github.com/billcraft/billcraft/internal/logger"
	"github.com/billcraft/billcraft/internal/service"
	"github.com/gin-gonic/gin"
)

// SubscriptionHandler handles subscription related cron jobs
type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
	logger              *logger.Logger
}

// NewSubscriptionCronHandler creates a new subscription cron handler
func NewSubscriptionCronHandler(
	subscriptionService service.SubscriptionService,
	logger *logger.Logger,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
		logger:              logger,
	}
}

// ProcessRenewals sweeps confirmed subscriptions whose billing date has
// arrived, raising a cycle invoice or closing subscriptions past their end
// date. The as_of query parameter overrides the sweep time for replays.
func (h *SubscriptionHandler) ProcessRenewals(c *gin.Context) {
	h.logger.Infow("starting subscription renewal cron job")

	asOf, err := parseAsOf(c)
	if err != nil {
		c.Error(err)
		return
	}

	response, err := h.subscriptionService.ProcessRenewals(c.Request.Context(), asOf)
	if err != nil {
		h.logger.Errorw("failed to process subscription renewals",
			"error", err)
		c.Error(err)
		return
	}

	h.logger.Infow("completed subscription renewal cron job",
		"processed", response.Processed,
		"invoices_created", response.InvoicesCreated,
		"closed", response.Closed,
		"failed", response.Failed,
	)
	c.JSON(http.StatusOK, response)
}

// parseAsOf reads the optional as_of query parameter, defaulting to now
func parseAsOf(c *gin.Context) (time.Time, error) {
	raw := c.Query("as_of")
	if raw == "" {
		return time.Now().UTC(), nil
	}

	asOf, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, ierr.WithError(err).
			WithHint("as_of must be an RFC3339 timestamp").
			Mark(ierr.ErrValidation)
	}
	return asOf.UTC(), nil
}
