package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/billcraft/billcraft/internal/cache"
	"github.com/billcraft/billcraft/internal/config"
	"github.com/billcraft/billcraft/internal/domain/customer"
	"github.com/billcraft/billcraft/internal/domain/invoice"
	"github.com/billcraft/billcraft/internal/domain/payment"
	"github.com/billcraft/billcraft/internal/domain/plan"
	"github.com/billcraft/billcraft/internal/domain/product"
	"github.com/billcraft/billcraft/internal/domain/subscription"
	"github.com/billcraft/billcraft/internal/idempotency"
	"github.com/billcraft/billcraft/internal/logger"
	"github.com/billcraft/billcraft/internal/postgres"
	"github.com/billcraft/billcraft/internal/types"
	webhookPublisher "github.com/billcraft/billcraft/internal/webhook/publisher"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient
	Cache  cache.Cache

	// Repositories
	CustomerRepo customer.Repository
	ProductRepo  product.Repository
	PlanRepo     plan.Repository
	SubRepo      subscription.Repository
	InvoiceRepo  invoice.Repository
	PaymentRepo  payment.Repository

	IdempotencyGenerator *idempotency.Generator
	WebhookPublisher     webhookPublisher.WebhookPublisher
}

// NewServiceParams assembles the common dependency set injected into services
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	cache cache.Cache,
	customerRepo customer.Repository,
	productRepo product.Repository,
	planRepo plan.Repository,
	subRepo subscription.Repository,
	invoiceRepo invoice.Repository,
	paymentRepo payment.Repository,
	webhookPublisher webhookPublisher.WebhookPublisher,
) ServiceParams {
	return ServiceParams{
		Logger:               logger,
		Config:               config,
		DB:                   db,
		Cache:                cache,
		CustomerRepo:         customerRepo,
		ProductRepo:          productRepo,
		PlanRepo:             planRepo,
		SubRepo:              subRepo,
		InvoiceRepo:          invoiceRepo,
		PaymentRepo:          paymentRepo,
		IdempotencyGenerator: idempotency.NewGenerator(),
		WebhookPublisher:     webhookPublisher,
	}
}

// publishWebhookEvent emits a financial-state-changed notification. Failures
// are logged and swallowed; every transition succeeds independent of whether
// a listener is attached.
func (p ServiceParams) publishWebhookEvent(ctx context.Context, eventName string, payload interface{}) {
	if p.WebhookPublisher == nil {
		return
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		p.Logger.Errorw("failed to marshal webhook payload",
			"event_name", eventName,
			"error", err,
		)
		return
	}

	event := &types.WebhookEvent{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_WEBHOOK_EVENT),
		EventName: eventName,
		TenantID:  types.GetTenantID(ctx),
		UserID:    types.GetUserID(ctx),
		Timestamp: time.Now().UTC(),
		Payload:   raw,
	}

	if err := p.WebhookPublisher.PublishWebhook(ctx, event); err != nil {
		p.Logger.Errorw("failed to publish webhook event",
			"event_name", eventName,
			"error", err,
		)
	}
}
