package handler

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/billcraft/billcraft/internal/config"
	"github.com/billcraft/billcraft/internal/httpclient"
	"github.com/billcraft/billcraft/internal/logger"
	"github.com/billcraft/billcraft/internal/pubsub"
	"github.com/billcraft/billcraft/internal/types"
)

// Handler delivers published webhook events to tenant endpoints
type Handler interface {
	HandleWebhookEvents(ctx context.Context) error
	Close() error
}

type handler struct {
	pubSub pubsub.PubSub
	config *config.WebhookConfig
	client httpclient.Client
	logger *logger.Logger

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewHandler creates a new webhook delivery handler
func NewHandler(
	pubSub pubsub.PubSub,
	cfg *config.Configuration,
	client httpclient.Client,
	logger *logger.Logger,
) (Handler, error) {
	return &handler{
		pubSub: pubSub,
		config: &cfg.Webhook,
		client: client,
		logger: logger,
		done:   make(chan struct{}),
	}, nil
}

// HandleWebhookEvents subscribes to the webhook topic and processes
// messages until the context is cancelled or Close is called.
func (h *handler) HandleWebhookEvents(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	h.cancel = cancel

	messages, err := h.pubSub.Subscribe(ctx, h.config.Topic)
	if err != nil {
		cancel()
		return err
	}

	go func() {
		defer close(h.done)
		for msg := range messages {
			if err := h.processMessage(msg); err != nil {
				h.logger.Errorw("failed to process webhook message",
					"error", err,
					"message_uuid", msg.UUID,
				)
			}
			// Delivery failures are not retried; the event is logged
			// and the message acknowledged either way.
			msg.Ack()
		}
	}()

	return nil
}

// processMessage delivers a single webhook message
func (h *handler) processMessage(msg *message.Message) error {
	var event types.WebhookEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		h.logger.Errorw("failed to unmarshal webhook event",
			"error", err,
			"message_uuid", msg.UUID,
		)
		// Don't retry on unmarshal errors
		return nil
	}

	ctx := msg.Context()
	ctx = context.WithValue(ctx, types.CtxTenantID, event.TenantID)
	ctx = context.WithValue(ctx, types.CtxUserID, event.UserID)

	tenantCfg, ok := h.config.Tenants[event.TenantID]
	if !ok {
		h.logger.Debugw("tenant webhook config not found",
			"tenant_id", event.TenantID,
			"message_uuid", msg.UUID,
		)
		return nil
	}

	if !tenantCfg.Enabled {
		h.logger.Debugw("webhooks disabled for tenant",
			"tenant_id", event.TenantID,
			"message_uuid", msg.UUID,
		)
		return nil
	}

	for _, excludedEvent := range tenantCfg.ExcludedEvents {
		if excludedEvent == event.EventName {
			h.logger.Debugw("event excluded for tenant",
				"tenant_id", event.TenantID,
				"event", event.EventName,
			)
			return nil
		}
	}

	payload, err := json.Marshal(&event)
	if err != nil {
		return err
	}

	req := &httpclient.Request{
		Method:  "POST",
		URL:     tenantCfg.Endpoint,
		Headers: tenantCfg.Headers,
		Body:    payload,
	}

	resp, err := h.client.Send(ctx, req)
	if err != nil {
		h.logger.Errorw("failed to send webhook",
			"error", err,
			"message_uuid", msg.UUID,
			"tenant_id", event.TenantID,
			"event", event.EventName,
		)
		return err
	}

	h.logger.Infow("webhook sent successfully",
		"message_uuid", msg.UUID,
		"tenant_id", event.TenantID,
		"event", event.EventName,
		"status_code", resp.StatusCode,
	)

	return nil
}

// Close stops the subscription loop and waits for in-flight deliveries
func (h *handler) Close() error {
	h.once.Do(func() {
		if h.cancel != nil {
			h.cancel()
			<-h.done
		}
	})
	return nil
}
