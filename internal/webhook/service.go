package webhook

import (
	"context"
	"fmt"

	"github.com/billcraft/billcraft/internal/config"
	"github.com/billcraft/billcraft/internal/httpclient"
	"github.com/billcraft/billcraft/internal/logger"
	"github.com/billcraft/billcraft/internal/webhook/handler"
	"github.com/billcraft/billcraft/internal/webhook/publisher"
)

// WebhookService orchestrates webhook operations
type WebhookService struct {
	config    *config.Configuration
	publisher publisher.WebhookPublisher
	handler   handler.Handler
	client    httpclient.Client
	logger    *logger.Logger
}

// NewWebhookService creates a new webhook service
func NewWebhookService(
	cfg *config.Configuration,
	publisher publisher.WebhookPublisher,
	h handler.Handler,
	c httpclient.Client,
	l *logger.Logger,
) *WebhookService {
	return &WebhookService{
		config:    cfg,
		publisher: publisher,
		handler:   h,
		client:    c,
		logger:    l,
	}
}

// Start starts the webhook service
func (s *WebhookService) Start(ctx context.Context) error {
	if !s.config.Webhook.Enabled {
		s.logger.Info("webhook service disabled")
		return nil
	}

	s.logger.Debug("starting webhook service")
	if err := s.handler.HandleWebhookEvents(ctx); err != nil {
		return fmt.Errorf("failed to start webhook handler: %w", err)
	}

	s.logger.Info("webhook service started successfully")
	return nil
}

// Stop stops the webhook service
func (s *WebhookService) Stop() error {
	s.logger.Debug("stopping webhook service")

	// First stop the handler to stop processing new messages
	if err := s.handler.Close(); err != nil {
		s.logger.Errorw("failed to close webhook handler", "error", err)
		return fmt.Errorf("failed to close webhook handler: %w", err)
	}

	// Then close the publisher
	if err := s.publisher.Close(); err != nil {
		s.logger.Errorw("failed to close webhook publisher", "error", err)
		return fmt.Errorf("failed to close webhook publisher: %w", err)
	}

	s.logger.Info("webhook service stopped successfully")
	return nil
}
