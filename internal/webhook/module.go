package webhook

import (
	"github.com/billcraft/billcraft/internal/config"
	"github.com/billcraft/billcraft/internal/logger"
	"github.com/billcraft/billcraft/internal/pubsub"
	"github.com/billcraft/billcraft/internal/pubsub/memory"
	"github.com/billcraft/billcraft/internal/types"
	"github.com/billcraft/billcraft/internal/webhook/handler"
	"github.com/billcraft/billcraft/internal/webhook/publisher"
	"go.uber.org/fx"
)

// Module provides all webhook-related dependencies
var Module = fx.Options(
	fx.Provide(
		// PubSub transport for webhook events
		providePubSub,

		// Publisher for sending webhook events
		publisher.NewPublisher,

		// Handler for delivering webhook events
		handler.NewHandler,

		// Main webhook service
		NewWebhookService,
	),
)

func providePubSub(
	cfg *config.Configuration,
	logger *logger.Logger,
) pubsub.PubSub {
	switch cfg.Webhook.PubSub {
	case types.MemoryPubSub:
		return memory.NewPubSub(cfg, logger)
	}
	panic("unsupported pubsub type")
}
