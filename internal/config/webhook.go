package config

import (
	"fmt"

	"github.com/billcraft/billcraft/internal/types"
)

// WebhookConfig represents the configuration for the webhook system
type WebhookConfig struct {
	Enabled bool                           `mapstructure:"enabled"`
	Topic   string                         `mapstructure:"topic" default:"webhook_events"`
	PubSub  types.PubSubType               `mapstructure:"pubsub" default:"memory"`
	Tenants map[string]TenantWebhookConfig `mapstructure:"tenants"`
}

// TenantWebhookConfig represents webhook configuration for a specific tenant
type TenantWebhookConfig struct {
	Endpoint       string            `mapstructure:"endpoint"`
	Headers        map[string]string `mapstructure:"headers"`
	Enabled        bool              `mapstructure:"enabled"`
	ExcludedEvents []string          `mapstructure:"excluded_events"`
}

func (c WebhookConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Topic == "" {
		return fmt.Errorf("webhook topic is required when webhooks are enabled")
	}
	if c.PubSub != types.MemoryPubSub {
		return fmt.Errorf("unsupported webhook pubsub type: %s", c.PubSub)
	}
	return nil
}
