package publisher_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/billcraft/billcraft/internal/config"
	"github.com/billcraft/billcraft/internal/logger"
	"github.com/billcraft/billcraft/internal/testutil"
	"github.com/billcraft/billcraft/internal/types"
	"github.com/billcraft/billcraft/internal/webhook/publisher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPublisher(t *testing.T) (publisher.WebhookPublisher, *testutil.InMemoryPubSub) {
	cfg := config.GetDefaultConfig()
	cfg.Webhook.Enabled = true

	log, err := logger.NewLogger(cfg)
	require.NoError(t, err)

	ps := testutil.NewInMemoryPubSub()
	pub, err := publisher.NewPublisher(ps, cfg, log)
	require.NoError(t, err)
	return pub, ps
}

func TestPublishWebhookRoutesToConfiguredTopic(t *testing.T) {
	pub, ps := newTestPublisher(t)

	event := &types.WebhookEvent{
		ID:        "webh_test_1",
		EventName: types.WebhookEventInvoiceUpdateFinalized,
		TenantID:  types.DefaultTenantID,
		UserID:    types.DefaultUserID,
		Timestamp: time.Now().UTC(),
		Payload:   json.RawMessage(`{"invoice_id":"inv_01"}`),
	}
	require.NoError(t, pub.PublishWebhook(context.Background(), event))

	messages := ps.Messages("webhook_events")
	require.Len(t, messages, 1)
	assert.Equal(t, "webh_test_1", messages[0].UUID)
	assert.Equal(t, types.DefaultTenantID, messages[0].Metadata.Get("tenant_id"))

	var decoded types.WebhookEvent
	require.NoError(t, json.Unmarshal(messages[0].Payload, &decoded))
	assert.Equal(t, event.EventName, decoded.EventName)
	assert.JSONEq(t, `{"invoice_id":"inv_01"}`, string(decoded.Payload))
}

func TestPublishWebhookGeneratesMessageID(t *testing.T) {
	pub, ps := newTestPublisher(t)

	event := &types.WebhookEvent{
		EventName: types.WebhookEventPaymentSuccess,
		TenantID:  types.DefaultTenantID,
		Timestamp: time.Now().UTC(),
		Payload:   json.RawMessage(`{}`),
	}
	require.NoError(t, pub.PublishWebhook(context.Background(), event))

	messages := ps.Messages("webhook_events")
	require.Len(t, messages, 1)
	assert.NotEmpty(t, messages[0].UUID)
}
