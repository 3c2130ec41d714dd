package types

import (
	"encoding/json"
	"time"
)

// WebhookEvent represents a webhook event to be delivered
type WebhookEvent struct {
	ID        string          `json:"id"`
	EventName string          `json:"event_name"`
	TenantID  string          `json:"tenant_id"`
	UserID    string          `json:"user_id"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// subscription event names
const (
	WebhookEventSubscriptionCreated   = "subscription.created"
	WebhookEventSubscriptionConfirmed = "subscription.confirmed"
	WebhookEventSubscriptionCancelled = "subscription.cancelled"
	WebhookEventSubscriptionRenewed   = "subscription.renewed"
)

// invoice event names
const (
	WebhookEventInvoiceCreateDraft     = "invoice.create.drafted"
	WebhookEventInvoiceUpdateFinalized = "invoice.update.finalized"
	WebhookEventInvoiceUpdatePayment   = "invoice.updated.payment"
	WebhookEventInvoiceUpdateOverdue   = "invoice.update.overdue"
	WebhookEventInvoiceUpdateVoided    = "invoice.update.voided"
)

// payment event names
const (
	WebhookEventPaymentCreated = "payment.created"
	WebhookEventPaymentSuccess = "payment.success"
	WebhookEventPaymentFailed  = "payment.failed"
)

// PubSubType defines the type of pubsub implementation
type PubSubType string

const (
	// MemoryPubSub uses in-memory implementation
	MemoryPubSub PubSubType = "memory"
)
