package subscription

import (
	"time"

	"github.com/billcraft/billcraft/internal/types"
	"github.com/shopspring/decimal"
)

// Subscription is a billing contract between a customer and a plan.
// While in DRAFT its lines and totals may change freely; confirmation
// freezes the totals and raises the first invoice. The plan price and
// billing period are snapshotted at creation so that later plan edits
// never change what an existing contract bills.
type Subscription struct {
	ID                 string                   `db:"id" json:"id"`
	SubscriptionNumber string                   `db:"subscription_number" json:"subscription_number"`
	CustomerID         string                   `db:"customer_id" json:"customer_id"`
	PlanID             string                   `db:"plan_id" json:"plan_id"`
	PlanName           string                   `db:"plan_name" json:"plan_name"`
	PlanPrice          decimal.Decimal          `db:"plan_price" json:"plan_price"`
	BillingPeriod      types.BillingPeriod      `db:"billing_period" json:"billing_period"`
	SubscriptionStatus types.SubscriptionStatus `db:"subscription_status" json:"subscription_status"`
	StartDate          time.Time                `db:"start_date" json:"start_date"`
	EndDate            *time.Time               `db:"end_date" json:"end_date,omitempty"`
	NextBillingDate    *time.Time               `db:"next_billing_date" json:"next_billing_date,omitempty"`
	ConfirmedAt        *time.Time               `db:"confirmed_at" json:"confirmed_at,omitempty"`
	ClosedAt           *time.Time               `db:"closed_at" json:"closed_at,omitempty"`
	Subtotal           decimal.Decimal          `db:"subtotal" json:"subtotal"`
	TaxTotal           decimal.Decimal          `db:"tax_total" json:"tax_total"`
	DiscountTotal      decimal.Decimal          `db:"discount_total" json:"discount_total"`
	GrandTotal         decimal.Decimal          `db:"grand_total" json:"grand_total"`
	// Version increments on every state-changing write and backs the
	// optimistic check that pairs with the transaction-scoped lock.
	Version int `db:"version" json:"version"`

	Metadata types.Metadata `db:"metadata" json:"metadata,omitempty"`

	LineItems []*SubscriptionLineItem `db:"-" json:"line_items,omitempty"`

	types.BaseModel
}

// IsEditable reports whether lines may still be added or changed.
func (s *Subscription) IsEditable() bool {
	return s.SubscriptionStatus == types.SubscriptionStatusDraft
}

// IsActive reports whether the subscription is confirmed and not closed.
func (s *Subscription) IsActive() bool {
	return s.SubscriptionStatus == types.SubscriptionStatusConfirmed && s.ClosedAt == nil
}
