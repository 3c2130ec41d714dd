package invoice

import (
	"time"

	"github.com/billcraft/billcraft/internal/types"
	"github.com/shopspring/decimal"
)

// Invoice is an immutable-once-issued financial record. Totals and lines
// are frozen copies taken from the subscription at issuance; nothing that
// happens to the subscription or the catalog afterwards may change them.
type Invoice struct {
	ID             string                     `db:"id" json:"id"`
	InvoiceNumber  string                     `db:"invoice_number" json:"invoice_number"`
	CustomerID     string                     `db:"customer_id" json:"customer_id"`
	SubscriptionID string                     `db:"subscription_id" json:"subscription_id"`
	InvoiceStatus  types.InvoiceStatus        `db:"invoice_status" json:"invoice_status"`
	BillingReason  types.InvoiceBillingReason `db:"billing_reason" json:"billing_reason"`
	// IdempotencyKey dedupes invoice creation per confirmation or renewal
	// event; a retry with the same key returns the existing invoice.
	IdempotencyKey *string         `db:"idempotency_key" json:"idempotency_key,omitempty"`
	IssueDate      time.Time       `db:"issue_date" json:"issue_date"`
	DueDate        *time.Time      `db:"due_date" json:"due_date,omitempty"`
	PaidDate       *time.Time      `db:"paid_date" json:"paid_date,omitempty"`
	PeriodStart    *time.Time      `db:"period_start" json:"period_start,omitempty"`
	PeriodEnd      *time.Time      `db:"period_end" json:"period_end,omitempty"`
	Subtotal       decimal.Decimal `db:"subtotal" json:"subtotal"`
	TaxTotal       decimal.Decimal `db:"tax_total" json:"tax_total"`
	DiscountTotal  decimal.Decimal `db:"discount_total" json:"discount_total"`
	GrandTotal     decimal.Decimal `db:"grand_total" json:"grand_total"`
	// AmountPaid is the running sum of completed payments.
	AmountPaid decimal.Decimal `db:"amount_paid" json:"amount_paid"`
	Version    int             `db:"version" json:"version"`

	Metadata types.Metadata `db:"metadata" json:"metadata,omitempty"`

	LineItems []*InvoiceLineItem `db:"-" json:"line_items,omitempty"`

	types.BaseModel
}

// GetRemainingAmount returns the unsettled balance on the invoice.
func (i *Invoice) GetRemainingAmount() decimal.Decimal {
	return i.GrandTotal.Sub(i.AmountPaid)
}

// IsSettled reports whether completed payments cover the grand total.
func (i *Invoice) IsSettled() bool {
	return i.AmountPaid.GreaterThanOrEqual(i.GrandTotal)
}
