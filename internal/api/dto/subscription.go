package dto

import (
	"time"

	"github.com/billcraft/billcraft/internal/domain/subscription"
	ierr "github.com/billcraft/billcraft/internal/errors"
	"github.com/billcraft/billcraft/internal/types"
	"github.com/shopspring/decimal"
)

// SubscriptionLineRequest describes one product line supplied by the caller.
// Tax and discount percentages are supplied, never derived.
type SubscriptionLineRequest struct {
	ProductID       string          `json:"product_id" validate:"required"`
	Quantity        int             `json:"quantity" validate:"required,min=1"`
	TaxPercent      decimal.Decimal `json:"tax_percent"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// CreateSubscriptionRequest represents a request to create a subscription
type CreateSubscriptionRequest struct {
	CustomerID string                     `json:"customer_id" validate:"required"`
	PlanID     string                     `json:"plan_id" validate:"required"`
	StartDate  time.Time                  `json:"start_date"`
	EndDate    *time.Time                 `json:"end_date,omitempty"`
	Lines      []*SubscriptionLineRequest `json:"lines,omitempty"`
	Metadata   types.Metadata             `json:"metadata,omitempty"`
}

func (r *CreateSubscriptionRequest) Validate() error {
	if r.EndDate != nil && !r.StartDate.IsZero() && r.EndDate.Before(r.StartDate) {
		return ierr.NewError("end date must be after start date").
			WithReportableDetails(map[string]any{
				"start_date": r.StartDate,
				"end_date":   r.EndDate,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// AddOrUpdateLineRequest upserts a line keyed by product. A quantity of
// zero removes the line.
type AddOrUpdateLineRequest struct {
	ProductID       string           `json:"product_id" validate:"required"`
	Quantity        int              `json:"quantity"`
	TaxPercent      *decimal.Decimal `json:"tax_percent,omitempty"`
	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty"`
}

// SubscriptionLineResponse represents one line on a subscription
type SubscriptionLineResponse struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	ProductName     string          `json:"product_name"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Quantity        int             `json:"quantity"`
	TaxPercent      decimal.Decimal `json:"tax_percent"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	LineTotal       decimal.Decimal `json:"line_total"`
	DisplayOrder    int             `json:"display_order"`
}

// SubscriptionResponse represents a subscription response
type SubscriptionResponse struct {
	ID                 string                      `json:"id"`
	SubscriptionNumber string                      `json:"subscription_number"`
	CustomerID         string                      `json:"customer_id"`
	PlanID             string                      `json:"plan_id"`
	PlanName           string                      `json:"plan_name"`
	PlanPrice          decimal.Decimal             `json:"plan_price"`
	BillingPeriod      types.BillingPeriod         `json:"billing_period"`
	SubscriptionStatus types.SubscriptionStatus    `json:"subscription_status"`
	StartDate          time.Time                   `json:"start_date"`
	EndDate            *time.Time                  `json:"end_date,omitempty"`
	NextBillingDate    *time.Time                  `json:"next_billing_date,omitempty"`
	ConfirmedAt        *time.Time                  `json:"confirmed_at,omitempty"`
	ClosedAt           *time.Time                  `json:"closed_at,omitempty"`
	Subtotal           decimal.Decimal             `json:"subtotal"`
	TaxTotal           decimal.Decimal             `json:"tax_total"`
	DiscountTotal      decimal.Decimal             `json:"discount_total"`
	GrandTotal         decimal.Decimal             `json:"grand_total"`
	Lines              []*SubscriptionLineResponse `json:"lines,omitempty"`
	Metadata           types.Metadata              `json:"metadata,omitempty"`
	TenantID           string                      `json:"tenant_id"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`
}

// ConfirmSubscriptionResponse is returned by the confirm transition. The
// caller immediately redirects to the generated invoice, so the invoice id,
// next billing date and the four totals are part of the contract.
type ConfirmSubscriptionResponse struct {
	Subscription *SubscriptionResponse `json:"subscription"`
	Invoice      *InvoiceResponse      `json:"invoice"`
}

// ListSubscriptionsResponse represents a paginated list of subscriptions
type ListSubscriptionsResponse struct {
	Items      []*SubscriptionResponse  `json:"items"`
	Pagination types.PaginationResponse `json:"pagination"`
}

// NewSubscriptionLineResponse creates a line response from a line item
func NewSubscriptionLineResponse(line *subscription.SubscriptionLineItem) *SubscriptionLineResponse {
	return &SubscriptionLineResponse{
		ID:              line.ID,
		ProductID:       line.ProductID,
		ProductName:     line.ProductName,
		UnitPrice:       line.UnitPrice,
		Quantity:        line.Quantity,
		TaxPercent:      line.TaxPercent,
		DiscountPercent: line.DiscountPercent,
		LineTotal:       line.LineTotal,
		DisplayOrder:    line.DisplayOrder,
	}
}

// NewSubscriptionResponse creates a new subscription response from a subscription
func NewSubscriptionResponse(sub *subscription.Subscription) *SubscriptionResponse {
	resp := &SubscriptionResponse{
		ID:                 sub.ID,
		SubscriptionNumber: sub.SubscriptionNumber,
		CustomerID:         sub.CustomerID,
		PlanID:             sub.PlanID,
		PlanName:           sub.PlanName,
		PlanPrice:          sub.PlanPrice,
		BillingPeriod:      sub.BillingPeriod,
		SubscriptionStatus: sub.SubscriptionStatus,
		StartDate:          sub.StartDate,
		EndDate:            sub.EndDate,
		NextBillingDate:    sub.NextBillingDate,
		ConfirmedAt:        sub.ConfirmedAt,
		ClosedAt:           sub.ClosedAt,
		Subtotal:           sub.Subtotal,
		TaxTotal:           sub.TaxTotal,
		DiscountTotal:      sub.DiscountTotal,
		GrandTotal:         sub.GrandTotal,
		Metadata:           sub.Metadata,
		TenantID:           sub.TenantID,
		CreatedAt:          sub.CreatedAt,
		UpdatedAt:          sub.UpdatedAt,
	}

	if sub.LineItems != nil {
		resp.Lines = make([]*SubscriptionLineResponse, len(sub.LineItems))
		for i, line := range sub.LineItems {
			resp.Lines[i] = NewSubscriptionLineResponse(line)
		}
	}

	return resp
}
