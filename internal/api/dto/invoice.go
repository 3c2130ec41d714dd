package dto

import (
	"time"

	"github.com/billcraft/billcraft/internal/domain/invoice"
	"github.com/billcraft/billcraft/internal/types"
	"github.com/shopspring/decimal"
)

// InvoiceLineResponse represents one frozen line on an invoice
type InvoiceLineResponse struct {
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

// InvoiceResponse represents an invoice response
type InvoiceResponse struct {
	ID              string                     `json:"id"`
	InvoiceNumber   string                     `json:"invoice_number"`
	CustomerID      string                     `json:"customer_id"`
	SubscriptionID  string                     `json:"subscription_id"`
	InvoiceStatus   types.InvoiceStatus        `json:"invoice_status"`
	BillingReason   types.InvoiceBillingReason `json:"billing_reason"`
	IssueDate       time.Time                  `json:"issue_date"`
	DueDate         *time.Time                 `json:"due_date,omitempty"`
	PaidDate        *time.Time                 `json:"paid_date,omitempty"`
	PeriodStart     *time.Time                 `json:"period_start,omitempty"`
	PeriodEnd       *time.Time                 `json:"period_end,omitempty"`
	Subtotal        decimal.Decimal            `json:"subtotal"`
	TaxTotal        decimal.Decimal            `json:"tax_total"`
	DiscountTotal   decimal.Decimal            `json:"discount_total"`
	GrandTotal      decimal.Decimal            `json:"grand_total"`
	AmountPaid      decimal.Decimal            `json:"amount_paid"`
	AmountRemaining decimal.Decimal            `json:"amount_remaining"`
	Lines           []*InvoiceLineResponse     `json:"lines,omitempty"`
	Metadata        types.Metadata             `json:"metadata,omitempty"`
	TenantID        string                     `json:"tenant_id"`
	CreatedAt       time.Time                  `json:"created_at"`
	UpdatedAt       time.Time                  `json:"updated_at"`
}

// ListInvoicesResponse represents a paginated list of invoices
type ListInvoicesResponse struct {
	Items      []*InvoiceResponse       `json:"items"`
	Pagination types.PaginationResponse `json:"pagination"`
}

// NewInvoiceLineResponse creates a line response from an invoice line item
func NewInvoiceLineResponse(line *invoice.InvoiceLineItem) *InvoiceLineResponse {
	return &InvoiceLineResponse{
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

// NewInvoiceResponse creates a new invoice response from an invoice
func NewInvoiceResponse(inv *invoice.Invoice) *InvoiceResponse {
	resp := &InvoiceResponse{
		ID:              inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		SubscriptionID:  inv.SubscriptionID,
		InvoiceStatus:   inv.InvoiceStatus,
		BillingReason:   inv.BillingReason,
		IssueDate:       inv.IssueDate,
		DueDate:         inv.DueDate,
		PaidDate:        inv.PaidDate,
		PeriodStart:     inv.PeriodStart,
		PeriodEnd:       inv.PeriodEnd,
		Subtotal:        inv.Subtotal,
		TaxTotal:        inv.TaxTotal,
		DiscountTotal:   inv.DiscountTotal,
		GrandTotal:      inv.GrandTotal,
		AmountPaid:      inv.AmountPaid,
		AmountRemaining: inv.GetRemainingAmount(),
		Metadata:        inv.Metadata,
		TenantID:        inv.TenantID,
		CreatedAt:       inv.CreatedAt,
		UpdatedAt:       inv.UpdatedAt,
	}

	if inv.LineItems != nil {
		resp.Lines = make([]*InvoiceLineResponse, len(inv.LineItems))
		for i, line := range inv.LineItems {
			resp.Lines[i] = NewInvoiceLineResponse(line)
		}
	}

	return resp
}
