package dto

import (
	"time"

	"github.com/billcraft/billcraft/internal/domain/payment"
	ierr "github.com/billcraft/billcraft/internal/errors"
	"github.com/billcraft/billcraft/internal/types"
	"github.com/shopspring/decimal"
)

// PayInvoiceRequest represents a request to record a payment against an
// invoice. When Amount is nil the remaining balance is settled in full.
type PayInvoiceRequest struct {
	PaymentMethod types.PaymentMethodType `json:"payment_method" validate:"required"`
	Amount        *decimal.Decimal        `json:"amount,omitempty"`
	ReferenceID   *string                 `json:"reference_id,omitempty"`
	Metadata      types.Metadata          `json:"metadata,omitempty"`
}

func (r *PayInvoiceRequest) Validate() error {
	if err := r.PaymentMethod.Validate(); err != nil {
		return err
	}
	if r.Amount != nil && !r.Amount.IsPositive() {
		return ierr.NewError("payment amount must be greater than zero").
			WithReportableDetails(map[string]any{"amount": r.Amount}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PaymentResponse represents a payment response
type PaymentResponse struct {
	ID            string                  `json:"id"`
	InvoiceID     string                  `json:"invoice_id"`
	Amount        decimal.Decimal         `json:"amount"`
	PaymentMethod types.PaymentMethodType `json:"payment_method"`
	PaymentStatus types.PaymentStatus     `json:"payment_status"`
	ReferenceID   *string                 `json:"reference_id,omitempty"`
	PaymentDate   time.Time               `json:"payment_date"`
	Metadata      types.Metadata          `json:"metadata,omitempty"`
	TenantID      string                  `json:"tenant_id"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// PayInvoiceResponse is returned by the pay transition with the updated
// invoice and the payment that was recorded.
type PayInvoiceResponse struct {
	Invoice *InvoiceResponse `json:"invoice"`
	Payment *PaymentResponse `json:"payment"`
}

// ListPaymentsResponse represents a paginated list of payments
type ListPaymentsResponse struct {
	Items      []*PaymentResponse       `json:"items"`
	Pagination types.PaginationResponse `json:"pagination"`
}

// NewPaymentResponse creates a new payment response from a payment
func NewPaymentResponse(p *payment.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:            p.ID,
		InvoiceID:     p.InvoiceID,
		Amount:        p.Amount,
		PaymentMethod: p.PaymentMethod,
		PaymentStatus: p.PaymentStatus,
		ReferenceID:   p.ReferenceID,
		PaymentDate:   p.PaymentDate,
		Metadata:      p.Metadata,
		TenantID:      p.TenantID,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
