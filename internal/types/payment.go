package types

import (
	ierr "github.com/billcraft/billcraft/internal/errors"
	"github.com/samber/lo"
)

// PaymentStatus represents the current state of a settlement attempt
type PaymentStatus string

const (
	// PaymentStatusPending indicates the payment has been created but not yet concluded
	PaymentStatusPending PaymentStatus = "PENDING"
	// PaymentStatusCompleted indicates the payment succeeded and counts toward settlement
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	// PaymentStatusFailed indicates the payment did not go through
	PaymentStatusFailed PaymentStatus = "FAILED"
)

func (s PaymentStatus) String() string {
	return string(s)
}

func (s PaymentStatus) Validate() error {
	allowed := []PaymentStatus{
		PaymentStatusPending,
		PaymentStatusCompleted,
		PaymentStatusFailed,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid payment status").
			WithHint("Please provide a valid payment status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PaymentMethodType is the instrument used to settle an invoice
type PaymentMethodType string

const (
	PaymentMethodTypeUPI        PaymentMethodType = "UPI"
	PaymentMethodTypeNetbanking PaymentMethodType = "NETBANKING"
	PaymentMethodTypeCard       PaymentMethodType = "CARD"
)

func (m PaymentMethodType) String() string {
	return string(m)
}

func (m PaymentMethodType) Validate() error {
	allowed := []PaymentMethodType{
		PaymentMethodTypeUPI,
		PaymentMethodTypeNetbanking,
		PaymentMethodTypeCard,
	}
	if !lo.Contains(allowed, m) {
		return ierr.NewError("invalid payment method").
			WithHint("Payment method must be one of UPI, NETBANKING or CARD").
			WithReportableDetails(map[string]any{
				"payment_method": m,
				"allowed":        allowed,
			}).
			Mark(ierr.ErrInvalidPaymentMethod)
	}
	return nil
}

// PaymentFilter represents the filter options for listing payments
type PaymentFilter struct {
	*QueryFilter
	*TimeRangeFilter
	InvoiceID     string              `json:"invoice_id,omitempty" form:"invoice_id"`
	PaymentStatus []PaymentStatus     `json:"payment_status,omitempty" form:"payment_status"`
	PaymentMethod []PaymentMethodType `json:"payment_method,omitempty" form:"payment_method"`
}

// NewPaymentFilter creates a new payment filter with default options
func NewPaymentFilter() *PaymentFilter {
	return &PaymentFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

// NewNoLimitPaymentFilter creates a new payment filter without pagination
func NewNoLimitPaymentFilter() *PaymentFilter {
	return &PaymentFilter{
		QueryFilter: NewNoLimitQueryFilter(),
	}
}

// Validate validates the payment filter
func (f *PaymentFilter) Validate() error {
	if f.QueryFilter != nil {
		if err := f.QueryFilter.Validate(); err != nil {
			return err
		}
	}
	if f.TimeRangeFilter != nil {
		if err := f.TimeRangeFilter.Validate(); err != nil {
			return err
		}
	}
	for _, status := range f.PaymentStatus {
		if err := status.Validate(); err != nil {
			return err
		}
	}
	for _, method := range f.PaymentMethod {
		if err := method.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (f *PaymentFilter) GetLimit() int {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetLimit()
	}
	return f.QueryFilter.GetLimit()
}

func (f *PaymentFilter) GetOffset() int {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetOffset()
	}
	return f.QueryFilter.GetOffset()
}

func (f *PaymentFilter) GetSort() string {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetSort()
	}
	return f.QueryFilter.GetSort()
}

func (f *PaymentFilter) GetOrder() string {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetOrder()
	}
	return f.QueryFilter.GetOrder()
}

func (f *PaymentFilter) GetStatus() string {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetStatus()
	}
	return f.QueryFilter.GetStatus()
}

func (f *PaymentFilter) IsUnlimited() bool {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().IsUnlimited()
	}
	return f.QueryFilter.IsUnlimited()
}
