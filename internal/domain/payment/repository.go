package payment

import (
	"context"

	"github.com/billcraft/billcraft/internal/types"
)

// Repository defines the interface for payment data access
type Repository interface {
	Create(ctx context.Context, payment *Payment) error
	Get(ctx context.Context, id string) (*Payment, error)
	List(ctx context.Context, filter *types.PaymentFilter) ([]*Payment, error)
	Count(ctx context.Context, filter *types.PaymentFilter) (int, error)
	Update(ctx context.Context, payment *Payment) error
	// ListCompletedByInvoice returns the completed payments recorded
	// against an invoice, oldest first.
	ListCompletedByInvoice(ctx context.Context, invoiceID string) ([]*Payment, error)
}
