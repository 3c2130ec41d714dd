package invoice

import (
	"context"
	"time"

	"github.com/billcraft/billcraft/internal/types"
)

// Repository defines the interface for invoice data access
type Repository interface {
	// CreateWithLineItems persists an invoice and its frozen lines in a
	// single transaction.
	CreateWithLineItems(ctx context.Context, invoice *Invoice) error
	Get(ctx context.Context, id string) (*Invoice, error)
	// GetWithLineItems loads the invoice along with its ordered lines.
	GetWithLineItems(ctx context.Context, id string) (*Invoice, error)
	// GetByIdempotencyKey looks up an invoice by the key that deduped its
	// creation event; returns ErrNotFound when no invoice carries the key.
	GetByIdempotencyKey(ctx context.Context, key string) (*Invoice, error)
	List(ctx context.Context, filter *types.InvoiceFilter) ([]*Invoice, error)
	Count(ctx context.Context, filter *types.InvoiceFilter) (int, error)
	// Update writes the invoice row guarded by its version; callers get
	// ErrConcurrentModification when the version moved underneath them.
	Update(ctx context.Context, invoice *Invoice) error
	// GetNextInvoiceNumber hands out the next value of the tenant-scoped
	// invoice number sequence.
	GetNextInvoiceNumber(ctx context.Context) (string, error)
	// ListDue returns confirmed invoices whose due date is strictly before
	// asOf, for the overdue sweep.
	ListDue(ctx context.Context, asOf time.Time) ([]*Invoice, error)
}
