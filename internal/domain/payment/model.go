package payment

import (
	"time"

	"github.com/billcraft/billcraft/internal/types"
	"github.com/shopspring/decimal"
)

// Payment is a settlement event against an invoice. Completed payments
// count toward the invoice's amount paid; their sum never exceeds the
// invoice grand total.
type Payment struct {
	ID            string                  `db:"id" json:"id"`
	InvoiceID     string                  `db:"invoice_id" json:"invoice_id"`
	Amount        decimal.Decimal         `db:"amount" json:"amount"`
	PaymentMethod types.PaymentMethodType `db:"payment_method" json:"payment_method"`
	PaymentStatus types.PaymentStatus     `db:"payment_status" json:"payment_status"`
	// ReferenceID is the external identifier handed back by the payment
	// instrument, when one exists.
	ReferenceID *string   `db:"reference_id" json:"reference_id,omitempty"`
	PaymentDate time.Time `db:"payment_date" json:"payment_date"`

	Metadata types.Metadata `db:"metadata" json:"metadata,omitempty"`

	types.BaseModel
}
