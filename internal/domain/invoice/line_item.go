package invoice

import (
	"github.com/billcraft/billcraft/internal/types"
	"github.com/shopspring/decimal"
)

// InvoiceLineItem is a frozen copy of a subscription line taken at issuance.
type InvoiceLineItem struct {
	ID              string          `db:"id" json:"id"`
	InvoiceID       string          `db:"invoice_id" json:"invoice_id"`
	ProductID       string          `db:"product_id" json:"product_id"`
	ProductName     string          `db:"product_name" json:"product_name"`
	UnitPrice       decimal.Decimal `db:"unit_price" json:"unit_price"`
	Quantity        int             `db:"quantity" json:"quantity"`
	TaxPercent      decimal.Decimal `db:"tax_percent" json:"tax_percent"`
	DiscountPercent decimal.Decimal `db:"discount_percent" json:"discount_percent"`
	LineTotal       decimal.Decimal `db:"line_total" json:"line_total"`
	DisplayOrder    int             `db:"display_order" json:"display_order"`

	types.BaseModel
}
