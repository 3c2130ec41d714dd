package subscription

import (
	"github.com/billcraft/billcraft/internal/types"
	"github.com/shopspring/decimal"
)

// SubscriptionLineItem is one product line on a subscription, keyed by
// product within its parent. Name and unit price are frozen copies of the
// product at the moment the line was added or last updated.
type SubscriptionLineItem struct {
	ID              string          `db:"id" json:"id"`
	SubscriptionID  string          `db:"subscription_id" json:"subscription_id"`
	ProductID       string          `db:"product_id" json:"product_id"`
	ProductName     string          `db:"product_name" json:"product_name"`
	UnitPrice       decimal.Decimal `db:"unit_price" json:"unit_price"`
	Quantity        int             `db:"quantity" json:"quantity"`
	TaxPercent      decimal.Decimal `db:"tax_percent" json:"tax_percent"`
	DiscountPercent decimal.Decimal `db:"discount_percent" json:"discount_percent"`
	LineTotal       decimal.Decimal `db:"line_total" json:"line_total"`
	// DisplayOrder preserves insertion order for rendering; totals never
	// depend on it.
	DisplayOrder int `db:"display_order" json:"display_order"`

	types.BaseModel
}
