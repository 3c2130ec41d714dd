package plan

import (
	"github.com/billcraft/billcraft/internal/types"
	"github.com/shopspring/decimal"
)

// Plan is a recurring price attached to a product, billed at a fixed cadence.
type Plan struct {
	ID            string              `db:"id" json:"id"`
	ProductID     string              `db:"product_id" json:"product_id"`
	Name          string              `db:"name" json:"name"`
	Description   string              `db:"description" json:"description"`
	Price         decimal.Decimal     `db:"price" json:"price"`
	BillingPeriod types.BillingPeriod `db:"billing_period" json:"billing_period"`

	types.BaseModel
}
