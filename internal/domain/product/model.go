package product

import (
	"github.com/billcraft/billcraft/internal/types"
	"github.com/shopspring/decimal"
)

// Product is a catalog item that can be added to a subscription as a line.
// Its name and price are snapshotted onto lines at the time they are added,
// so later catalog edits never rewrite history.
type Product struct {
	ID          string          `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Active      bool            `db:"active" json:"active"`

	types.BaseModel
}
