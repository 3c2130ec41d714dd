package customer

import (
	"github.com/billcraft/billcraft/internal/types"
)

// Customer is the billing directory entry a subscription is sold to.
type Customer struct {
	ID      string `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Email   string `db:"email" json:"email"`
	Phone   string `db:"phone" json:"phone"`
	Address string `db:"address" json:"address"`

	types.BaseModel
}
