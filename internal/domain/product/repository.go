package product

import (
	"context"

	"github.com/billcraft/billcraft/internal/types"
)

// Repository defines the interface for product data access
type Repository interface {
	Create(ctx context.Context, product *Product) error
	Get(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, filter *types.QueryFilter) ([]*Product, error)
	Count(ctx context.Context, filter *types.QueryFilter) (int, error)
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id string) error
}
