package plan

import (
	"context"

	"github.com/billcraft/billcraft/internal/types"
)

// Repository defines the interface for plan data access
type Repository interface {
	Create(ctx context.Context, plan *Plan) error
	Get(ctx context.Context, id string) (*Plan, error)
	List(ctx context.Context, filter *types.QueryFilter) ([]*Plan, error)
	Count(ctx context.Context, filter *types.QueryFilter) (int, error)
	Update(ctx context.Context, plan *Plan) error
	Delete(ctx context.Context, id string) error
}
