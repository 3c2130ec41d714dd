package dto

import (
	"context"
	"time"

	"github.com/billcraft/billcraft/internal/domain/plan"
	ierr "github.com/billcraft/billcraft/internal/errors"
	"github.com/billcraft/billcraft/internal/types"
	"github.com/shopspring/decimal"
)

// CreatePlanRequest represents a request to create a plan
type CreatePlanRequest struct {
	ProductID     string              `json:"product_id" validate:"required"`
	Name          string              `json:"name" validate:"required"`
	Description   string              `json:"description,omitempty"`
	Price         decimal.Decimal     `json:"price"`
	BillingPeriod types.BillingPeriod `json:"billing_period" validate:"required"`
}

func (r *CreatePlanRequest) Validate() error {
	if err := r.BillingPeriod.Validate(); err != nil {
		return err
	}
	if r.Price.IsNegative() {
		return ierr.NewError("plan price must not be negative").
			WithReportableDetails(map[string]any{"price": r.Price}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// UpdatePlanRequest represents a request to update a plan
type UpdatePlanRequest struct {
	Name          *string              `json:"name,omitempty"`
	Description   *string              `json:"description,omitempty"`
	Price         *decimal.Decimal     `json:"price,omitempty"`
	BillingPeriod *types.BillingPeriod `json:"billing_period,omitempty"`
}

// PlanResponse represents a plan response
type PlanResponse struct {
	ID            string              `json:"id"`
	ProductID     string              `json:"product_id"`
	Name          string              `json:"name"`
	Description   string              `json:"description,omitempty"`
	Price         decimal.Decimal     `json:"price"`
	BillingPeriod types.BillingPeriod `json:"billing_period"`
	TenantID      string              `json:"tenant_id"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// ListPlansResponse represents a paginated list of plans
type ListPlansResponse struct {
	Items      []*PlanResponse          `json:"items"`
	Pagination types.PaginationResponse `json:"pagination"`
}

// ToPlan converts a create plan request to a plan
func (r *CreatePlanRequest) ToPlan(ctx context.Context) *plan.Plan {
	return &plan.Plan{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PLAN),
		ProductID:     r.ProductID,
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		BillingPeriod: r.BillingPeriod,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
}

// NewPlanResponse creates a new plan response from a plan
func NewPlanResponse(p *plan.Plan) *PlanResponse {
	return &PlanResponse{
		ID:            p.ID,
		ProductID:     p.ProductID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		BillingPeriod: p.BillingPeriod,
		TenantID:      p.TenantID,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
