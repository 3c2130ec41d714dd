package dto

import (
	"context"
	"time"

	"github.com/billcraft/billcraft/internal/domain/product"
	ierr "github.com/billcraft/billcraft/internal/errors"
	"github.com/billcraft/billcraft/internal/types"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Active      *bool           `json:"active,omitempty"`
}

func (r *CreateProductRequest) Validate() error {
	if r.Price.IsNegative() {
		return ierr.NewError("product price must not be negative").
			WithReportableDetails(map[string]any{"price": r.Price}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// UpdateProductRequest represents a request to update a product
type UpdateProductRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Active      *bool            `json:"active,omitempty"`
}

// ProductResponse represents a product response
type ProductResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Active      bool            `json:"active"`
	TenantID    string          `json:"tenant_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ListProductsResponse represents a paginated list of products
type ListProductsResponse struct {
	Items      []*ProductResponse       `json:"items"`
	Pagination types.PaginationResponse `json:"pagination"`
}

// ToProduct converts a create product request to a product
func (r *CreateProductRequest) ToProduct(ctx context.Context) *product.Product {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return &product.Product{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PRODUCT),
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Active:      active,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
}

// NewProductResponse creates a new product response from a product
func NewProductResponse(p *product.Product) *ProductResponse {
	return &ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Active:      p.Active,
		TenantID:    p.TenantID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
