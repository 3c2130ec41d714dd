package service

import (
	"context"
	"time"

	"github.com/billcraft/billcraft/internal/api/dto"
	ierr "github.com/billcraft/billcraft/internal/errors"
	"github.com/billcraft/billcraft/internal/types"
	"github.com/billcraft/billcraft/internal/validator"
)

type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id string) (*dto.ProductResponse, error)
	List(ctx context.Context, filter *types.QueryFilter) (*dto.ListProductsResponse, error)
	Update(ctx context.Context, id string, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Delete(ctx context.Context, id string) error
}

type productService struct {
	ServiceParams
}

func NewProductService(params ServiceParams) ProductService {
	return &productService{ServiceParams: params}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := validator.ValidateRequest(&req); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	prod := req.ToProduct(ctx)
	if err := s.ProductRepo.Create(ctx, prod); err != nil {
		return nil, err
	}

	s.Logger.Infow("created product", "product_id", prod.ID, "price", prod.Price)
	return dto.NewProductResponse(prod), nil
}

func (s *productService) Get(ctx context.Context, id string) (*dto.ProductResponse, error) {
	prod, err := s.ProductRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewProductResponse(prod), nil
}

func (s *productService) List(ctx context.Context, filter *types.QueryFilter) (*dto.ListProductsResponse, error) {
	if filter == nil {
		filter = types.NewDefaultQueryFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid product filter").
			Mark(ierr.ErrValidation)
	}

	products, err := s.ProductRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.ProductRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ProductResponse, len(products))
	for i, prod := range products {
		items[i] = dto.NewProductResponse(prod)
	}

	return &dto.ListProductsResponse{
		Items:      items,
		Pagination: types.PaginationResponse{Total: total, Limit: filter.GetLimit(), Offset: filter.GetOffset()},
	}, nil
}

func (s *productService) Update(ctx context.Context, id string, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if err := validator.ValidateRequest(&req); err != nil {
		return nil, err
	}

	prod, err := s.ProductRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		prod.Name = *req.Name
	}
	if req.Description != nil {
		prod.Description = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, ierr.NewError("product price must not be negative").
				WithReportableDetails(map[string]any{"price": *req.Price}).
				Mark(ierr.ErrValidation)
		}
		prod.Price = *req.Price
	}
	if req.Active != nil {
		prod.Active = *req.Active
	}
	prod.UpdatedAt = time.Now().UTC()

	if err := s.ProductRepo.Update(ctx, prod); err != nil {
		return nil, err
	}
	return dto.NewProductResponse(prod), nil
}

func (s *productService) Delete(ctx context.Context, id string) error {
	if _, err := s.ProductRepo.Get(ctx, id); err != nil {
		return err
	}
	return s.ProductRepo.Delete(ctx, id)
}
