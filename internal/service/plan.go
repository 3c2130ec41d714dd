package service

import (
	"context"
	"time"

	"github.com/billcraft/billcraft/internal/api/dto"
	ierr "github.com/billcraft/billcraft/internal/errors"
	"github.com/billcraft/billcraft/internal/types"
	"github.com/billcraft/billcraft/internal/validator"
)

type PlanService interface {
	Create(ctx context.Context, req dto.CreatePlanRequest) (*dto.PlanResponse, error)
	Get(ctx context.Context, id string) (*dto.PlanResponse, error)
	List(ctx context.Context, filter *types.QueryFilter) (*dto.ListPlansResponse, error)
	Update(ctx context.Context, id string, req dto.UpdatePlanRequest) (*dto.PlanResponse, error)
	Delete(ctx context.Context, id string) error
}

type planService struct {
	ServiceParams
}

func NewPlanService(params ServiceParams) PlanService {
	return &planService{ServiceParams: params}
}

func (s *planService) Create(ctx context.Context, req dto.CreatePlanRequest) (*dto.PlanResponse, error) {
	if err := validator.ValidateRequest(&req); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.ProductRepo.Get(ctx, req.ProductID); err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.WithError(err).
				WithHintf("Unknown product %s", req.ProductID).
				WithReportableDetails(map[string]any{"product_id": req.ProductID}).
				Mark(ierr.ErrInvalidReference)
		}
		return nil, err
	}

	p := req.ToPlan(ctx)
	if err := s.PlanRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.Logger.Infow("created plan",
		"plan_id", p.ID,
		"product_id", p.ProductID,
		"billing_period", p.BillingPeriod,
	)
	return dto.NewPlanResponse(p), nil
}

func (s *planService) Get(ctx context.Context, id string) (*dto.PlanResponse, error) {
	p, err := s.PlanRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewPlanResponse(p), nil
}

func (s *planService) List(ctx context.Context, filter *types.QueryFilter) (*dto.ListPlansResponse, error) {
	if filter == nil {
		filter = types.NewDefaultQueryFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid plan filter").
			Mark(ierr.ErrValidation)
	}

	plans, err := s.PlanRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.PlanRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.PlanResponse, len(plans))
	for i, p := range plans {
		items[i] = dto.NewPlanResponse(p)
	}

	return &dto.ListPlansResponse{
		Items:      items,
		Pagination: types.PaginationResponse{Total: total, Limit: filter.GetLimit(), Offset: filter.GetOffset()},
	}, nil
}

func (s *planService) Update(ctx context.Context, id string, req dto.UpdatePlanRequest) (*dto.PlanResponse, error) {
	if err := validator.ValidateRequest(&req); err != nil {
		return nil, err
	}

	p, err := s.PlanRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, ierr.NewError("plan price must not be negative").
				WithReportableDetails(map[string]any{"price": *req.Price}).
				Mark(ierr.ErrValidation)
		}
		p.Price = *req.Price
	}
	if req.BillingPeriod != nil {
		if err := req.BillingPeriod.Validate(); err != nil {
			return nil, err
		}
		p.BillingPeriod = *req.BillingPeriod
	}
	p.UpdatedAt = time.Now().UTC()

	if err := s.PlanRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	return dto.NewPlanResponse(p), nil
}

func (s *planService) Delete(ctx context.Context, id string) error {
	if _, err := s.PlanRepo.Get(ctx, id); err != nil {
		return err
	}
	return s.PlanRepo.Delete(ctx, id)
}
