package service

import (
	"context"
	"time"

	"github.com/billcraft/billcraft/internal/api/dto"
	ierr "github.com/billcraft/billcraft/internal/errors"
	"github.com/billcraft/billcraft/internal/types"
	"github.com/billcraft/billcraft/internal/validator"
)

type CustomerService interface {
	Create(ctx context.Context, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error)
	Get(ctx context.Context, id string) (*dto.CustomerResponse, error)
	List(ctx context.Context, filter *types.QueryFilter) (*dto.ListCustomersResponse, error)
	Update(ctx context.Context, id string, req dto.UpdateCustomerRequest) (*dto.CustomerResponse, error)
	Delete(ctx context.Context, id string) error
}

type customerService struct {
	ServiceParams
}

func NewCustomerService(params ServiceParams) CustomerService {
	return &customerService{ServiceParams: params}
}

func (s *customerService) Create(ctx context.Context, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	if err := validator.ValidateRequest(&req); err != nil {
		return nil, err
	}

	cust := req.ToCustomer(ctx)
	if err := s.CustomerRepo.Create(ctx, cust); err != nil {
		return nil, err
	}

	s.Logger.Infow("created customer", "customer_id", cust.ID)
	return dto.NewCustomerResponse(cust), nil
}

func (s *customerService) Get(ctx context.Context, id string) (*dto.CustomerResponse, error) {
	cust, err := s.CustomerRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewCustomerResponse(cust), nil
}

func (s *customerService) List(ctx context.Context, filter *types.QueryFilter) (*dto.ListCustomersResponse, error) {
	if filter == nil {
		filter = types.NewDefaultQueryFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid customer filter").
			Mark(ierr.ErrValidation)
	}

	customers, err := s.CustomerRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.CustomerRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.CustomerResponse, len(customers))
	for i, cust := range customers {
		items[i] = dto.NewCustomerResponse(cust)
	}

	return &dto.ListCustomersResponse{
		Items:      items,
		Pagination: types.PaginationResponse{Total: total, Limit: filter.GetLimit(), Offset: filter.GetOffset()},
	}, nil
}

func (s *customerService) Update(ctx context.Context, id string, req dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	if err := validator.ValidateRequest(&req); err != nil {
		return nil, err
	}

	cust, err := s.CustomerRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		cust.Name = *req.Name
	}
	if req.Email != nil {
		cust.Email = *req.Email
	}
	if req.Phone != nil {
		cust.Phone = *req.Phone
	}
	if req.Address != nil {
		cust.Address = *req.Address
	}
	cust.UpdatedAt = time.Now().UTC()

	if err := s.CustomerRepo.Update(ctx, cust); err != nil {
		return nil, err
	}
	return dto.NewCustomerResponse(cust), nil
}

func (s *customerService) Delete(ctx context.Context, id string) error {
	if _, err := s.CustomerRepo.Get(ctx, id); err != nil {
		return err
	}
	return s.CustomerRepo.Delete(ctx, id)
}
