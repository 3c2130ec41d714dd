package testutil

import (
	"context"

	"github.com/billcraft/billcraft/internal/domain/customer"
	"github.com/billcraft/billcraft/internal/types"
	"github.com/samber/lo"
)

// InMemoryCustomerStore implements customer.Repository
type InMemoryCustomerStore struct {
	*InMemoryStore[*customer.Customer]
}

func NewInMemoryCustomerStore() *InMemoryCustomerStore {
	return &InMemoryCustomerStore{
		InMemoryStore: NewInMemoryStore[*customer.Customer](),
	}
}

func copyCustomer(c *customer.Customer) *customer.Customer {
	if c == nil {
		return nil
	}
	out := *c
	return &out
}

func (s *InMemoryCustomerStore) Create(ctx context.Context, c *customer.Customer) error {
	return s.InMemoryStore.Create(ctx, c.ID, copyCustomer(c))
}

func (s *InMemoryCustomerStore) Get(ctx context.Context, id string) (*customer.Customer, error) {
	c, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status == types.StatusDeleted {
		return nil, notFound("customer", id)
	}
	return copyCustomer(c), nil
}

func customerFilterFn(ctx context.Context, c *customer.Customer, filter interface{}) bool {
	if c.TenantID != types.GetTenantID(ctx) {
		return false
	}
	f, ok := filter.(*types.QueryFilter)
	if !ok || f == nil {
		return c.Status != types.StatusDeleted
	}
	return baseStatusMatches(c.Status, f)
}

func customerSortFn(i, j *customer.Customer) bool {
	return i.CreatedAt.After(j.CreatedAt)
}

func (s *InMemoryCustomerStore) List(ctx context.Context, filter *types.QueryFilter) ([]*customer.Customer, error) {
	items, err := s.InMemoryStore.List(ctx, filter, customerFilterFn, customerSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(c *customer.Customer, _ int) *customer.Customer {
		return copyCustomer(c)
	}), nil
}

func (s *InMemoryCustomerStore) Count(ctx context.Context, filter *types.QueryFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, customerFilterFn)
}

func (s *InMemoryCustomerStore) Update(ctx context.Context, c *customer.Customer) error {
	return s.InMemoryStore.Update(ctx, c.ID, copyCustomer(c))
}

func (s *InMemoryCustomerStore) Delete(ctx context.Context, id string) error {
	c, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return err
	}
	deleted := copyCustomer(c)
	deleted.Status = types.StatusDeleted
	return s.InMemoryStore.Update(ctx, id, deleted)
}
