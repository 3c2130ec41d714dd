package testutil

import (
	"context"

	"github.com/billcraft/billcraft/internal/domain/product"
	"github.com/billcraft/billcraft/internal/types"
	"github.com/samber/lo"
)

// InMemoryProductStore implements product.Repository
type InMemoryProductStore struct {
	*InMemoryStore[*product.Product]
}

func NewInMemoryProductStore() *InMemoryProductStore {
	return &InMemoryProductStore{
		InMemoryStore: NewInMemoryStore[*product.Product](),
	}
}

func copyProduct(p *product.Product) *product.Product {
	if p == nil {
		return nil
	}
	out := *p
	return &out
}

func (s *InMemoryProductStore) Create(ctx context.Context, p *product.Product) error {
	return s.InMemoryStore.Create(ctx, p.ID, copyProduct(p))
}

func (s *InMemoryProductStore) Get(ctx context.Context, id string) (*product.Product, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status == types.StatusDeleted {
		return nil, notFound("product", id)
	}
	return copyProduct(p), nil
}

func productFilterFn(ctx context.Context, p *product.Product, filter interface{}) bool {
	if p.TenantID != types.GetTenantID(ctx) {
		return false
	}
	f, ok := filter.(*types.QueryFilter)
	if !ok || f == nil {
		return p.Status != types.StatusDeleted
	}
	return baseStatusMatches(p.Status, f)
}

func productSortFn(i, j *product.Product) bool {
	return i.CreatedAt.After(j.CreatedAt)
}

func (s *InMemoryProductStore) List(ctx context.Context, filter *types.QueryFilter) ([]*product.Product, error) {
	items, err := s.InMemoryStore.List(ctx, filter, productFilterFn, productSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(p *product.Product, _ int) *product.Product {
		return copyProduct(p)
	}), nil
}

func (s *InMemoryProductStore) Count(ctx context.Context, filter *types.QueryFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, productFilterFn)
}

func (s *InMemoryProductStore) Update(ctx context.Context, p *product.Product) error {
	return s.InMemoryStore.Update(ctx, p.ID, copyProduct(p))
}

func (s *InMemoryProductStore) Delete(ctx context.Context, id string) error {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return err
	}
	deleted := copyProduct(p)
	deleted.Status = types.StatusDeleted
	return s.InMemoryStore.Update(ctx, id, deleted)
}
