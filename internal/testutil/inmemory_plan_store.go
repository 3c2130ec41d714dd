package testutil

import (
	"context"

	"github.com/billcraft/billcraft/internal/domain/plan"
	"github.com/billcraft/billcraft/internal/types"
	"github.com/samber/lo"
)

// InMemoryPlanStore implements plan.Repository
type InMemoryPlanStore struct {
	*InMemoryStore[*plan.Plan]
}

func NewInMemoryPlanStore() *InMemoryPlanStore {
	return &InMemoryPlanStore{
		InMemoryStore: NewInMemoryStore[*plan.Plan](),
	}
}

func copyPlan(p *plan.Plan) *plan.Plan {
	if p == nil {
		return nil
	}
	out := *p
	return &out
}

func (s *InMemoryPlanStore) Create(ctx context.Context, p *plan.Plan) error {
	return s.InMemoryStore.Create(ctx, p.ID, copyPlan(p))
}

func (s *InMemoryPlanStore) Get(ctx context.Context, id string) (*plan.Plan, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status == types.StatusDeleted {
		return nil, notFound("plan", id)
	}
	return copyPlan(p), nil
}

func planFilterFn(ctx context.Context, p *plan.Plan, filter interface{}) bool {
	if p.TenantID != types.GetTenantID(ctx) {
		return false
	}
	f, ok := filter.(*types.QueryFilter)
	if !ok || f == nil {
		return p.Status != types.StatusDeleted
	}
	return baseStatusMatches(p.Status, f)
}

func planSortFn(i, j *plan.Plan) bool {
	return i.CreatedAt.After(j.CreatedAt)
}

func (s *InMemoryPlanStore) List(ctx context.Context, filter *types.QueryFilter) ([]*plan.Plan, error) {
	items, err := s.InMemoryStore.List(ctx, filter, planFilterFn, planSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(p *plan.Plan, _ int) *plan.Plan {
		return copyPlan(p)
	}), nil
}

func (s *InMemoryPlanStore) Count(ctx context.Context, filter *types.QueryFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, planFilterFn)
}

func (s *InMemoryPlanStore) Update(ctx context.Context, p *plan.Plan) error {
	return s.InMemoryStore.Update(ctx, p.ID, copyPlan(p))
}

func (s *InMemoryPlanStore) Delete(ctx context.Context, id string) error {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return err
	}
	deleted := copyPlan(p)
	deleted.Status = types.StatusDeleted
	return s.InMemoryStore.Update(ctx, id, deleted)
}
