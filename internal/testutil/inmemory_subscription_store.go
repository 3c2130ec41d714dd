package testutil

import (
	"context"
	"time"

	"github.com/billcraft/billcraft/internal/domain/subscription"
	ierr "github.com/billcraft/billcraft/internal/errors"
	"github.com/billcraft/billcraft/internal/types"
	"github.com/samber/lo"
)

// InMemorySubscriptionStore implements subscription.Repository with the same
// version-guard semantics as the SQL repository.
type InMemorySubscriptionStore struct {
	*InMemoryStore[*subscription.Subscription]
}

func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		InMemoryStore: NewInMemoryStore[*subscription.Subscription](),
	}
}

func copySubscription(sub *subscription.Subscription) *subscription.Subscription {
	if sub == nil {
		return nil
	}
	out := *sub
	out.LineItems = make([]*subscription.SubscriptionLineItem, len(sub.LineItems))
	for i, line := range sub.LineItems {
		lineCopy := *line
		out.LineItems[i] = &lineCopy
	}
	return &out
}

func (s *InMemorySubscriptionStore) CreateWithLineItems(ctx context.Context, sub *subscription.Subscription) error {
	dup, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, existing *subscription.Subscription, _ interface{}) bool {
		return existing.SubscriptionNumber == sub.SubscriptionNumber && existing.TenantID == sub.TenantID
	}, nil)
	if err != nil {
		return err
	}
	if len(dup) > 0 {
		return ierr.NewErrorf("subscription number %s already exists", sub.SubscriptionNumber).
			WithReportableDetails(map[string]any{"subscription_number": sub.SubscriptionNumber}).
			Mark(ierr.ErrDuplicateSubscriptionNumber)
	}
	return s.InMemoryStore.Create(ctx, sub.ID, copySubscription(sub))
}

func (s *InMemorySubscriptionStore) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	sub, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, notFound("subscription", id)
	}
	if sub.Status == types.StatusDeleted {
		return nil, notFound("subscription", id)
	}
	out := copySubscription(sub)
	out.LineItems = nil
	return out, nil
}

func (s *InMemorySubscriptionStore) GetWithLineItems(ctx context.Context, id string) (*subscription.Subscription, error) {
	sub, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, notFound("subscription", id)
	}
	if sub.Status == types.StatusDeleted {
		return nil, notFound("subscription", id)
	}
	return copySubscription(sub), nil
}

func subscriptionFilterFn(ctx context.Context, sub *subscription.Subscription, filter interface{}) bool {
	if sub.TenantID != types.GetTenantID(ctx) {
		return false
	}
	if sub.Status == types.StatusDeleted {
		return false
	}

	f, ok := filter.(*types.SubscriptionFilter)
	if !ok || f == nil {
		return true
	}
	if f.CustomerID != "" && sub.CustomerID != f.CustomerID {
		return false
	}
	if f.PlanID != "" && sub.PlanID != f.PlanID {
		return false
	}
	if len(f.SubscriptionStatus) > 0 && !lo.Contains(f.SubscriptionStatus, sub.SubscriptionStatus) {
		return false
	}
	if len(f.SubscriptionNumbers) > 0 && !lo.Contains(f.SubscriptionNumbers, sub.SubscriptionNumber) {
		return false
	}
	if f.TimeRangeFilter != nil {
		if f.StartTime != nil && sub.CreatedAt.Before(*f.StartTime) {
			return false
		}
		if f.EndTime != nil && sub.CreatedAt.After(*f.EndTime) {
			return false
		}
	}
	return true
}

func subscriptionSortFn(i, j *subscription.Subscription) bool {
	return i.CreatedAt.After(j.CreatedAt)
}

func (s *InMemorySubscriptionStore) List(ctx context.Context, filter *types.SubscriptionFilter) ([]*subscription.Subscription, error) {
	items, err := s.InMemoryStore.List(ctx, filter, subscriptionFilterFn, subscriptionSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(sub *subscription.Subscription, _ int) *subscription.Subscription {
		return copySubscription(sub)
	}), nil
}

func (s *InMemorySubscriptionStore) Count(ctx context.Context, filter *types.SubscriptionFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, subscriptionFilterFn)
}

func (s *InMemorySubscriptionStore) Update(ctx context.Context, sub *subscription.Subscription) error {
	stored, err := s.InMemoryStore.Get(ctx, sub.ID)
	if err != nil {
		return notFound("subscription", sub.ID)
	}
	if stored.Version != sub.Version {
		return ierr.NewErrorf("subscription %s was modified concurrently", sub.ID).
			WithHint("Re-read the subscription and retry the operation once").
			WithReportableDetails(map[string]any{"subscription_id": sub.ID}).
			Mark(ierr.ErrConcurrentModification)
	}

	sub.Version++
	sub.UpdatedAt = time.Now().UTC()
	sub.UpdatedBy = types.GetUserID(ctx)

	updated := copySubscription(sub)
	updated.LineItems = stored.LineItems
	return s.InMemoryStore.Update(ctx, sub.ID, updated)
}

func (s *InMemorySubscriptionStore) UpdateWithLineItems(ctx context.Context, sub *subscription.Subscription) error {
	stored, err := s.InMemoryStore.Get(ctx, sub.ID)
	if err != nil {
		return notFound("subscription", sub.ID)
	}
	if stored.Version != sub.Version {
		return ierr.NewErrorf("subscription %s was modified concurrently", sub.ID).
			WithHint("Re-read the subscription and retry the operation once").
			WithReportableDetails(map[string]any{"subscription_id": sub.ID}).
			Mark(ierr.ErrConcurrentModification)
	}

	sub.Version++
	sub.UpdatedAt = time.Now().UTC()
	sub.UpdatedBy = types.GetUserID(ctx)
	return s.InMemoryStore.Update(ctx, sub.ID, copySubscription(sub))
}

func (s *InMemorySubscriptionStore) Delete(ctx context.Context, id string) error {
	sub, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return notFound("subscription", id)
	}
	deleted := copySubscription(sub)
	deleted.Status = types.StatusDeleted
	return s.InMemoryStore.Update(ctx, id, deleted)
}

func (s *InMemorySubscriptionStore) ListDueForRenewal(ctx context.Context, asOf time.Time) ([]*subscription.Subscription, error) {
	items, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, sub *subscription.Subscription, _ interface{}) bool {
		if sub.TenantID != types.GetTenantID(ctx) || sub.Status == types.StatusDeleted {
			return false
		}
		return sub.IsActive() && sub.NextBillingDate != nil && !sub.NextBillingDate.After(asOf)
	}, subscriptionSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(sub *subscription.Subscription, _ int) *subscription.Subscription {
		return copySubscription(sub)
	}), nil
}
