package testutil

import (
	"context"

	"github.com/billcraft/billcraft/internal/domain/payment"
	"github.com/billcraft/billcraft/internal/types"
	"github.com/samber/lo"
)

// InMemoryPaymentStore implements payment.Repository
type InMemoryPaymentStore struct {
	*InMemoryStore[*payment.Payment]
}

func NewInMemoryPaymentStore() *InMemoryPaymentStore {
	return &InMemoryPaymentStore{
		InMemoryStore: NewInMemoryStore[*payment.Payment](),
	}
}

func copyPayment(p *payment.Payment) *payment.Payment {
	if p == nil {
		return nil
	}
	out := *p
	return &out
}

func (s *InMemoryPaymentStore) Create(ctx context.Context, p *payment.Payment) error {
	return s.InMemoryStore.Create(ctx, p.ID, copyPayment(p))
}

func (s *InMemoryPaymentStore) Get(ctx context.Context, id string) (*payment.Payment, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, notFound("payment", id)
	}
	return copyPayment(p), nil
}

func paymentFilterFn(ctx context.Context, p *payment.Payment, filter interface{}) bool {
	if p.TenantID != types.GetTenantID(ctx) {
		return false
	}
	if p.Status == types.StatusDeleted {
		return false
	}

	f, ok := filter.(*types.PaymentFilter)
	if !ok || f == nil {
		return true
	}
	if f.InvoiceID != "" && p.InvoiceID != f.InvoiceID {
		return false
	}
	if len(f.PaymentStatus) > 0 && !lo.Contains(f.PaymentStatus, p.PaymentStatus) {
		return false
	}
	if len(f.PaymentMethod) > 0 && !lo.Contains(f.PaymentMethod, p.PaymentMethod) {
		return false
	}
	if f.TimeRangeFilter != nil {
		if f.StartTime != nil && p.PaymentDate.Before(*f.StartTime) {
			return false
		}
		if f.EndTime != nil && p.PaymentDate.After(*f.EndTime) {
			return false
		}
	}
	return true
}

func paymentSortFn(i, j *payment.Payment) bool {
	return i.PaymentDate.After(j.PaymentDate)
}

func (s *InMemoryPaymentStore) List(ctx context.Context, filter *types.PaymentFilter) ([]*payment.Payment, error) {
	items, err := s.InMemoryStore.List(ctx, filter, paymentFilterFn, paymentSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(p *payment.Payment, _ int) *payment.Payment {
		return copyPayment(p)
	}), nil
}

func (s *InMemoryPaymentStore) Count(ctx context.Context, filter *types.PaymentFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, paymentFilterFn)
}

func (s *InMemoryPaymentStore) Update(ctx context.Context, p *payment.Payment) error {
	return s.InMemoryStore.Update(ctx, p.ID, copyPayment(p))
}

func (s *InMemoryPaymentStore) ListCompletedByInvoice(ctx context.Context, invoiceID string) ([]*payment.Payment, error) {
	items, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, p *payment.Payment, _ interface{}) bool {
		return p.TenantID == types.GetTenantID(ctx) &&
			p.InvoiceID == invoiceID &&
			p.PaymentStatus == types.PaymentStatusCompleted
	}, func(i, j *payment.Payment) bool {
		return i.PaymentDate.Before(j.PaymentDate)
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(p *payment.Payment, _ int) *payment.Payment {
		return copyPayment(p)
	}), nil
}
