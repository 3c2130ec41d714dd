package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/billcraft/billcraft/internal/domain/invoice"
	ierr "github.com/billcraft/billcraft/internal/errors"
	"github.com/billcraft/billcraft/internal/types"
	"github.com/samber/lo"
)

// InMemoryInvoiceStore implements invoice.Repository, including the
// tenant-scoped invoice number sequence.
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]

	seqMu     sync.Mutex
	sequences map[string]int
}

func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[*invoice.Invoice](),
		sequences:     make(map[string]int),
	}
}

func copyInvoice(inv *invoice.Invoice) *invoice.Invoice {
	if inv == nil {
		return nil
	}
	out := *inv
	out.LineItems = make([]*invoice.InvoiceLineItem, len(inv.LineItems))
	for i, line := range inv.LineItems {
		lineCopy := *line
		out.LineItems[i] = &lineCopy
	}
	return &out
}

func (s *InMemoryInvoiceStore) CreateWithLineItems(ctx context.Context, inv *invoice.Invoice) error {
	return s.InMemoryStore.Create(ctx, inv.ID, copyInvoice(inv))
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, notFound("invoice", id)
	}
	out := copyInvoice(inv)
	out.LineItems = nil
	return out, nil
}

func (s *InMemoryInvoiceStore) GetWithLineItems(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, notFound("invoice", id)
	}
	return copyInvoice(inv), nil
}

func (s *InMemoryInvoiceStore) GetByIdempotencyKey(ctx context.Context, key string) (*invoice.Invoice, error) {
	items, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, inv *invoice.Invoice, _ interface{}) bool {
		return inv.TenantID == types.GetTenantID(ctx) &&
			inv.IdempotencyKey != nil && *inv.IdempotencyKey == key
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ierr.NewErrorf("no invoice for idempotency key %s", key).
			Mark(ierr.ErrNotFound)
	}
	return copyInvoice(items[0]), nil
}

func invoiceFilterFn(ctx context.Context, inv *invoice.Invoice, filter interface{}) bool {
	if inv.TenantID != types.GetTenantID(ctx) {
		return false
	}
	if inv.Status == types.StatusDeleted {
		return false
	}

	f, ok := filter.(*types.InvoiceFilter)
	if !ok || f == nil {
		return true
	}
	if len(f.InvoiceIDs) > 0 && !lo.Contains(f.InvoiceIDs, inv.ID) {
		return false
	}
	if f.CustomerID != "" && inv.CustomerID != f.CustomerID {
		return false
	}
	if f.SubscriptionID != "" && inv.SubscriptionID != f.SubscriptionID {
		return false
	}
	if len(f.InvoiceStatus) > 0 && !lo.Contains(f.InvoiceStatus, inv.InvoiceStatus) {
		return false
	}
	if f.TimeRangeFilter != nil {
		if f.StartTime != nil && inv.CreatedAt.Before(*f.StartTime) {
			return false
		}
		if f.EndTime != nil && inv.CreatedAt.After(*f.EndTime) {
			return false
		}
	}
	return true
}

func invoiceSortFn(i, j *invoice.Invoice) bool {
	return i.CreatedAt.After(j.CreatedAt)
}

func (s *InMemoryInvoiceStore) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	items, err := s.InMemoryStore.List(ctx, filter, invoiceFilterFn, invoiceSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(inv *invoice.Invoice, _ int) *invoice.Invoice {
		return copyInvoice(inv)
	}), nil
}

func (s *InMemoryInvoiceStore) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, invoiceFilterFn)
}

func (s *InMemoryInvoiceStore) Update(ctx context.Context, inv *invoice.Invoice) error {
	stored, err := s.InMemoryStore.Get(ctx, inv.ID)
	if err != nil {
		return notFound("invoice", inv.ID)
	}
	if stored.Version != inv.Version {
		return ierr.NewErrorf("invoice %s was modified concurrently", inv.ID).
			WithHint("Re-read the invoice and retry the operation once").
			WithReportableDetails(map[string]any{"invoice_id": inv.ID}).
			Mark(ierr.ErrConcurrentModification)
	}

	inv.Version++
	inv.UpdatedAt = time.Now().UTC()
	inv.UpdatedBy = types.GetUserID(ctx)

	updated := copyInvoice(inv)
	if len(updated.LineItems) == 0 {
		updated.LineItems = stored.LineItems
	}
	return s.InMemoryStore.Update(ctx, inv.ID, updated)
}

func (s *InMemoryInvoiceStore) GetNextInvoiceNumber(ctx context.Context) (string, error) {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()

	tenantID := types.GetTenantID(ctx)
	s.sequences[tenantID]++
	return fmt.Sprintf("INV-%08d", s.sequences[tenantID]), nil
}

func (s *InMemoryInvoiceStore) ListDue(ctx context.Context, asOf time.Time) ([]*invoice.Invoice, error) {
	items, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, inv *invoice.Invoice, _ interface{}) bool {
		if inv.TenantID != types.GetTenantID(ctx) || inv.Status == types.StatusDeleted {
			return false
		}
		return inv.InvoiceStatus == types.InvoiceStatusConfirmed &&
			inv.DueDate != nil && inv.DueDate.Before(asOf)
	}, invoiceSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(inv *invoice.Invoice, _ int) *invoice.Invoice {
		return copyInvoice(inv)
	}), nil
}

// Clear resets both the invoices and the number sequence.
func (s *InMemoryInvoiceStore) Clear() {
	s.InMemoryStore.Clear()
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	s.sequences = make(map[string]int)
}
