package service

import (
	"context"
	"time"

	"github.com/billcraft/billcraft/internal/api/dto"
	"github.com/billcraft/billcraft/internal/domain/invoice"
	"github.com/billcraft/billcraft/internal/domain/subscription"
	ierr "github.com/billcraft/billcraft/internal/errors"
	"github.com/billcraft/billcraft/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// InvoiceService owns the invoice lifecycle. Invoices are materialized from
// subscriptions by the confirm and renewal transitions, issued immediately,
// and stay frozen from then on; only settlement state changes afterwards.
type InvoiceService interface {
	// GenerateFromSubscription freezes the subscription's current totals and
	// lines into a new issued invoice. A retry with the same idempotency key
	// returns the invoice created by the first attempt.
	GenerateFromSubscription(ctx context.Context, sub *subscription.Subscription, reason types.InvoiceBillingReason, idempotencyKey string, periodStart, periodEnd time.Time) (*invoice.Invoice, error)
	Get(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	List(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error)
	MarkOverdue(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	ProcessOverdue(ctx context.Context, asOf time.Time) (*dto.OverdueRunResponse, error)
	Void(ctx context.Context, id string) (*dto.InvoiceResponse, error)
}

type invoiceService struct {
	ServiceParams
}

func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{ServiceParams: params}
}

func (s *invoiceService) GenerateFromSubscription(ctx context.Context, sub *subscription.Subscription, reason types.InvoiceBillingReason, idempotencyKey string, periodStart, periodEnd time.Time) (*invoice.Invoice, error) {
	if existing, err := s.InvoiceRepo.GetByIdempotencyKey(ctx, idempotencyKey); err == nil {
		s.Logger.Infow("invoice already exists for billing event",
			"invoice_id", existing.ID,
			"idempotency_key", idempotencyKey,
		)
		return s.InvoiceRepo.GetWithLineItems(ctx, existing.ID)
	} else if !ierr.IsNotFound(err) {
		return nil, err
	}

	invoiceNumber, err := s.InvoiceRepo.GetNextInvoiceNumber(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	dueDate := now.AddDate(0, 0, s.Config.Billing.PaymentTermDays)

	inv := &invoice.Invoice{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		InvoiceNumber:  invoiceNumber,
		CustomerID:     sub.CustomerID,
		SubscriptionID: sub.ID,
		InvoiceStatus:  types.InvoiceStatusConfirmed,
		BillingReason:  reason,
		IdempotencyKey: lo.ToPtr(idempotencyKey),
		IssueDate:      now,
		DueDate:        &dueDate,
		PeriodStart:    &periodStart,
		PeriodEnd:      &periodEnd,
		Subtotal:       sub.Subtotal,
		TaxTotal:       sub.TaxTotal,
		DiscountTotal:  sub.DiscountTotal,
		GrandTotal:     sub.GrandTotal,
		AmountPaid:     decimal.Zero,
		Version:        1,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}

	// The recurring plan charge renders as its own line ahead of the
	// product lines.
	if sub.PlanPrice.IsPositive() {
		inv.LineItems = append(inv.LineItems, &invoice.InvoiceLineItem{
			ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE_ITEM),
			InvoiceID:       inv.ID,
			ProductName:     sub.PlanName,
			UnitPrice:       sub.PlanPrice,
			Quantity:        1,
			TaxPercent:      decimal.Zero,
			DiscountPercent: decimal.Zero,
			LineTotal:       sub.PlanPrice,
			BaseModel:       types.GetDefaultBaseModel(ctx),
		})
	}
	for _, line := range sub.LineItems {
		inv.LineItems = append(inv.LineItems, &invoice.InvoiceLineItem{
			ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE_ITEM),
			InvoiceID:       inv.ID,
			ProductID:       line.ProductID,
			ProductName:     line.ProductName,
			UnitPrice:       line.UnitPrice,
			Quantity:        line.Quantity,
			TaxPercent:      line.TaxPercent,
			DiscountPercent: line.DiscountPercent,
			LineTotal:       line.LineTotal,
			BaseModel:       types.GetDefaultBaseModel(ctx),
		})
	}
	for i, line := range inv.LineItems {
		line.DisplayOrder = i + 1
	}

	if err := s.InvoiceRepo.CreateWithLineItems(ctx, inv); err != nil {
		return nil, err
	}

	s.Logger.Infow("generated invoice",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"subscription_id", sub.ID,
		"billing_reason", reason,
		"grand_total", inv.GrandTotal,
	)
	s.publishWebhookEvent(ctx, types.WebhookEventInvoiceUpdateFinalized, dto.NewInvoiceResponse(inv))

	return inv, nil
}

func (s *invoiceService) Get(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.GetWithLineItems(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewInvoiceResponse(inv), nil
}

func (s *invoiceService) List(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid invoice filter").
			Mark(ierr.ErrValidation)
	}

	invoices, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.InvoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		items[i] = dto.NewInvoiceResponse(inv)
	}

	return &dto.ListInvoicesResponse{
		Items:      items,
		Pagination: types.PaginationResponse{Total: total, Limit: filter.GetLimit(), Offset: filter.GetOffset()},
	}, nil
}

// MarkOverdue flips a confirmed invoice past its due date to overdue. It is
// idempotent: an invoice that is already overdue is returned unchanged.
func (s *invoiceService) MarkOverdue(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	var resp *dto.InvoiceResponse

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.DB.LockEntity(ctx, "invoice:"+id); err != nil {
			return err
		}

		inv, err := s.InvoiceRepo.GetWithLineItems(ctx, id)
		if err != nil {
			return err
		}

		if inv.InvoiceStatus == types.InvoiceStatusOverdue {
			resp = dto.NewInvoiceResponse(inv)
			return nil
		}
		if inv.InvoiceStatus != types.InvoiceStatusConfirmed {
			return ierr.NewErrorf("invoice %s is %s", inv.ID, inv.InvoiceStatus).
				WithHint("Only confirmed invoices can become overdue").
				WithReportableDetails(map[string]any{
					"invoice_id":     inv.ID,
					"invoice_status": inv.InvoiceStatus,
				}).
				Mark(ierr.ErrInvalidState)
		}

		inv.InvoiceStatus = types.InvoiceStatusOverdue
		if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
			return err
		}

		s.publishWebhookEvent(ctx, types.WebhookEventInvoiceUpdateOverdue, dto.NewInvoiceResponse(inv))
		resp = dto.NewInvoiceResponse(inv)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ProcessOverdue sweeps confirmed invoices whose due date has passed.
func (s *invoiceService) ProcessOverdue(ctx context.Context, asOf time.Time) (*dto.OverdueRunResponse, error) {
	due, err := s.InvoiceRepo.ListDue(ctx, asOf)
	if err != nil {
		return nil, err
	}

	result := &dto.OverdueRunResponse{Processed: len(due)}
	for _, inv := range due {
		if _, err := s.MarkOverdue(ctx, inv.ID); err != nil {
			result.Failed++
			s.Logger.Errorw("failed to mark invoice overdue",
				"invoice_id", inv.ID,
				"error", err,
			)
			continue
		}
		result.MarkedCount++
	}
	return result, nil
}

// Void cancels an invoice that has not collected money. Paid invoices can
// never be voided.
func (s *invoiceService) Void(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	var resp *dto.InvoiceResponse

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.DB.LockEntity(ctx, "invoice:"+id); err != nil {
			return err
		}

		inv, err := s.InvoiceRepo.GetWithLineItems(ctx, id)
		if err != nil {
			return err
		}

		if inv.InvoiceStatus != types.InvoiceStatusDraft && inv.InvoiceStatus != types.InvoiceStatusConfirmed {
			return ierr.NewErrorf("invoice %s is %s", inv.ID, inv.InvoiceStatus).
				WithHint("Only draft or confirmed invoices can be cancelled").
				WithReportableDetails(map[string]any{
					"invoice_id":     inv.ID,
					"invoice_status": inv.InvoiceStatus,
				}).
				Mark(ierr.ErrInvalidState)
		}

		inv.InvoiceStatus = types.InvoiceStatusCancelled
		if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
			return err
		}

		s.publishWebhookEvent(ctx, types.WebhookEventInvoiceUpdateVoided, dto.NewInvoiceResponse(inv))
		resp = dto.NewInvoiceResponse(inv)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
