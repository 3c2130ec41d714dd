package service

import (
	"context"
	"time"

	"github.com/billcraft/billcraft/internal/api/dto"
	"github.com/billcraft/billcraft/internal/domain/pricing"
	"github.com/billcraft/billcraft/internal/domain/product"
	"github.com/billcraft/billcraft/internal/domain/subscription"
	ierr "github.com/billcraft/billcraft/internal/errors"
	"github.com/billcraft/billcraft/internal/idempotency"
	"github.com/billcraft/billcraft/internal/types"
	"github.com/billcraft/billcraft/internal/validator"
	"github.com/shopspring/decimal"
)

// SubscriptionService owns the subscription lifecycle: quoting in draft,
// the confirm transition that freezes pricing and raises the first invoice,
// cancellation, and renewal processing.
type SubscriptionService interface {
	Create(ctx context.Context, req dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error)
	AddOrUpdateLine(ctx context.Context, subscriptionID string, req dto.AddOrUpdateLineRequest) (*dto.SubscriptionResponse, error)
	Confirm(ctx context.Context, subscriptionID string) (*dto.ConfirmSubscriptionResponse, error)
	Cancel(ctx context.Context, subscriptionID string) (*dto.SubscriptionResponse, error)
	Get(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
	List(ctx context.Context, filter *types.SubscriptionFilter) (*dto.ListSubscriptionsResponse, error)
	ProcessRenewals(ctx context.Context, asOf time.Time) (*dto.RenewalRunResponse, error)
}

type subscriptionService struct {
	ServiceParams
	invoiceService InvoiceService
}

func NewSubscriptionService(params ServiceParams, invoiceService InvoiceService) SubscriptionService {
	return &subscriptionService{
		ServiceParams:  params,
		invoiceService: invoiceService,
	}
}

func (s *subscriptionService) Create(ctx context.Context, req dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	if err := validator.ValidateRequest(&req); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.CustomerRepo.Get(ctx, req.CustomerID); err != nil {
		return nil, asInvalidReference(err, "customer", req.CustomerID)
	}
	planObj, err := s.PlanRepo.Get(ctx, req.PlanID)
	if err != nil {
		return nil, asInvalidReference(err, "plan", req.PlanID)
	}

	startDate := req.StartDate
	if startDate.IsZero() {
		startDate = time.Now().UTC()
	}

	sub := &subscription.Subscription{
		ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		SubscriptionNumber: types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_SUBSCRIPTION),
		CustomerID:         req.CustomerID,
		PlanID:             planObj.ID,
		PlanName:           planObj.Name,
		PlanPrice:          planObj.Price,
		BillingPeriod:      planObj.BillingPeriod,
		SubscriptionStatus: types.SubscriptionStatusDraft,
		StartDate:          startDate,
		EndDate:            req.EndDate,
		Version:            1,
		Metadata:           req.Metadata,
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}

	for _, lineReq := range req.Lines {
		prod, err := s.ProductRepo.Get(ctx, lineReq.ProductID)
		if err != nil {
			return nil, asInvalidReference(err, "product", lineReq.ProductID)
		}
		if !prod.Active {
			return nil, ierr.NewErrorf("product %s is not active", prod.ID).
				WithHint("Inactive products cannot be added to a subscription").
				WithReportableDetails(map[string]any{"product_id": prod.ID}).
				Mark(ierr.ErrInvalidReference)
		}

		if err := s.upsertLine(ctx, sub, prod, lineReq.Quantity, lineReq.TaxPercent, lineReq.DiscountPercent); err != nil {
			return nil, err
		}
	}

	if err := s.recomputeTotals(sub); err != nil {
		return nil, err
	}

	if err := s.SubRepo.CreateWithLineItems(ctx, sub); err != nil {
		return nil, err
	}

	s.Logger.Infow("created subscription",
		"subscription_id", sub.ID,
		"subscription_number", sub.SubscriptionNumber,
		"customer_id", sub.CustomerID,
		"grand_total", sub.GrandTotal,
	)
	s.publishWebhookEvent(ctx, types.WebhookEventSubscriptionCreated, dto.NewSubscriptionResponse(sub))

	return dto.NewSubscriptionResponse(sub), nil
}

// upsertLine adds or replaces the line keyed by the product, snapshotting the
// product name and price. Quantity and percentages are validated by the
// pricing computation.
func (s *subscriptionService) upsertLine(ctx context.Context, sub *subscription.Subscription, prod *product.Product, quantity int, taxPercent, discountPercent decimal.Decimal) error {
	lineTotal, err := pricing.ComputeLineTotal(pricing.LineInput{
		UnitPrice:       prod.Price,
		Quantity:        quantity,
		TaxPercent:      taxPercent,
		DiscountPercent: discountPercent,
	})
	if err != nil {
		return err
	}

	for _, existing := range sub.LineItems {
		if existing.ProductID == prod.ID {
			existing.ProductName = prod.Name
			existing.UnitPrice = prod.Price
			existing.Quantity = quantity
			existing.TaxPercent = taxPercent
			existing.DiscountPercent = discountPercent
			existing.LineTotal = lineTotal
			existing.UpdatedAt = time.Now().UTC()
			existing.UpdatedBy = types.GetUserID(ctx)
			return nil
		}
	}

	sub.LineItems = append(sub.LineItems, &subscription.SubscriptionLineItem{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION_LINE_ITEM),
		SubscriptionID:  sub.ID,
		ProductID:       prod.ID,
		ProductName:     prod.Name,
		UnitPrice:       prod.Price,
		Quantity:        quantity,
		TaxPercent:      taxPercent,
		DiscountPercent: discountPercent,
		LineTotal:       lineTotal,
		DisplayOrder:    len(sub.LineItems) + 1,
		BaseModel:       types.GetDefaultBaseModel(ctx),
	})
	return nil
}

// recomputeTotals rederives the four totals from the current lines and the
// snapshotted plan price.
func (s *subscriptionService) recomputeTotals(sub *subscription.Subscription) error {
	lines := make([]pricing.LineInput, len(sub.LineItems))
	for i, line := range sub.LineItems {
		lines[i] = pricing.LineInput{
			UnitPrice:       line.UnitPrice,
			Quantity:        line.Quantity,
			TaxPercent:      line.TaxPercent,
			DiscountPercent: line.DiscountPercent,
		}
	}

	totals, err := pricing.ComputeAggregate(lines, sub.PlanPrice)
	if err != nil {
		return err
	}

	sub.Subtotal = totals.Subtotal
	sub.TaxTotal = totals.TaxTotal
	sub.DiscountTotal = totals.DiscountTotal
	sub.GrandTotal = totals.GrandTotal
	return nil
}

func (s *subscriptionService) AddOrUpdateLine(ctx context.Context, subscriptionID string, req dto.AddOrUpdateLineRequest) (*dto.SubscriptionResponse, error) {
	if err := validator.ValidateRequest(&req); err != nil {
		return nil, err
	}
	if req.Quantity < 0 {
		return nil, ierr.NewError("quantity must not be negative").
			WithHint("Use quantity 0 to remove a line").
			WithReportableDetails(map[string]any{"quantity": req.Quantity}).
			Mark(ierr.ErrInvalidLineInput)
	}

	sub, err := s.SubRepo.GetWithLineItems(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if !sub.IsEditable() {
		return nil, ierr.NewErrorf("subscription %s is %s", sub.ID, sub.SubscriptionStatus).
			WithHint("Lines can only change while the subscription is in draft").
			WithReportableDetails(map[string]any{
				"subscription_id":     sub.ID,
				"subscription_status": sub.SubscriptionStatus,
			}).
			Mark(ierr.ErrInvalidState)
	}

	if req.Quantity == 0 {
		// Removal of a line that is not present leaves the subscription
		// unchanged.
		s.removeLine(sub, req.ProductID)
	} else {
		prod, err := s.ProductRepo.Get(ctx, req.ProductID)
		if err != nil {
			return nil, asInvalidReference(err, "product", req.ProductID)
		}

		taxPercent, discountPercent := s.resolvePercents(sub, req)
		if err := s.upsertLine(ctx, sub, prod, req.Quantity, taxPercent, discountPercent); err != nil {
			return nil, err
		}
	}

	if err := s.recomputeTotals(sub); err != nil {
		return nil, err
	}

	if err := s.SubRepo.UpdateWithLineItems(ctx, sub); err != nil {
		return nil, err
	}

	return dto.NewSubscriptionResponse(sub), nil
}

// resolvePercents keeps the existing percentages when the request leaves
// them unset and the line already exists.
func (s *subscriptionService) resolvePercents(sub *subscription.Subscription, req dto.AddOrUpdateLineRequest) (decimal.Decimal, decimal.Decimal) {
	taxPercent := decimal.Zero
	discountPercent := decimal.Zero
	for _, line := range sub.LineItems {
		if line.ProductID == req.ProductID {
			taxPercent = line.TaxPercent
			discountPercent = line.DiscountPercent
			break
		}
	}
	if req.TaxPercent != nil {
		taxPercent = *req.TaxPercent
	}
	if req.DiscountPercent != nil {
		discountPercent = *req.DiscountPercent
	}
	return taxPercent, discountPercent
}

func (s *subscriptionService) removeLine(sub *subscription.Subscription, productID string) {
	kept := sub.LineItems[:0]
	for _, line := range sub.LineItems {
		if line.ProductID != productID {
			kept = append(kept, line)
		}
	}
	sub.LineItems = kept
	for i, line := range sub.LineItems {
		line.DisplayOrder = i + 1
	}
}

// Confirm is the irreversible boundary between mutable quoting and immutable
// billing. Under the per-subscription lock it freezes the computed totals,
// stamps the confirmation, computes the next billing date and raises exactly
// one invoice. Both writes commit together or not at all.
func (s *subscriptionService) Confirm(ctx context.Context, subscriptionID string) (*dto.ConfirmSubscriptionResponse, error) {
	var resp *dto.ConfirmSubscriptionResponse

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.DB.LockEntity(ctx, "subscription:"+subscriptionID); err != nil {
			return err
		}

		// Re-read under the lock so a racing confirm sees the final state.
		sub, err := s.SubRepo.GetWithLineItems(ctx, subscriptionID)
		if err != nil {
			return err
		}
		if sub.SubscriptionStatus != types.SubscriptionStatusDraft {
			return ierr.NewErrorf("subscription %s is %s", sub.ID, sub.SubscriptionStatus).
				WithHint("Only draft subscriptions can be confirmed").
				WithReportableDetails(map[string]any{
					"subscription_id":     sub.ID,
					"subscription_status": sub.SubscriptionStatus,
				}).
				Mark(ierr.ErrInvalidState)
		}
		if len(sub.LineItems) == 0 && !sub.PlanPrice.IsPositive() {
			return ierr.NewError("subscription has nothing to bill").
				WithHint("Add at least one line or use a plan with a positive price").
				WithReportableDetails(map[string]any{"subscription_id": sub.ID}).
				Mark(ierr.ErrInvalidState)
		}

		if err := s.recomputeTotals(sub); err != nil {
			return err
		}

		now := time.Now().UTC()
		nextBilling, err := types.NextBillingDate(sub.StartDate, 1, sub.BillingPeriod)
		if err != nil {
			return ierr.WithError(err).
				WithHint("Invalid billing period on subscription").
				Mark(ierr.ErrValidation)
		}

		sub.SubscriptionStatus = types.SubscriptionStatusConfirmed
		sub.ConfirmedAt = &now
		sub.NextBillingDate = &nextBilling

		if err := s.SubRepo.Update(ctx, sub); err != nil {
			return err
		}

		idemKey := s.IdempotencyGenerator.GenerateKey(idempotency.ScopeSubscriptionConfirm, map[string]interface{}{
			"subscription_id": sub.ID,
		})
		inv, err := s.invoiceService.GenerateFromSubscription(ctx, sub, types.InvoiceBillingReasonSubscriptionCreate, idemKey, sub.StartDate, nextBilling)
		if err != nil {
			return err
		}

		resp = &dto.ConfirmSubscriptionResponse{
			Subscription: dto.NewSubscriptionResponse(sub),
			Invoice:      dto.NewInvoiceResponse(inv),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("confirmed subscription",
		"subscription_id", resp.Subscription.ID,
		"invoice_id", resp.Invoice.ID,
		"grand_total", resp.Subscription.GrandTotal,
	)
	s.publishWebhookEvent(ctx, types.WebhookEventSubscriptionConfirmed, resp)

	return resp, nil
}

func (s *subscriptionService) Cancel(ctx context.Context, subscriptionID string) (*dto.SubscriptionResponse, error) {
	var resp *dto.SubscriptionResponse

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.DB.LockEntity(ctx, "subscription:"+subscriptionID); err != nil {
			return err
		}

		sub, err := s.SubRepo.GetWithLineItems(ctx, subscriptionID)
		if err != nil {
			return err
		}
		if sub.SubscriptionStatus == types.SubscriptionStatusCancelled {
			return ierr.NewErrorf("subscription %s is already cancelled", sub.ID).
				WithHint("Cancellation is not reversible").
				Mark(ierr.ErrInvalidState)
		}

		now := time.Now().UTC()
		sub.SubscriptionStatus = types.SubscriptionStatusCancelled
		sub.ClosedAt = &now

		if err := s.SubRepo.Update(ctx, sub); err != nil {
			return err
		}

		resp = dto.NewSubscriptionResponse(sub)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishWebhookEvent(ctx, types.WebhookEventSubscriptionCancelled, resp)
	return resp, nil
}

func (s *subscriptionService) Get(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	sub, err := s.SubRepo.GetWithLineItems(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewSubscriptionResponse(sub), nil
}

func (s *subscriptionService) List(ctx context.Context, filter *types.SubscriptionFilter) (*dto.ListSubscriptionsResponse, error) {
	if filter == nil {
		filter = types.NewSubscriptionFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid subscription filter").
			Mark(ierr.ErrValidation)
	}

	subs, err := s.SubRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.SubRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.SubscriptionResponse, len(subs))
	for i, sub := range subs {
		items[i] = dto.NewSubscriptionResponse(sub)
	}

	return &dto.ListSubscriptionsResponse{
		Items:      items,
		Pagination: types.NewListResponse(items, total, filter.GetLimit(), filter.GetOffset()).Pagination,
	}, nil
}

// ProcessRenewals advances every confirmed subscription whose next billing
// date has arrived: subscriptions past their end date close, the rest get a
// renewal invoice from the frozen totals and a new next billing date. One
// failing subscription never aborts the sweep.
func (s *subscriptionService) ProcessRenewals(ctx context.Context, asOf time.Time) (*dto.RenewalRunResponse, error) {
	due, err := s.SubRepo.ListDueForRenewal(ctx, asOf)
	if err != nil {
		return nil, err
	}

	result := &dto.RenewalRunResponse{Processed: len(due)}
	for _, candidate := range due {
		invoiceID, closed, err := s.renewOne(ctx, candidate.ID, asOf)
		if err != nil {
			result.Failed++
			s.Logger.Errorw("failed to renew subscription",
				"subscription_id", candidate.ID,
				"error", err,
			)
			continue
		}
		if closed {
			result.Closed++
			continue
		}
		result.InvoicesCreated++
		result.InvoiceIDs = append(result.InvoiceIDs, invoiceID)
	}

	return result, nil
}

func (s *subscriptionService) renewOne(ctx context.Context, subscriptionID string, asOf time.Time) (invoiceID string, closed bool, err error) {
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.DB.LockEntity(ctx, "subscription:"+subscriptionID); err != nil {
			return err
		}

		sub, err := s.SubRepo.GetWithLineItems(ctx, subscriptionID)
		if err != nil {
			return err
		}
		if !sub.IsActive() || sub.NextBillingDate == nil || sub.NextBillingDate.After(asOf) {
			// Another worker already advanced or closed this subscription.
			return nil
		}

		periodStart := *sub.NextBillingDate

		if sub.EndDate != nil && !periodStart.Before(*sub.EndDate) {
			now := time.Now().UTC()
			sub.SubscriptionStatus = types.SubscriptionStatusCancelled
			sub.ClosedAt = &now
			closed = true
			return s.SubRepo.Update(ctx, sub)
		}

		periodEnd, err := types.NextBillingDate(periodStart, 1, sub.BillingPeriod)
		if err != nil {
			return err
		}

		idemKey := s.IdempotencyGenerator.GenerateKey(idempotency.ScopeSubscriptionRenewal, map[string]interface{}{
			"subscription_id": sub.ID,
			"period_start":    periodStart.Format(time.RFC3339),
		})
		inv, err := s.invoiceService.GenerateFromSubscription(ctx, sub, types.InvoiceBillingReasonSubscriptionCycle, idemKey, periodStart, periodEnd)
		if err != nil {
			return err
		}
		invoiceID = inv.ID

		sub.NextBillingDate = &periodEnd
		if err := s.SubRepo.Update(ctx, sub); err != nil {
			return err
		}

		s.publishWebhookEvent(ctx, types.WebhookEventSubscriptionRenewed, dto.NewSubscriptionResponse(sub))
		return nil
	})
	return invoiceID, closed, err
}

// asInvalidReference remaps a not-found catalog lookup into the reference
// error the caller is contracted to see.
func asInvalidReference(err error, entity, id string) error {
	if ierr.IsNotFound(err) {
		return ierr.WithError(err).
			WithHintf("Unknown %s", entity).
			WithReportableDetails(map[string]any{entity + "_id": id}).
			Mark(ierr.ErrInvalidReference)
	}
	return err
}
