package service

import (
	"testing"
	"time"

	"github.com/billcraft/billcraft/internal/api/dto"
	"github.com/billcraft/billcraft/internal/domain/customer"
	"github.com/billcraft/billcraft/internal/domain/plan"
	"github.com/billcraft/billcraft/internal/domain/product"
	ierr "github.com/billcraft/billcraft/internal/errors"
	"github.com/billcraft/billcraft/internal/testutil"
	"github.com/billcraft/billcraft/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type SubscriptionServiceSuite struct {
	testutil.BaseServiceTestSuite
	service        SubscriptionService
	invoiceService InvoiceService
	testData       struct {
		customer *customer.Customer
		product  *product.Product
		plan     *plan.Plan
	}
}

func TestSubscriptionService(t *testing.T) {
	suite.Run(t, new(SubscriptionServiceSuite))
}

func (s *SubscriptionServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.setupService()
	s.setupTestData()
}

func (s *SubscriptionServiceSuite) serviceParams() ServiceParams {
	return ServiceParams{
		Logger:               s.GetLogger(),
		Config:               s.GetConfig(),
		DB:                   s.GetDB(),
		Cache:                s.GetCache(),
		CustomerRepo:         s.GetStores().CustomerRepo,
		ProductRepo:          s.GetStores().ProductRepo,
		PlanRepo:             s.GetStores().PlanRepo,
		SubRepo:              s.GetStores().SubscriptionRepo,
		InvoiceRepo:          s.GetStores().InvoiceRepo,
		PaymentRepo:          s.GetStores().PaymentRepo,
		IdempotencyGenerator: s.GetIdempotencyGenerator(),
		WebhookPublisher:     s.GetWebhookPublisher(),
	}
}

func (s *SubscriptionServiceSuite) setupService() {
	params := s.serviceParams()
	s.invoiceService = NewInvoiceService(params)
	s.service = NewSubscriptionService(params, s.invoiceService)
}

func (s *SubscriptionServiceSuite) setupTestData() {
	ctx := s.GetContext()

	s.testData.customer = &customer.Customer{
		ID:        "cust_test",
		Name:      "Acme Corp",
		Email:     "billing@acme.test",
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().CustomerRepo.Create(ctx, s.testData.customer))

	s.testData.product = &product.Product{
		ID:        "prod_test",
		Name:      "Extra Seats",
		Price:     decimal.NewFromInt(100),
		Active:    true,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().ProductRepo.Create(ctx, s.testData.product))

	s.testData.plan = &plan.Plan{
		ID:            "plan_test",
		ProductID:     s.testData.product.ID,
		Name:          "Team Plan",
		Price:         decimal.NewFromInt(50),
		BillingPeriod: types.BILLING_PERIOD_MONTHLY,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().PlanRepo.Create(ctx, s.testData.plan))
}

func (s *SubscriptionServiceSuite) createDraft() *dto.SubscriptionResponse {
	resp, err := s.service.Create(s.GetContext(), dto.CreateSubscriptionRequest{
		CustomerID: s.testData.customer.ID,
		PlanID:     s.testData.plan.ID,
		StartDate:  time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		Lines: []*dto.SubscriptionLineRequest{
			{
				ProductID:  s.testData.product.ID,
				Quantity:   2,
				TaxPercent: decimal.NewFromInt(10),
			},
		},
	})
	s.NoError(err)
	return resp
}

func (s *SubscriptionServiceSuite) TestCreateComputesTotals() {
	resp := s.createDraft()

	s.Equal(types.SubscriptionStatusDraft, resp.SubscriptionStatus)
	s.NotEmpty(resp.SubscriptionNumber)
	s.Equal(s.testData.plan.Name, resp.PlanName)
	s.Len(resp.Lines, 1)

	s.True(resp.Subtotal.Equal(decimal.NewFromInt(250)), "subtotal %s", resp.Subtotal)
	s.True(resp.TaxTotal.Equal(decimal.NewFromInt(20)), "tax %s", resp.TaxTotal)
	s.True(resp.DiscountTotal.IsZero())
	s.True(resp.GrandTotal.Equal(decimal.NewFromInt(270)), "grand %s", resp.GrandTotal)
	s.True(resp.Lines[0].LineTotal.Equal(decimal.NewFromInt(220)))
	s.Nil(resp.NextBillingDate)
}

func (s *SubscriptionServiceSuite) TestCreateWithUnknownCustomer() {
	_, err := s.service.Create(s.GetContext(), dto.CreateSubscriptionRequest{
		CustomerID: "cust_missing",
		PlanID:     s.testData.plan.ID,
	})
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrInvalidReference))
}

func (s *SubscriptionServiceSuite) TestCreateWithUnknownPlan() {
	_, err := s.service.Create(s.GetContext(), dto.CreateSubscriptionRequest{
		CustomerID: s.testData.customer.ID,
		PlanID:     "plan_missing",
	})
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrInvalidReference))
}

func (s *SubscriptionServiceSuite) TestCreateWithInactiveProduct() {
	ctx := s.GetContext()
	inactive := &product.Product{
		ID:        "prod_inactive",
		Name:      "Retired Addon",
		Price:     decimal.NewFromInt(10),
		Active:    false,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().ProductRepo.Create(ctx, inactive))

	_, err := s.service.Create(ctx, dto.CreateSubscriptionRequest{
		CustomerID: s.testData.customer.ID,
		PlanID:     s.testData.plan.ID,
		Lines: []*dto.SubscriptionLineRequest{
			{ProductID: inactive.ID, Quantity: 1},
		},
	})
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrInvalidReference))
}

func (s *SubscriptionServiceSuite) TestCreateWithInvalidQuantity() {
	_, err := s.service.Create(s.GetContext(), dto.CreateSubscriptionRequest{
		CustomerID: s.testData.customer.ID,
		PlanID:     s.testData.plan.ID,
		Lines: []*dto.SubscriptionLineRequest{
			{ProductID: s.testData.product.ID, Quantity: -2},
		},
	})
	s.Error(err)
}

func (s *SubscriptionServiceSuite) TestAddOrUpdateLineUpserts() {
	draft := s.createDraft()

	// Bump the quantity of the existing line.
	resp, err := s.service.AddOrUpdateLine(s.GetContext(), draft.ID, dto.AddOrUpdateLineRequest{
		ProductID: s.testData.product.ID,
		Quantity:  3,
	})
	s.NoError(err)
	s.Len(resp.Lines, 1)
	s.Equal(3, resp.Lines[0].Quantity)
	// Percentages carry over from the existing line when unset.
	s.True(resp.Lines[0].TaxPercent.Equal(decimal.NewFromInt(10)))
	s.True(resp.GrandTotal.Equal(decimal.NewFromInt(380)), "grand %s", resp.GrandTotal)
}

func (s *SubscriptionServiceSuite) TestAddOrUpdateLineRemovesAtZeroQuantity() {
	draft := s.createDraft()

	resp, err := s.service.AddOrUpdateLine(s.GetContext(), draft.ID, dto.AddOrUpdateLineRequest{
		ProductID: s.testData.product.ID,
		Quantity:  0,
	})
	s.NoError(err)
	s.Empty(resp.Lines)
	s.True(resp.GrandTotal.Equal(decimal.NewFromInt(50)), "grand %s", resp.GrandTotal)

	// Removing a line that is not present is a no-op.
	resp, err = s.service.AddOrUpdateLine(s.GetContext(), draft.ID, dto.AddOrUpdateLineRequest{
		ProductID: "prod_absent",
		Quantity:  0,
	})
	s.NoError(err)
	s.True(resp.GrandTotal.Equal(decimal.NewFromInt(50)))
}

func (s *SubscriptionServiceSuite) TestAddOrUpdateLineRejectsNegativeQuantity() {
	draft := s.createDraft()

	_, err := s.service.AddOrUpdateLine(s.GetContext(), draft.ID, dto.AddOrUpdateLineRequest{
		ProductID: s.testData.product.ID,
		Quantity:  -1,
	})
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrInvalidLineInput))
}

func (s *SubscriptionServiceSuite) TestAddOrUpdateLineOnConfirmedSubscription() {
	draft := s.createDraft()
	confirmed, err := s.service.Confirm(s.GetContext(), draft.ID)
	s.NoError(err)

	_, err = s.service.AddOrUpdateLine(s.GetContext(), draft.ID, dto.AddOrUpdateLineRequest{
		ProductID: s.testData.product.ID,
		Quantity:  5,
	})
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrInvalidState))

	// Lines and totals stay exactly as they were at confirmation.
	after, err := s.service.Get(s.GetContext(), draft.ID)
	s.NoError(err)
	s.Len(after.Lines, 1)
	s.Equal(2, after.Lines[0].Quantity)
	s.True(after.GrandTotal.Equal(confirmed.Subscription.GrandTotal))
}

func (s *SubscriptionServiceSuite) TestConfirmFreezesTotalsAndRaisesInvoice() {
	draft := s.createDraft()

	resp, err := s.service.Confirm(s.GetContext(), draft.ID)
	s.NoError(err)

	sub := resp.Subscription
	s.Equal(types.SubscriptionStatusConfirmed, sub.SubscriptionStatus)
	s.NotNil(sub.ConfirmedAt)
	s.NotNil(sub.NextBillingDate)
	s.True(sub.NextBillingDate.Equal(time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)))

	inv := resp.Invoice
	s.NotEmpty(inv.ID)
	s.Equal("INV-00000001", inv.InvoiceNumber)
	s.Equal(types.InvoiceStatusConfirmed, inv.InvoiceStatus)
	s.Equal(types.InvoiceBillingReasonSubscriptionCreate, inv.BillingReason)
	s.True(inv.Subtotal.Equal(decimal.NewFromInt(250)))
	s.True(inv.TaxTotal.Equal(decimal.NewFromInt(20)))
	s.True(inv.DiscountTotal.IsZero())
	s.True(inv.GrandTotal.Equal(decimal.NewFromInt(270)))
	s.NotNil(inv.DueDate)
	s.Equal(15.0, inv.DueDate.Sub(inv.IssueDate).Hours()/24)

	// The plan charge and the product line freeze into two invoice lines.
	full, err := s.invoiceService.Get(s.GetContext(), inv.ID)
	s.NoError(err)
	s.Len(full.Lines, 2)
	s.Equal(s.testData.plan.Name, full.Lines[0].ProductName)
	s.True(full.Lines[0].LineTotal.Equal(decimal.NewFromInt(50)))
	s.Equal(s.testData.product.Name, full.Lines[1].ProductName)
	s.True(full.Lines[1].LineTotal.Equal(decimal.NewFromInt(220)))

	count, err := s.GetStores().InvoiceRepo.Count(s.GetContext(), types.NewNoLimitInvoiceFilter())
	s.NoError(err)
	s.Equal(1, count)
}

func (s *SubscriptionServiceSuite) TestConfirmTwiceProducesOneInvoice() {
	draft := s.createDraft()

	_, err := s.service.Confirm(s.GetContext(), draft.ID)
	s.NoError(err)

	_, err = s.service.Confirm(s.GetContext(), draft.ID)
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrInvalidState))

	count, err := s.GetStores().InvoiceRepo.Count(s.GetContext(), types.NewNoLimitInvoiceFilter())
	s.NoError(err)
	s.Equal(1, count)
}

func (s *SubscriptionServiceSuite) TestConfirmWithNothingToBill() {
	ctx := s.GetContext()
	freePlan := &plan.Plan{
		ID:            "plan_free",
		ProductID:     s.testData.product.ID,
		Name:          "Free Plan",
		Price:         decimal.Zero,
		BillingPeriod: types.BILLING_PERIOD_MONTHLY,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().PlanRepo.Create(ctx, freePlan))

	draft, err := s.service.Create(ctx, dto.CreateSubscriptionRequest{
		CustomerID: s.testData.customer.ID,
		PlanID:     freePlan.ID,
	})
	s.NoError(err)

	_, err = s.service.Confirm(ctx, draft.ID)
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrInvalidState))
}

func (s *SubscriptionServiceSuite) TestCancelFromDraftAndConfirmed() {
	draft := s.createDraft()
	resp, err := s.service.Cancel(s.GetContext(), draft.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusCancelled, resp.SubscriptionStatus)
	s.NotNil(resp.ClosedAt)

	// Cancelling twice is rejected.
	_, err = s.service.Cancel(s.GetContext(), draft.ID)
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrInvalidState))

	second := s.createDraft()
	_, err = s.service.Confirm(s.GetContext(), second.ID)
	s.NoError(err)
	resp, err = s.service.Cancel(s.GetContext(), second.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusCancelled, resp.SubscriptionStatus)
}

func (s *SubscriptionServiceSuite) TestProcessRenewalsCreatesCycleInvoice() {
	draft := s.createDraft()
	confirmed, err := s.service.Confirm(s.GetContext(), draft.ID)
	s.NoError(err)

	asOf := confirmed.Subscription.NextBillingDate.Add(time.Hour)
	result, err := s.service.ProcessRenewals(s.GetContext(), asOf)
	s.NoError(err)
	s.Equal(1, result.Processed)
	s.Equal(1, result.InvoicesCreated)
	s.Zero(result.Closed)
	s.Zero(result.Failed)
	s.Len(result.InvoiceIDs, 1)

	renewalInv, err := s.invoiceService.Get(s.GetContext(), result.InvoiceIDs[0])
	s.NoError(err)
	s.Equal(types.InvoiceBillingReasonSubscriptionCycle, renewalInv.BillingReason)
	s.True(renewalInv.GrandTotal.Equal(confirmed.Subscription.GrandTotal))
	s.NotNil(renewalInv.PeriodStart)
	s.True(renewalInv.PeriodStart.Equal(*confirmed.Subscription.NextBillingDate))

	after, err := s.service.Get(s.GetContext(), draft.ID)
	s.NoError(err)
	s.True(after.NextBillingDate.Equal(time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)))

	// Nothing further is due at the same point in time.
	again, err := s.service.ProcessRenewals(s.GetContext(), asOf)
	s.NoError(err)
	s.Zero(again.Processed)
}

func (s *SubscriptionServiceSuite) TestProcessRenewalsClosesPastEndDate() {
	ctx := s.GetContext()
	start := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	draft, err := s.service.Create(ctx, dto.CreateSubscriptionRequest{
		CustomerID: s.testData.customer.ID,
		PlanID:     s.testData.plan.ID,
		StartDate:  start,
		EndDate:    lo.ToPtr(end),
		Lines: []*dto.SubscriptionLineRequest{
			{ProductID: s.testData.product.ID, Quantity: 1},
		},
	})
	s.NoError(err)
	_, err = s.service.Confirm(ctx, draft.ID)
	s.NoError(err)

	// First billing date (Feb 15) is past the end date, so the sweep
	// closes the contract instead of invoicing another cycle.
	result, err := s.service.ProcessRenewals(ctx, time.Date(2025, 2, 16, 0, 0, 0, 0, time.UTC))
	s.NoError(err)
	s.Equal(1, result.Processed)
	s.Equal(1, result.Closed)
	s.Zero(result.InvoicesCreated)

	after, err := s.service.Get(ctx, draft.ID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusCancelled, after.SubscriptionStatus)
	s.NotNil(after.ClosedAt)

	count, err := s.GetStores().InvoiceRepo.Count(ctx, types.NewNoLimitInvoiceFilter())
	s.NoError(err)
	s.Equal(1, count)
}

func (s *SubscriptionServiceSuite) TestListFiltersByStatus() {
	s.createDraft()
	second := s.createDraft()
	_, err := s.service.Confirm(s.GetContext(), second.ID)
	s.NoError(err)

	filter := types.NewNoLimitSubscriptionFilter()
	filter.SubscriptionStatus = []types.SubscriptionStatus{types.SubscriptionStatusConfirmed}
	list, err := s.service.List(s.GetContext(), filter)
	s.NoError(err)
	s.Len(list.Items, 1)
	s.Equal(second.ID, list.Items[0].ID)
}
