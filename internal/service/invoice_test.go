package service

import (
	"testing"
	"time"

	"github.com/billcraft/billcraft/internal/domain/subscription"
	ierr "github.com/billcraft/billcraft/internal/errors"
	"github.com/billcraft/billcraft/internal/testutil"
	"github.com/billcraft/billcraft/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type InvoiceServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  InvoiceService
	testData struct {
		subscription *subscription.Subscription
	}
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceSuite))
}

func (s *InvoiceServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewInvoiceService(ServiceParams{
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
	})
	s.setupTestData()
}

func (s *InvoiceServiceSuite) setupTestData() {
	ctx := s.GetContext()
	start := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	s.testData.subscription = &subscription.Subscription{
		ID:                 "subs_test_invoice",
		SubscriptionNumber: "SUB-TEST0001",
		CustomerID:         "cust_test",
		PlanID:             "plan_test",
		PlanName:           "Team Plan",
		PlanPrice:          decimal.NewFromInt(50),
		BillingPeriod:      types.BILLING_PERIOD_MONTHLY,
		SubscriptionStatus: types.SubscriptionStatusConfirmed,
		StartDate:          start,
		ConfirmedAt:        lo.ToPtr(start),
		Subtotal:           decimal.NewFromInt(250),
		TaxTotal:           decimal.NewFromInt(20),
		DiscountTotal:      decimal.Zero,
		GrandTotal:         decimal.NewFromInt(270),
		Version:            1,
		LineItems: []*subscription.SubscriptionLineItem{
			{
				ID:             "subs_line_test",
				SubscriptionID: "subs_test_invoice",
				ProductID:      "prod_test",
				ProductName:    "Extra Seats",
				UnitPrice:      decimal.NewFromInt(100),
				Quantity:       2,
				TaxPercent:     decimal.NewFromInt(10),
				LineTotal:      decimal.NewFromInt(220),
				DisplayOrder:   1,
				BaseModel:      types.GetDefaultBaseModel(ctx),
			},
		},
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().SubscriptionRepo.CreateWithLineItems(ctx, s.testData.subscription))
}

func (s *InvoiceServiceSuite) TestGenerateFromSubscriptionFreezesState() {
	ctx := s.GetContext()
	sub := s.testData.subscription
	periodStart := sub.StartDate
	periodEnd := time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)

	inv, err := s.service.GenerateFromSubscription(ctx, sub, types.InvoiceBillingReasonSubscriptionCreate, "confirm-key-1", periodStart, periodEnd)
	s.NoError(err)

	s.Equal("INV-00000001", inv.InvoiceNumber)
	s.Equal(types.InvoiceStatusConfirmed, inv.InvoiceStatus)
	s.True(inv.GrandTotal.Equal(sub.GrandTotal))
	s.Len(inv.LineItems, 2)
	s.Equal("Team Plan", inv.LineItems[0].ProductName)
	s.Equal("Extra Seats", inv.LineItems[1].ProductName)
	s.NotNil(inv.DueDate)
	s.True(inv.DueDate.Equal(inv.IssueDate.AddDate(0, 0, 15)))
	s.True(inv.PeriodStart.Equal(periodStart))
	s.True(inv.PeriodEnd.Equal(periodEnd))
}

func (s *InvoiceServiceSuite) TestGenerateIsIdempotentPerKey() {
	ctx := s.GetContext()
	sub := s.testData.subscription
	periodStart := sub.StartDate
	periodEnd := periodStart.AddDate(0, 1, 0)

	first, err := s.service.GenerateFromSubscription(ctx, sub, types.InvoiceBillingReasonSubscriptionCreate, "confirm-key-1", periodStart, periodEnd)
	s.NoError(err)
	second, err := s.service.GenerateFromSubscription(ctx, sub, types.InvoiceBillingReasonSubscriptionCreate, "confirm-key-1", periodStart, periodEnd)
	s.NoError(err)

	s.Equal(first.ID, second.ID)
	s.Equal(first.InvoiceNumber, second.InvoiceNumber)

	count, err := s.GetStores().InvoiceRepo.Count(ctx, types.NewNoLimitInvoiceFilter())
	s.NoError(err)
	s.Equal(1, count)

	// A different key mints a new invoice with the next number.
	third, err := s.service.GenerateFromSubscription(ctx, sub, types.InvoiceBillingReasonSubscriptionCycle, "renewal-key-1", periodEnd, periodEnd.AddDate(0, 1, 0))
	s.NoError(err)
	s.NotEqual(first.ID, third.ID)
	s.Equal("INV-00000002", third.InvoiceNumber)
}

func (s *InvoiceServiceSuite) TestMarkOverdueIsIdempotent() {
	ctx := s.GetContext()
	inv, err := s.service.GenerateFromSubscription(ctx, s.testData.subscription, types.InvoiceBillingReasonSubscriptionCreate, "confirm-key-1", s.testData.subscription.StartDate, s.testData.subscription.StartDate.AddDate(0, 1, 0))
	s.NoError(err)

	resp, err := s.service.MarkOverdue(ctx, inv.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusOverdue, resp.InvoiceStatus)

	// Marking again leaves the invoice as-is.
	resp, err = s.service.MarkOverdue(ctx, inv.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusOverdue, resp.InvoiceStatus)
}

func (s *InvoiceServiceSuite) TestMarkOverduePaidInvoice() {
	ctx := s.GetContext()
	inv, err := s.service.GenerateFromSubscription(ctx, s.testData.subscription, types.InvoiceBillingReasonSubscriptionCreate, "confirm-key-1", s.testData.subscription.StartDate, s.testData.subscription.StartDate.AddDate(0, 1, 0))
	s.NoError(err)

	stored, err := s.GetStores().InvoiceRepo.GetWithLineItems(ctx, inv.ID)
	s.NoError(err)
	stored.InvoiceStatus = types.InvoiceStatusPaid
	stored.AmountPaid = stored.GrandTotal
	s.NoError(s.GetStores().InvoiceRepo.Update(ctx, stored))

	_, err = s.service.MarkOverdue(ctx, inv.ID)
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrInvalidState))
}

func (s *InvoiceServiceSuite) TestProcessOverdueSweep() {
	ctx := s.GetContext()
	inv, err := s.service.GenerateFromSubscription(ctx, s.testData.subscription, types.InvoiceBillingReasonSubscriptionCreate, "confirm-key-1", s.testData.subscription.StartDate, s.testData.subscription.StartDate.AddDate(0, 1, 0))
	s.NoError(err)

	// Before the due date nothing is swept.
	result, err := s.service.ProcessOverdue(ctx, inv.IssueDate)
	s.NoError(err)
	s.Zero(result.Processed)

	result, err = s.service.ProcessOverdue(ctx, inv.DueDate.AddDate(0, 0, 1))
	s.NoError(err)
	s.Equal(1, result.Processed)
	s.Equal(1, result.MarkedCount)
	s.Zero(result.Failed)

	after, err := s.service.Get(ctx, inv.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusOverdue, after.InvoiceStatus)

	// A second sweep finds nothing left to mark.
	result, err = s.service.ProcessOverdue(ctx, inv.DueDate.AddDate(0, 0, 1))
	s.NoError(err)
	s.Zero(result.Processed)
}

func (s *InvoiceServiceSuite) TestVoidRules() {
	ctx := s.GetContext()
	inv, err := s.service.GenerateFromSubscription(ctx, s.testData.subscription, types.InvoiceBillingReasonSubscriptionCreate, "confirm-key-1", s.testData.subscription.StartDate, s.testData.subscription.StartDate.AddDate(0, 1, 0))
	s.NoError(err)

	resp, err := s.service.Void(ctx, inv.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusCancelled, resp.InvoiceStatus)

	// Voiding twice is rejected, cancelled is terminal.
	_, err = s.service.Void(ctx, inv.ID)
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrInvalidState))
}

func (s *InvoiceServiceSuite) TestVoidPaidInvoice() {
	ctx := s.GetContext()
	inv, err := s.service.GenerateFromSubscription(ctx, s.testData.subscription, types.InvoiceBillingReasonSubscriptionCreate, "confirm-key-1", s.testData.subscription.StartDate, s.testData.subscription.StartDate.AddDate(0, 1, 0))
	s.NoError(err)

	stored, err := s.GetStores().InvoiceRepo.GetWithLineItems(ctx, inv.ID)
	s.NoError(err)
	stored.InvoiceStatus = types.InvoiceStatusPaid
	stored.AmountPaid = stored.GrandTotal
	s.NoError(s.GetStores().InvoiceRepo.Update(ctx, stored))

	_, err = s.service.Void(ctx, inv.ID)
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrInvalidState))
}

func (s *InvoiceServiceSuite) TestListFiltersBySubscription() {
	ctx := s.GetContext()
	_, err := s.service.GenerateFromSubscription(ctx, s.testData.subscription, types.InvoiceBillingReasonSubscriptionCreate, "confirm-key-1", s.testData.subscription.StartDate, s.testData.subscription.StartDate.AddDate(0, 1, 0))
	s.NoError(err)

	filter := types.NewNoLimitInvoiceFilter()
	filter.SubscriptionID = s.testData.subscription.ID
	list, err := s.service.List(ctx, filter)
	s.NoError(err)
	s.Len(list.Items, 1)

	filter = types.NewNoLimitInvoiceFilter()
	filter.SubscriptionID = "subs_other"
	list, err = s.service.List(ctx, filter)
	s.NoError(err)
	s.Empty(list.Items)
}
