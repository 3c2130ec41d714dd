package service

import (
	"testing"
	"time"

	"github.com/billcraft/billcraft/internal/domain/invoice"
	"github.com/billcraft/billcraft/internal/domain/payment"
	"github.com/billcraft/billcraft/internal/domain/subscription"
	"github.com/billcraft/billcraft/internal/testutil"
	"github.com/billcraft/billcraft/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type BillingServiceSuite struct {
	testutil.BaseServiceTestSuite
	service BillingService
}

func TestBillingService(t *testing.T) {
	suite.Run(t, new(BillingServiceSuite))
}

func (s *BillingServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewBillingService(ServiceParams{
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

func (s *BillingServiceSuite) seedSubscription(id string, status types.SubscriptionStatus, period types.BillingPeriod, grandTotal int64, closed bool) {
	ctx := s.GetContext()
	now := time.Now().UTC()

	sub := &subscription.Subscription{
		ID:                 id,
		SubscriptionNumber: "SUB-" + id,
		CustomerID:         "cust_test",
		PlanID:             "plan_test",
		PlanName:           "Team Plan",
		PlanPrice:          decimal.NewFromInt(50),
		BillingPeriod:      period,
		SubscriptionStatus: status,
		StartDate:          now.AddDate(0, -1, 0),
		GrandTotal:         decimal.NewFromInt(grandTotal),
		Version:            1,
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}
	if closed {
		sub.ClosedAt = lo.ToPtr(now)
	}
	s.NoError(s.GetStores().SubscriptionRepo.CreateWithLineItems(ctx, sub))
}

func (s *BillingServiceSuite) seedInvoice(id string, status types.InvoiceStatus, grandTotal, amountPaid int64) {
	ctx := s.GetContext()
	now := time.Now().UTC()

	inv := &invoice.Invoice{
		ID:            id,
		InvoiceNumber: "INV-" + id,
		CustomerID:    "cust_test",
		InvoiceStatus: status,
		BillingReason: types.InvoiceBillingReasonSubscriptionCreate,
		IssueDate:     now,
		DueDate:       lo.ToPtr(now.AddDate(0, 0, 15)),
		Subtotal:      decimal.NewFromInt(grandTotal),
		GrandTotal:    decimal.NewFromInt(grandTotal),
		AmountPaid:    decimal.NewFromInt(amountPaid),
		Version:       1,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().InvoiceRepo.CreateWithLineItems(ctx, inv))
}

func (s *BillingServiceSuite) seedPayment(id string, status types.PaymentStatus, amount int64) {
	ctx := s.GetContext()

	pay := &payment.Payment{
		ID:            id,
		InvoiceID:     "inv_stats_open",
		Amount:        decimal.NewFromInt(amount),
		PaymentMethod: types.PaymentMethodTypeUPI,
		PaymentStatus: status,
		PaymentDate:   time.Now().UTC(),
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().PaymentRepo.Create(ctx, pay))
}

func (s *BillingServiceSuite) setupTestData() {
	// Two live contracts, one closed, one still being quoted.
	s.seedSubscription("subs_stats_monthly", types.SubscriptionStatusConfirmed, types.BILLING_PERIOD_MONTHLY, 270, false)
	s.seedSubscription("subs_stats_yearly", types.SubscriptionStatusConfirmed, types.BILLING_PERIOD_YEARLY, 1200, false)
	s.seedSubscription("subs_stats_closed", types.SubscriptionStatusConfirmed, types.BILLING_PERIOD_MONTHLY, 500, true)
	s.seedSubscription("subs_stats_draft", types.SubscriptionStatusDraft, types.BILLING_PERIOD_MONTHLY, 80, false)

	// One partially paid invoice, one overdue, one settled.
	s.seedInvoice("inv_stats_open", types.InvoiceStatusConfirmed, 270, 100)
	s.seedInvoice("inv_stats_overdue", types.InvoiceStatusOverdue, 50, 0)
	s.seedInvoice("inv_stats_paid", types.InvoiceStatusPaid, 300, 300)

	s.seedPayment("pay_stats_1", types.PaymentStatusCompleted, 100)
	s.seedPayment("pay_stats_2", types.PaymentStatusCompleted, 30)
	s.seedPayment("pay_stats_failed", types.PaymentStatusFailed, 999)
}

func (s *BillingServiceSuite) TestDashboardStatsAggregates() {
	stats, err := s.service.GetDashboardStats(s.GetContext())
	s.NoError(err)

	// The closed contract no longer counts as active even though its
	// status is still CONFIRMED.
	s.Equal(2, stats.ActiveSubscriptions)

	// 270 monthly plus 1200 yearly normalised to a month.
	s.True(stats.MonthlyRecurringRevenue.Equal(decimal.NewFromInt(370)),
		"expected MRR 370, got %s", stats.MonthlyRecurringRevenue)

	// Remaining balances of the open and overdue invoices.
	s.Equal(2, stats.PendingInvoiceCount)
	s.True(stats.PendingInvoiceAmount.Equal(decimal.NewFromInt(220)),
		"expected pending 220, got %s", stats.PendingInvoiceAmount)

	// Failed payments never count towards revenue.
	s.True(stats.TotalRevenue.Equal(decimal.NewFromInt(130)),
		"expected revenue 130, got %s", stats.TotalRevenue)

	s.Len(stats.RecentSubscriptions, 4)
	ids := make([]string, 0, len(stats.RecentSubscriptions))
	for _, sub := range stats.RecentSubscriptions {
		ids = append(ids, sub.ID)
	}
	s.Contains(ids, "subs_stats_monthly")
	s.Contains(ids, "subs_stats_draft")
}

func (s *BillingServiceSuite) TestDashboardStatsEmptyTenant() {
	s.GetStores().SubscriptionRepo.(*testutil.InMemorySubscriptionStore).Clear()
	s.GetStores().InvoiceRepo.(*testutil.InMemoryInvoiceStore).Clear()
	s.GetStores().PaymentRepo.(*testutil.InMemoryPaymentStore).Clear()

	stats, err := s.service.GetDashboardStats(s.GetContext())
	s.NoError(err)

	s.Zero(stats.ActiveSubscriptions)
	s.True(stats.MonthlyRecurringRevenue.IsZero())
	s.Zero(stats.PendingInvoiceCount)
	s.True(stats.PendingInvoiceAmount.IsZero())
	s.True(stats.TotalRevenue.IsZero())
	s.Empty(stats.RecentSubscriptions)
}

func (s *BillingServiceSuite) TestDashboardStatsServedFromCache() {
	first, err := s.service.GetDashboardStats(s.GetContext())
	s.NoError(err)

	// A write inside the cache window is not reflected until the entry
	// expires.
	s.seedInvoice("inv_stats_late", types.InvoiceStatusConfirmed, 40, 0)

	second, err := s.service.GetDashboardStats(s.GetContext())
	s.NoError(err)
	s.Equal(first.PendingInvoiceCount, second.PendingInvoiceCount)
	s.True(first.PendingInvoiceAmount.Equal(second.PendingInvoiceAmount))

	// Dropping the cache surfaces the new invoice.
	s.GetCache().Flush(s.GetContext())
	third, err := s.service.GetDashboardStats(s.GetContext())
	s.NoError(err)
	s.Equal(3, third.PendingInvoiceCount)
	s.True(third.PendingInvoiceAmount.Equal(decimal.NewFromInt(260)))
}
