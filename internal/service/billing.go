package service

import (
	"context"
	"time"

	"github.com/billcraft/billcraft/internal/api/dto"
	"github.com/billcraft/billcraft/internal/cache"
	"github.com/billcraft/billcraft/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const recentSubscriptionCount = 5

// BillingService serves aggregate billing figures. Stats are cached per
// tenant for a short window since the dashboard tolerates staleness.
type BillingService interface {
	GetDashboardStats(ctx context.Context) (*dto.DashboardStatsResponse, error)
}

type billingService struct {
	ServiceParams
}

func NewBillingService(params ServiceParams) BillingService {
	return &billingService{ServiceParams: params}
}

func (s *billingService) GetDashboardStats(ctx context.Context) (*dto.DashboardStatsResponse, error) {
	cacheKey := cache.GenerateKey(cache.PrefixDashboard, types.GetTenantID(ctx))
	if s.Cache != nil {
		if cached, found := s.Cache.Get(ctx, cacheKey); found {
			if stats, ok := cached.(*dto.DashboardStatsResponse); ok {
				return stats, nil
			}
		}
	}

	stats := &dto.DashboardStatsResponse{
		MonthlyRecurringRevenue: decimal.Zero,
		PendingInvoiceAmount:    decimal.Zero,
		TotalRevenue:            decimal.Zero,
		RecentSubscriptions:     []*dto.SubscriptionResponse{},
	}

	activeFilter := types.NewNoLimitSubscriptionFilter()
	activeFilter.SubscriptionStatus = []types.SubscriptionStatus{types.SubscriptionStatusConfirmed}
	activeSubs, err := s.SubRepo.List(ctx, activeFilter)
	if err != nil {
		return nil, err
	}
	stats.ActiveSubscriptions = len(activeSubs)
	for _, sub := range activeSubs {
		if sub.ClosedAt != nil {
			stats.ActiveSubscriptions--
			continue
		}
		months := decimal.NewFromInt(int64(sub.BillingPeriod.Months()))
		stats.MonthlyRecurringRevenue = stats.MonthlyRecurringRevenue.Add(sub.GrandTotal.Div(months))
	}

	pendingFilter := types.NewNoLimitInvoiceFilter()
	pendingFilter.InvoiceStatus = []types.InvoiceStatus{
		types.InvoiceStatusConfirmed,
		types.InvoiceStatusOverdue,
	}
	pending, err := s.InvoiceRepo.List(ctx, pendingFilter)
	if err != nil {
		return nil, err
	}
	stats.PendingInvoiceCount = len(pending)
	for _, inv := range pending {
		stats.PendingInvoiceAmount = stats.PendingInvoiceAmount.Add(inv.GetRemainingAmount())
	}

	completedFilter := types.NewNoLimitPaymentFilter()
	completedFilter.PaymentStatus = []types.PaymentStatus{types.PaymentStatusCompleted}
	payments, err := s.PaymentRepo.List(ctx, completedFilter)
	if err != nil {
		return nil, err
	}
	for _, pay := range payments {
		stats.TotalRevenue = stats.TotalRevenue.Add(pay.Amount)
	}

	recentFilter := types.NewSubscriptionFilter()
	recentFilter.Limit = lo.ToPtr(recentSubscriptionCount)
	recent, err := s.SubRepo.List(ctx, recentFilter)
	if err != nil {
		return nil, err
	}
	for _, sub := range recent {
		stats.RecentSubscriptions = append(stats.RecentSubscriptions, dto.NewSubscriptionResponse(sub))
	}

	if s.Cache != nil {
		ttl := time.Duration(s.Config.Billing.DashboardCacheTTLSeconds) * time.Second
		s.Cache.Set(ctx, cacheKey, stats, ttl)
	}
	return stats, nil
}
