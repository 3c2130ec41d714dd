package dto

import (
	"github.com/shopspring/decimal"
)

// DashboardStatsResponse aggregates the billing figures rendered on the
// dashboard. Values may be served from a short-lived cache; staleness is
// acceptable here, unlike on individual invoices.
type DashboardStatsResponse struct {
	ActiveSubscriptions     int                     `json:"active_subscriptions"`
	MonthlyRecurringRevenue decimal.Decimal         `json:"monthly_recurring_revenue"`
	PendingInvoiceCount     int                     `json:"pending_invoice_count"`
	PendingInvoiceAmount    decimal.Decimal         `json:"pending_invoice_amount"`
	TotalRevenue            decimal.Decimal         `json:"total_revenue"`
	RecentSubscriptions     []*SubscriptionResponse `json:"recent_subscriptions"`
}
