package postgres

import (
	"context"
	"time"

	"github.com/billcraft/billcraft/internal/domain/subscription"
	ierr "github.com/billcraft/billcraft/internal/errors"
	"github.com/billcraft/billcraft/internal/logger"
	"github.com/billcraft/billcraft/internal/postgres"
	"github.com/billcraft/billcraft/internal/types"
	"github.com/lib/pq"
)

type subscriptionRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return &subscriptionRepository{db: db, logger: logger}
}

const subscriptionInsertQuery = `
	INSERT INTO subscriptions (
		id, subscription_number, customer_id, plan_id, plan_name, plan_price,
		billing_period, subscription_status, start_date, end_date,
		next_billing_date, confirmed_at, closed_at,
		subtotal, tax_total, discount_total, grand_total, version, metadata,
		tenant_id, status, created_at, updated_at, created_by, updated_by
	) VALUES (
		:id, :subscription_number, :customer_id, :plan_id, :plan_name, :plan_price,
		:billing_period, :subscription_status, :start_date, :end_date,
		:next_billing_date, :confirmed_at, :closed_at,
		:subtotal, :tax_total, :discount_total, :grand_total, :version, :metadata,
		:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
	)
`

const subscriptionLineInsertQuery = `
	INSERT INTO subscription_line_items (
		id, subscription_id, product_id, product_name, unit_price, quantity,
		tax_percent, discount_percent, line_total, display_order,
		tenant_id, status, created_at, updated_at, created_by, updated_by
	) VALUES (
		:id, :subscription_id, :product_id, :product_name, :unit_price, :quantity,
		:tax_percent, :discount_percent, :line_total, :display_order,
		:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
	)
`

func (r *subscriptionRepository) CreateWithLineItems(ctx context.Context, sub *subscription.Subscription) error {
	return r.db.WithTx(ctx, func(ctx context.Context) error {
		if _, err := r.db.NamedExecContext(ctx, subscriptionInsertQuery, sub); err != nil {
			if isUniqueViolation(err, "subscriptions_subscription_number_key") {
				return ierr.WithError(err).
					WithHint("A subscription with this number already exists").
					WithReportableDetails(map[string]any{
						"subscription_number": sub.SubscriptionNumber,
					}).
					Mark(ierr.ErrDuplicateSubscriptionNumber)
			}
			return ierr.WithError(err).
				WithHint("Failed to create subscription").
				Mark(ierr.ErrDatabase)
		}

		for _, line := range sub.LineItems {
			if _, err := r.db.NamedExecContext(ctx, subscriptionLineInsertQuery, line); err != nil {
				return ierr.WithError(err).
					WithHint("Failed to create subscription line item").
					Mark(ierr.ErrDatabase)
			}
		}
		return nil
	})
}

func (r *subscriptionRepository) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	query := `
		SELECT * FROM subscriptions
		WHERE id = :id AND tenant_id = :tenant_id AND status != :deleted
	`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"id":        id,
		"tenant_id": types.GetTenantID(ctx),
		"deleted":   types.StatusDeleted,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get subscription").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewErrorf("subscription %s not found", id).
			WithHint("The referenced subscription does not exist").
			WithReportableDetails(map[string]any{"subscription_id": id}).
			Mark(ierr.ErrNotFound)
	}

	var sub subscription.Subscription
	if err := rows.StructScan(&sub); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan subscription").
			Mark(ierr.ErrDatabase)
	}

	return &sub, nil
}

func (r *subscriptionRepository) GetWithLineItems(ctx context.Context, id string) (*subscription.Subscription, error) {
	sub, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	lines, err := r.listLineItems(ctx, id)
	if err != nil {
		return nil, err
	}
	sub.LineItems = lines
	return sub, nil
}

func (r *subscriptionRepository) listLineItems(ctx context.Context, subscriptionID string) ([]*subscription.SubscriptionLineItem, error) {
	query := `
		SELECT * FROM subscription_line_items
		WHERE subscription_id = :subscription_id AND tenant_id = :tenant_id AND status != :deleted
		ORDER BY display_order ASC
	`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"subscription_id": subscriptionID,
		"tenant_id":       types.GetTenantID(ctx),
		"deleted":         types.StatusDeleted,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list subscription line items").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var lines []*subscription.SubscriptionLineItem
	for rows.Next() {
		var line subscription.SubscriptionLineItem
		if err := rows.StructScan(&line); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan subscription line item").
				Mark(ierr.ErrDatabase)
		}
		lines = append(lines, &line)
	}
	return lines, nil
}

func (r *subscriptionRepository) List(ctx context.Context, filter *types.SubscriptionFilter) ([]*subscription.Subscription, error) {
	if filter == nil {
		filter = types.NewSubscriptionFilter()
	}

	query := `
		SELECT * FROM subscriptions
		WHERE tenant_id = :tenant_id AND status != :deleted
	`
	params := map[string]interface{}{
		"tenant_id": types.GetTenantID(ctx),
		"deleted":   types.StatusDeleted,
	}

	if filter.CustomerID != "" {
		query += " AND customer_id = :customer_id"
		params["customer_id"] = filter.CustomerID
	}
	if filter.PlanID != "" {
		query += " AND plan_id = :plan_id"
		params["plan_id"] = filter.PlanID
	}
	if len(filter.SubscriptionStatus) > 0 {
		query += " AND subscription_status = ANY(:subscription_status)"
		params["subscription_status"] = pq.Array(filter.SubscriptionStatus)
	}
	if len(filter.SubscriptionNumbers) > 0 {
		query += " AND subscription_number = ANY(:subscription_numbers)"
		params["subscription_numbers"] = pq.Array(filter.SubscriptionNumbers)
	}
	if filter.TimeRangeFilter != nil {
		if filter.StartTime != nil {
			query += " AND created_at >= :start_time"
			params["start_time"] = *filter.StartTime
		}
		if filter.EndTime != nil {
			query += " AND created_at <= :end_time"
			params["end_time"] = *filter.EndTime
		}
	}

	query += " ORDER BY created_at DESC"
	if !filter.IsUnlimited() {
		query += " LIMIT :limit OFFSET :offset"
		params["limit"] = filter.GetLimit()
		params["offset"] = filter.GetOffset()
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list subscriptions").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var subscriptions []*subscription.Subscription
	for rows.Next() {
		var sub subscription.Subscription
		if err := rows.StructScan(&sub); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan subscription").
				Mark(ierr.ErrDatabase)
		}
		subscriptions = append(subscriptions, &sub)
	}

	return subscriptions, nil
}

func (r *subscriptionRepository) Count(ctx context.Context, filter *types.SubscriptionFilter) (int, error) {
	if filter == nil {
		filter = types.NewSubscriptionFilter()
	}

	query := `SELECT COUNT(*) FROM subscriptions WHERE tenant_id = :tenant_id AND status != :deleted`
	params := map[string]interface{}{
		"tenant_id": types.GetTenantID(ctx),
		"deleted":   types.StatusDeleted,
	}
	if filter.CustomerID != "" {
		query += " AND customer_id = :customer_id"
		params["customer_id"] = filter.CustomerID
	}
	if len(filter.SubscriptionStatus) > 0 {
		query += " AND subscription_status = ANY(:subscription_status)"
		params["subscription_status"] = pq.Array(filter.SubscriptionStatus)
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count subscriptions").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var count int
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, ierr.WithError(err).
				WithHint("Failed to scan subscription count").
				Mark(ierr.ErrDatabase)
		}
	}
	return count, nil
}

// Update writes the subscription row guarded by the version it was read at.
// The version bump and the guard together surface lost updates as
// ErrConcurrentModification.
func (r *subscriptionRepository) Update(ctx context.Context, sub *subscription.Subscription) error {
	currentVersion := sub.Version
	sub.Version++
	sub.UpdatedAt = time.Now().UTC()
	sub.UpdatedBy = types.GetUserID(ctx)

	query := `
		UPDATE subscriptions SET
			subscription_status = :subscription_status,
			next_billing_date = :next_billing_date,
			confirmed_at = :confirmed_at,
			closed_at = :closed_at,
			subtotal = :subtotal,
			tax_total = :tax_total,
			discount_total = :discount_total,
			grand_total = :grand_total,
			version = :version,
			metadata = :metadata,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id AND tenant_id = :tenant_id AND version = :current_version
	`

	params := map[string]interface{}{
		"subscription_status": sub.SubscriptionStatus,
		"next_billing_date":   sub.NextBillingDate,
		"confirmed_at":        sub.ConfirmedAt,
		"closed_at":           sub.ClosedAt,
		"subtotal":            sub.Subtotal,
		"tax_total":           sub.TaxTotal,
		"discount_total":      sub.DiscountTotal,
		"grand_total":         sub.GrandTotal,
		"version":             sub.Version,
		"metadata":            sub.Metadata,
		"updated_at":          sub.UpdatedAt,
		"updated_by":          sub.UpdatedBy,
		"id":                  sub.ID,
		"tenant_id":           sub.TenantID,
		"current_version":     currentVersion,
	}

	result, err := r.db.NamedExecContext(ctx, query, params)
	if err != nil {
		sub.Version = currentVersion
		return ierr.WithError(err).
			WithHint("Failed to update subscription").
			Mark(ierr.ErrDatabase)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		sub.Version = currentVersion
		return ierr.NewErrorf("subscription %s was modified concurrently", sub.ID).
			WithHint("Re-read the subscription and retry the operation once").
			WithReportableDetails(map[string]any{"subscription_id": sub.ID}).
			Mark(ierr.ErrConcurrentModification)
	}
	return nil
}

func (r *subscriptionRepository) UpdateWithLineItems(ctx context.Context, sub *subscription.Subscription) error {
	return r.db.WithTx(ctx, func(ctx context.Context) error {
		if err := r.Update(ctx, sub); err != nil {
			return err
		}

		deleteQuery := `
			DELETE FROM subscription_line_items
			WHERE subscription_id = :subscription_id AND tenant_id = :tenant_id
		`
		if _, err := r.db.NamedExecContext(ctx, deleteQuery, map[string]interface{}{
			"subscription_id": sub.ID,
			"tenant_id":       types.GetTenantID(ctx),
		}); err != nil {
			return ierr.WithError(err).
				WithHint("Failed to replace subscription line items").
				Mark(ierr.ErrDatabase)
		}

		for _, line := range sub.LineItems {
			if _, err := r.db.NamedExecContext(ctx, subscriptionLineInsertQuery, line); err != nil {
				return ierr.WithError(err).
					WithHint("Failed to create subscription line item").
					Mark(ierr.ErrDatabase)
			}
		}
		return nil
	})
}

func (r *subscriptionRepository) Delete(ctx context.Context, id string) error {
	query := `
		UPDATE subscriptions SET
			status = :status,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id AND tenant_id = :tenant_id
	`

	_, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"status":     types.StatusDeleted,
		"updated_at": time.Now().UTC(),
		"updated_by": types.GetUserID(ctx),
		"id":         id,
		"tenant_id":  types.GetTenantID(ctx),
	})
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete subscription").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *subscriptionRepository) ListDueForRenewal(ctx context.Context, asOf time.Time) ([]*subscription.Subscription, error) {
	query := `
		SELECT * FROM subscriptions
		WHERE tenant_id = :tenant_id
			AND status != :deleted
			AND subscription_status = :confirmed
			AND closed_at IS NULL
			AND next_billing_date IS NOT NULL
			AND next_billing_date <= :as_of
		ORDER BY next_billing_date ASC
	`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"tenant_id": types.GetTenantID(ctx),
		"deleted":   types.StatusDeleted,
		"confirmed": types.SubscriptionStatusConfirmed,
		"as_of":     asOf,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list subscriptions due for renewal").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var subscriptions []*subscription.Subscription
	for rows.Next() {
		var sub subscription.Subscription
		if err := rows.StructScan(&sub); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan subscription").
				Mark(ierr.ErrDatabase)
		}
		subscriptions = append(subscriptions, &sub)
	}

	return subscriptions, nil
}
