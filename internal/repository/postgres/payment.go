package postgres

import (
	"context"
	"time"

	"github.com/billcraft/billcraft/internal/domain/payment"
	ierr "github.com/billcraft/billcraft/internal/errors"
	"github.com/billcraft/billcraft/internal/logger"
	"github.com/billcraft/billcraft/internal/postgres"
	"github.com/billcraft/billcraft/internal/types"
	"github.com/lib/pq"
)

type paymentRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPaymentRepository(db *postgres.DB, logger *logger.Logger) payment.Repository {
	return &paymentRepository{db: db, logger: logger}
}

func (r *paymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	query := `
		INSERT INTO payments (
			id, invoice_id, amount, payment_method, payment_status,
			reference_id, payment_date, metadata,
			tenant_id, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :invoice_id, :amount, :payment_method, :payment_status,
			:reference_id, :payment_date, :metadata,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
		)
	`

	_, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create payment").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *paymentRepository) Get(ctx context.Context, id string) (*payment.Payment, error) {
	query := `
		SELECT * FROM payments
		WHERE id = :id AND tenant_id = :tenant_id AND status != :deleted
	`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"id":        id,
		"tenant_id": types.GetTenantID(ctx),
		"deleted":   types.StatusDeleted,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get payment").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewErrorf("payment %s not found", id).
			WithHint("The referenced payment does not exist").
			WithReportableDetails(map[string]any{"payment_id": id}).
			Mark(ierr.ErrNotFound)
	}

	var p payment.Payment
	if err := rows.StructScan(&p); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan payment").
			Mark(ierr.ErrDatabase)
	}

	return &p, nil
}

func (r *paymentRepository) List(ctx context.Context, filter *types.PaymentFilter) ([]*payment.Payment, error) {
	if filter == nil {
		filter = types.NewPaymentFilter()
	}

	query := `
		SELECT * FROM payments
		WHERE tenant_id = :tenant_id AND status != :deleted
	`
	params := map[string]interface{}{
		"tenant_id": types.GetTenantID(ctx),
		"deleted":   types.StatusDeleted,
	}

	if filter.InvoiceID != "" {
		query += " AND invoice_id = :invoice_id"
		params["invoice_id"] = filter.InvoiceID
	}
	if len(filter.PaymentStatus) > 0 {
		query += " AND payment_status = ANY(:payment_status)"
		params["payment_status"] = pq.Array(filter.PaymentStatus)
	}
	if len(filter.PaymentMethod) > 0 {
		query += " AND payment_method = ANY(:payment_method)"
		params["payment_method"] = pq.Array(filter.PaymentMethod)
	}
	if filter.TimeRangeFilter != nil {
		if filter.StartTime != nil {
			query += " AND payment_date >= :start_time"
			params["start_time"] = *filter.StartTime
		}
		if filter.EndTime != nil {
			query += " AND payment_date <= :end_time"
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
			WithHint("Failed to list payments").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var payments []*payment.Payment
	for rows.Next() {
		var p payment.Payment
		if err := rows.StructScan(&p); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan payment").
				Mark(ierr.ErrDatabase)
		}
		payments = append(payments, &p)
	}

	return payments, nil
}

func (r *paymentRepository) Count(ctx context.Context, filter *types.PaymentFilter) (int, error) {
	if filter == nil {
		filter = types.NewPaymentFilter()
	}

	query := `SELECT COUNT(*) FROM payments WHERE tenant_id = :tenant_id AND status != :deleted`
	params := map[string]interface{}{
		"tenant_id": types.GetTenantID(ctx),
		"deleted":   types.StatusDeleted,
	}
	if filter.InvoiceID != "" {
		query += " AND invoice_id = :invoice_id"
		params["invoice_id"] = filter.InvoiceID
	}
	if len(filter.PaymentStatus) > 0 {
		query += " AND payment_status = ANY(:payment_status)"
		params["payment_status"] = pq.Array(filter.PaymentStatus)
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count payments").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var count int
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, ierr.WithError(err).
				WithHint("Failed to scan payment count").
				Mark(ierr.ErrDatabase)
		}
	}
	return count, nil
}

func (r *paymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	p.UpdatedAt = time.Now().UTC()
	p.UpdatedBy = types.GetUserID(ctx)

	query := `
		UPDATE payments SET
			payment_status = :payment_status,
			reference_id = :reference_id,
			metadata = :metadata,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id AND tenant_id = :tenant_id
	`

	result, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update payment").
			Mark(ierr.ErrDatabase)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ierr.NewErrorf("payment %s not found", p.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *paymentRepository) ListCompletedByInvoice(ctx context.Context, invoiceID string) ([]*payment.Payment, error) {
	query := `
		SELECT * FROM payments
		WHERE invoice_id = :invoice_id
			AND tenant_id = :tenant_id
			AND status != :deleted
			AND payment_status = :completed
		ORDER BY payment_date ASC
	`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"invoice_id": invoiceID,
		"tenant_id":  types.GetTenantID(ctx),
		"deleted":    types.StatusDeleted,
		"completed":  types.PaymentStatusCompleted,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list completed payments").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var payments []*payment.Payment
	for rows.Next() {
		var p payment.Payment
		if err := rows.StructScan(&p); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan payment").
				Mark(ierr.ErrDatabase)
		}
		payments = append(payments, &p)
	}

	return payments, nil
}
