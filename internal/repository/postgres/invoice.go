package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/billcraft/billcraft/internal/domain/invoice"
	ierr "github.com/billcraft/billcraft/internal/errors"
	"github.com/billcraft/billcraft/internal/logger"
	"github.com/billcraft/billcraft/internal/postgres"
	"github.com/billcraft/billcraft/internal/types"
	"github.com/lib/pq"
)

type invoiceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{db: db, logger: logger}
}

const invoiceInsertQuery = `
	INSERT INTO invoices (
		id, invoice_number, customer_id, subscription_id, invoice_status,
		billing_reason, idempotency_key, issue_date, due_date, paid_date,
		period_start, period_end, subtotal, tax_total, discount_total,
		grand_total, amount_paid, version, metadata,
		tenant_id, status, created_at, updated_at, created_by, updated_by
	) VALUES (
		:id, :invoice_number, :customer_id, :subscription_id, :invoice_status,
		:billing_reason, :idempotency_key, :issue_date, :due_date, :paid_date,
		:period_start, :period_end, :subtotal, :tax_total, :discount_total,
		:grand_total, :amount_paid, :version, :metadata,
		:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
	)
`

const invoiceLineInsertQuery = `
	INSERT INTO invoice_line_items (
		id, invoice_id, product_id, product_name, unit_price, quantity,
		tax_percent, discount_percent, line_total, display_order,
		tenant_id, status, created_at, updated_at, created_by, updated_by
	) VALUES (
		:id, :invoice_id, :product_id, :product_name, :unit_price, :quantity,
		:tax_percent, :discount_percent, :line_total, :display_order,
		:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
	)
`

func (r *invoiceRepository) CreateWithLineItems(ctx context.Context, inv *invoice.Invoice) error {
	return r.db.WithTx(ctx, func(ctx context.Context) error {
		if _, err := r.db.NamedExecContext(ctx, invoiceInsertQuery, inv); err != nil {
			if isUniqueViolation(err, "") {
				return ierr.WithError(err).
					WithHint("An invoice for this billing event already exists").
					WithReportableDetails(map[string]any{
						"invoice_number": inv.InvoiceNumber,
					}).
					Mark(ierr.ErrAlreadyExists)
			}
			return ierr.WithError(err).
				WithHint("Failed to create invoice").
				Mark(ierr.ErrDatabase)
		}

		for _, line := range inv.LineItems {
			if _, err := r.db.NamedExecContext(ctx, invoiceLineInsertQuery, line); err != nil {
				return ierr.WithError(err).
					WithHint("Failed to create invoice line item").
					Mark(ierr.ErrDatabase)
			}
		}
		return nil
	})
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	query := `
		SELECT * FROM invoices
		WHERE id = :id AND tenant_id = :tenant_id AND status != :deleted
	`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"id":        id,
		"tenant_id": types.GetTenantID(ctx),
		"deleted":   types.StatusDeleted,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get invoice").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewErrorf("invoice %s not found", id).
			WithHint("The referenced invoice does not exist").
			WithReportableDetails(map[string]any{"invoice_id": id}).
			Mark(ierr.ErrNotFound)
	}

	var inv invoice.Invoice
	if err := rows.StructScan(&inv); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan invoice").
			Mark(ierr.ErrDatabase)
	}

	return &inv, nil
}

func (r *invoiceRepository) GetWithLineItems(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	lines, err := r.listLineItems(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.LineItems = lines
	return inv, nil
}

func (r *invoiceRepository) listLineItems(ctx context.Context, invoiceID string) ([]*invoice.InvoiceLineItem, error) {
	query := `
		SELECT * FROM invoice_line_items
		WHERE invoice_id = :invoice_id AND tenant_id = :tenant_id AND status != :deleted
		ORDER BY display_order ASC
	`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"invoice_id": invoiceID,
		"tenant_id":  types.GetTenantID(ctx),
		"deleted":    types.StatusDeleted,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list invoice line items").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var lines []*invoice.InvoiceLineItem
	for rows.Next() {
		var line invoice.InvoiceLineItem
		if err := rows.StructScan(&line); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan invoice line item").
				Mark(ierr.ErrDatabase)
		}
		lines = append(lines, &line)
	}
	return lines, nil
}

func (r *invoiceRepository) GetByIdempotencyKey(ctx context.Context, key string) (*invoice.Invoice, error) {
	query := `
		SELECT * FROM invoices
		WHERE idempotency_key = :idempotency_key AND tenant_id = :tenant_id AND status != :deleted
	`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"idempotency_key": key,
		"tenant_id":       types.GetTenantID(ctx),
		"deleted":         types.StatusDeleted,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get invoice by idempotency key").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewErrorf("no invoice for idempotency key %s", key).
			Mark(ierr.ErrNotFound)
	}

	var inv invoice.Invoice
	if err := rows.StructScan(&inv); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan invoice").
			Mark(ierr.ErrDatabase)
	}

	return &inv, nil
}

func (r *invoiceRepository) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}

	query := `
		SELECT * FROM invoices
		WHERE tenant_id = :tenant_id AND status != :deleted
	`
	params := map[string]interface{}{
		"tenant_id": types.GetTenantID(ctx),
		"deleted":   types.StatusDeleted,
	}

	if len(filter.InvoiceIDs) > 0 {
		query += " AND id = ANY(:invoice_ids)"
		params["invoice_ids"] = pq.Array(filter.InvoiceIDs)
	}
	if filter.CustomerID != "" {
		query += " AND customer_id = :customer_id"
		params["customer_id"] = filter.CustomerID
	}
	if filter.SubscriptionID != "" {
		query += " AND subscription_id = :subscription_id"
		params["subscription_id"] = filter.SubscriptionID
	}
	if len(filter.InvoiceStatus) > 0 {
		query += " AND invoice_status = ANY(:invoice_status)"
		params["invoice_status"] = pq.Array(filter.InvoiceStatus)
	}
	if filter.TimeRangeFilter != nil {
		if filter.StartTime != nil {
			query += " AND issue_date >= :start_time"
			params["start_time"] = *filter.StartTime
		}
		if filter.EndTime != nil {
			query += " AND issue_date <= :end_time"
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
			WithHint("Failed to list invoices").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var invoices []*invoice.Invoice
	for rows.Next() {
		var inv invoice.Invoice
		if err := rows.StructScan(&inv); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan invoice").
				Mark(ierr.ErrDatabase)
		}
		invoices = append(invoices, &inv)
	}

	return invoices, nil
}

func (r *invoiceRepository) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}

	query := `SELECT COUNT(*) FROM invoices WHERE tenant_id = :tenant_id AND status != :deleted`
	params := map[string]interface{}{
		"tenant_id": types.GetTenantID(ctx),
		"deleted":   types.StatusDeleted,
	}
	if filter.CustomerID != "" {
		query += " AND customer_id = :customer_id"
		params["customer_id"] = filter.CustomerID
	}
	if filter.SubscriptionID != "" {
		query += " AND subscription_id = :subscription_id"
		params["subscription_id"] = filter.SubscriptionID
	}
	if len(filter.InvoiceStatus) > 0 {
		query += " AND invoice_status = ANY(:invoice_status)"
		params["invoice_status"] = pq.Array(filter.InvoiceStatus)
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count invoices").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var count int
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, ierr.WithError(err).
				WithHint("Failed to scan invoice count").
				Mark(ierr.ErrDatabase)
		}
	}
	return count, nil
}

// Update writes the invoice row guarded by the version it was read at.
func (r *invoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	currentVersion := inv.Version
	inv.Version++
	inv.UpdatedAt = time.Now().UTC()
	inv.UpdatedBy = types.GetUserID(ctx)

	query := `
		UPDATE invoices SET
			invoice_status = :invoice_status,
			due_date = :due_date,
			paid_date = :paid_date,
			amount_paid = :amount_paid,
			version = :version,
			metadata = :metadata,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id AND tenant_id = :tenant_id AND version = :current_version
	`

	params := map[string]interface{}{
		"invoice_status":  inv.InvoiceStatus,
		"due_date":        inv.DueDate,
		"paid_date":       inv.PaidDate,
		"amount_paid":     inv.AmountPaid,
		"version":         inv.Version,
		"metadata":        inv.Metadata,
		"updated_at":      inv.UpdatedAt,
		"updated_by":      inv.UpdatedBy,
		"id":              inv.ID,
		"tenant_id":       inv.TenantID,
		"current_version": currentVersion,
	}

	result, err := r.db.NamedExecContext(ctx, query, params)
	if err != nil {
		inv.Version = currentVersion
		return ierr.WithError(err).
			WithHint("Failed to update invoice").
			Mark(ierr.ErrDatabase)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		inv.Version = currentVersion
		return ierr.NewErrorf("invoice %s was modified concurrently", inv.ID).
			WithHint("Re-read the invoice and retry the operation once").
			WithReportableDetails(map[string]any{"invoice_id": inv.ID}).
			Mark(ierr.ErrConcurrentModification)
	}
	return nil
}

// GetNextInvoiceNumber increments the tenant-scoped sequence and formats it
// as INV-00000001 style numbers.
func (r *invoiceRepository) GetNextInvoiceNumber(ctx context.Context) (string, error) {
	query := `
		INSERT INTO invoice_sequences (tenant_id, last_value)
		VALUES (:tenant_id, 1)
		ON CONFLICT (tenant_id)
		DO UPDATE SET last_value = invoice_sequences.last_value + 1
		RETURNING last_value
	`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"tenant_id": types.GetTenantID(ctx),
	})
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to advance invoice number sequence").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return "", ierr.NewError("invoice number sequence returned no value").
			Mark(ierr.ErrDatabase)
	}

	var next int64
	if err := rows.Scan(&next); err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to scan invoice number").
			Mark(ierr.ErrDatabase)
	}

	return fmt.Sprintf("INV-%08d", next), nil
}

func (r *invoiceRepository) ListDue(ctx context.Context, asOf time.Time) ([]*invoice.Invoice, error) {
	query := `
		SELECT * FROM invoices
		WHERE tenant_id = :tenant_id
			AND status != :deleted
			AND invoice_status = :confirmed
			AND due_date IS NOT NULL
			AND due_date < :as_of
		ORDER BY due_date ASC
	`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"tenant_id": types.GetTenantID(ctx),
		"deleted":   types.StatusDeleted,
		"confirmed": types.InvoiceStatusConfirmed,
		"as_of":     asOf,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list due invoices").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var invoices []*invoice.Invoice
	for rows.Next() {
		var inv invoice.Invoice
		if err := rows.StructScan(&inv); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan invoice").
				Mark(ierr.ErrDatabase)
		}
		invoices = append(invoices, &inv)
	}

	return invoices, nil
}
