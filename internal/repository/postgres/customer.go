package postgres

import (
	"context"
	"time"

	"github.com/billcraft/billcraft/internal/domain/customer"
	ierr "github.com/billcraft/billcraft/internal/errors"
	"github.com/billcraft/billcraft/internal/logger"
	"github.com/billcraft/billcraft/internal/postgres"
	"github.com/billcraft/billcraft/internal/types"
)

type customerRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewCustomerRepository(db *postgres.DB, logger *logger.Logger) customer.Repository {
	return &customerRepository{db: db, logger: logger}
}

func (r *customerRepository) Create(ctx context.Context, c *customer.Customer) error {
	query := `
		INSERT INTO customers (
			id, name, email, phone, address,
			tenant_id, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :name, :email, :phone, :address,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
		)
	`

	_, err := r.db.NamedExecContext(ctx, query, c)
	if err != nil {
		if isUniqueViolation(err, "") {
			return ierr.WithError(err).
				WithHint("A customer with this identifier already exists").
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create customer").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *customerRepository) Get(ctx context.Context, id string) (*customer.Customer, error) {
	query := `
		SELECT * FROM customers
		WHERE id = :id AND tenant_id = :tenant_id AND status != :deleted
	`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"id":        id,
		"tenant_id": types.GetTenantID(ctx),
		"deleted":   types.StatusDeleted,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get customer").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewErrorf("customer %s not found", id).
			WithHint("The referenced customer does not exist").
			WithReportableDetails(map[string]any{"customer_id": id}).
			Mark(ierr.ErrNotFound)
	}

	var c customer.Customer
	if err := rows.StructScan(&c); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan customer").
			Mark(ierr.ErrDatabase)
	}

	return &c, nil
}

func (r *customerRepository) List(ctx context.Context, filter *types.QueryFilter) ([]*customer.Customer, error) {
	if filter == nil {
		filter = types.NewDefaultQueryFilter()
	}

	query := `
		SELECT * FROM customers
		WHERE tenant_id = :tenant_id AND status = :status
		ORDER BY created_at DESC
	`
	params := map[string]interface{}{
		"tenant_id": types.GetTenantID(ctx),
		"status":    filter.GetStatus(),
	}
	if !filter.IsUnlimited() {
		query += " LIMIT :limit OFFSET :offset"
		params["limit"] = filter.GetLimit()
		params["offset"] = filter.GetOffset()
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list customers").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var customers []*customer.Customer
	for rows.Next() {
		var c customer.Customer
		if err := rows.StructScan(&c); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan customer").
				Mark(ierr.ErrDatabase)
		}
		customers = append(customers, &c)
	}

	return customers, nil
}

func (r *customerRepository) Count(ctx context.Context, filter *types.QueryFilter) (int, error) {
	if filter == nil {
		filter = types.NewDefaultQueryFilter()
	}

	query := `SELECT COUNT(*) FROM customers WHERE tenant_id = :tenant_id AND status = :status`
	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"tenant_id": types.GetTenantID(ctx),
		"status":    filter.GetStatus(),
	})
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count customers").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var count int
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, ierr.WithError(err).
				WithHint("Failed to scan customer count").
				Mark(ierr.ErrDatabase)
		}
	}
	return count, nil
}

func (r *customerRepository) Update(ctx context.Context, c *customer.Customer) error {
	c.UpdatedAt = time.Now().UTC()
	c.UpdatedBy = types.GetUserID(ctx)

	query := `
		UPDATE customers SET
			name = :name,
			email = :email,
			phone = :phone,
			address = :address,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id AND tenant_id = :tenant_id
	`

	result, err := r.db.NamedExecContext(ctx, query, c)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update customer").
			Mark(ierr.ErrDatabase)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ierr.NewErrorf("customer %s not found", c.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *customerRepository) Delete(ctx context.Context, id string) error {
	query := `
		UPDATE customers SET
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
			WithHint("Failed to delete customer").
			Mark(ierr.ErrDatabase)
	}
	return nil
}
