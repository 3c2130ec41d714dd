package postgres

import (
	"context"
	"time"

	"github.com/billcraft/billcraft/internal/domain/product"
	ierr "github.com/billcraft/billcraft/internal/errors"
	"github.com/billcraft/billcraft/internal/logger"
	"github.com/billcraft/billcraft/internal/postgres"
	"github.com/billcraft/billcraft/internal/types"
)

type productRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewProductRepository(db *postgres.DB, logger *logger.Logger) product.Repository {
	return &productRepository{db: db, logger: logger}
}

func (r *productRepository) Create(ctx context.Context, p *product.Product) error {
	query := `
		INSERT INTO products (
			id, name, description, price, active,
			tenant_id, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :name, :description, :price, :active,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
		)
	`

	_, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create product").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *productRepository) Get(ctx context.Context, id string) (*product.Product, error) {
	query := `
		SELECT * FROM products
		WHERE id = :id AND tenant_id = :tenant_id AND status != :deleted
	`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"id":        id,
		"tenant_id": types.GetTenantID(ctx),
		"deleted":   types.StatusDeleted,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get product").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewErrorf("product %s not found", id).
			WithHint("The referenced product does not exist").
			WithReportableDetails(map[string]any{"product_id": id}).
			Mark(ierr.ErrNotFound)
	}

	var p product.Product
	if err := rows.StructScan(&p); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan product").
			Mark(ierr.ErrDatabase)
	}

	return &p, nil
}

func (r *productRepository) List(ctx context.Context, filter *types.QueryFilter) ([]*product.Product, error) {
	if filter == nil {
		filter = types.NewDefaultQueryFilter()
	}

	query := `
		SELECT * FROM products
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
			WithHint("Failed to list products").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var products []*product.Product
	for rows.Next() {
		var p product.Product
		if err := rows.StructScan(&p); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan product").
				Mark(ierr.ErrDatabase)
		}
		products = append(products, &p)
	}

	return products, nil
}

func (r *productRepository) Count(ctx context.Context, filter *types.QueryFilter) (int, error) {
	if filter == nil {
		filter = types.NewDefaultQueryFilter()
	}

	query := `SELECT COUNT(*) FROM products WHERE tenant_id = :tenant_id AND status = :status`
	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"tenant_id": types.GetTenantID(ctx),
		"status":    filter.GetStatus(),
	})
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count products").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var count int
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, ierr.WithError(err).
				WithHint("Failed to scan product count").
				Mark(ierr.ErrDatabase)
		}
	}
	return count, nil
}

func (r *productRepository) Update(ctx context.Context, p *product.Product) error {
	p.UpdatedAt = time.Now().UTC()
	p.UpdatedBy = types.GetUserID(ctx)

	query := `
		UPDATE products SET
			name = :name,
			description = :description,
			price = :price,
			active = :active,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id AND tenant_id = :tenant_id
	`

	result, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update product").
			Mark(ierr.ErrDatabase)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ierr.NewErrorf("product %s not found", p.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	query := `
		UPDATE products SET
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
			WithHint("Failed to delete product").
			Mark(ierr.ErrDatabase)
	}
	return nil
}
