package postgres

import (
	"context"
	"time"

	"github.com/billcraft/billcraft/internal/domain/plan"
	ierr "github.com/billcraft/billcraft/internal/errors"
	"github.com/billcraft/billcraft/internal/logger"
	"github.com/billcraft/billcraft/internal/postgres"
	"github.com/billcraft/billcraft/internal/types"
)

type planRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPlanRepository(db *postgres.DB, logger *logger.Logger) plan.Repository {
	return &planRepository{db: db, logger: logger}
}

func (r *planRepository) Create(ctx context.Context, p *plan.Plan) error {
	query := `
		INSERT INTO plans (
			id, product_id, name, description, price, billing_period,
			tenant_id, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :product_id, :name, :description, :price, :billing_period,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
		)
	`

	_, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create plan").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *planRepository) Get(ctx context.Context, id string) (*plan.Plan, error) {
	query := `
		SELECT * FROM plans
		WHERE id = :id AND tenant_id = :tenant_id AND status != :deleted
	`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"id":        id,
		"tenant_id": types.GetTenantID(ctx),
		"deleted":   types.StatusDeleted,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get plan").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewErrorf("plan %s not found", id).
			WithHint("The referenced plan does not exist").
			WithReportableDetails(map[string]any{"plan_id": id}).
			Mark(ierr.ErrNotFound)
	}

	var p plan.Plan
	if err := rows.StructScan(&p); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan plan").
			Mark(ierr.ErrDatabase)
	}

	return &p, nil
}

func (r *planRepository) List(ctx context.Context, filter *types.QueryFilter) ([]*plan.Plan, error) {
	if filter == nil {
		filter = types.NewDefaultQueryFilter()
	}

	query := `
		SELECT * FROM plans
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
			WithHint("Failed to list plans").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var plans []*plan.Plan
	for rows.Next() {
		var p plan.Plan
		if err := rows.StructScan(&p); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan plan").
				Mark(ierr.ErrDatabase)
		}
		plans = append(plans, &p)
	}

	return plans, nil
}

func (r *planRepository) Count(ctx context.Context, filter *types.QueryFilter) (int, error) {
	if filter == nil {
		filter = types.NewDefaultQueryFilter()
	}

	query := `SELECT COUNT(*) FROM plans WHERE tenant_id = :tenant_id AND status = :status`
	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"tenant_id": types.GetTenantID(ctx),
		"status":    filter.GetStatus(),
	})
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count plans").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var count int
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, ierr.WithError(err).
				WithHint("Failed to scan plan count").
				Mark(ierr.ErrDatabase)
		}
	}
	return count, nil
}

func (r *planRepository) Update(ctx context.Context, p *plan.Plan) error {
	p.UpdatedAt = time.Now().UTC()
	p.UpdatedBy = types.GetUserID(ctx)

	query := `
		UPDATE plans SET
			name = :name,
			description = :description,
			price = :price,
			billing_period = :billing_period,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id AND tenant_id = :tenant_id
	`

	result, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update plan").
			Mark(ierr.ErrDatabase)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ierr.NewErrorf("plan %s not found", p.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *planRepository) Delete(ctx context.Context, id string) error {
	query := `
		UPDATE plans SET
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
			WithHint("Failed to delete plan").
			Mark(ierr.ErrDatabase)
	}
	return nil
}
