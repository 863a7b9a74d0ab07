// AngelaMos | 2026
// repository.go

package plan

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/facilitypass/internal/core"
)

type Repository interface {
	Create(ctx context.Context, plan *Plan) error
	GetByID(ctx context.Context, id string) (*Plan, error)
	List(ctx context.Context, activeOnly bool) ([]Plan, error)
	Update(ctx context.Context, plan *Plan) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const planColumns = `
	id, name, description, price, duration_months, features, active,
	affiliate_enabled, commission_percent, created_at, updated_at`

func (r *repository) Create(ctx context.Context, plan *Plan) error {
	query := `
		INSERT INTO plans (
			id, name, description, price, duration_months, features, active,
			affiliate_enabled, commission_percent
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	row := r.db.QueryRowxContext(ctx, query,
		plan.ID,
		plan.Name,
		plan.Description,
		plan.Price,
		plan.DurationMonths,
		plan.Features,
		plan.Active,
		plan.AffiliateEnabled,
		plan.CommissionPercent,
	)
	if err := row.Scan(&plan.CreatedAt, &plan.UpdatedAt); err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create plan: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create plan: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE id = $1`

	var plan Plan
	err := r.db.GetContext(ctx, &plan, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get plan: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}

	return &plan, nil
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans`
	if activeOnly {
		query += ` WHERE active = true`
	}
	query += ` ORDER BY price ASC, created_at ASC`

	var plans []Plan
	if err := r.db.SelectContext(ctx, &plans, query); err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}

	return plans, nil
}

func (r *repository) Update(ctx context.Context, plan *Plan) error {
	query := `
		UPDATE plans
		SET name = $2, description = $3, price = $4, duration_months = $5,
		    features = $6, active = $7, affiliate_enabled = $8,
		    commission_percent = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &plan.UpdatedAt, query,
		plan.ID,
		plan.Name,
		plan.Description,
		plan.Price,
		plan.DurationMonths,
		plan.Features,
		plan.Active,
		plan.AffiliateEnabled,
		plan.CommissionPercent,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update plan: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update plan: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM plans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete plan: %w", core.ErrNotFound)
	}

	return nil
}
