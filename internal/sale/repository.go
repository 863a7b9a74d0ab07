// AngelaMos | 2026
// repository.go

package sale

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/facilitypass/internal/core"
)

// Repository has no update or delete: sales are append-only.
type Repository interface {
	Create(ctx context.Context, sale *Sale) error
	GetByPaymentRef(ctx context.Context, ref string) (*Sale, error)
	List(ctx context.Context) ([]Sale, error)
	ListByAffiliate(ctx context.Context, affiliateID string) ([]Sale, error)
	ListAttributed(ctx context.Context) ([]Sale, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const saleColumns = `
	id, date, amount, plan_id, plan_name, buyer_id, affiliate_id,
	commission_amount, payment_ref, created_at`

// Create fails with core.ErrDuplicateKey when the payment reference was
// already recorded.
func (r *repository) Create(ctx context.Context, sale *Sale) error {
	query := `
		INSERT INTO sales (
			id, date, amount, plan_id, plan_name, buyer_id, affiliate_id,
			commission_amount, payment_ref
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &sale.CreatedAt, query,
		sale.ID,
		sale.Date,
		sale.Amount,
		sale.PlanID,
		sale.PlanName,
		sale.BuyerID,
		sale.AffiliateID,
		sale.CommissionAmount,
		sale.PaymentRef,
	)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create sale: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create sale: %w", err)
	}

	return nil
}

func (r *repository) GetByPaymentRef(
	ctx context.Context,
	ref string,
) (*Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE payment_ref = $1`

	var s Sale
	err := r.db.GetContext(ctx, &s, query, ref)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get sale: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get sale: %w", err)
	}

	return &s, nil
}

func (r *repository) List(ctx context.Context) ([]Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales ORDER BY date ASC, created_at ASC`

	var sales []Sale
	if err := r.db.SelectContext(ctx, &sales, query); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}

	return sales, nil
}

func (r *repository) ListByAffiliate(
	ctx context.Context,
	affiliateID string,
) ([]Sale, error) {
	query := `SELECT ` + saleColumns + `
		FROM sales
		WHERE affiliate_id = $1
		ORDER BY date ASC, created_at ASC`

	var sales []Sale
	if err := r.db.SelectContext(ctx, &sales, query, affiliateID); err != nil {
		return nil, fmt.Errorf("list affiliate sales: %w", err)
	}

	return sales, nil
}

func (r *repository) ListAttributed(ctx context.Context) ([]Sale, error) {
	query := `SELECT ` + saleColumns + `
		FROM sales
		WHERE affiliate_id IS NOT NULL
		ORDER BY date ASC, created_at ASC`

	var sales []Sale
	if err := r.db.SelectContext(ctx, &sales, query); err != nil {
		return nil, fmt.Errorf("list attributed sales: %w", err)
	}

	return sales, nil
}
