// AngelaMos | 2026
// repository.go

package payout

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/facilitypass/internal/core"
)

type Repository interface {
	Create(ctx context.Context, payout *Payout) error
	List(ctx context.Context) ([]Payout, error)
	ListByAffiliate(ctx context.Context, affiliateID string) ([]Payout, error)
	TotalPaid(ctx context.Context) (decimal.Decimal, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const payoutColumns = `
	id, affiliate_id, amount, date, status, receipt_url, notes, created_at`

func (r *repository) Create(ctx context.Context, payout *Payout) error {
	query := `
		INSERT INTO payouts (
			id, affiliate_id, amount, date, status, receipt_url, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &payout.CreatedAt, query,
		payout.ID,
		payout.AffiliateID,
		payout.Amount,
		payout.Date,
		payout.Status,
		payout.ReceiptURL,
		payout.Notes,
	)
	if err != nil {
		if core.IsForeignKeyError(err) {
			return fmt.Errorf("create payout: %w", core.ErrNotFound)
		}
		return fmt.Errorf("create payout: %w", err)
	}

	return nil
}

func (r *repository) List(ctx context.Context) ([]Payout, error) {
	query := `SELECT ` + payoutColumns + ` FROM payouts ORDER BY date DESC`

	var payouts []Payout
	if err := r.db.SelectContext(ctx, &payouts, query); err != nil {
		return nil, fmt.Errorf("list payouts: %w", err)
	}

	return payouts, nil
}

// ListByAffiliate returns the affiliate's payouts, newest first.
func (r *repository) ListByAffiliate(
	ctx context.Context,
	affiliateID string,
) ([]Payout, error) {
	query := `SELECT ` + payoutColumns + `
		FROM payouts
		WHERE affiliate_id = $1
		ORDER BY date DESC, created_at DESC`

	var payouts []Payout
	if err := r.db.SelectContext(ctx, &payouts, query, affiliateID); err != nil {
		return nil, fmt.Errorf("list affiliate payouts: %w", err)
	}

	return payouts, nil
}

func (r *repository) TotalPaid(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	query := `SELECT COALESCE(SUM(amount), 0) FROM payouts`
	if err := r.db.GetContext(ctx, &total, query); err != nil {
		return decimal.Zero, fmt.Errorf("sum payouts: %w", err)
	}
	return total, nil
}
