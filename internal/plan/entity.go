// AngelaMos | 2026
// entity.go

package plan

import (
	"time"

	"github.com/shopspring/decimal"
)

type Plan struct {
	ID                string          `db:"id"`
	Name              string          `db:"name"`
	Description       string          `db:"description"`
	Price             decimal.Decimal `db:"price"`
	DurationMonths    int             `db:"duration_months"`
	Features          Features        `db:"features"`
	Active            bool            `db:"active"`
	AffiliateEnabled  bool            `db:"affiliate_enabled"`
	CommissionPercent decimal.Decimal `db:"commission_percent"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

// Purchasable reports whether clients may buy the plan themselves. Archived
// plans stay referenceable by existing subscriptions.
func (p *Plan) Purchasable() bool {
	return p.Active
}
