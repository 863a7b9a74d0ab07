// AngelaMos | 2026
// entity.go

package sale

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is the immutable record of one completed purchase. Amount and
// PlanName are copied from the plan at the time of sale.
type Sale struct {
	ID               string          `db:"id"`
	Date             time.Time       `db:"date"`
	Amount           decimal.Decimal `db:"amount"`
	PlanID           string          `db:"plan_id"`
	PlanName         string          `db:"plan_name"`
	BuyerID          string          `db:"buyer_id"`
	AffiliateID      *string         `db:"affiliate_id"`
	CommissionAmount decimal.Decimal `db:"commission_amount"`
	PaymentRef       *string         `db:"payment_ref"`
	CreatedAt        time.Time       `db:"created_at"`
}

func (s *Sale) AttributedTo(affiliateID string) bool {
	return s.AffiliateID != nil && *s.AffiliateID == affiliateID
}
