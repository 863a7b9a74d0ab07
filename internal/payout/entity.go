// AngelaMos | 2026
// entity.go

package payout

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPaid       = "PAID"
	StatusProcessing = "PROCESSING"
)

type Payout struct {
	ID          string          `db:"id"`
	AffiliateID string          `db:"affiliate_id"`
	Amount      decimal.Decimal `db:"amount"`
	Date        time.Time       `db:"date"`
	Status      string          `db:"status"`
	ReceiptURL  *string         `db:"receipt_url"`
	Notes       *string         `db:"notes"`
	CreatedAt   time.Time       `db:"created_at"`
}
