// AngelaMos | 2026
// recorder.go

package payout

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/facilitypass/internal/core"
	"github.com/carterperez-dev/facilitypass/internal/user"
)

var (
	ErrInvalidAmount = core.NewDomainError(
		core.ErrInvalidInput,
		"INVALID_AMOUNT",
		"payout amount must be greater than zero and in whole cents",
	)
	ErrExcessPayoutAmount = core.NewDomainError(
		core.ErrLimitExceeded,
		"EXCESS_PAYOUT_AMOUNT",
		"payout amount exceeds the affiliate's available balance",
	)
)

type Request struct {
	Amount     decimal.Decimal
	ReceiptURL string
	Notes      string
}

// Record validates a payout against the affiliate's balance and builds the
// new PAID entry. The balance must be computed by the caller immediately
// before, under the same lock that will guard the insert.
func Record(
	affiliate user.Affiliate,
	req Request,
	balance decimal.Decimal,
	now time.Time,
) (*Payout, error) {
	if !req.Amount.IsPositive() || !req.Amount.Equal(req.Amount.Round(2)) {
		return nil, ErrInvalidAmount
	}

	if req.Amount.GreaterThan(balance) {
		return nil, ErrExcessPayoutAmount
	}

	return &Payout{
		ID:          uuid.New().String(),
		AffiliateID: affiliate.ID(),
		Amount:      req.Amount,
		Date:        now,
		Status:      StatusPaid,
		ReceiptURL:  optional(req.ReceiptURL),
		Notes:       optional(req.Notes),
	}, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
