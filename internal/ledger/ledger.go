// AngelaMos | 2026
// ledger.go

package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/facilitypass/internal/payout"
	"github.com/carterperez-dev/facilitypass/internal/sale"
)

type MonthStat struct {
	Month      string
	SalesCount int
	Commission decimal.Decimal
}

// Summary is recomputed from raw sales and payouts on every read. Balance
// may be negative when stored payouts already exceed earned commission.
type Summary struct {
	AffiliateID     string
	TotalSales      int
	TotalRevenue    decimal.Decimal
	TotalCommission decimal.Decimal
	TotalPaid       decimal.Decimal
	Balance         decimal.Decimal
	Monthly         map[string]MonthStat
	monthOrder      []string
}

// Months lists the monthly breakdown in order of first occurrence.
func (s Summary) Months() []MonthStat {
	out := make([]MonthStat, 0, len(s.monthOrder))
	for _, key := range s.monthOrder {
		out = append(out, s.Monthly[key])
	}
	return out
}

// Summarize filters sales and payouts down to affiliateID; the inputs may
// hold records for other affiliates.
func Summarize(
	affiliateID string,
	sales []sale.Sale,
	payouts []payout.Payout,
) Summary {
	sum := Summary{
		AffiliateID:     affiliateID,
		TotalRevenue:    decimal.Zero,
		TotalCommission: decimal.Zero,
		TotalPaid:       decimal.Zero,
		Monthly:         make(map[string]MonthStat),
	}

	for i := range sales {
		s := &sales[i]
		if !s.AttributedTo(affiliateID) {
			continue
		}

		sum.TotalSales++
		sum.TotalRevenue = sum.TotalRevenue.Add(s.Amount)
		sum.TotalCommission = sum.TotalCommission.Add(s.CommissionAmount)

		key := MonthKey(s)
		stat, seen := sum.Monthly[key]
		if !seen {
			stat = MonthStat{Month: key, Commission: decimal.Zero}
			sum.monthOrder = append(sum.monthOrder, key)
		}
		stat.SalesCount++
		stat.Commission = stat.Commission.Add(s.CommissionAmount)
		sum.Monthly[key] = stat
	}

	for i := range payouts {
		if payouts[i].AffiliateID == affiliateID {
			sum.TotalPaid = sum.TotalPaid.Add(payouts[i].Amount)
		}
	}

	sum.Balance = sum.TotalCommission.Sub(sum.TotalPaid)

	return sum
}

// MonthKey is "month/year" with a 1-indexed month, e.g. "3/2024".
func MonthKey(s *sale.Sale) string {
	return fmt.Sprintf("%d/%d", int(s.Date.Month()), s.Date.Year())
}
