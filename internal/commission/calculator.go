// AngelaMos | 2026
// calculator.go

package commission

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/facilitypass/internal/plan"
	"github.com/carterperez-dev/facilitypass/internal/user"
)

var hundred = decimal.NewFromInt(100)

// Attribution is the affiliate credit for one sale. AffiliateID may be set
// while Amount is zero: the sale still counts as a conversion.
type Attribution struct {
	AffiliateID *string
	Amount      decimal.Decimal
}

func (a Attribution) Attributed() bool {
	return a.AffiliateID != nil
}

// Calculate resolves the referral code against the roster and prices the
// commission owed for buyer purchasing p. It never fails; anything that
// cannot be attributed yields an empty Attribution.
func Calculate(
	referralCode string,
	buyer *user.User,
	p *plan.Plan,
	roster []user.User,
) Attribution {
	none := Attribution{Amount: decimal.Zero}

	code := strings.TrimSpace(referralCode)
	if code == "" || p == nil {
		return none
	}

	affiliate, ok := findReferrer(code, roster)
	if !ok {
		return none
	}

	if buyer != nil && affiliate.ID() == buyer.ID {
		return none
	}

	id := affiliate.ID()
	return Attribution{
		AffiliateID: &id,
		Amount:      Amount(p.Price, Percent(affiliate, p)),
	}
}

// Percent is the commission rate the affiliate earns on p. An override
// always wins, including an override of zero.
func Percent(affiliate user.Affiliate, p *plan.Plan) decimal.Decimal {
	if override, ok := affiliate.Override(); ok {
		return override
	}
	if p.AffiliateEnabled {
		return p.CommissionPercent
	}
	return decimal.Zero
}

// Amount rounds price * percent / 100 half away from zero to cents.
func Amount(price, percent decimal.Decimal) decimal.Decimal {
	if !percent.IsPositive() {
		return decimal.Zero
	}
	return price.Mul(percent).Div(hundred).Round(2)
}

func findReferrer(code string, roster []user.User) (user.Affiliate, bool) {
	for i := range roster {
		a, ok := roster[i].AsAffiliate()
		if !ok || a.IsBlocked() {
			continue
		}
		if a.MatchesCode(code) {
			return a, true
		}
	}
	return user.Affiliate{}, false
}
