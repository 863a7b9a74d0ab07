// AngelaMos | 2026
// activator.go

package subscription

import (
	"time"

	"github.com/carterperez-dev/facilitypass/internal/plan"
	"github.com/carterperez-dev/facilitypass/internal/user"
)

type Policy int

const (
	// ClientPurchase refuses archived plans.
	ClientPurchase Policy = iota
	// AdminGrant lets an admin activate any existing plan for a member.
	AdminGrant
	// SettledPayment activates a plan the client already paid for, even if
	// it was archived while the payment was pending.
	SettledPayment
)

// Activate builds the subscription snapshot that replaces whatever the user
// held before. A nil plan means the plan id did not resolve.
func Activate(
	p *plan.Plan,
	now time.Time,
	policy Policy,
) (user.Subscription, error) {
	if p == nil {
		return user.Subscription{}, plan.ErrPlanNotFound
	}

	if policy == ClientPurchase && !p.Purchasable() {
		return user.Subscription{}, plan.ErrPlanInactive
	}

	return user.Subscription{
		PlanID:    p.ID,
		StartDate: now,
		EndDate:   AddMonths(now, p.DurationMonths),
		Active:    true,
	}, nil
}

// AddMonths moves t forward by n calendar months. When the target month is
// shorter the day is clamped to its last day: Jan 31 + 1 month is Feb 29 in
// a leap year.
func AddMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	hour, minute, sec := t.Clock()

	target := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(target.Year(), target.Month(), t.Location()); day > last {
		day = last
	}

	return time.Date(
		target.Year(),
		target.Month(),
		day,
		hour,
		minute,
		sec,
		t.Nanosecond(),
		t.Location(),
	)
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
