// AngelaMos | 2026
// service.go

package subscription

import (
	"context"
	"log/slog"
	"time"

	"github.com/carterperez-dev/facilitypass/internal/core"
	"github.com/carterperez-dev/facilitypass/internal/plan"
	"github.com/carterperez-dev/facilitypass/internal/user"
)

type PlanSource interface {
	Get(ctx context.Context, id string) (*plan.Plan, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
	UpdateSubscription(ctx context.Context, id string, sub *user.Subscription) error
}

type Service struct {
	plans PlanSource
	users UserStore
	now   func() time.Time
}

func NewService(plans PlanSource, users UserStore) *Service {
	return &Service{plans: plans, users: users, now: time.Now}
}

// GrantPlan activates planID for the member without recording a sale.
func (s *Service) GrantPlan(
	ctx context.Context,
	userID, planID string,
) (*user.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if core.IsNotFound(err) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}

	p, err := s.plans.Get(ctx, planID)
	if err != nil {
		return nil, err
	}

	sub, err := Activate(p, s.now().UTC(), AdminGrant)
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdateSubscription(ctx, u.ID, &sub); err != nil {
		return nil, err
	}
	u.Subscription = &sub

	slog.InfoContext(ctx, "plan granted",
		"user_id", u.ID,
		"plan_id", p.ID,
		"end_date", sub.EndDate,
	)

	return u, nil
}

var _ user.PlanGranter = (*Service)(nil)
