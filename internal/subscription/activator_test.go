// AngelaMos | 2026
// activator_test.go

package subscription

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/carterperez-dev/facilitypass/internal/core"
	"github.com/carterperez-dev/facilitypass/internal/plan"
	"github.com/carterperez-dev/facilitypass/internal/user"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 30, 0, 0, time.UTC)
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		n     int
		want  time.Time
	}{
		{"twelve months from jan 31", date(2024, 1, 31), 12, date(2025, 1, 31)},
		{"jan 31 into leap february", date(2024, 1, 31), 1, date(2024, 2, 29)},
		{"jan 31 into common february", date(2023, 1, 31), 1, date(2023, 2, 28)},
		{"feb 29 plus a year", date(2024, 2, 29), 12, date(2025, 2, 28)},
		{"mar 31 into april", date(2024, 3, 31), 1, date(2024, 4, 30)},
		{"year rollover", date(2024, 11, 15), 3, date(2025, 2, 15)},
		{"aug 31 plus six", date(2024, 8, 31), 6, date(2025, 2, 28)},
		{"zero months", date(2024, 6, 10), 0, date(2024, 6, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AddMonths(tt.start, tt.n)
			if !got.Equal(tt.want) {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestActivate(t *testing.T) {
	now := date(2024, 1, 31)
	active := &plan.Plan{ID: "gold", DurationMonths: 12, Active: true}
	archived := &plan.Plan{ID: "old", DurationMonths: 1, Active: false}

	sub, err := Activate(active, now, ClientPurchase)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.PlanID != "gold" || !sub.Active {
		t.Errorf("unexpected subscription %+v", sub)
	}
	if !sub.StartDate.Equal(now) {
		t.Errorf("expected start %s, got %s", now, sub.StartDate)
	}
	if !sub.EndDate.Equal(date(2025, 1, 31)) {
		t.Errorf("expected end 2025-01-31, got %s", sub.EndDate)
	}

	if _, err := Activate(archived, now, ClientPurchase); !errors.Is(err, plan.ErrPlanInactive) {
		t.Errorf("expected ErrPlanInactive for client purchase, got %v", err)
	}

	sub, err = Activate(archived, now, AdminGrant)
	if err != nil {
		t.Fatalf("expected admin grant of archived plan to succeed, got %v", err)
	}
	if !sub.EndDate.Equal(date(2024, 2, 29)) {
		t.Errorf("expected end 2024-02-29, got %s", sub.EndDate)
	}

	if _, err := Activate(archived, now, SettledPayment); err != nil {
		t.Errorf("expected settled payment of archived plan to succeed, got %v", err)
	}

	if _, err := Activate(nil, now, AdminGrant); !errors.Is(err, plan.ErrPlanNotFound) {
		t.Errorf("expected ErrPlanNotFound, got %v", err)
	}
}

type fakePlans map[string]*plan.Plan

func (f fakePlans) Get(_ context.Context, id string) (*plan.Plan, error) {
	p, ok := f[id]
	if !ok {
		return nil, plan.ErrPlanNotFound
	}
	return p, nil
}

type fakeUsers struct {
	users map[string]*user.User
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) UpdateSubscription(_ context.Context, id string, sub *user.Subscription) error {
	f.users[id].Subscription = sub
	return nil
}

func TestGrantPlanOverwritesSubscription(t *testing.T) {
	users := &fakeUsers{users: map[string]*user.User{
		"u1": {
			ID: "u1",
			Subscription: &user.Subscription{
				PlanID:  "basic",
				EndDate: date(2030, 1, 1),
				Active:  false,
			},
		},
	}}
	plans := fakePlans{"old": {ID: "old", DurationMonths: 3, Active: false}}

	svc := NewService(plans, users)
	svc.now = func() time.Time { return date(2024, 11, 30) }

	u, err := svc.GrantPlan(context.Background(), "u1", "old")
	if err != nil {
		t.Fatalf("GrantPlan() error: %v", err)
	}

	stored := users.users["u1"].Subscription
	if stored.PlanID != "old" || !stored.Active {
		t.Errorf("expected subscription replaced, got %+v", stored)
	}
	if !stored.EndDate.Equal(date(2025, 2, 28)) {
		t.Errorf("expected end 2025-02-28, got %s", stored.EndDate)
	}
	if u.Subscription != stored {
		t.Error("expected returned user to carry the new subscription")
	}

	if _, err := svc.GrantPlan(context.Background(), "missing", "old"); !errors.Is(err, user.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.GrantPlan(context.Background(), "u1", "nope"); !errors.Is(err, plan.ErrPlanNotFound) {
		t.Errorf("expected ErrPlanNotFound, got %v", err)
	}
}
