// AngelaMos | 2026
// service_test.go

package plan

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/facilitypass/internal/core"
)

type fakeRepository struct {
	plans map[string]*Plan
}

func newFakeRepository(plans ...*Plan) *fakeRepository {
	f := &fakeRepository{plans: map[string]*Plan{}}
	for _, p := range plans {
		f.plans[p.ID] = p
	}
	return f
}

func (f *fakeRepository) Create(_ context.Context, p *Plan) error {
	f.plans[p.ID] = p
	return nil
}

func (f *fakeRepository) GetByID(_ context.Context, id string) (*Plan, error) {
	p, ok := f.plans[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepository) List(_ context.Context, activeOnly bool) ([]Plan, error) {
	var out []Plan
	for _, p := range f.plans {
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeRepository) Update(_ context.Context, p *Plan) error {
	if _, ok := f.plans[p.ID]; !ok {
		return core.ErrNotFound
	}
	f.plans[p.ID] = p
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, id string) error {
	if _, ok := f.plans[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.plans, id)
	return nil
}

func TestServiceCreateValidatesAmounts(t *testing.T) {
	svc := NewService(newFakeRepository())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreatePlanRequest{
		Name:           "Gold",
		Price:          decimal.NewFromInt(-1),
		DurationMonths: 1,
	})
	if !errors.Is(err, ErrInvalidPrice) {
		t.Errorf("expected ErrInvalidPrice, got %v", err)
	}

	_, err = svc.Create(ctx, CreatePlanRequest{
		Name:              "Gold",
		Price:             decimal.NewFromInt(100),
		DurationMonths:    1,
		CommissionPercent: decimal.NewFromInt(101),
	})
	if !errors.Is(err, ErrInvalidCommissionPercent) {
		t.Errorf("expected ErrInvalidCommissionPercent, got %v", err)
	}

	p, err := svc.Create(ctx, CreatePlanRequest{
		Name:              "Gold",
		Price:             decimal.RequireFromString("139.90"),
		DurationMonths:    12,
		CommissionPercent: decimal.NewFromInt(15),
		AffiliateEnabled:  true,
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if !p.Active {
		t.Error("expected new plans to default to active")
	}
}

func TestServiceGetMissing(t *testing.T) {
	svc := NewService(newFakeRepository(&Plan{ID: "on", Active: true}))
	ctx := context.Background()

	if _, err := svc.Get(ctx, "on"); err != nil {
		t.Errorf("expected plan on, got %v", err)
	}

	_, err := svc.Get(ctx, "missing")
	if !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("expected ErrPlanNotFound, got %v", err)
	}
	if !errors.Is(err, core.ErrNotFound) {
		t.Error("expected plan not found to match core.ErrNotFound")
	}
}

func TestServiceUpdatePartial(t *testing.T) {
	repo := newFakeRepository(&Plan{
		ID:             "p1",
		Name:           "Basic",
		Price:          decimal.NewFromInt(50),
		DurationMonths: 1,
		Active:         true,
	})
	svc := NewService(repo)

	name := "Basic Plus"
	active := false
	p, err := svc.Update(context.Background(), "p1", UpdatePlanRequest{
		Name:   &name,
		Active: &active,
	})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	if p.Name != "Basic Plus" || p.Active {
		t.Errorf("unexpected plan after update: %+v", p)
	}
	if !p.Price.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected price untouched, got %s", p.Price)
	}
}
