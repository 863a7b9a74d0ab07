// AngelaMos | 2026
// service.go

package plan

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/facilitypass/internal/core"
)

var (
	ErrPlanNotFound = core.NewDomainError(
		core.ErrNotFound,
		"PLAN_NOT_FOUND",
		"plan not found",
	)
	ErrPlanInactive = core.NewDomainError(
		core.ErrInvalidInput,
		"PLAN_INACTIVE",
		"this plan is no longer available",
	)
	ErrInvalidPrice = core.NewDomainError(
		core.ErrInvalidInput,
		"INVALID_PRICE",
		"price must not be negative",
	)
	ErrInvalidCommissionPercent = core.NewDomainError(
		core.ErrInvalidInput,
		"INVALID_COMMISSION_PERCENT",
		"commission percent must be between 0 and 100",
	)
)

var hundred = decimal.NewFromInt(100)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns every plan, or only purchasable ones when activeOnly is set.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]Plan, error) {
	return s.repo.List(ctx, activeOnly)
}

func (s *Service) Get(ctx context.Context, id string) (*Plan, error) {
	plan, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAsDomain(err)
	}
	return plan, nil
}

func (s *Service) Create(
	ctx context.Context,
	req CreatePlanRequest,
) (*Plan, error) {
	plan := &Plan{
		ID:                uuid.New().String(),
		Name:              req.Name,
		Description:       req.Description,
		Price:             req.Price.Round(2),
		DurationMonths:    req.DurationMonths,
		Features:          Features(req.Features),
		Active:            true,
		AffiliateEnabled:  req.AffiliateEnabled,
		CommissionPercent: req.CommissionPercent,
	}
	if req.Active != nil {
		plan.Active = *req.Active
	}

	if err := validatePlan(plan); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, plan); err != nil {
		return nil, err
	}

	return plan, nil
}

func (s *Service) Update(
	ctx context.Context,
	id string,
	req UpdatePlanRequest,
) (*Plan, error) {
	plan, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		plan.Name = *req.Name
	}
	if req.Description != nil {
		plan.Description = *req.Description
	}
	if req.Price != nil {
		plan.Price = req.Price.Round(2)
	}
	if req.DurationMonths != nil {
		plan.DurationMonths = *req.DurationMonths
	}
	if req.Features != nil {
		plan.Features = Features(req.Features)
	}
	if req.Active != nil {
		plan.Active = *req.Active
	}
	if req.AffiliateEnabled != nil {
		plan.AffiliateEnabled = *req.AffiliateEnabled
	}
	if req.CommissionPercent != nil {
		plan.CommissionPercent = *req.CommissionPercent
	}

	if err := validatePlan(plan); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, plan); err != nil {
		return nil, notFoundAsDomain(err)
	}

	return plan, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return notFoundAsDomain(s.repo.Delete(ctx, id))
}

func validatePlan(p *Plan) error {
	if p.Price.IsNegative() {
		return ErrInvalidPrice
	}
	if p.CommissionPercent.IsNegative() ||
		p.CommissionPercent.GreaterThan(hundred) {
		return ErrInvalidCommissionPercent
	}
	return nil
}

func notFoundAsDomain(err error) error {
	if err == nil {
		return nil
	}
	if core.IsNotFound(err) {
		return ErrPlanNotFound
	}
	return err
}
