// AngelaMos | 2026
// dto.go

package plan

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreatePlanRequest struct {
	Name              string          `json:"name"               validate:"required,min=1,max=100"`
	Description       string          `json:"description"        validate:"max=1000"`
	Price             decimal.Decimal `json:"price"`
	DurationMonths    int             `json:"duration_months"    validate:"required,gte=1,lte=120"`
	Features          []string        `json:"features"           validate:"max=30,dive,min=1,max=200"`
	Active            *bool           `json:"active,omitempty"`
	AffiliateEnabled  bool            `json:"affiliate_enabled"`
	CommissionPercent decimal.Decimal `json:"commission_percent"`
}

type UpdatePlanRequest struct {
	Name              *string          `json:"name,omitempty"               validate:"omitempty,min=1,max=100"`
	Description       *string          `json:"description,omitempty"        validate:"omitempty,max=1000"`
	Price             *decimal.Decimal `json:"price,omitempty"`
	DurationMonths    *int             `json:"duration_months,omitempty"    validate:"omitempty,gte=1,lte=120"`
	Features          []string         `json:"features,omitempty"           validate:"omitempty,max=30,dive,min=1,max=200"`
	Active            *bool            `json:"active,omitempty"`
	AffiliateEnabled  *bool            `json:"affiliate_enabled,omitempty"`
	CommissionPercent *decimal.Decimal `json:"commission_percent,omitempty"`
}

type PlanResponse struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Price             string    `json:"price"`
	DurationMonths    int       `json:"duration_months"`
	Features          []string  `json:"features"`
	Active            bool      `json:"active"`
	AffiliateEnabled  bool      `json:"affiliate_enabled"`
	CommissionPercent string    `json:"commission_percent"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func ToPlanResponse(p *Plan) PlanResponse {
	features := []string(p.Features)
	if features == nil {
		features = []string{}
	}

	return PlanResponse{
		ID:                p.ID,
		Name:              p.Name,
		Description:       p.Description,
		Price:             p.Price.StringFixed(2),
		DurationMonths:    p.DurationMonths,
		Features:          features,
		Active:            p.Active,
		AffiliateEnabled:  p.AffiliateEnabled,
		CommissionPercent: p.CommissionPercent.String(),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func ToPlanResponseList(plans []Plan) []PlanResponse {
	responses := make([]PlanResponse, 0, len(plans))
	for i := range plans {
		responses = append(responses, ToPlanResponse(&plans[i]))
	}
	return responses
}
