// AngelaMos | 2026
// dto.go

package user

import (
	"time"

	"github.com/carterperez-dev/facilitypass/internal/core"
)

type UpdateMeRequest struct {
	Name  *string `json:"name,omitempty"  validate:"omitempty,min=1,max=100"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,max=30"`
}

type UpdateUserRequest struct {
	Name  *string `json:"name,omitempty"  validate:"omitempty,min=1,max=100"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Role  *string `json:"role,omitempty"  validate:"omitempty,oneof=ADMIN CLIENT"`
}

type UpdateBankDetailsRequest struct {
	PixKey   string `json:"pix_key"   validate:"required,max=140"`
	PixType  string `json:"pix_type"  validate:"required,oneof=CPF CNPJ EMAIL PHONE RANDOM"`
	BankName string `json:"bank_name" validate:"max=100"`
	Agency   string `json:"agency"    validate:"max=20"`
	Account  string `json:"account"   validate:"max=30"`
}

type GrantPlanRequest struct {
	PlanID string `json:"plan_id" validate:"required"`
}

type SubscriptionResponse struct {
	PlanID    string    `json:"plan_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Active    bool      `json:"active"`
}

type BankDetailsResponse struct {
	PixKey   string `json:"pix_key"`
	PixType  string `json:"pix_type"`
	BankName string `json:"bank_name,omitempty"`
	Agency   string `json:"agency,omitempty"`
	Account  string `json:"account,omitempty"`
}

type AffiliateResponse struct {
	Code               string  `json:"code"`
	Status             string  `json:"status"`
	CommissionOverride *string `json:"commission_override"`
}

type UserResponse struct {
	ID           string                `json:"id"`
	Name         string                `json:"name"`
	Email        string                `json:"email"`
	CPF          string                `json:"cpf"`
	Phone        string                `json:"phone"`
	Role         string                `json:"role"`
	Subscription *SubscriptionResponse `json:"subscription"`
	BankDetails  *BankDetailsResponse  `json:"bank_details"`
	Affiliate    *AffiliateResponse    `json:"affiliate"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

const (
	SubscriptionFilterActive   = "active"
	SubscriptionFilterInactive = "inactive"
)

// ListUsersParams filters the admin member list. Search matches email,
// name or CPF.
type ListUsersParams struct {
	core.Page
	Search       string
	Role         string
	Subscription string
}

func ToUserResponse(u *User) UserResponse {
	resp := UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CPF:       u.CPF,
		Phone:     u.Phone,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}

	if u.Subscription != nil {
		resp.Subscription = &SubscriptionResponse{
			PlanID:    u.Subscription.PlanID,
			StartDate: u.Subscription.StartDate,
			EndDate:   u.Subscription.EndDate,
			Active:    u.Subscription.Active,
		}
	}

	if u.BankDetails != nil {
		resp.BankDetails = &BankDetailsResponse{
			PixKey:   u.BankDetails.PixKey,
			PixType:  u.BankDetails.PixType,
			BankName: u.BankDetails.BankName,
			Agency:   u.BankDetails.Agency,
			Account:  u.BankDetails.Account,
		}
	}

	if u.Affiliate != nil {
		resp.Affiliate = &AffiliateResponse{
			Code:   u.Affiliate.Code,
			Status: u.Affiliate.Status,
		}
		if u.Affiliate.CommissionOverride.Valid {
			v := u.Affiliate.CommissionOverride.Decimal.String()
			resp.Affiliate.CommissionOverride = &v
		}
	}

	return resp
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i]))
	}
	return responses
}
