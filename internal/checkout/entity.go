// AngelaMos | 2026
// entity.go

package checkout

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/facilitypass/internal/sale"
	"github.com/carterperez-dev/facilitypass/internal/user"
)

// Pending is a started checkout waiting for the processor to settle. It
// lives in redis keyed by the processor's payment id.
type Pending struct {
	PaymentID    string          `json:"payment_id"`
	UserID       string          `json:"user_id"`
	PlanID       string          `json:"plan_id"`
	GatewayID    string          `json:"gateway_id"`
	Method       string          `json:"method"`
	Amount       decimal.Decimal `json:"amount"`
	ReferralCode string          `json:"referral_code,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

type StartRequest struct {
	PlanID       string `json:"plan_id"       validate:"required"`
	Method       string `json:"method"        validate:"required,oneof=PIX CREDIT_CARD CRYPTO"`
	ReferralCode string `json:"referral_code" validate:"omitempty,max=64"`
}

type StartResult struct {
	PaymentID    string
	Status       string
	Method       string
	PlanID       string
	Amount       decimal.Decimal
	QRCode       string
	QRCodeBase64 string
}

type VerifyResult struct {
	PaymentID    string
	Status       string
	Completed    bool
	Sale         *sale.Sale
	Subscription *user.Subscription
}

type StartResponse struct {
	PaymentID    string `json:"payment_id"`
	Status       string `json:"status"`
	Method       string `json:"method"`
	PlanID       string `json:"plan_id"`
	Amount       string `json:"amount"`
	QRCode       string `json:"qr_code"`
	QRCodeBase64 string `json:"qr_code_base64"`
}

type SubscriptionResponse struct {
	PlanID    string    `json:"plan_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Active    bool      `json:"active"`
}

type VerifyResponse struct {
	PaymentID    string                `json:"payment_id"`
	Status       string                `json:"status"`
	Completed    bool                  `json:"completed"`
	SaleID       string                `json:"sale_id,omitempty"`
	Subscription *SubscriptionResponse `json:"subscription,omitempty"`
}

type OptionsResponse struct {
	Methods []string `json:"methods"`
}

func ToStartResponse(r *StartResult) StartResponse {
	return StartResponse{
		PaymentID:    r.PaymentID,
		Status:       r.Status,
		Method:       r.Method,
		PlanID:       r.PlanID,
		Amount:       r.Amount.StringFixed(2),
		QRCode:       r.QRCode,
		QRCodeBase64: r.QRCodeBase64,
	}
}

func ToVerifyResponse(r *VerifyResult) VerifyResponse {
	resp := VerifyResponse{
		PaymentID: r.PaymentID,
		Status:    r.Status,
		Completed: r.Completed,
	}
	if r.Sale != nil {
		resp.SaleID = r.Sale.ID
	}
	if r.Subscription != nil {
		resp.Subscription = &SubscriptionResponse{
			PlanID:    r.Subscription.PlanID,
			StartDate: r.Subscription.StartDate,
			EndDate:   r.Subscription.EndDate,
			Active:    r.Subscription.Active,
		}
	}
	return resp
}
