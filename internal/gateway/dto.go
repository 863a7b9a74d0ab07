// AngelaMos | 2026
// dto.go

package gateway

import (
	"time"
)

type CreateGatewayRequest struct {
	Title       string            `json:"title"       validate:"required,min=1,max=100"`
	Provider    string            `json:"provider"    validate:"required,oneof=MERCADOPAGO PAGARME STRIPE OXAPAY"`
	IsEnabled   bool              `json:"is_enabled"`
	Methods     []string          `json:"methods"     validate:"required,min=1,dive,oneof=PIX CREDIT_CARD CRYPTO"`
	Credentials map[string]string `json:"credentials" validate:"max=20"`
}

type UpdateGatewayRequest struct {
	Title       *string           `json:"title,omitempty"       validate:"omitempty,min=1,max=100"`
	Provider    *string           `json:"provider,omitempty"    validate:"omitempty,oneof=MERCADOPAGO PAGARME STRIPE OXAPAY"`
	IsEnabled   *bool             `json:"is_enabled,omitempty"`
	Methods     []string          `json:"methods,omitempty"     validate:"omitempty,min=1,dive,oneof=PIX CREDIT_CARD CRYPTO"`
	Credentials map[string]string `json:"credentials,omitempty" validate:"omitempty,max=20"`
}

type GatewayResponse struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Provider    string            `json:"provider"`
	IsEnabled   bool              `json:"is_enabled"`
	Methods     []string          `json:"methods"`
	Credentials map[string]string `json:"credentials"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func ToGatewayResponse(g *Gateway) GatewayResponse {
	methods := []string(g.Methods)
	if methods == nil {
		methods = []string{}
	}

	masked := make(map[string]string, len(g.Credentials))
	for k, v := range g.Credentials {
		masked[k] = maskSecret(v)
	}

	return GatewayResponse{
		ID:          g.ID,
		Title:       g.Title,
		Provider:    g.Provider,
		IsEnabled:   g.IsEnabled,
		Methods:     methods,
		Credentials: masked,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

func ToGatewayResponseList(gateways []Gateway) []GatewayResponse {
	out := make([]GatewayResponse, 0, len(gateways))
	for i := range gateways {
		out = append(out, ToGatewayResponse(&gateways[i]))
	}
	return out
}

// maskSecret keeps the last four characters so admins can tell keys apart.
func maskSecret(v string) string {
	if len(v) <= 4 {
		return "****"
	}
	return "****" + v[len(v)-4:]
}
