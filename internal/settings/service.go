// AngelaMos | 2026
// service.go

package settings

import (
	"context"
	"log/slog"
)

type UpdateSettingsRequest struct {
	SupportWhatsapp        *string `json:"support_whatsapp,omitempty"          validate:"omitempty,max=30"`
	MercadoPagoPublicKey   *string `json:"mercado_pago_public_key,omitempty"   validate:"omitempty,max=255"`
	MercadoPagoAccessToken *string `json:"mercado_pago_access_token,omitempty" validate:"omitempty,max=255"`
}

type PublicSettingsResponse struct {
	SupportWhatsapp string `json:"support_whatsapp"`
}

type SettingsResponse struct {
	SupportWhatsapp           string `json:"support_whatsapp"`
	MercadoPagoPublicKey      string `json:"mercado_pago_public_key"`
	MercadoPagoAccessTokenSet bool   `json:"mercado_pago_access_token_set"`
}

func ToSettingsResponse(s *Settings) SettingsResponse {
	return SettingsResponse{
		SupportWhatsapp:           s.SupportWhatsapp,
		MercadoPagoPublicKey:      s.MercadoPagoPublicKey,
		MercadoPagoAccessTokenSet: s.MercadoPagoAccessToken != "",
	}
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context) (*Settings, error) {
	return s.repo.Get(ctx)
}

func (s *Service) Update(
	ctx context.Context,
	req UpdateSettingsRequest,
) (*Settings, error) {
	current, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}

	if req.SupportWhatsapp != nil {
		current.SupportWhatsapp = *req.SupportWhatsapp
	}
	if req.MercadoPagoPublicKey != nil {
		current.MercadoPagoPublicKey = *req.MercadoPagoPublicKey
	}
	if req.MercadoPagoAccessToken != nil {
		current.MercadoPagoAccessToken = *req.MercadoPagoAccessToken
	}

	if err := s.repo.Update(ctx, current); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "settings updated",
		"access_token_changed", req.MercadoPagoAccessToken != nil,
	)

	return current, nil
}

// FallbackAccessToken is used when a Mercado Pago gateway has no token of its
// own.
func (s *Service) FallbackAccessToken(ctx context.Context) (string, error) {
	current, err := s.repo.Get(ctx)
	if err != nil {
		return "", err
	}
	return current.MercadoPagoAccessToken, nil
}
