// AngelaMos | 2026
// handler.go

package settings

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/facilitypass/internal/core"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/settings/public", h.GetPublic)
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/settings", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.Get)
		r.Put("/", h.Update)
	})
}

func (h *Handler) GetPublic(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.Get(r.Context())
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, PublicSettingsResponse{SupportWhatsapp: s.SupportWhatsapp})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.Get(r.Context())
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToSettingsResponse(s))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if !core.Bind(w, r, &req) {
		return
	}

	s, err := h.service.Update(r.Context(), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToSettingsResponse(s))
}
