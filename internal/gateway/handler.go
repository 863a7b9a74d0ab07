// AngelaMos | 2026
// handler.go

package gateway

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

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/gateways", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{gatewayID}", h.Get)
		r.Put("/{gatewayID}", h.Update)
		r.Post("/{gatewayID}/toggle", h.Toggle)
		r.Delete("/{gatewayID}", h.Delete)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	gateways, err := h.service.List(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToGatewayResponseList(gateways))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	gw, err := h.service.Get(r.Context(), chi.URLParam(r, "gatewayID"))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToGatewayResponse(gw))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateGatewayRequest
	if !core.Bind(w, r, &req) {
		return
	}

	gw, err := h.service.Create(r.Context(), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, ToGatewayResponse(gw))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateGatewayRequest
	if !core.Bind(w, r, &req) {
		return
	}

	gw, err := h.service.Update(r.Context(), chi.URLParam(r, "gatewayID"), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToGatewayResponse(gw))
}

func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	gw, err := h.service.Toggle(r.Context(), chi.URLParam(r, "gatewayID"))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToGatewayResponse(gw))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "gatewayID")); err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}
