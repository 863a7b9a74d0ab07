// AngelaMos | 2026
// handler.go

package plan

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
	r.Route("/plans", func(r chi.Router) {
		r.Get("/", h.ListActive)
		r.Get("/{planID}", h.Get)
	})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/plans", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.ListAll)
		r.Post("/", h.Create)
		r.Get("/{planID}", h.Get)
		r.Put("/{planID}", h.Update)
		r.Delete("/{planID}", h.Delete)
	})
}

func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	plans, err := h.service.List(r.Context(), true)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToPlanResponseList(plans))
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	plans, err := h.service.List(r.Context(), false)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToPlanResponseList(plans))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	plan, err := h.service.Get(r.Context(), chi.URLParam(r, "planID"))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToPlanResponse(plan))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePlanRequest
	if !core.Bind(w, r, &req) {
		return
	}

	plan, err := h.service.Create(r.Context(), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, ToPlanResponse(plan))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdatePlanRequest
	if !core.Bind(w, r, &req) {
		return
	}

	plan, err := h.service.Update(r.Context(), chi.URLParam(r, "planID"), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToPlanResponse(plan))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "planID")); err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}
