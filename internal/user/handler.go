// AngelaMos | 2026
// handler.go

package user

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/facilitypass/internal/core"
	"github.com/carterperez-dev/facilitypass/internal/middleware"
)

// PlanGranter activates a plan for a member on an admin's behalf.
type PlanGranter interface {
	GrantPlan(ctx context.Context, userID, planID string) (*User, error)
}

type Handler struct {
	service *Service
	granter PlanGranter
}

func NewHandler(service *Service, granter PlanGranter) *Handler {
	return &Handler{service: service, granter: granter}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/me", h.GetMe)
		r.Put("/me", h.UpdateMe)
		r.Put("/me/bank-details", h.UpdateBankDetails)
	})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := h.service.GetMe(r.Context(), userID)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req UpdateMeRequest
	if !core.Bind(w, r, &req) {
		return
	}

	user, err := h.service.UpdateMe(r.Context(), userID, req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) UpdateBankDetails(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req UpdateBankDetailsRequest
	if !core.Bind(w, r, &req) {
		return
	}

	user, err := h.service.UpdateBankDetails(r.Context(), userID, req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

// RegisterAdminRoutes registers admin-only member management endpoints.
func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/members", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.ListUsers)
		r.Get("/{userID}", h.GetUser)
		r.Put("/{userID}", h.UpdateUser)
		r.Delete("/{userID}", h.DeleteUser)
		r.Post("/{userID}/subscription", h.GrantPlan)
		r.Patch("/{userID}/subscription/toggle", h.ToggleSubscription)
		r.Delete("/{userID}/subscription", h.RemoveSubscription)
	})
}

// ListUsers returns a paginated list of members with optional filtering.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := ListUsersParams{
		Page:         core.PageFromQuery(r),
		Search:       q.Get("search"),
		Role:         q.Get("role"),
		Subscription: q.Get("subscription"),
	}

	users, total, err := h.service.ListUsers(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, ToUserResponseList(users), params.Page, total)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req UpdateUserRequest
	if !core.Bind(w, r, &req) {
		return
	}

	user, err := h.service.UpdateUser(r.Context(), userID, req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteMember(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "userID"),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

// GrantPlan activates a plan for the member without recording a sale.
// Archived plans may be granted.
func (h *Handler) GrantPlan(w http.ResponseWriter, r *http.Request) {
	var req GrantPlanRequest
	if !core.Bind(w, r, &req) {
		return
	}

	user, err := h.granter.GrantPlan(
		r.Context(),
		chi.URLParam(r, "userID"),
		req.PlanID,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) ToggleSubscription(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.ToggleSubscription(
		r.Context(),
		chi.URLParam(r, "userID"),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) RemoveSubscription(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.RemoveSubscription(
		r.Context(),
		chi.URLParam(r, "userID"),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}
