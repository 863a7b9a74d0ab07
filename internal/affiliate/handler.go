// AngelaMos | 2026
// handler.go

package affiliate

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/facilitypass/internal/core"
	"github.com/carterperez-dev/facilitypass/internal/middleware"
	"github.com/carterperez-dev/facilitypass/internal/payout"
	"github.com/carterperez-dev/facilitypass/internal/user"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/me/affiliate", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.GetDashboard)
		r.Post("/", h.Join)
		r.Delete("/", h.Leave)
	})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/affiliates", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.List)
		r.Get("/payouts/total", h.TotalPaid)
		r.Get("/{affiliateID}", h.GetFinance)
		r.Put("/{affiliateID}/status", h.SetStatus)
		r.Put("/{affiliateID}/commission", h.SetOverride)
		r.Delete("/{affiliateID}", h.Remove)
		r.Post("/{affiliateID}/payouts", h.RecordPayout)
	})
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.Dashboard(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToDashboardResponse(dashboard))
}

func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.Join(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, user.ToUserResponse(u))
}

func (h *Handler) Leave(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.Leave(r.Context(), middleware.GetUserID(r.Context())); err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToStatsResponseList(stats))
}

func (h *Handler) TotalPaid(w http.ResponseWriter, r *http.Request) {
	total, err := h.service.TotalPaid(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, TotalPaidResponse{TotalPaid: total.StringFixed(2)})
}

func (h *Handler) GetFinance(w http.ResponseWriter, r *http.Request) {
	finance, err := h.service.Finance(r.Context(), chi.URLParam(r, "affiliateID"))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToFinanceResponse(finance))
}

func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req SetStatusRequest
	if !core.Bind(w, r, &req) {
		return
	}

	u, err := h.service.SetStatus(r.Context(), chi.URLParam(r, "affiliateID"), req.Status)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, user.ToUserResponse(u))
}

func (h *Handler) SetOverride(w http.ResponseWriter, r *http.Request) {
	var req SetOverrideRequest
	if !core.Bind(w, r, &req) {
		return
	}

	u, err := h.service.SetOverride(r.Context(), chi.URLParam(r, "affiliateID"), req.CommissionPercent)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, user.ToUserResponse(u))
}

func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Remove(r.Context(), chi.URLParam(r, "affiliateID")); err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) RecordPayout(w http.ResponseWriter, r *http.Request) {
	var req RecordPayoutRequest
	if !core.Bind(w, r, &req) {
		return
	}

	p, err := h.service.RecordPayout(r.Context(), chi.URLParam(r, "affiliateID"), payout.Request{
		Amount:     req.Amount,
		ReceiptURL: req.ReceiptURL,
		Notes:      req.Notes,
	})
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, ToPayoutResponse(p))
}
