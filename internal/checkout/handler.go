// AngelaMos | 2026
// handler.go

package checkout

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/facilitypass/internal/core"
	"github.com/carterperez-dev/facilitypass/internal/middleware"
)

type Handler struct {
	service        *Service
	referralCookie string
}

func NewHandler(service *Service, referralCookie string) *Handler {
	return &Handler{
		service:        service,
		referralCookie: referralCookie,
	}
}

// RegisterRoutes applies startLimits only to payment creation, which calls
// the processor.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	startLimits ...func(http.Handler) http.Handler,
) {
	r.Route("/checkout", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/options", h.Options)
		r.With(startLimits...).Post("/", h.Start)
		r.Post("/{paymentID}/verify", h.Verify)
	})
}

func (h *Handler) Options(w http.ResponseWriter, r *http.Request) {
	methods, err := h.service.Options(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, OptionsResponse{Methods: methods})
}

func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	var req StartRequest
	if !core.Bind(w, r, &req) {
		return
	}

	if req.ReferralCode == "" {
		req.ReferralCode = middleware.ReferralCode(r, h.referralCookie)
	}

	result, err := h.service.Start(r.Context(), userID, req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, ToStartResponse(result))
}

func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	result, err := h.service.Verify(r.Context(), userID, chi.URLParam(r, "paymentID"))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToVerifyResponse(result))
}
