// AngelaMos | 2026
// handler.go

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/facilitypass/internal/core"
	"github.com/carterperez-dev/facilitypass/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes applies credentialLimits to the endpoints that accept a
// password, CPF or refresh token.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	credentialLimits ...func(http.Handler) http.Handler,
) {
	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(credentialLimits...)
			r.Post("/login", h.Login)
			r.Post("/register", h.Register)
			r.Post("/refresh", h.Refresh)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Post("/logout", h.Logout)
			r.Post("/logout-all", h.LogoutAll)
			r.Get("/sessions", h.GetSessions)
			r.Delete("/sessions/{sessionID}", h.RevokeSession)
			r.Post("/change-password", h.ChangePassword)
		})
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !core.Bind(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), req, clientOf(r))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !core.Bind(w, r, &req) {
		return
	}

	resp, err := h.service.Register(r.Context(), req, clientOf(r))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, resp)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !core.Bind(w, r, &req) {
		return
	}

	resp, err := h.service.Refresh(r.Context(), req.RefreshToken, clientOf(r))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		core.Unauthorized(w, "")
		return
	}

	var req LogoutRequest
	if !core.BindOptional(w, r, &req) {
		return
	}

	if err := h.service.Logout(r.Context(), claims, req.RefreshToken); err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	if err := h.service.LogoutAll(r.Context(), middleware.GetUserID(r.Context())); err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) GetSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.service.Sessions(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, SessionsResponse{Sessions: sessions})
}

func (h *Handler) RevokeSession(w http.ResponseWriter, r *http.Request) {
	err := h.service.RevokeSession(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "sessionID"),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if !core.Bind(w, r, &req) {
		return
	}

	if err := h.service.ChangePassword(r.Context(), middleware.GetUserID(r.Context()), req); err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func clientOf(r *http.Request) Client {
	return Client{UserAgent: r.UserAgent(), IPAddress: middleware.ClientIP(r)}
}
