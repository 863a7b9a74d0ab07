// AngelaMos | 2026
// routes.go

package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/facilitypass/internal/middleware"
)

func (a *app) routes(logger *slog.Logger) {
	cfg, h := a.cfg, a.handlers
	router := a.server.Router()

	router.Use(
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.SecurityHeaders(cfg.IsProduction()),
		middleware.CORS(cfg.CORS),
		middleware.ReferralCapture(
			cfg.Checkout.ReferralCookie,
			cfg.Checkout.ReferralTTL,
			cfg.IsProduction(),
		),
	)

	h.health.RegisterRoutes(router)
	router.Get("/.well-known/jwks.json", a.jwt.GetJWKSHandler())

	limiter := middleware.NewLimiter(a.redis.Client, a.redis.Key("ratelimit")+":")
	rl := cfg.RateLimit

	verify := middleware.Authenticator(a.authSvc)
	perRole := limiter.ByRole(middleware.DefaultRoleLimits())
	authenticator := func(next http.Handler) http.Handler {
		return verify(perRole(next))
	}
	adminOnly := middleware.RequireAdmin

	router.Route("/v1", func(r chi.Router) {
		r.Use(limiter.Limit("global", middleware.PerMinute(rl.Requests, rl.Burst), middleware.KeyByIP))

		h.auth.RegisterRoutes(r, authenticator,
			limiter.Limit("login", middleware.PerMinute(rl.Login, rl.Login), middleware.KeyByIP))
		h.plan.RegisterRoutes(r)
		h.settings.RegisterRoutes(r)

		h.user.RegisterRoutes(r, authenticator)
		h.affiliate.RegisterRoutes(r, authenticator)
		h.checkout.RegisterRoutes(r, authenticator,
			limiter.Limit("checkout", middleware.PerMinute(rl.Checkout, rl.Checkout), middleware.KeyByUser))

		h.user.RegisterAdminRoutes(r, authenticator, adminOnly)
		h.plan.RegisterAdminRoutes(r, authenticator, adminOnly)
		h.affiliate.RegisterAdminRoutes(r, authenticator, adminOnly)
		h.gateway.RegisterAdminRoutes(r, authenticator, adminOnly)
		h.settings.RegisterAdminRoutes(r, authenticator, adminOnly)
		h.admin.RegisterRoutes(r, authenticator, adminOnly)
	})
}
