// AngelaMos | 2026
// wire.go

package main

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/carterperez-dev/facilitypass/internal/admin"
	"github.com/carterperez-dev/facilitypass/internal/affiliate"
	"github.com/carterperez-dev/facilitypass/internal/auth"
	"github.com/carterperez-dev/facilitypass/internal/checkout"
	"github.com/carterperez-dev/facilitypass/internal/config"
	"github.com/carterperez-dev/facilitypass/internal/core"
	"github.com/carterperez-dev/facilitypass/internal/gateway"
	"github.com/carterperez-dev/facilitypass/internal/health"
	"github.com/carterperez-dev/facilitypass/internal/payout"
	"github.com/carterperez-dev/facilitypass/internal/pix"
	"github.com/carterperez-dev/facilitypass/internal/plan"
	"github.com/carterperez-dev/facilitypass/internal/sale"
	"github.com/carterperez-dev/facilitypass/internal/server"
	"github.com/carterperez-dev/facilitypass/internal/settings"
	"github.com/carterperez-dev/facilitypass/internal/subscription"
	"github.com/carterperez-dev/facilitypass/internal/user"
)

type app struct {
	cfg     *config.Config
	db      *core.Database
	redis   *core.Redis
	tracing *core.Tracing
	jwt     *auth.JWTManager
	server  *server.Server
	closers []namedCloser

	handlers handlers
	authSvc  *auth.Service
}

type namedCloser struct {
	name string
	io.Closer
}

type handlers struct {
	auth      *auth.Handler
	user      *user.Handler
	plan      *plan.Handler
	settings  *settings.Handler
	gateway   *gateway.Handler
	affiliate *affiliate.Handler
	checkout  *checkout.Handler
	admin     *admin.Handler
	health    *health.Handler
}

// close releases resources in reverse order of acquisition.
func (a *app) close(logger *slog.Logger) {
	for _, c := range slices.Backward(a.closers) {
		if err := c.Close(); err != nil {
			logger.Error("close failed", "resource", c.name, "error", err)
		}
	}
}

// build connects infrastructure and wires every component. On error the
// returned app still holds whatever was opened so the caller can close it.
func build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg}

	tracing, err := core.NewTracing(ctx, cfg.Otel, cfg.App)
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
		tracing = &core.Tracing{}
	}
	a.tracing = tracing
	if tracing.Enabled() {
		logger.Info("tracing enabled", "endpoint", cfg.Otel.Endpoint)
	}

	if a.db, err = core.NewDatabase(ctx, cfg.Database); err != nil {
		return a, err
	}
	a.closers = append(a.closers, namedCloser{"database", a.db})
	logger.Info("database connected", "max_open_conns", cfg.Database.MaxOpenConns)

	if a.redis, err = core.NewRedis(ctx, cfg.Redis); err != nil {
		return a, err
	}
	a.closers = append(a.closers, namedCloser{"redis", a.redis})
	logger.Info("redis connected", "pool_size", cfg.Redis.PoolSize)

	if a.jwt, err = auth.NewJWTManager(cfg.JWT); err != nil {
		return a, err
	}
	logger.Info("signing keys loaded", "algorithm", "ES256", "key_id", a.jwt.GetKeyID())

	a.wire()

	a.server = server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: a.handlers.health,
		Logger:        logger,
	})
	a.routes(logger)

	return a, nil
}

func (a *app) wire() {
	db, cfg := a.db.DB, a.cfg

	userRepo := user.NewRepository(db)
	saleRepo := sale.NewRepository(db)

	userSvc := user.NewService(userRepo)
	planSvc := plan.NewService(plan.NewRepository(db))
	settingsSvc := settings.NewService(settings.NewRepository(db))
	gatewaySvc := gateway.NewService(
		gateway.NewRepository(db),
		gateway.NewTxRunner(db),
		gateway.NewGuard(cfg.Affiliate.GatewayLimit),
	)
	affiliateSvc := affiliate.NewService(
		userRepo,
		planSvc,
		saleRepo,
		payout.NewRepository(db),
		affiliate.NewTxRunner(db),
		cfg.Affiliate.LinkBaseURL,
	)
	checkoutSvc := checkout.NewService(checkout.Deps{
		Plans:     planSvc,
		Users:     userRepo,
		Gateways:  gatewaySvc,
		Tokens:    settingsSvc,
		Processor: pix.NewClient(cfg.Pix),
		Pending:   checkout.NewPendingStore(a.redis, cfg.Checkout.PendingTTL),
		Purchases: checkout.NewPurchaseStore(db),
	})
	a.authSvc = auth.NewService(auth.NewRepository(db), a.jwt, userSvc, auth.NewBlacklist(a.redis))

	checker := health.NewChecker(5*time.Second,
		health.Check{Name: "database", Ping: a.db.Ping, Critical: true},
		health.Check{Name: "redis", Ping: a.redis.Ping, Critical: true},
		health.Check{Name: "payments", Ping: checkoutSvc.Ready},
	)

	a.handlers = handlers{
		auth:      auth.NewHandler(a.authSvc),
		user:      user.NewHandler(userSvc, subscription.NewService(planSvc, userRepo)),
		plan:      plan.NewHandler(planSvc),
		settings:  settings.NewHandler(settingsSvc),
		gateway:   gateway.NewHandler(gatewaySvc),
		affiliate: affiliate.NewHandler(affiliateSvc),
		checkout:  checkout.NewHandler(checkoutSvc, cfg.Checkout.ReferralCookie),
		health:    health.NewHandler(checker),
		admin: admin.NewHandler(
			userRepo,
			saleRepo,
			checker,
			admin.DatabasePool(a.db.Stats),
			admin.RedisPool(a.redis.PoolStats),
		),
	}
}
