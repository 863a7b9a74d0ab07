// AngelaMos | 2026
// validate.go

package config

import (
	"errors"
	"slices"
	"strings"
)

type rule struct {
	broken  func(c *Config) bool
	message string
}

var rules = []rule{
	{func(c *Config) bool { return c.Database.URL == "" }, "DATABASE_URL is required"},
	{func(c *Config) bool { return c.Redis.URL == "" }, "REDIS_URL is required"},
	{func(c *Config) bool { return c.JWT.PrivateKeyPath == "" }, "JWT_PRIVATE_KEY_PATH is required"},
	{func(c *Config) bool { return c.JWT.PublicKeyPath == "" }, "JWT_PUBLIC_KEY_PATH is required"},
	{
		func(c *Config) bool {
			return c.CORS.AllowCredentials && slices.Contains(c.CORS.AllowedOrigins, "*")
		},
		"CORS wildcard '*' cannot be used with allow_credentials",
	},
	{
		func(c *Config) bool { return c.IsProduction() && c.Otel.Enabled && c.Otel.Insecure },
		"OTEL_INSECURE must be false in production",
	},
	{
		func(c *Config) bool {
			return c.IsProduction() && !strings.HasPrefix(c.Pix.BaseURL, "https://")
		},
		"PIX_BASE_URL must use https in production",
	},
	{
		func(c *Config) bool { return c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 },
		"server read and write timeouts must be positive",
	},
	{
		func(c *Config) bool {
			r := c.RateLimit
			return r.Requests < 1 || r.Login < 1 || r.Checkout < 1
		},
		"rate_limit budgets must be at least 1 per minute",
	},
	{func(c *Config) bool { return c.Affiliate.GatewayLimit < 1 }, "affiliate.gateway_limit must be at least 1"},
	{func(c *Config) bool { return c.Checkout.ReferralCookie == "" }, "checkout.referral_cookie is required"},
	{func(c *Config) bool { return c.Checkout.PendingTTL <= 0 }, "checkout.pending_ttl must be positive"},
}

// Validate reports every broken rule, not just the first.
func (c *Config) Validate() error {
	var errs []error
	for _, r := range rules {
		if r.broken(c) {
			errs = append(errs, errors.New(r.message))
		}
	}
	return errors.Join(errs...)
}
