// AngelaMos | 2026
// load.go

package config

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load layers built-in defaults, then the optional YAML file, then the
// environment. Later layers win.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("set default %s: %w", key, err)
		}
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	c := &Config{}
	if err := k.Unmarshal("", c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

var defaults = map[string]any{
	"app.name":        "FacilityPass",
	"app.version":     "1.0.0",
	"app.environment": "development",

	"server.host":             "0.0.0.0",
	"server.port":             8080,
	"server.read_timeout":     "30s",
	"server.write_timeout":    "30s",
	"server.idle_timeout":     "120s",
	"server.shutdown_timeout": "15s",

	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  "1h",
	"database.conn_max_idle_time": "30m",

	"redis.pool_size":      10,
	"redis.min_idle_conns": 5,
	"redis.namespace":      "facilitypass",

	"jwt.access_token_expire":  "15m",
	"jwt.refresh_token_expire": "168h",
	"jwt.issuer":               "facilitypass",
	"jwt.audience":             "facilitypass-api",
	"jwt.private_key_path":     "keys/private.pem",
	"jwt.public_key_path":      "keys/public.pem",

	"rate_limit.requests": 100,
	"rate_limit.burst":    20,
	"rate_limit.login":    10,
	"rate_limit.checkout": 10,

	"cors.allowed_origins":   []string{"http://localhost:3000"},
	"cors.allowed_methods":   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
	"cors.allowed_headers":   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
	"cors.allow_credentials": true,
	"cors.max_age":           300,

	"log.level":  "info",
	"log.format": "json",

	"otel.enabled":      false,
	"otel.insecure":     true,
	"otel.sample_rate":  0.1,
	"otel.service_name": "facilitypass",

	"pix.base_url":   "https://api.mercadopago.com",
	"pix.timeout":    "30s",
	"pix.expiration": "30m",

	"checkout.pending_ttl":     "24h",
	"checkout.referral_cookie": "facility_ref",
	"checkout.referral_ttl":    "720h",

	"affiliate.link_base_url": "http://localhost:3000",
	"affiliate.gateway_limit": 3,
}

// envKeys lists the only environment variables read. Anything else in the
// environment is ignored.
var envKeys = map[string]string{
	"ENVIRONMENT": "app.environment",
	"HOST":        "server.host",
	"PORT":        "server.port",
	"LOG_LEVEL":   "log.level",
	"LOG_FORMAT":  "log.format",

	"DATABASE_URL":    "database.url",
	"REDIS_URL":       "redis.url",
	"REDIS_NAMESPACE": "redis.namespace",

	"JWT_PRIVATE_KEY_PATH":     "jwt.private_key_path",
	"JWT_PUBLIC_KEY_PATH":      "jwt.public_key_path",
	"JWT_ACCESS_TOKEN_EXPIRE":  "jwt.access_token_expire",
	"JWT_REFRESH_TOKEN_EXPIRE": "jwt.refresh_token_expire",
	"JWT_ISSUER":               "jwt.issuer",
	"JWT_AUDIENCE":             "jwt.audience",

	"RATE_LIMIT_REQUESTS": "rate_limit.requests",
	"RATE_LIMIT_BURST":    "rate_limit.burst",
	"RATE_LIMIT_LOGIN":    "rate_limit.login",
	"RATE_LIMIT_CHECKOUT": "rate_limit.checkout",

	"OTEL_ENABLED":                "otel.enabled",
	"OTEL_ENDPOINT":               "otel.endpoint",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "otel.endpoint",
	"OTEL_SERVICE_NAME":           "otel.service_name",
	"OTEL_INSECURE":               "otel.insecure",
	"OTEL_SAMPLE_RATE":            "otel.sample_rate",

	"PIX_BASE_URL":         "pix.base_url",
	"PIX_TIMEOUT":          "pix.timeout",
	"PIX_NOTIFICATION_URL": "pix.notification_url",
	"PIX_EXPIRATION":       "pix.expiration",

	"CHECKOUT_PENDING_TTL":     "checkout.pending_ttl",
	"CHECKOUT_REFERRAL_COOKIE": "checkout.referral_cookie",
	"CHECKOUT_REFERRAL_TTL":    "checkout.referral_ttl",

	"AFFILIATE_LINK_BASE_URL": "affiliate.link_base_url",
	"GATEWAY_LIMIT":           "affiliate.gateway_limit",
}

// envKey maps an environment variable to its config path. koanf drops keys
// mapped to "".
func envKey(name string) string {
	return envKeys[name]
}
