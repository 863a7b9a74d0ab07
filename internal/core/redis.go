// AngelaMos | 2026
// redis.go

package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/facilitypass/internal/config"
)

// Redis wraps the shared client. Every key the app writes goes through Key
// so several deployments can share one instance.
type Redis struct {
	Client    *redis.Client
	namespace string
}

func NewRedis(ctx context.Context, cfg config.RedisConfig) (*Redis, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.ConnMaxIdleTime = 5 * time.Minute

	r := &Redis{Client: redis.NewClient(opts), namespace: cfg.Namespace}
	if err := r.Ping(ctx); err != nil {
		_ = r.Client.Close() //nolint:errcheck // already failing
		return nil, err
	}
	return r, nil
}

func (r *Redis) Key(parts ...string) string {
	if r.namespace != "" {
		parts = append([]string{r.namespace}, parts...)
	}
	return strings.Join(parts, ":")
}

func (r *Redis) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := r.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

func (r *Redis) PoolStats() *redis.PoolStats {
	return r.Client.PoolStats()
}

func (r *Redis) Close() error {
	return r.Client.Close()
}
