// AngelaMos | 2026
// blacklist.go

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/carterperez-dev/facilitypass/internal/core"
)

// Blacklist remembers access token ids that were logged out before they
// expired.
type Blacklist interface {
	Add(ctx context.Context, jti string, ttl time.Duration) error
	Contains(ctx context.Context, jti string) (bool, error)
}

type redisBlacklist struct {
	rdb *core.Redis
}

func NewBlacklist(rdb *core.Redis) Blacklist {
	return &redisBlacklist{rdb: rdb}
}

func (b *redisBlacklist) Add(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := b.rdb.Client.Set(ctx, b.rdb.Key("auth", "blacklist", jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}

func (b *redisBlacklist) Contains(ctx context.Context, jti string) (bool, error) {
	n, err := b.rdb.Client.Exists(ctx, b.rdb.Key("auth", "blacklist", jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}
	return n > 0, nil
}
