// AngelaMos | 2026
// pending.go

package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/facilitypass/internal/core"
)

type PendingStore interface {
	Save(ctx context.Context, p *Pending) error
	Get(ctx context.Context, paymentID string) (*Pending, bool, error)
	Delete(ctx context.Context, paymentID string) error
}

type redisPendingStore struct {
	rdb *core.Redis
	ttl time.Duration
}

func NewPendingStore(rdb *core.Redis, ttl time.Duration) PendingStore {
	return &redisPendingStore{rdb: rdb, ttl: ttl}
}

func (s *redisPendingStore) key(paymentID string) string {
	return s.rdb.Key("checkout", "pending", paymentID)
}

func (s *redisPendingStore) Save(ctx context.Context, p *Pending) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal pending checkout: %w", err)
	}

	if err := s.rdb.Client.Set(ctx, s.key(p.PaymentID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save pending checkout: %w", err)
	}

	return nil
}

func (s *redisPendingStore) Get(
	ctx context.Context,
	paymentID string,
) (*Pending, bool, error) {
	data, err := s.rdb.Client.Get(ctx, s.key(paymentID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get pending checkout: %w", err)
	}

	var p Pending
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, false, fmt.Errorf("decode pending checkout: %w", err)
	}

	return &p, true, nil
}

func (s *redisPendingStore) Delete(ctx context.Context, paymentID string) error {
	if err := s.rdb.Client.Del(ctx, s.key(paymentID)).Err(); err != nil {
		return fmt.Errorf("delete pending checkout: %w", err)
	}
	return nil
}
