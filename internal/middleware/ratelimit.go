// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/carterperez-dev/facilitypass/internal/core"
)

type KeyFunc func(*http.Request) string

// Limiter enforces GCRA budgets in redis and falls back to an in-process
// token bucket per key while redis is unreachable.
type Limiter struct {
	redis    *redis_rate.Limiter
	fallback *localLimiter
	prefix   string
}

func NewLimiter(rdb *redis.Client, prefix string) *Limiter {
	return &Limiter{
		redis:    redis_rate.NewLimiter(rdb),
		fallback: newLocalLimiter(),
		prefix:   prefix,
	}
}

// Limit gives every key its own budget within scope. Scopes keep the login
// budget separate from the general one.
func (l *Limiter) Limit(
	scope string,
	limit redis_rate.Limit,
	key KeyFunc,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l.admit(w, r, scope, key(r), limit) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

// RoleLimits maps a caller role to its budget. The empty role covers
// anonymous requests and roles without their own entry.
type RoleLimits map[string]redis_rate.Limit

func DefaultRoleLimits() RoleLimits {
	return RoleLimits{
		"":        PerMinute(60, 10),
		"CLIENT":  PerMinute(120, 20),
		RoleAdmin: PerMinute(1200, 200),
	}
}

// ByRole must run after Authenticator so the role is known.
func (l *Limiter) ByRole(limits RoleLimits) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := GetUserRole(r.Context())
			limit, ok := limits[role]
			if !ok {
				limit = limits[""]
			}

			if l.admit(w, r, "role", KeyByUser(r), limit) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

func (l *Limiter) admit(
	w http.ResponseWriter,
	r *http.Request,
	scope, key string,
	limit redis_rate.Limit,
) bool {
	res := l.allow(r.Context(), l.prefix+scope+":"+key, limit)

	setRateLimitHeaders(w, res, limit)

	if res.Allowed == 0 {
		writeRateLimitExceeded(w, res)
		return false
	}
	return true
}

func (l *Limiter) allow(
	ctx context.Context,
	key string,
	limit redis_rate.Limit,
) *redis_rate.Result {
	res, err := l.redis.Allow(ctx, key, limit)
	if err == nil {
		return res
	}

	slog.WarnContext(ctx, "rate limiter using local fallback", "key", key, "error", err)
	return l.fallback.allow(key, limit)
}

func KeyByIP(r *http.Request) string {
	return "ip:" + ClientIP(r)
}

func KeyByUser(r *http.Request) string {
	if userID := GetUserID(r.Context()); userID != "" {
		return "user:" + userID
	}
	return KeyByIP(r)
}

func setRateLimitHeaders(
	w http.ResponseWriter,
	res *redis_rate.Result,
	limit redis_rate.Limit,
) {
	h := w.Header()

	h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(
		time.Now().Add(res.ResetAfter).Unix(), 10))
	h.Set("RateLimit-Policy", fmt.Sprintf(`%d;w=%d`, limit.Rate, int(limit.Period.Seconds())))
}

func writeRateLimitExceeded(w http.ResponseWriter, res *redis_rate.Result) {
	retryAfter := max(int(res.RetryAfter.Seconds()), 1)

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	core.JSON(w, http.StatusTooManyRequests, core.Response{
		Success: false,
		Error: &core.ErrorBody{
			Code:    "RATE_LIMITED",
			Message: fmt.Sprintf("Rate limit exceeded. Retry after %d seconds.", retryAfter),
		},
	})
}

type limiterEntry struct {
	mu         sync.Mutex
	limiter    *rate.Limiter
	lastAccess time.Time
}

type localLimiter struct {
	limiters sync.Map
}

const (
	cleanupInterval = 5 * time.Minute
	entryTTL        = 10 * time.Minute
)

func newLocalLimiter() *localLimiter {
	l := &localLimiter{}
	go l.cleanup()
	return l
}

func (l *localLimiter) cleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-entryTTL)
		l.limiters.Range(func(key, value any) bool {
			entry := value.(*limiterEntry)
			entry.mu.Lock()
			stale := entry.lastAccess.Before(cutoff)
			entry.mu.Unlock()
			if stale {
				l.limiters.Delete(key)
			}
			return true
		})
	}
}

func (l *localLimiter) allow(key string, limit redis_rate.Limit) *redis_rate.Result {
	perSecond := float64(limit.Rate) / limit.Period.Seconds()
	interval := time.Duration(float64(time.Second) / perSecond)

	value, _ := l.limiters.LoadOrStore(key, &limiterEntry{
		limiter: rate.NewLimiter(rate.Limit(perSecond), limit.Burst),
	})
	entry := value.(*limiterEntry)

	entry.mu.Lock()
	entry.lastAccess = time.Now()
	allowed := entry.limiter.Allow()
	remaining := max(int(entry.limiter.Tokens()), 0)
	entry.mu.Unlock()

	res := &redis_rate.Result{
		Limit:      limit,
		Remaining:  remaining,
		RetryAfter: -1,
		ResetAfter: interval,
	}
	if allowed {
		res.Allowed = 1
	} else {
		res.RetryAfter = interval
	}
	return res
}

func PerMinute(rate, burst int) redis_rate.Limit {
	return redis_rate.Limit{
		Rate:   rate,
		Burst:  burst,
		Period: time.Minute,
	}
}
