package ratelimit

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

// Limiter decides whether another hit on key fits in the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type windowStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// RedisLimiter shares the window across instances.
type RedisLimiter struct {
	Store  windowStore
	Limit  int64
	Window time.Duration
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	ok, _, err := l.Store.FixedWindowAllow(ctx, key, l.Limit, l.Window)
	return ok, err
}

// MemoryLimiter is the single-process fallback. It sits on echo's token
// bucket store, which lets limit hits through per window and forgets
// visitors idle for longer than the window.
type MemoryLimiter struct {
	store *middleware.RateLimiterMemoryStore
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(limit) / window.Seconds()),
		Burst:     limit,
		ExpiresIn: window,
	})}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	return l.store.Allow(key)
}

// Middleware limits by scope and client IP. Limiter errors fail open.
func Middleware(limiter Limiter, scope string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			ok, err := limiter.Allow(ctx, scope+":"+c.RealIP())
			if err != nil {
				logging.FromContext(ctx).Warn("rate_limit_error", "scope", scope, "error", err)
				return next(c)
			}
			if !ok {
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
			}
			return next(c)
		}
	}
}
