package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/anonto42/nano-social/backend/internal/observability"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// FailPolicy defines the behavior when Redis is unavailable.
type FailPolicy int

const (
	// FailOpen lets the request through.
	FailOpen FailPolicy = iota
	// FailClosed answers 503.
	FailClosed
)

// RateLimiter counts requests per client in fixed Redis windows.
type RateLimiter struct {
	rdb     *redis.Client
	limit   int
	window  time.Duration
	enabled bool
	policy  FailPolicy
}

func NewRateLimiter(rdb *redis.Client, limit int, window time.Duration, enabled bool) *RateLimiter {
	return &RateLimiter{rdb: rdb, limit: limit, window: window, enabled: enabled, policy: FailOpen}
}

// WithPolicy sets the failure policy and returns the limiter.
func (l *RateLimiter) WithPolicy(p FailPolicy) *RateLimiter {
	l.policy = p
	return l
}

// Allow increments the counter for resource/id and reports whether it is still within the limit.
func (l *RateLimiter) Allow(ctx context.Context, resource, id string) (bool, error) {
	if !l.enabled {
		return true, nil
	}
	if l.rdb == nil {
		return false, fmt.Errorf("redis client is nil")
	}

	key := fmt.Sprintf("rl:%s:%s", resource, id)
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	if _, err := l.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		ttl = pipe.TTL(ctx, key)
		return nil
	}); err != nil {
		return false, err
	}

	// A key without a TTL would never reset, so any request that finds one sets it.
	if ttl.Val() < 0 {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			return false, err
		}
	}
	return incr.Val() <= int64(l.limit), nil
}

// Middleware limits requests by client IP under the given resource name. The IP comes
// from c.RealIP, so the server must set e.IPExtractor to decide which proxy headers count.
func (l *RateLimiter) Middleware(resource string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			allowed, err := l.Allow(c.Request().Context(), resource, "ip:"+c.RealIP())
			if err != nil {
				if l.policy == FailClosed {
					observability.Logger.Warn("rate limit unavailable",
						"resource", resource, "path", c.Path(), "error", err)
					return echo.NewHTTPError(http.StatusServiceUnavailable, "Rate limit unavailable")
				}
				return next(c)
			}
			if !allowed {
				observability.AuthFailuresTotal.WithLabelValues("rate_limited").Inc()
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests, please try again later")
			}
			return next(c)
		}
	}
}
