// Package ratelimit implements a Redis sliding-window limiter for HTTP handlers.
package ratelimit

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tair/repair-manager/pkg/logger"
	"github.com/tair/repair-manager/pkg/response"
)

// Limiter allows maxRequests per window for each client IP. A nil Limiter or
// one without a Redis client lets every request through.
type Limiter struct {
	redis       *redis.Client
	name        string
	maxRequests int
	window      time.Duration
}

func New(client *redis.Client, name string, maxRequests int, window time.Duration) *Limiter {
	return &Limiter{redis: client, name: name, maxRequests: maxRequests, window: window}
}

func (l *Limiter) Middleware(next http.HandlerFunc) http.HandlerFunc {
	if l == nil || l.redis == nil || l.maxRequests <= 0 {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		identifier := ClientIP(r)

		allowed, remaining, resetTime, err := l.check(r.Context(), identifier)
		if err != nil {
			// Fail open: Redis trouble must not lock users out.
			logger.Error(r.Context()).Err(err).Str("identifier", identifier).Msg("rate limiter error")
			next(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.maxRequests))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			logger.Warn(r.Context()).
				Str("identifier", identifier).
				Str("limiter", l.name).
				Int("limit", l.maxRequests).
				Msg("rate limit exceeded")
			w.Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			response.JSON(w, http.StatusTooManyRequests, response.Response{
				Success: false,
				Error:   fmt.Sprintf("Too many requests. Try again in %v", time.Until(resetTime).Round(time.Second)),
			})
			return
		}
		next(w, r)
	}
}

func (l *Limiter) check(ctx context.Context, identifier string) (bool, int, time.Time, error) {
	key := fmt.Sprintf("ratelimit:%s:%s", l.name, identifier)
	now := time.Now()
	windowStart := now.Add(-l.window)

	pipe := l.redis.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	countCmd := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
	pipe.Expire(ctx, key, l.window+time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := countCmd.Val()
	remaining := l.maxRequests - int(count) - 1
	if remaining < 0 {
		remaining = 0
	}
	return count < int64(l.maxRequests), remaining, now.Add(l.window), nil
}

// ClientIP returns the first X-Forwarded-For hop or the remote address.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		for i := 0; i < len(fwd); i++ {
			if fwd[i] == ',' {
				return fwd[:i]
			}
		}
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
