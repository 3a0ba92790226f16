package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter enforces a fixed-window request limit per client IP backed by
// Redis. If Redis is unavailable the request is allowed through; throttling
// is best effort and must not take the service down with it.
type RateLimiter struct {
	client *redis.Client
	log    *slog.Logger
	limit  int
	window time.Duration
	prefix string
}

// NewRateLimiter creates a limiter allowing limit requests per window.
func NewRateLimiter(client *redis.Client, log *slog.Logger, prefix string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		log:    log,
		limit:  limit,
		window: window,
		prefix: prefix,
	}
}

// Limit is the middleware that applies the rate limit.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		key := fmt.Sprintf("ratelimit:%s:%s", rl.prefix, ip)

		count, err := rl.client.Incr(r.Context(), key).Result()
		if err != nil {
			rl.log.WarnContext(r.Context(), "rate limit check failed, allowing request",
				slog.String("error", err.Error()))
			next.ServeHTTP(w, r)
			return
		}
		if count == 1 {
			if err := rl.client.Expire(r.Context(), key, rl.window).Err(); err != nil {
				rl.log.WarnContext(r.Context(), "failed to set rate limit window",
					slog.String("error", err.Error()))
			}
		}

		if count > int64(rl.limit) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(rl.window.Seconds())))
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"code":    "RATE_LIMITED",
				"message": "too many requests",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
