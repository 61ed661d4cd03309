// File: internal/middleware/ratelimit.go
package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/appleaww/messenger/internal/ratelimit"
)

// RateLimitMiddleware creates a rate limiting middleware for sensitive endpoints
func RateLimitMiddleware(limiter *ratelimit.MemoryRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := ratelimit.GetClientIP(r)

			allowed, info := limiter.Allow(clientIP)

			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))

			if !allowed {
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)

				if info.Banned {
					fmt.Fprintf(w, `{"error":"too many attempts, temporarily banned","retry_after_seconds":%d}`,
						int(info.RetryAfter.Seconds()))
				} else {
					fmt.Fprintf(w, `{"error":"rate limit exceeded","retry_after_seconds":%d}`,
						int(time.Until(info.ResetTime).Seconds()))
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
