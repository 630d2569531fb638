package middleware

import (
	"net"
	"net/http"

	"github.com/alfhazis/infinite-canvas-creator-sub001/pkg/auth"
	"github.com/alfhazis/infinite-canvas-creator-sub001/pkg/common"
)

// RateLimit rejects clients exceeding requestsPerMinute. Drag and viewport
// gestures are chatty, so the ceiling is generous; it exists to stop runaway
// clients, not to meter normal editing.
func RateLimit(requestsPerMinute int) func(next http.Handler) http.Handler {
	limiter := auth.NewIPRateLimiter(requestsPerMinute)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr
			if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
				ip = host
			}

			allowed, _ := limiter.Allow(r.Context(), ip)
			if !allowed {
				common.RespondError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
