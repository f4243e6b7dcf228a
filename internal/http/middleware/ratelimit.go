package middleware

import (
	"net"
	"net/http"
	"strconv"

	"github.com/greez/greez/pkg/ratelimiter"
)

// RateLimitByIP limits requests per client address within namespace
func RateLimitByIP(limiter *ratelimiter.RateLimiter, namespace string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)
			if !limiter.Allow(namespace, key) {
				w.Header().Set("Retry-After", strconv.Itoa(limiter.RetryAfter(namespace, key)))
				writeError(w, "Too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
