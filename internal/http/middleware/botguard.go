package middleware

import (
	"net/http"

	"github.com/greez/greez/pkg/botdetection"
)

// RejectAutomatedClients refuses prefetches and requests from crawlers or
// email link scanners, so only a person can consume a single-use link
func RejectAutomatedClients(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if botdetection.IsPrefetch(r.Header.Get("Purpose"), r.Header.Get("Sec-Purpose")) ||
			botdetection.IsBotUserAgent(r.UserAgent()) {
			writeError(w, "Automated clients are not allowed", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
