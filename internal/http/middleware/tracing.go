package middleware

import (
	"net/http"

	"go.opencensus.io/plugin/ochttp"
	"go.opencensus.io/trace"
)

// TracingMiddleware starts a span per request named "<METHOD> <path>".
// ochttp records method, path, user agent and status on the span.
func TracingMiddleware(next http.Handler) http.Handler {
	annotated := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestID := r.Header.Get("X-Request-ID"); requestID != "" {
			if span := trace.FromContext(r.Context()); span != nil {
				span.AddAttributes(trace.StringAttribute("http.request_id", requestID))
			}
		}
		next.ServeHTTP(w, r)
	})

	return &ochttp.Handler{
		Handler: annotated,
		FormatSpanName: func(r *http.Request) string {
			return r.Method + " " + r.URL.Path
		},
		IsPublicEndpoint: true,
	}
}
