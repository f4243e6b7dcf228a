package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opencensus.io/trace"
)

type spanRecorder struct {
	spans []*trace.SpanData
}

func (r *spanRecorder) ExportSpan(s *trace.SpanData) { r.spans = append(r.spans, s) }

func TestTracingMiddleware(t *testing.T) {
	recorder := &spanRecorder{}
	trace.RegisterExporter(recorder)
	defer trace.UnregisterExporter(recorder)
	trace.ApplyConfig(trace.Config{DefaultSampler: trace.AlwaysSample()})

	handler := TracingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotNil(t, trace.FromContext(r.Context()))
		w.WriteHeader(http.StatusBadGateway)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/products.publish", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	if assert.Len(t, recorder.spans, 1) {
		span := recorder.spans[0]
		assert.Equal(t, "POST /api/products.publish", span.Name)
		assert.Equal(t, "/api/products.publish", span.Attributes["http.path"])
		assert.Equal(t, "req-42", span.Attributes["http.request_id"])
		assert.NotEqual(t, int32(trace.StatusCodeOK), span.Status.Code)
	}
}
