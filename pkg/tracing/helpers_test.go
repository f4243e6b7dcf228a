package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/trace"
)

func TestStartServiceSpan(t *testing.T) {
	ctx, span := StartServiceSpan(context.Background(), "SubmissionService", "Advance")
	defer span.End()

	require.NotNil(t, span)
	assert.Equal(t, span, trace.FromContext(ctx))
}

func TestEndSpan(t *testing.T) {
	_, span := trace.StartSpan(context.Background(), "ok")
	EndSpan(span, nil)

	_, span = trace.StartSpan(context.Background(), "failed")
	EndSpan(span, errors.New("boom"))
}

func TestTraceMethod(t *testing.T) {
	called := false
	err := TraceMethod(context.Background(), "ProductService", "AddProduct", func(ctx context.Context) error {
		called = true
		assert.NotNil(t, trace.FromContext(ctx))
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, called)

	want := errors.New("failed")
	err = TraceMethod(context.Background(), "ProductService", "AddProduct", func(ctx context.Context) error {
		return want
	})
	assert.Equal(t, want, err)
}

func TestTraceMethodWithResult(t *testing.T) {
	result, err := TraceMethodWithResult(context.Background(), "svc", "m", func(ctx context.Context) (int, error) {
		return 42, nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 42, result)
}

func TestAddAttributeAndMarkSpanError(t *testing.T) {
	// no span in context: must not panic
	AddAttribute(context.Background(), "k", "v")
	MarkSpanError(context.Background(), errors.New("x"))

	ctx, span := trace.StartSpan(context.Background(), "attrs")
	defer span.End()

	AddAttribute(ctx, "string", "v")
	AddAttribute(ctx, "int", 1)
	AddAttribute(ctx, "int64", int64(2))
	AddAttribute(ctx, "bool", true)
	AddAttribute(ctx, "float", 1.5)
	AddAttribute(ctx, "other", []string{"a"})
	MarkSpanError(ctx, nil)
	MarkSpanError(ctx, errors.New("x"))
}

func TestWrapHTTPClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := WrapHTTPClient(&http.Client{Timeout: 5 * time.Second})
	assert.Equal(t, 5*time.Second, client.Timeout)

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	defaulted := WrapHTTPClient(nil)
	assert.Equal(t, 30*time.Second, defaulted.Timeout)
}

func TestRecordPublicationAndTransition(t *testing.T) {
	require.NoError(t, view.Register(WorkflowViews...))
	defer view.Unregister(WorkflowViews...)

	ctx := context.Background()
	RecordPublication(ctx, "", 120*time.Millisecond)
	RecordPublication(ctx, "transient", 30*time.Millisecond)
	RecordTransition(ctx, "submitted", "confirmed")

	rows, err := view.RetrieveData("greez/publication/count")
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = view.RetrieveData("greez/submission/transition_count")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].Data.(*view.CountData).Value)
}
