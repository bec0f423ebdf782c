package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/atom/internal/config"
	"github.com/vango-dev/atom/pkg/form"
)

type recordingTracer struct {
	noop.Tracer

	mu    sync.Mutex
	names []string
}

func (r *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	r.mu.Lock()
	r.names = append(r.names, name)
	r.mu.Unlock()
	return r.Tracer.Start(ctx, name, opts...)
}

func (r *recordingTracer) started() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.names)
}

type recordingProvider struct {
	noop.TracerProvider
	tracer *recordingTracer
}

func (p recordingProvider) Tracer(string, ...trace.TracerOption) trace.Tracer {
	return p.tracer
}

func TestTracingSpansRequestsAndEdits(t *testing.T) {
	rec := &recordingTracer{}
	_, _, ts := newTestServer(t, 2, WithTracerProvider(recordingProvider{tracer: rec}))

	resp, _ := doRequest(t, http.MethodPut, ts.URL+"/api/fields/0/first", `{"value":"Ada"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}

	names := rec.started()
	for _, want := range []string{"atomdemo PUT", "atomdemo.edit"} {
		if !slices.Contains(names, want) {
			t.Errorf("span %q not started, got %v", want, names)
		}
	}
}

func TestTracingDisabled(t *testing.T) {
	rec := &recordingTracer{}
	cfg := config.New()
	cfg.Tracing.Enabled = false

	srv := New(cfg, form.NewStore(1), WithTracerProvider(recordingProvider{tracer: rec}))
	defer srv.Shutdown(context.Background())

	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)
	srv.Handler().ServeHTTP(httptest.NewRecorder(), req)

	if got := rec.started(); len(got) != 0 {
		t.Errorf("expected no spans with tracing disabled, got %v", got)
	}
}
