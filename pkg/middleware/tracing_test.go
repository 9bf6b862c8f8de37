package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// installRecorder swaps the global tracer provider for an in-memory one for
// the duration of the test.
func installRecorder(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return exporter
}

// tracedRouter mounts RequestLogging ahead of Tracing like the dev backend does.
func tracedRouter(status int) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogging(discardLogger()))
	r.Use(Tracing("mockapi"))
	r.Get("/api/products/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	})
	return r
}

// serveOnce installs the recorder before building the router: Tracing binds
// its tracer from the global provider when it is constructed.
func serveOnce(t *testing.T, status int, req *http.Request) (*httptest.ResponseRecorder, tracetest.SpanStub) {
	t.Helper()
	exporter := installRecorder(t)
	rec := httptest.NewRecorder()
	tracedRouter(status).ServeHTTP(rec, req)

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	return rec, spans[0]
}

func spanAttr(span tracetest.SpanStub, key string) (string, bool) {
	for _, kv := range span.Attributes {
		if string(kv.Key) == key {
			return kv.Value.Emit(), true
		}
	}
	return "", false
}

func TestTracing_NamesSpanAfterRoute(t *testing.T) {
	_, span := serveOnce(t, http.StatusOK, httptest.NewRequest(http.MethodGet, "/api/products/42", nil))

	if span.Name != "GET /api/products/{id}" {
		t.Errorf("span name = %q", span.Name)
	}
	if got, _ := spanAttr(span, "http.route"); got != "/api/products/{id}" {
		t.Errorf("http.route = %q", got)
	}
	if got, _ := spanAttr(span, "http.status_code"); got != "200" {
		t.Errorf("http.status_code = %q, want 200", got)
	}
	if span.Status.Code != codes.Unset {
		t.Errorf("status = %v, want unset", span.Status.Code)
	}
}

func TestTracing_CarriesCorrelationID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/products/1", nil)
	req.Header.Set(CorrelationHeader, "corr-77")

	_, span := serveOnce(t, http.StatusOK, req)

	if got, ok := spanAttr(span, "correlation_id"); !ok || got != "corr-77" {
		t.Errorf("correlation_id = %q (present %v)", got, ok)
	}
}

func TestTracing_ServerErrorMarksSpan(t *testing.T) {
	_, span := serveOnce(t, http.StatusBadGateway, httptest.NewRequest(http.MethodGet, "/api/products/1", nil))

	if span.Status.Code != codes.Error {
		t.Errorf("status = %v, want error", span.Status.Code)
	}
}

func TestTracing_AccessDeniedEvent(t *testing.T) {
	_, span := serveOnce(t, http.StatusForbidden, httptest.NewRequest(http.MethodGet, "/api/products/1", nil))

	if span.Status.Code == codes.Error {
		t.Error("403 must not mark the span as failed")
	}
	if len(span.Events) != 1 || span.Events[0].Name != "access denied" {
		t.Errorf("events = %+v, want one access denied event", span.Events)
	}
}

func TestTracing_ContinuesIncomingTrace(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/products/1", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")

	rec, span := serveOnce(t, http.StatusOK, req)

	if got := span.SpanContext.TraceID().String(); got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("trace id = %s", got)
	}
	if got := span.Parent.SpanID().String(); got != "00f067aa0ba902b7" {
		t.Errorf("parent span id = %s", got)
	}
	if rec.Header().Get("traceparent") == "" {
		t.Error("response missing traceparent")
	}
}

func TestTracing_UnmatchedKeepsPath(t *testing.T) {
	_, span := serveOnce(t, http.StatusOK, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	if span.Name != "GET /nowhere" {
		t.Errorf("span name = %q", span.Name)
	}
	if _, ok := spanAttr(span, "http.route"); ok {
		t.Error("unmatched request should not carry http.route")
	}
}

func TestTracing_FollowsProviderInstalledBeforeConstruction(t *testing.T) {
	for i := 0; i < 2; i++ {
		exporter := installRecorder(t)
		tracedRouter(http.StatusOK).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products/1", nil))

		if got := len(exporter.GetSpans()); got != 1 {
			t.Fatalf("round %d: got %d spans, want 1", i, got)
		}
	}
}
