package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	apperrors "github.com/slimeyayush/altair-frontend/pkg/errors"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return rec
}

func TestSetup_DisabledInstallsPropagatorOnly(t *testing.T) {
	shutdown, err := Setup(context.Background(), Options{Service: "storefront"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	assert.Contains(t, otel.GetTextMapPropagator().Fields(), "traceparent")
	assert.Contains(t, otel.GetTextMapPropagator().Fields(), "baggage")
}

func TestSetup_EnabledInstallsProvider(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	// The batcher exports asynchronously, so an unroutable collector is fine here.
	shutdown, err := Setup(context.Background(), Options{
		Service:     "mockapi",
		Environment: "test",
		Endpoint:    "127.0.0.1:0",
		SampleRate:  0.5,
		Enabled:     true,
	})
	require.NoError(t, err)
	assert.IsType(t, &sdktrace.TracerProvider{}, otel.GetTracerProvider())
	_ = shutdown(context.Background())
}

func TestSampler_Description(t *testing.T) {
	assert.Contains(t, Sampler(2).Description(), "AlwaysOnSampler")
	assert.Contains(t, Sampler(-1).Description(), "AlwaysOffSampler")
	assert.Contains(t, Sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
	assert.Contains(t, Sampler(0.25).Description(), "ParentBased")
}

func TestEnd_StatusByErrorKind(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"success", nil, codes.Unset},
		{"missing product", apperrors.NotFound("product", "3"), codes.Unset},
		{"expired session", apperrors.Unauthorized("session expired"), codes.Unset},
		{"backend down", apperrors.ServiceUnavailable("backend is down"), codes.Error},
		{"transport", errors.New("dial tcp: connection refused"), codes.Error},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := recordSpans(t)

			_, span := Start(context.Background(), "cart.add", attribute.Int64("product.id", 7))
			End(span, tc.err)

			spans := rec.Ended()
			require.Len(t, spans, 1)
			assert.Equal(t, "cart.add", spans[0].Name())
			assert.Equal(t, tc.want, spans[0].Status().Code)
			if tc.err != nil {
				require.Len(t, spans[0].Events(), 1)
				assert.Equal(t, "exception", spans[0].Events()[0].Name)
			}
		})
	}
}
