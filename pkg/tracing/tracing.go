// Package tracing sets up OpenTelemetry for the storefront binaries and gives
// components a small span helper.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/slimeyayush/altair-frontend/pkg/errors"
)

// InstrumentationName is the tracer name used by storefront components.
const InstrumentationName = "github.com/slimeyayush/altair-frontend"

// Version is reported as service.version on every span.
const Version = "0.1.0"

// Options selects the exporter and sampling of one binary.
type Options struct {
	Service     string
	Environment string
	// Endpoint is the host:port of an OTLP/HTTP collector.
	Endpoint   string
	SampleRate float64
	Enabled    bool
}

// ShutdownFunc flushes buffered spans.
type ShutdownFunc func(context.Context) error

// Setup installs the W3C propagator and, when enabled, an OTLP exporting
// provider. With tracing disabled the propagator alone is installed so the
// storefront still forwards an incoming trace context.
func Setup(ctx context.Context, opts Options) (ShutdownFunc, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	if !opts.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(opts.Endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("otlp exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(opts.Service),
			semconv.ServiceVersion(Version),
			semconv.DeploymentEnvironment(opts.Environment),
		),
		resource.WithProcessRuntimeDescription(),
	)
	if err != nil {
		return nil, fmt.Errorf("trace resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(Sampler(opts.SampleRate)),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// Sampler follows the caller's sampling decision and samples new traces at
// rate, clamped to [0, 1].
func Sampler(rate float64) sdktrace.Sampler {
	var root sdktrace.Sampler
	switch {
	case rate >= 1:
		root = sdktrace.AlwaysSample()
	case rate <= 0:
		root = sdktrace.NeverSample()
	default:
		root = sdktrace.TraceIDRatioBased(rate)
	}
	return sdktrace.ParentBased(root)
}

// Start opens an internal span on the storefront tracer.
func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(InstrumentationName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// End ends span after recording err. Only server-side failures mark the span
// as failed; rejected input, missing products and expired sessions are
// recorded without changing its status.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		if apperrors.HTTPStatus(err) >= 500 {
			span.SetStatus(codes.Error, apperrors.UserMessage(err))
		}
	}
	span.End()
}
