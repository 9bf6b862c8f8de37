package logger

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

type ctxField int

const (
	fieldCorrelationID ctxField = iota
	fieldMemberUID
	fieldLogger
)

func stringValue(ctx context.Context, f ctxField) string {
	s, _ := ctx.Value(f).(string)
	return s
}

// WithCorrelationID tags ctx with the request's correlation id.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, fieldCorrelationID, id)
}

// CorrelationIDFromContext returns "" when no id was set.
func CorrelationIDFromContext(ctx context.Context) string {
	return stringValue(ctx, fieldCorrelationID)
}

// WithMemberUID tags ctx with the signed-in member.
func WithMemberUID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, fieldMemberUID, uid)
}

// MemberUIDFromContext returns "" for guests.
func MemberUIDFromContext(ctx context.Context) string {
	return stringValue(ctx, fieldMemberUID)
}

func NewContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, fieldLogger, l)
}

// FromContext falls back to slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(fieldLogger).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// Fields lists the request-scoped attributes present in ctx: correlation id,
// member uid and the active span's trace and span ids.
func Fields(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	if id := CorrelationIDFromContext(ctx); id != "" {
		attrs = append(attrs, slog.String("correlation_id", id))
	}
	if uid := MemberUIDFromContext(ctx); uid != "" {
		attrs = append(attrs, slog.String("member_uid", uid))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		attrs = append(attrs,
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return attrs
}

// WithContext returns l with Fields(ctx) attached.
func WithContext(ctx context.Context, l *slog.Logger) *slog.Logger {
	attrs := Fields(ctx)
	if len(attrs) == 0 {
		return l
	}
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}
	return l.With(args...)
}
