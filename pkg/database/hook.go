package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/slimeyayush/altair-frontend/pkg/database"

// CommandHook is a redis.Hook that opens a client span per command and
// warns about commands slower than Slow. A miss (redis.Nil) is not an error.
type CommandHook struct {
	Slow   time.Duration
	Logger *slog.Logger

	tracer trace.Tracer
}

// NewCommandHook uses the global tracer provider. A zero slow disables the
// slow-command warning.
func NewCommandHook(slow time.Duration, logger *slog.Logger) *CommandHook {
	return &CommandHook{Slow: slow, Logger: logger, tracer: otel.Tracer(tracerName)}
}

func (h *CommandHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h *CommandHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		key := commandKey(cmd)
		ctx, span := h.tracer.Start(ctx, "redis."+cmd.Name(),
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String("db.system", "redis"),
				attribute.String("db.operation", cmd.Name()),
				attribute.String("db.key", key),
			),
		)
		start := time.Now()
		err := next(ctx, cmd)
		h.finish(ctx, span, start, cmd.Name(), key, err)
		return err
	}
}

func (h *CommandHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		ctx, span := h.tracer.Start(ctx, "redis.pipeline",
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String("db.system", "redis"),
				attribute.Int("db.redis.pipeline_length", len(cmds)),
			),
		)
		start := time.Now()
		err := next(ctx, cmds)
		h.finish(ctx, span, start, "pipeline", "", err)
		return err
	}
}

func (h *CommandHook) finish(ctx context.Context, span trace.Span, start time.Time, op, key string, err error) {
	failed := err != nil && !errors.Is(err, redis.Nil)
	if failed {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()

	elapsed := time.Since(start)
	if h.Slow <= 0 || h.Logger == nil || elapsed < h.Slow {
		return
	}
	attrs := []any{
		slog.String("operation", op),
		slog.String("key", key),
		slog.Duration("duration", elapsed),
	}
	if failed {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	h.Logger.WarnContext(ctx, "slow storage command", attrs...)
}

func commandKey(cmd redis.Cmder) string {
	if args := cmd.Args(); len(args) > 1 {
		return fmt.Sprint(args[1])
	}
	return ""
}

var _ redis.Hook = (*CommandHook)(nil)
