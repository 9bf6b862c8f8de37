package middleware

import (
	"log/slog"
	"net/http"

	"github.com/slimeyayush/altair-frontend/pkg/logger"
)

// RequestLogger stores a logger enriched with correlation_id, member_uid,
// trace_id and span_id in the request context. Mount it after RequestLogging
// and Tracing, and inside Auth when member_uid is wanted.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if RoleFromContext(ctx) == RoleMember {
				ctx = logger.WithMemberUID(ctx, SubjectFromContext(ctx))
			}

			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
