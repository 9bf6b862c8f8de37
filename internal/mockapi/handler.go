package mockapi

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/slimeyayush/altair-frontend/pkg/httputil"
	"github.com/slimeyayush/altair-frontend/pkg/validator"
)

// Handler serves the storefront REST contract from a Store.
type Handler struct {
	store   *Store
	tokens  *Tokens
	otp     string
	metrics *Metrics
	logger  *slog.Logger
}

// NewHandler creates a handler. otp is the code every phone verification
// accepts.
func NewHandler(store *Store, tokens *Tokens, otp string, metrics *Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		store:   store,
		tokens:  tokens,
		otp:     otp,
		metrics: metrics,
		logger:  logger,
	}
}

// decode reads and validates a JSON body, answering 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit
	if err := validator.DecodeAndValidate(r, dst); err != nil {
		httputil.WriteValidationError(w, err)
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	httputil.WriteError(w, r, err, h.logger)
}

// pathParam returns a decoded chi URL parameter.
func pathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if decoded, err := url.PathUnescape(v); err == nil {
		return decoded
	}
	return v
}
