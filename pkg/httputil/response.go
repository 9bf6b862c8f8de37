package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	apperrors "github.com/slimeyayush/altair-frontend/pkg/errors"
	"github.com/slimeyayush/altair-frontend/pkg/logger"
	"github.com/slimeyayush/altair-frontend/pkg/validator"
)

// ErrorBody is the error envelope written by WriteError.
type ErrorBody struct {
	Error *ErrorResponse `json:"error"`
}

// ErrorResponse describes a single failed request.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// WriteJSON writes v as the bare JSON body. The storefront contract does not
// wrap successful payloads.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err to a status code and writes an ErrorBody. It prefers the
// request-scoped logger set by the RequestLogger middleware.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}
	requestID := logger.CorrelationIDFromContext(r.Context())

	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, ErrorBody{Error: &ErrorResponse{
			Code:      "VALIDATION_ERROR",
			Message:   valErr.Error(),
			Fields:    valErr.Fields(),
			RequestID: requestID,
		}})
		return
	}

	appErr := apperrors.Normalize(err)
	if appErr.Status >= http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "request failed",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}
	WriteJSON(w, appErr.Status, ErrorBody{Error: &ErrorResponse{
		Code: appErr.Code, Message: appErr.Message, RequestID: requestID,
	}})
}

// WriteValidationError writes a 400 with field-level messages when err is a
// ValidationError, and a plain INVALID_INPUT otherwise.
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, ErrorBody{Error: &ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "request validation failed",
			Fields:  valErr.Fields(),
		}})
		return
	}

	WriteJSON(w, http.StatusBadRequest, ErrorBody{Error: &ErrorResponse{Code: "INVALID_INPUT", Message: err.Error()}})
}

// ParseID parses a positive numeric path parameter. On failure it writes a
// 400 INVALID_PARAMETER and returns false so the caller can return early.
func ParseID(w http.ResponseWriter, param string) (int64, bool) {
	id, err := strconv.ParseInt(param, 10, 64)
	if err != nil || id <= 0 {
		WriteJSON(w, http.StatusBadRequest, ErrorBody{Error: &ErrorResponse{
			Code:    "INVALID_PARAMETER",
			Message: "invalid id: " + param,
		}})
		return 0, false
	}
	return id, true
}
