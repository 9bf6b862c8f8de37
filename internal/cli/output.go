package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	apperrors "github.com/slimeyayush/altair-frontend/pkg/errors"
	"github.com/slimeyayush/altair-frontend/pkg/validator"
)

// Exit codes for CLI commands.
const (
	ExitSuccess = 0
	ExitFailure = 1 // the action failed
	ExitUsage   = 2 // bad arguments or form input
	ExitAuth    = 3 // not signed in, or the session expired
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ExitError carries an exit code with its message.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError.
func NewExitError(code int, format string, args ...any) *ExitError {
	return &ExitError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapExitError attaches an exit code to err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// ExitCodeFor maps err onto an exit code.
func ExitCodeFor(err error) int {
	var exitErr *ExitError
	var ve *validator.ValidationError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.As(err, &ve), errors.Is(err, apperrors.ErrInvalidInput):
		return ExitUsage
	case apperrors.IsAuthFailure(err):
		return ExitAuth
	default:
		return ExitFailure
	}
}

// Response is the JSON envelope for every command.
type Response struct {
	Status string     `json:"status"`
	Data   any        `json:"data,omitempty"`
	Error  *ErrorBody `json:"error,omitempty"`
}

// ErrorBody describes a failed command.
type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func describe(err error) ErrorBody {
	var ve *validator.ValidationError
	var exitErr *ExitError
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &ve):
		return ErrorBody{Code: "VALIDATION_ERROR", Message: "please correct the highlighted fields", Fields: ve.Fields()}
	case errors.As(err, &exitErr) && exitErr.Err == nil:
		return ErrorBody{Code: "CLI_ERROR", Message: exitErr.Message}
	case errors.As(err, &appErr):
		return ErrorBody{Code: appErr.Code, Message: appErr.Message}
	default:
		return ErrorBody{Code: "ERROR", Message: err.Error()}
	}
}

// OutputFormatter writes command results as text or JSON.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
}

// Print writes data. Text output is produced by text.
func (f *OutputFormatter) Print(data any, text func(w io.Writer)) error {
	if f.Format == FormatJSON {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(Response{Status: "ok", Data: data})
	}
	text(f.Writer)
	return nil
}

// Fail reports err. JSON goes to Writer so scripts always get an envelope;
// text goes to ErrWriter.
func (f *OutputFormatter) Fail(err error) {
	body := describe(err)
	if f.Format == FormatJSON {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		_ = enc.Encode(Response{Status: "error", Error: &body})
		return
	}

	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, "Error: %s\n", body.Message)
	names := make([]string, 0, len(body.Fields))
	for name := range body.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s %s\n", name, body.Fields[name])
	}
}
