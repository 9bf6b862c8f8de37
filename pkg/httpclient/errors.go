package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/slimeyayush/altair-frontend/pkg/errors"
)

const maxErrorBody = 1 << 20

// errorBody covers both error shapes the storefront meets. The dev backend
// nests {"code","message"} under "error"; the production backend answers with
// a flat {"message","error"} where "error" is the status phrase.
type errorBody struct {
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

type nestedError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ParseResponseError consumes and closes resp.Body and returns an AppError
// whose message is prefixed with serviceName. Bodies that say nothing useful
// (empty, HTML, unknown JSON) fall back to the status text.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", serviceName, resp.StatusCode, err)
	}

	code, msg := describeBody(raw)
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return apperrors.FromStatus(resp.StatusCode, code, serviceName+": "+msg)
}

func describeBody(raw []byte) (code, msg string) {
	text := strings.TrimSpace(string(raw))
	if text == "" || text[0] == '<' {
		return "", ""
	}
	if text[0] != '{' {
		return "", text
	}

	var body errorBody
	if json.Unmarshal(raw, &body) != nil {
		return "", ""
	}
	var nested nestedError
	if json.Unmarshal(body.Error, &nested) == nil && (nested.Code != "" || nested.Message != "") {
		return nested.Code, nested.Message
	}
	if body.Message != "" {
		return "", body.Message
	}
	var phrase string
	if json.Unmarshal(body.Error, &phrase) == nil {
		return "", phrase
	}
	return "", ""
}
