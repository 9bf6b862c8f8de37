// Package api is the typed client for the storefront backend REST API.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/slimeyayush/altair-frontend/pkg/httpclient"
	"github.com/slimeyayush/altair-frontend/pkg/tracing"
)

// ServiceName labels backend errors and breaker metrics.
const ServiceName = "backend"

// Sender executes a JSON request. httpclient.Breaker satisfies it.
type Sender interface {
	Send(ctx context.Context, method, url, bearer string, body []byte) (*http.Response, error)
}

// Client calls the backend REST endpoints.
type Client struct {
	sender  Sender
	baseURL string
	logger  *slog.Logger
}

// New creates a backend client rooted at baseURL.
func New(sender Sender, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		sender:  sender,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// call sends in (when non-nil) as JSON and decodes the response into out
// (when non-nil). An empty success body leaves out untouched.
func (c *Client) call(ctx context.Context, method, path, bearer string, in, out any) (err error) {
	ctx, span := tracing.Start(ctx, "api "+method+" "+path,
		attribute.String("http.request.method", method),
		attribute.String("url.path", path),
	)
	defer func() {
		if err != nil {
			c.logger.DebugContext(ctx, "backend call failed",
				slog.String("method", method),
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
		}
		tracing.End(span, err)
	}()

	var body []byte
	if in != nil {
		body, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", path, err)
		}
	}

	resp, err := c.sender.Send(ctx, method, c.baseURL+path, bearer, body)
	if err != nil {
		return fmt.Errorf("call %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpclient.ParseResponseError(resp, ServiceName)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}
	if out == nil || len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
