package httpclient

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/slimeyayush/altair-frontend/pkg/logger"
)

// CorrelationIDHeader carries the per-action correlation id to the backend.
const CorrelationIDHeader = "X-Correlation-ID"

// Config holds the transport settings shared by every storefront call.
type Config struct {
	Timeout         time.Duration
	MaxConnsPerHost int
	UserAgent       string
}

// DefaultConfig returns the storefront defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:         15 * time.Second,
		MaxConnsPerHost: 16,
		UserAgent:       "altair-storefront",
	}
}

// Doer is satisfied by Client and Breaker.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "client_requests_total",
		Help:      "Outgoing HTTP requests by host, method and status code.",
	}, []string{"host", "method", "code"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Name:      "client_request_duration_seconds",
		Help:      "Outgoing HTTP request latency.",
		Buckets:   []float64{.025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"host", "method"})
)

// Client sends one request per call. Storefront actions are never retried:
// a failed call is terminal for the action that made it.
type Client struct {
	http      *http.Client
	userAgent string
}

// New creates a client with its own pooled transport.
func New(cfg Config) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConnsPerHost:   cfg.MaxConnsPerHost,
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	return &Client{
		http:      &http.Client{Transport: transport, Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
	}
}

// Do sends req bound to ctx. The correlation id and trace context carried by
// ctx are copied into the request headers.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set(CorrelationIDHeader, id)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := c.http.Do(req)
	requestDuration.WithLabelValues(req.URL.Host, req.Method).Observe(time.Since(start).Seconds())
	if err != nil {
		requestsTotal.WithLabelValues(req.URL.Host, req.Method, "error").Inc()
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	requestsTotal.WithLabelValues(req.URL.Host, req.Method, strconv.Itoa(resp.StatusCode)).Inc()
	return resp, nil
}
