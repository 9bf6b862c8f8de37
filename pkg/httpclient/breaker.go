package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"

	apperrors "github.com/slimeyayush/altair-frontend/pkg/errors"
)

// ErrCircuitOpen is wrapped by the error returned while a breaker rejects calls.
var ErrCircuitOpen = gobreaker.ErrOpenState

// BreakerConfig tunes one circuit breaker.
type BreakerConfig struct {
	// Name labels the breaker in logs, metrics and error messages.
	Name string
	// Probes is how many calls may pass while half-open.
	Probes uint32
	// Window clears the counts periodically while closed. Zero never clears.
	Window time.Duration
	// Cooldown is how long the breaker stays open before probing again.
	Cooldown time.Duration
	// FailureRatio trips the breaker once MinRequests calls have been seen.
	FailureRatio float64
	MinRequests  uint32
}

// DefaultBreakerConfig returns the breaker placed in front of each upstream.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:         name,
		Probes:       1,
		Window:       time.Minute,
		Cooldown:     20 * time.Second,
		FailureRatio: 0.6,
		MinRequests:  5,
	}
}

var breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "storefront",
	Name:      "circuit_breaker_state",
	Help:      "Breaker state per upstream: 0 closed, 1 half-open, 2 open.",
}, []string{"name"})

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// Breaker guards a Doer. 5xx answers and transport errors count as failures;
// 4xx answers and cancelled contexts do not.
type Breaker struct {
	next   Doer
	cb     *gobreaker.CircuitBreaker[*http.Response]
	name   string
	logger *slog.Logger
}

// NewBreaker wraps next with a circuit breaker configured by cfg.
func NewBreaker(next Doer, cfg BreakerConfig, logger *slog.Logger) *Breaker {
	b := &Breaker{next: next, name: cfg.Name, logger: logger}
	b.cb = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.Probes,
		Interval:    cfg.Window,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.Requests >= cfg.MinRequests &&
				float64(c.TotalFailures)/float64(c.Requests) >= cfg.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			breakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})
	breakerState.WithLabelValues(cfg.Name).Set(0)
	return b
}

// Do runs req through the breaker. A 5xx response is returned as the AppError
// parsed from its body, with the body already closed.
func (b *Breaker) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := b.cb.Execute(func() (*http.Response, error) {
		resp, err := b.next.Do(ctx, req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, ParseResponseError(resp, b.name)
		}
		return resp, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		b.logger.DebugContext(ctx, "call rejected by open breaker", slog.String("breaker", b.name))
		return nil, fmt.Errorf("%w: %w",
			apperrors.ServiceUnavailable(b.name+" is temporarily unavailable, try again shortly"), err)
	}
	return resp, err
}

// Send builds a JSON request with an optional bearer token and runs it
// through the breaker. A nil body sends no Content-Type.
func (b *Breaker) Send(ctx context.Context, method, url, bearer string, body []byte) (*http.Response, error) {
	var rdr io.Reader = http.NoBody
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rdr)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return b.Do(ctx, req)
}

// State reports the breaker's current state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}
