package mockapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/slimeyayush/altair-frontend/internal/config"
	"github.com/slimeyayush/altair-frontend/pkg/health"
	"github.com/slimeyayush/altair-frontend/pkg/tracing"
)

const shutdownGrace = 10 * time.Second

// App is the dev backend: a seeded in-memory store behind the HTTP contract
// the storefront talks to.
type App struct {
	logger         *slog.Logger
	store          *Store
	server         *http.Server
	shutdownTracer tracing.ShutdownFunc
}

// NewApp seeds the store and builds the router. Nothing listens until Run.
func NewApp(cfg *config.MockAPI, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownTracer, err := tracing.Setup(ctx, tracing.Options{
		Service:     ServiceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRate:  cfg.Tracing.SampleRate,
		Enabled:     cfg.Tracing.Enabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	store := NewStore(cfg.BcryptCost)
	if err := Seed(store, cfg.AdminUser, cfg.AdminPass); err != nil {
		_ = shutdownTracer(ctx)
		return nil, err
	}
	logger.Info("store seeded",
		slog.Int("products", len(seedProducts)),
		slog.String("admin", cfg.AdminUser),
	)

	checks := health.New(3 * time.Second)
	checks.Add("store", true, func(context.Context) error {
		if len(store.Admins()) == 0 {
			return errors.New("no admin accounts")
		}
		return nil
	})

	h := NewHandler(store, NewTokens(cfg.JWTSecret, cfg.JWTTTL), cfg.OTPCode, NewMetrics(), logger)

	return &App{
		logger: logger,
		store:  store,
		server: &http.Server{
			Addr:              net.JoinHostPort("", strconv.Itoa(cfg.HTTPPort)),
			Handler:           NewRouter(h, checks, cfg, logger),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       time.Minute,
		},
		shutdownTracer: shutdownTracer,
	}, nil
}

// Handler returns the root handler, for serving from a test server.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run serves until ctx is cancelled or the listener fails, then shuts down.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("listening", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return a.Shutdown()
	})
	return g.Wait()
}

// Shutdown drains in-flight requests and flushes spans.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	var errs []error
	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http server: %w", err))
	}
	if err := a.shutdownTracer(ctx); err != nil {
		errs = append(errs, fmt.Errorf("tracer: %w", err))
	}
	a.logger.Info("dev backend stopped")
	return errors.Join(errs...)
}
