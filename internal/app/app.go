// Package app wires the storefront client together.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/slimeyayush/altair-frontend/internal/admin"
	"github.com/slimeyayush/altair-frontend/internal/api"
	"github.com/slimeyayush/altair-frontend/internal/cart"
	"github.com/slimeyayush/altair-frontend/internal/catalog"
	"github.com/slimeyayush/altair-frontend/internal/checkout"
	"github.com/slimeyayush/altair-frontend/internal/config"
	"github.com/slimeyayush/altair-frontend/internal/domain"
	"github.com/slimeyayush/altair-frontend/internal/identity"
	"github.com/slimeyayush/altair-frontend/internal/profile"
	"github.com/slimeyayush/altair-frontend/internal/search"
	"github.com/slimeyayush/altair-frontend/internal/session"
	"github.com/slimeyayush/altair-frontend/internal/storage"
	filestore "github.com/slimeyayush/altair-frontend/internal/storage/file"
	redisstore "github.com/slimeyayush/altair-frontend/internal/storage/redis"
	"github.com/slimeyayush/altair-frontend/internal/whatsapp"
	"github.com/slimeyayush/altair-frontend/pkg/database"
	"github.com/slimeyayush/altair-frontend/pkg/health"
	"github.com/slimeyayush/altair-frontend/pkg/httpclient"
	"github.com/slimeyayush/altair-frontend/pkg/tracing"
)

// ServiceName identifies the storefront in logs and traces.
const ServiceName = "storefront"

// Redis commands slower than this are logged.
const slowStorageCommand = 250 * time.Millisecond

// App holds every storefront component.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	shutdownTracer tracing.ShutdownFunc

	Store    storage.Store
	API      *api.Client
	Identity *identity.Client
	Session  *session.Classifier
	Cart     *cart.Facade
	Catalog  *catalog.Service
	Checkout *checkout.Service
	Profile  *profile.Service
	Admin    *admin.Service
	Links    whatsapp.Builder
}

// New creates the application. Nothing talks to the backend until Start.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
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

	a := &App{cfg: cfg, logger: logger, shutdownTracer: shutdownTracer}

	a.Store, a.rdb, err = openStore(ctx, cfg, logger)
	if err != nil {
		_ = shutdownTracer(ctx)
		return nil, err
	}
	logger.Debug("local storage ready", slog.String("backend", cfg.StorageBackend))

	hcfg := httpclient.DefaultConfig()
	hcfg.Timeout = cfg.RequestTimeout
	base := httpclient.New(hcfg)

	backendCB := httpclient.DefaultBreakerConfig(api.ServiceName)
	backendCB.Cooldown = cfg.BreakerTimeout
	a.API = api.New(httpclient.NewBreaker(base, backendCB, logger), cfg.APIBaseURL, logger)

	identityCB := httpclient.DefaultBreakerConfig("identity")
	identityCB.Cooldown = cfg.BreakerTimeout
	a.Identity = identity.New(httpclient.NewBreaker(base, identityCB, logger), identity.Config{
		APIKey:             cfg.IdentityAPIKey,
		IdentityBaseURL:    cfg.IdentityBaseURL,
		SecureTokenBaseURL: cfg.SecureTokenBaseURL,
	}, a.Store, logger)

	a.Session = session.New(a.Identity, logger)
	a.Cart = cart.NewFacade(a.Session,
		cart.NewLocalStore(a.Store, logger),
		cart.NewRemoteStore(a.API, a.Session.Token),
		logger,
	)
	a.Catalog = catalog.New(a.API, logger)
	a.Links = whatsapp.NewBuilder(cfg.OrderWhatsAppNumber, cfg.ContactWhatsAppNumber)
	a.Checkout = checkout.New(a.Cart, a.API, a.Session.Token, a.Links, cfg.ShippingFee, logger)
	a.Profile = profile.New(a.Session, a.Store, a.API, logger)
	a.Admin = admin.New(a.API, a.Store, logger)

	return a, nil
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Store, *redis.Client, error) {
	switch cfg.StorageBackend {
	case config.StorageRedis:
		rcfg, err := database.ParseRedisAddr(cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		rcfg.Password = cfg.RedisPass
		rcfg.DB = cfg.RedisDB
		rcfg.SlowCommand, rcfg.Logger = slowStorageCommand, logger
		rdb, err := database.NewRedisClient(ctx, rcfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		return redisstore.New(rdb, cfg.RedisKeyPrefix, 0), rdb, nil
	case config.StorageMemory:
		return storage.NewMemory(), nil, nil
	default:
		fs, err := filestore.New(cfg.StorageDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open storage dir: %w", err)
		}
		return fs, nil, nil
	}
}

// Checks returns the dependency checks run by the doctor command.
func (a *App) Checks() *health.Registry {
	g := health.New(a.cfg.RequestTimeout)
	g.Add("storage", true, func(ctx context.Context) error {
		return storage.Probe(ctx, a.Store)
	})
	g.Add("backend", true, func(ctx context.Context) error {
		_, err := a.API.ListProducts(ctx)
		return err
	})
	g.Add("session", false, func(ctx context.Context) error {
		if s := a.Session.Current(); s.State == domain.SessionPending {
			return fmt.Errorf("session still resolving")
		}
		return nil
	})
	return g
}

// Config returns the loaded configuration.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Start classifies the session. The cart follows the result.
func (a *App) Start(ctx context.Context) domain.Session {
	return a.Session.Resolve(ctx)
}

// NewSearch returns a debouncer over the catalog. The caller closes it.
func (a *App) NewSearch(ctx context.Context) *search.Debouncer {
	return search.New(ctx, a.Catalog, a.cfg.SearchDebounce, a.logger)
}

// SignIn records id as the current member.
func (a *App) SignIn(ctx context.Context, id *domain.Identity) {
	a.Session.SignIn(ctx, id)
}

// Shutdown releases every component.
func (a *App) Shutdown(ctx context.Context) error {
	a.Cart.Close()

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}
	if err := a.shutdownTracer(ctx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}
	return nil
}
