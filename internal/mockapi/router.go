package mockapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/slimeyayush/altair-frontend/internal/config"
	"github.com/slimeyayush/altair-frontend/pkg/health"
	"github.com/slimeyayush/altair-frontend/pkg/middleware"
)

// ServiceName labels metrics, traces and logs of the dev backend.
const ServiceName = "mockapi"

// NewRouter creates a chi router with every backend route registered.
func NewRouter(
	h *Handler,
	checks *health.Registry,
	cfg *config.MockAPI,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	cors := middleware.DefaultCORSConfig()
	cors.Origins = cfg.CORSOrigins
	cors.LocalhostAnyPort = cfg.Environment == "development"

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(cors))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(h.metrics.http.Handler)
	r.Use(middleware.Tracing(ServiceName))
	r.Use(middleware.RequestLogger(logger))

	checks.Mount(r)
	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	validate := Validator(h.tokens, h.store)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(cfg.CacheMaxAge))
			r.Get("/products", h.ListProducts)
			r.Get("/products/search", h.SearchProducts)
			r.Get("/products/category/{category}", h.ProductsByCategory)
			r.Get("/products/{id}", h.GetProduct)
		})

		r.With(middleware.RateLimit(cfg.LoginPerMin, cfg.LoginBurst, logger)).
			Post("/auth/login", h.Login)

		r.With(optionalAuth(validate), middleware.RequestLogger(logger)).
			Post("/orders/checkout", h.Checkout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(validate))
			r.Use(middleware.RequireRole(middleware.RoleMember))
			r.Use(middleware.RequestLogger(logger))

			r.Get("/orders/my-orders", h.MyOrders)

			r.Get("/cart", h.GetCart)
			r.Post("/cart/add", h.AddToCart)
			r.Put("/cart/update/{productId}", h.UpdateCartItem)
			r.Delete("/cart/remove/{productId}", h.RemoveCartItem)
			r.Delete("/cart/clear", h.ClearCart)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Auth(validate))
			r.Use(middleware.RequireRole(middleware.RoleAdmin))

			r.Get("/orders", h.AdminOrders)
			r.Put("/orders/{id}/status", h.UpdateOrderStatus)
			r.Post("/orders/{id}/cancel", h.CancelOrder)
			r.Post("/orders/{id}/mark-paid", h.MarkPaid)

			r.Get("/inventory", h.Inventory)
			r.Put("/inventory/{id}", h.UpdateStock)
			r.Put("/inventory/{id}/toggle-visibility", h.ToggleVisibility)

			r.Post("/products", h.CreateProduct)
			r.Put("/products/{id}", h.UpdateProduct)

			r.Get("/admins", h.Admins)
			r.Post("/register-admin", h.RegisterAdmin)
			r.Delete("/admins/{id}", h.DeleteAdmin)
		})
	})

	// Identity provider endpoints
	r.Post("/v1/accounts:signInWithPassword", h.SignInWithPassword)
	r.Post("/v1/accounts:sendVerificationCode", h.SendVerificationCode)
	r.Post("/v1/accounts:signInWithPhoneNumber", h.SignInWithPhoneNumber)
	r.Post("/v1/token", h.RefreshToken)

	return r
}

// optionalAuth authenticates requests that carry an Authorization header and
// lets anonymous ones through.
func optionalAuth(validate middleware.TokenValidator) func(http.Handler) http.Handler {
	auth := middleware.Auth(validate)
	return func(next http.Handler) http.Handler {
		authed := auth(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			authed.ServeHTTP(w, r)
		})
	}
}
