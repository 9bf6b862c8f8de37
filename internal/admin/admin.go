// Package admin is the back office: admin sign-in, orders, inventory and
// admin accounts. Every call carries the admin JWT; an expired or rejected
// token signs the admin out.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/slimeyayush/altair-frontend/internal/api"
	"github.com/slimeyayush/altair-frontend/internal/domain"
	"github.com/slimeyayush/altair-frontend/internal/storage"
	apperrors "github.com/slimeyayush/altair-frontend/pkg/errors"
	"github.com/slimeyayush/altair-frontend/pkg/validator"
)

// Sentinel errors. Both match apperrors.ErrUnauthorized.
var (
	ErrNotSignedIn = &apperrors.AppError{
		Code:    "ADMIN_NOT_SIGNED_IN",
		Message: "admin not signed in",
		Status:  http.StatusUnauthorized,
		Err:     apperrors.ErrUnauthorized,
	}
	ErrSessionExpired = &apperrors.AppError{
		Code:    "ADMIN_SESSION_EXPIRED",
		Message: "Session expired. Please log in again.",
		Status:  http.StatusUnauthorized,
		Err:     apperrors.ErrUnauthorized,
	}
)

// Backend is the admin part of the backend API.
type Backend interface {
	AdminLogin(ctx context.Context, creds api.Credentials) (string, error)
	AdminOrders(ctx context.Context, token string) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, token string, id int64, status domain.OrderStatus) error
	CancelOrder(ctx context.Context, token string, id int64) error
	MarkOrderPaid(ctx context.Context, token string, id int64) error
	Inventory(ctx context.Context, token string) ([]domain.Product, error)
	UpdateStock(ctx context.Context, token string, id int64, qty int) error
	ToggleVisibility(ctx context.Context, token string, id int64) error
	CreateProduct(ctx context.Context, token string, in domain.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, token string, id int64, in domain.ProductInput) (*domain.Product, error)
	ListAdmins(ctx context.Context, token string) ([]domain.Admin, error)
	RegisterAdmin(ctx context.Context, token string, creds api.Credentials) error
	DeleteAdmin(ctx context.Context, token string, id int64) error
}

// Service is the back office.
type Service struct {
	backend Backend
	store   storage.Store
	logger  *slog.Logger
	now     func() time.Time
}

// New creates the back-office service.
func New(backend Backend, store storage.Store, logger *slog.Logger) *Service {
	return &Service{backend: backend, store: store, logger: logger, now: time.Now}
}

type loginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6"`
}

// Login signs an admin in and stores the token.
func (s *Service) Login(ctx context.Context, username, password string) error {
	in := loginInput{Username: strings.TrimSpace(username), Password: password}
	if err := validator.Validate(in); err != nil {
		return err
	}

	token, err := s.backend.AdminLogin(ctx, api.Credentials(in))
	if err != nil {
		if apperrors.IsAuthFailure(err) {
			return apperrors.Unauthorized("Invalid username or password.")
		}
		return err
	}
	if err := s.store.Set(ctx, domain.AdminTokenKey, []byte(token)); err != nil {
		return fmt.Errorf("save admin token: %w", err)
	}
	s.logger.InfoContext(ctx, "admin signed in", slog.String("username", in.Username))
	return nil
}

// Logout deletes the stored token.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.store.Delete(ctx, domain.AdminTokenKey); err != nil {
		return fmt.Errorf("delete admin token: %w", err)
	}
	return nil
}

// SignedIn reports whether a usable token is stored.
func (s *Service) SignedIn(ctx context.Context) bool {
	_, err := s.token(ctx)
	return err == nil
}

func (s *Service) token(ctx context.Context) (string, error) {
	data, err := s.store.Get(ctx, domain.AdminTokenKey)
	if err != nil {
		if storage.IsNotFound(err) {
			return "", ErrNotSignedIn
		}
		return "", fmt.Errorf("load admin token: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNotSignedIn
	}
	if tokenExpired(token, s.now()) {
		return "", s.forceSignOut(ctx, "token expired")
	}
	return token, nil
}

func (s *Service) forceSignOut(ctx context.Context, reason string) error {
	s.logger.WarnContext(ctx, "admin session ended", slog.String("reason", reason))
	if err := s.Logout(ctx); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear admin token", slog.String("error", err.Error()))
	}
	return ErrSessionExpired
}

// tokenExpired reads exp without verifying the signature; the backend does
// that. Tokens that are not JWTs or carry no exp never expire here.
func tokenExpired(token string, now time.Time) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}

// with runs fn with the token and turns 401/403 into a forced sign-out.
func with[T any](ctx context.Context, s *Service, fn func(token string) (T, error)) (T, error) {
	var zero T
	token, err := s.token(ctx)
	if err != nil {
		return zero, err
	}
	out, err := fn(token)
	if err != nil {
		if apperrors.IsAuthFailure(err) {
			return zero, s.forceSignOut(ctx, "rejected by backend")
		}
		return zero, err
	}
	return out, nil
}

func (s *Service) do(ctx context.Context, fn func(token string) error) error {
	_, err := with(ctx, s, func(token string) (struct{}, error) {
		return struct{}{}, fn(token)
	})
	return err
}

// Orders lists every order.
func (s *Service) Orders(ctx context.Context) ([]domain.Order, error) {
	return with(ctx, s, func(token string) ([]domain.Order, error) {
		return s.backend.AdminOrders(ctx, token)
	})
}

// UpdateOrderStatus sets an order's status.
func (s *Service) UpdateOrderStatus(ctx context.Context, id int64, status string) error {
	status = strings.ToUpper(strings.TrimSpace(status))
	if !domain.IsValidStatus(status) {
		return apperrors.InvalidInput(fmt.Sprintf("unknown order status %q", status))
	}
	return s.do(ctx, func(token string) error {
		return s.backend.UpdateOrderStatus(ctx, token, id, domain.OrderStatus(status))
	})
}

// CancelOrder cancels an order.
func (s *Service) CancelOrder(ctx context.Context, id int64) error {
	return s.do(ctx, func(token string) error {
		return s.backend.CancelOrder(ctx, token, id)
	})
}

// MarkPaid marks a pending order as paid.
func (s *Service) MarkPaid(ctx context.Context, id int64) error {
	return s.do(ctx, func(token string) error {
		return s.backend.MarkOrderPaid(ctx, token, id)
	})
}

// Inventory lists every product, archived ones included.
func (s *Service) Inventory(ctx context.Context) ([]domain.Product, error) {
	return with(ctx, s, func(token string) ([]domain.Product, error) {
		return s.backend.Inventory(ctx, token)
	})
}

// UpdateStock sets a product's stock.
func (s *Service) UpdateStock(ctx context.Context, id int64, qty int) error {
	if qty < 0 {
		return apperrors.InvalidInput("stock quantity must not be negative")
	}
	return s.do(ctx, func(token string) error {
		return s.backend.UpdateStock(ctx, token, id, qty)
	})
}

// ToggleVisibility flips a product between active and archived.
func (s *Service) ToggleVisibility(ctx context.Context, id int64) error {
	return s.do(ctx, func(token string) error {
		return s.backend.ToggleVisibility(ctx, token, id)
	})
}

// ValidateProduct checks the product form.
func ValidateProduct(in domain.ProductInput) error {
	if err := validator.Validate(in); err != nil {
		return err
	}
	if !domain.IsValidCategory(in.Category) {
		return apperrors.InvalidInput(fmt.Sprintf("category must be one of: %s", strings.Join(domain.Categories, ", ")))
	}
	return nil
}

// AddProduct creates a product.
func (s *Service) AddProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	if err := ValidateProduct(in); err != nil {
		return nil, err
	}
	return with(ctx, s, func(token string) (*domain.Product, error) {
		return s.backend.CreateProduct(ctx, token, in)
	})
}

// UpdateProduct replaces a product's editable fields.
func (s *Service) UpdateProduct(ctx context.Context, id int64, in domain.ProductInput) (*domain.Product, error) {
	if err := ValidateProduct(in); err != nil {
		return nil, err
	}
	return with(ctx, s, func(token string) (*domain.Product, error) {
		return s.backend.UpdateProduct(ctx, token, id, in)
	})
}

// Admins lists back-office accounts.
func (s *Service) Admins(ctx context.Context) ([]domain.Admin, error) {
	return with(ctx, s, func(token string) ([]domain.Admin, error) {
		return s.backend.ListAdmins(ctx, token)
	})
}

// RegisterAdmin creates a back-office account.
func (s *Service) RegisterAdmin(ctx context.Context, username, password string) error {
	in := registerInput{Username: strings.TrimSpace(username), Password: password}
	if err := validator.Validate(in); err != nil {
		return err
	}
	return s.do(ctx, func(token string) error {
		return s.backend.RegisterAdmin(ctx, token, api.Credentials(in))
	})
}

// DeleteAdmin removes a back-office account.
func (s *Service) DeleteAdmin(ctx context.Context, id int64) error {
	return s.do(ctx, func(token string) error {
		return s.backend.DeleteAdmin(ctx, token, id)
	})
}
