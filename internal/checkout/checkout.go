// Package checkout validates the checkout form, places the order and clears
// the cart.
package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/slimeyayush/altair-frontend/internal/domain"
	"github.com/slimeyayush/altair-frontend/internal/whatsapp"
	apperrors "github.com/slimeyayush/altair-frontend/pkg/errors"
	"github.com/slimeyayush/altair-frontend/pkg/logger"
	"github.com/slimeyayush/altair-frontend/pkg/validator"
)

// Cart is the part of the cart Facade checkout uses.
type Cart interface {
	Items(ctx context.Context) (*domain.Cart, error)
	Clear(ctx context.Context) (*domain.Cart, error)
}

// Backend places orders.
type Backend interface {
	Checkout(ctx context.Context, token string, req domain.CheckoutRequest) (*domain.Order, error)
}

// TokenSource returns the member's bearer credential, "" for guests.
type TokenSource func(ctx context.Context) (string, error)

// Input is the checkout form.
type Input struct {
	Email           string `json:"email" validate:"required,email"`
	ShippingAddress string `json:"shippingAddress" validate:"required,max=500"`
}

// Totals are the amounts shown before placing the order.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
}

// ComputeTotals charges fee on any non-empty subtotal.
func ComputeTotals(c *domain.Cart, fee float64) Totals {
	sub := c.Subtotal()
	var ship float64
	if sub > 0 {
		ship = fee
	}
	return Totals{Subtotal: sub, Shipping: ship, Total: sub + ship}
}

// Receipt describes a placed order.
type Receipt struct {
	Order       *domain.Order     `json:"order"`
	Lines       []domain.CartLine `json:"lines"`
	Totals      Totals            `json:"totals"`
	WhatsAppURL string            `json:"whatsappUrl"`
}

// Service runs checkout.
type Service struct {
	cart    Cart
	backend Backend
	token   TokenSource
	links   whatsapp.Builder
	fee     float64
	logger  *slog.Logger
}

// New creates a checkout service.
func New(cart Cart, backend Backend, token TokenSource, links whatsapp.Builder, fee float64, logger *slog.Logger) *Service {
	return &Service{
		cart:    cart,
		backend: backend,
		token:   token,
		links:   links,
		fee:     fee,
		logger:  logger,
	}
}

// Quote returns the current cart and its totals.
func (s *Service) Quote(ctx context.Context) (*domain.Cart, Totals, error) {
	c, err := s.cart.Items(ctx)
	if err != nil {
		return nil, Totals{}, err
	}
	return c, ComputeTotals(c, s.fee), nil
}

// Place validates in, submits a single checkout request and clears the cart
// on success. Nothing is sent when validation fails.
func (s *Service) Place(ctx context.Context, in Input) (*Receipt, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.ShippingAddress = strings.TrimSpace(in.ShippingAddress)
	if err := validator.Validate(in); err != nil {
		return nil, err
	}

	c, totals, err := s.Quote(ctx)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, apperrors.InvalidInput("your cart is empty")
	}

	token, err := s.token(ctx)
	if err != nil {
		return nil, fmt.Errorf("member token: %w", err)
	}

	req := domain.CheckoutRequest{
		CustomerEmail:   in.Email,
		ShippingAddress: in.ShippingAddress,
		Items:           make([]domain.CheckoutItem, 0, len(c.Items)),
	}
	for _, l := range c.Items {
		req.Items = append(req.Items, domain.CheckoutItem{ProductID: l.ProductID, Quantity: l.Quantity})
	}

	log := logger.WithContext(ctx, s.logger)
	order, err := s.backend.Checkout(ctx, token, req)
	if err != nil {
		log.ErrorContext(ctx, "checkout failed", slog.String("error", err.Error()))
		return nil, err
	}
	log.InfoContext(ctx, "order placed",
		slog.Int64("order_id", order.ID),
		slog.Int("lines", len(req.Items)),
	)

	if _, err := s.cart.Clear(ctx); err != nil {
		log.WarnContext(ctx, "order placed but cart not cleared", slog.String("error", err.Error()))
	}

	return &Receipt{
		Order:       order,
		Lines:       c.Items,
		Totals:      totals,
		WhatsAppURL: s.links.Order(order.ID, in.Email, c.Items, totals.Total),
	}, nil
}
