package api

import (
	"context"
	"net/http"

	"github.com/slimeyayush/altair-frontend/internal/domain"
)

// Checkout places an order. token may be empty for guest checkout.
func (c *Client) Checkout(ctx context.Context, token string, req domain.CheckoutRequest) (*domain.Order, error) {
	var out domain.Order
	if err := c.call(ctx, http.MethodPost, "/api/orders/checkout", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MyOrders lists the signed-in member's orders.
func (c *Client) MyOrders(ctx context.Context, token string) ([]domain.Order, error) {
	var out []domain.Order
	if err := c.call(ctx, http.MethodGet, "/api/orders/my-orders", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
