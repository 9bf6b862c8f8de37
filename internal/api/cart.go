package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/slimeyayush/altair-frontend/internal/domain"
)

type addItemRequest struct {
	ProductID int64 `json:"productId"`
}

type updateItemRequest struct {
	Delta int `json:"delta"`
}

func (c *Client) cartCall(ctx context.Context, method, path, token string, in any) (*domain.Cart, error) {
	out := domain.NewCart()
	if err := c.call(ctx, method, path, token, in, out); err != nil {
		return nil, err
	}
	out.Normalize()
	return out, nil
}

// FetchCart returns the member's server-side cart.
func (c *Client) FetchCart(ctx context.Context, token string) (*domain.Cart, error) {
	return c.cartCall(ctx, http.MethodGet, "/api/cart", token, nil)
}

// AddToCart adds one unit of productID and returns the resulting cart.
func (c *Client) AddToCart(ctx context.Context, token string, productID int64) (*domain.Cart, error) {
	return c.cartCall(ctx, http.MethodPost, "/api/cart/add", token, addItemRequest{ProductID: productID})
}

// UpdateCartItem changes the quantity of productID by delta.
func (c *Client) UpdateCartItem(ctx context.Context, token string, productID int64, delta int) (*domain.Cart, error) {
	path := fmt.Sprintf("/api/cart/update/%d", productID)
	return c.cartCall(ctx, http.MethodPut, path, token, updateItemRequest{Delta: delta})
}

// RemoveCartItem removes the line for productID.
func (c *Client) RemoveCartItem(ctx context.Context, token string, productID int64) (*domain.Cart, error) {
	path := fmt.Sprintf("/api/cart/remove/%d", productID)
	return c.cartCall(ctx, http.MethodDelete, path, token, nil)
}

// ClearCart empties the member's cart.
func (c *Client) ClearCart(ctx context.Context, token string) error {
	return c.call(ctx, http.MethodDelete, "/api/cart/clear", token, nil, nil)
}
