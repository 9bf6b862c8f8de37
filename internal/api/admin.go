package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/slimeyayush/altair-frontend/internal/domain"
)

// Credentials is an admin username and password.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type statusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

type stockRequest struct {
	StockQuantity int `json:"stockQuantity"`
}

// AdminLogin exchanges credentials for a JWT.
func (c *Client) AdminLogin(ctx context.Context, creds Credentials) (string, error) {
	var out loginResponse
	if err := c.call(ctx, http.MethodPost, "/api/auth/login", "", creds, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", fmt.Errorf("login response carried no token")
	}
	return out.Token, nil
}

// AdminOrders lists every order.
func (c *Client) AdminOrders(ctx context.Context, token string) ([]domain.Order, error) {
	var out []domain.Order
	if err := c.call(ctx, http.MethodGet, "/api/admin/orders", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateOrderStatus sets an order's status.
func (c *Client) UpdateOrderStatus(ctx context.Context, token string, id int64, status domain.OrderStatus) error {
	path := fmt.Sprintf("/api/admin/orders/%d/status", id)
	return c.call(ctx, http.MethodPut, path, token, statusRequest{Status: status}, nil)
}

// CancelOrder cancels an order.
func (c *Client) CancelOrder(ctx context.Context, token string, id int64) error {
	return c.call(ctx, http.MethodPost, fmt.Sprintf("/api/admin/orders/%d/cancel", id), token, nil, nil)
}

// MarkOrderPaid marks a pending order as paid.
func (c *Client) MarkOrderPaid(ctx context.Context, token string, id int64) error {
	return c.call(ctx, http.MethodPost, fmt.Sprintf("/api/admin/orders/%d/mark-paid", id), token, nil, nil)
}

// Inventory lists every product including archived ones.
func (c *Client) Inventory(ctx context.Context, token string) ([]domain.Product, error) {
	var out []domain.Product
	if err := c.call(ctx, http.MethodGet, "/api/admin/inventory", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStock sets a product's stock quantity.
func (c *Client) UpdateStock(ctx context.Context, token string, id int64, qty int) error {
	path := fmt.Sprintf("/api/admin/inventory/%d", id)
	return c.call(ctx, http.MethodPut, path, token, stockRequest{StockQuantity: qty}, nil)
}

// ToggleVisibility flips a product between active and archived.
func (c *Client) ToggleVisibility(ctx context.Context, token string, id int64) error {
	path := fmt.Sprintf("/api/admin/inventory/%d/toggle-visibility", id)
	return c.call(ctx, http.MethodPut, path, token, nil, nil)
}

// CreateProduct adds a product to the catalog.
func (c *Client) CreateProduct(ctx context.Context, token string, in domain.ProductInput) (*domain.Product, error) {
	var out domain.Product
	if err := c.call(ctx, http.MethodPost, "/api/admin/products", token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProduct replaces a product's editable fields.
func (c *Client) UpdateProduct(ctx context.Context, token string, id int64, in domain.ProductInput) (*domain.Product, error) {
	var out domain.Product
	if err := c.call(ctx, http.MethodPut, fmt.Sprintf("/api/admin/products/%d", id), token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAdmins lists back-office accounts.
func (c *Client) ListAdmins(ctx context.Context, token string) ([]domain.Admin, error) {
	var out []domain.Admin
	if err := c.call(ctx, http.MethodGet, "/api/admin/admins", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RegisterAdmin creates a back-office account.
func (c *Client) RegisterAdmin(ctx context.Context, token string, creds Credentials) error {
	return c.call(ctx, http.MethodPost, "/api/admin/register-admin", token, creds, nil)
}

// DeleteAdmin removes a back-office account.
func (c *Client) DeleteAdmin(ctx context.Context, token string, id int64) error {
	return c.call(ctx, http.MethodDelete, fmt.Sprintf("/api/admin/admins/%d", id), token, nil, nil)
}
