package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slimeyayush/altair-frontend/internal/domain"
	apperrors "github.com/slimeyayush/altair-frontend/pkg/errors"
	"github.com/slimeyayush/altair-frontend/pkg/httpclient"
)

type recorded struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   string
}

// newTestClient starts a server that records the request and answers with
// status and body.
func newTestClient(t *testing.T, status int, body string) (*Client, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		*rec = recorded{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
			Body:   string(b),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := httpclient.DefaultConfig()
	cfg.Timeout = 2 * time.Second
	cb := httpclient.NewBreaker(httpclient.New(cfg), httpclient.DefaultBreakerConfig("test-backend"), logger)
	return New(cb, srv.URL+"/", logger), rec
}

func TestListProducts(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK, `[{"id":1,"name":"CPAP","price":100,"stockQuantity":3,"active":true}]`)

	got, err := c.ListProducts(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "CPAP", got[0].Name)
	assert.Equal(t, 3, got[0].StockQuantity)
	assert.Equal(t, "/api/products", rec.Path)
	assert.Empty(t, rec.Auth)
}

func TestSearchProducts_EscapesQuery(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK, `[]`)

	_, err := c.SearchProducts(context.Background(), "bp monitor&x")

	require.NoError(t, err)
	assert.Equal(t, "/api/products/search", rec.Path)
	assert.Equal(t, "q=bp+monitor%26x", rec.Query)
}

func TestProductsByCategory_EscapesPath(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK, `[]`)

	_, err := c.ProductsByCategory(context.Background(), "Sleep Apnea")

	require.NoError(t, err)
	assert.Equal(t, "/api/products/category/Sleep Apnea", rec.Path)
}

func TestGetProduct_NotFound(t *testing.T) {
	c, _ := newTestClient(t, http.StatusNotFound, `{"message":"Product not found"}`)

	_, err := c.GetProduct(context.Background(), 7)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, "backend: Product not found", apperrors.UserMessage(err))
}

func TestAddToCart_SendsBearerAndBody(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK, `{"items":[{"productId":5,"quantity":2,"product":{"id":5,"name":"Mask","price":10}}]}`)

	cart, err := c.AddToCart(context.Background(), "id-token", 5)

	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, rec.Method)
	assert.Equal(t, "/api/cart/add", rec.Path)
	assert.Equal(t, "Bearer id-token", rec.Auth)
	assert.JSONEq(t, `{"productId":5}`, rec.Body)
	assert.Equal(t, 2, cart.QuantityOf(5))
	assert.Equal(t, 20.0, cart.Subtotal())
}

func TestUpdateCartItem(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK, `{"items":[]}`)

	cart, err := c.UpdateCartItem(context.Background(), "tok", 5, -1)

	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, rec.Method)
	assert.Equal(t, "/api/cart/update/5", rec.Path)
	assert.JSONEq(t, `{"delta":-1}`, rec.Body)
	assert.True(t, cart.IsEmpty())
}

func TestFetchCart_NormalizesZeroLines(t *testing.T) {
	c, _ := newTestClient(t, http.StatusOK, `{"items":[{"productId":1,"quantity":0},{"productId":2,"quantity":1}]}`)

	cart, err := c.FetchCart(context.Background(), "tok")

	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(2), cart.Items[0].ProductID)
}

func TestClearCart_EmptyBody(t *testing.T) {
	c, rec := newTestClient(t, http.StatusNoContent, ``)

	require.NoError(t, c.ClearCart(context.Background(), "tok"))
	assert.Equal(t, http.MethodDelete, rec.Method)
	assert.Equal(t, "/api/cart/clear", rec.Path)
}

func TestCheckout(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK, `{"id":42,"customerEmail":"a@b.c","status":"PENDING","totalAmount":700}`)

	order, err := c.Checkout(context.Background(), "", domain.CheckoutRequest{
		CustomerEmail: "a@b.c",
		Items:         []domain.CheckoutItem{{ProductID: 1, Quantity: 2}},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(42), order.ID)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Empty(t, rec.Auth)

	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(rec.Body), &sent))
	assert.Equal(t, "a@b.c", sent["customerEmail"])
}

func TestAdminLogin(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK, `{"token":"jwt"}`)

	tok, err := c.AdminLogin(context.Background(), Credentials{Username: "admin", Password: "pw"})

	require.NoError(t, err)
	assert.Equal(t, "jwt", tok)
	assert.JSONEq(t, `{"username":"admin","password":"pw"}`, rec.Body)
}

func TestAdminLogin_MissingToken(t *testing.T) {
	c, _ := newTestClient(t, http.StatusOK, `{}`)

	_, err := c.AdminLogin(context.Background(), Credentials{Username: "admin", Password: "pw"})
	assert.ErrorContains(t, err, "no token")
}

func TestAdminLogin_Unauthorized(t *testing.T) {
	c, _ := newTestClient(t, http.StatusUnauthorized, `Bad credentials`)

	_, err := c.AdminLogin(context.Background(), Credentials{Username: "admin", Password: "bad"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestAdminEndpoints_Paths(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		call   func(c *Client) error
		method string
		path   string
		body   string
	}{
		{"status", func(c *Client) error { return c.UpdateOrderStatus(ctx, "t", 3, domain.OrderStatusShipped) },
			http.MethodPut, "/api/admin/orders/3/status", `{"status":"SHIPPED"}`},
		{"cancel", func(c *Client) error { return c.CancelOrder(ctx, "t", 3) },
			http.MethodPost, "/api/admin/orders/3/cancel", ``},
		{"mark paid", func(c *Client) error { return c.MarkOrderPaid(ctx, "t", 3) },
			http.MethodPost, "/api/admin/orders/3/mark-paid", ``},
		{"stock", func(c *Client) error { return c.UpdateStock(ctx, "t", 9, 12) },
			http.MethodPut, "/api/admin/inventory/9", `{"stockQuantity":12}`},
		{"toggle", func(c *Client) error { return c.ToggleVisibility(ctx, "t", 9) },
			http.MethodPut, "/api/admin/inventory/9/toggle-visibility", ``},
		{"register", func(c *Client) error { return c.RegisterAdmin(ctx, "t", Credentials{Username: "u", Password: "p"}) },
			http.MethodPost, "/api/admin/register-admin", `{"username":"u","password":"p"}`},
		{"delete admin", func(c *Client) error { return c.DeleteAdmin(ctx, "t", 2) },
			http.MethodDelete, "/api/admin/admins/2", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newTestClient(t, http.StatusOK, ``)

			require.NoError(t, tt.call(c))
			assert.Equal(t, tt.method, rec.Method)
			assert.Equal(t, tt.path, rec.Path)
			assert.Equal(t, "Bearer t", rec.Auth)
			if tt.body == "" {
				assert.Empty(t, rec.Body)
			} else {
				assert.JSONEq(t, tt.body, rec.Body)
			}
		})
	}
}

func TestCreateProduct(t *testing.T) {
	c, rec := newTestClient(t, http.StatusCreated, `{"id":11,"name":"Oximeter","price":999,"active":true}`)

	p, err := c.CreateProduct(context.Background(), "t", domain.ProductInput{
		Name: "Oximeter", Price: 999, StockQuantity: 4, Category: "Diagnostic Tools",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(11), p.ID)
	assert.Equal(t, "/api/admin/products", rec.Path)

	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(rec.Body), &sent))
	assert.Nil(t, sent["oldPrice"])
	assert.Equal(t, 4.0, sent["stockQuantity"])
}

func TestAdminOrders_Forbidden(t *testing.T) {
	c, _ := newTestClient(t, http.StatusForbidden, ``)

	_, err := c.AdminOrders(context.Background(), "expired")
	assert.True(t, apperrors.IsAuthFailure(err))
}

func TestServerError_IsServiceError(t *testing.T) {
	c, _ := newTestClient(t, http.StatusServiceUnavailable, `{"message":"maintenance"}`)

	_, err := c.ListProducts(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
}
