package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/slimeyayush/altair-frontend/internal/domain"
)

// ListProducts returns the full catalog.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	if err := c.call(ctx, http.MethodGet, "/api/products", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProduct returns one product.
func (c *Client) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var out domain.Product
	if err := c.call(ctx, http.MethodGet, fmt.Sprintf("/api/products/%d", id), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchProducts runs a server-side text search.
func (c *Client) SearchProducts(ctx context.Context, query string) ([]domain.Product, error) {
	var out []domain.Product
	path := "/api/products/search?q=" + url.QueryEscape(query)
	if err := c.call(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ProductsByCategory lists the products in one category.
func (c *Client) ProductsByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	var out []domain.Product
	path := "/api/products/category/" + url.PathEscape(category)
	if err := c.call(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
