// Package catalog reads products from the backend. Read failures are logged
// and reported as empty results so browsing never blocks on the backend.
package catalog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/slimeyayush/altair-frontend/internal/domain"
	"github.com/slimeyayush/altair-frontend/pkg/logger"
)

// Backend is the catalog part of the backend API.
type Backend interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	SearchProducts(ctx context.Context, query string) ([]domain.Product, error)
	ProductsByCategory(ctx context.Context, category string) ([]domain.Product, error)
}

// Service exposes catalog reads.
type Service struct {
	backend Backend
	logger  *slog.Logger
}

// New creates a catalog service.
func New(backend Backend, logger *slog.Logger) *Service {
	return &Service{backend: backend, logger: logger}
}

func (s *Service) silent(ctx context.Context, op string, products []domain.Product, err error) []domain.Product {
	if err != nil {
		logger.WithContext(ctx, s.logger).WarnContext(ctx, "catalog read failed",
			slog.String("op", op),
			slog.String("error", err.Error()),
		)
		return []domain.Product{}
	}
	if products == nil {
		return []domain.Product{}
	}
	return products
}

// List returns every product.
func (s *Service) List(ctx context.Context) []domain.Product {
	products, err := s.backend.ListProducts(ctx)
	return s.silent(ctx, "list", products, err)
}

// Get returns one product. Unlike the list reads it reports failures.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.backend.GetProduct(ctx, id)
	if err != nil {
		s.logger.WarnContext(ctx, "product lookup failed",
			slog.Int64("product_id", id),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	return p, nil
}

// Search runs a text search. A blank query returns nothing without a request.
func (s *Service) Search(ctx context.Context, query string) []domain.Product {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Product{}
	}
	products, err := s.backend.SearchProducts(ctx, query)
	return s.silent(ctx, "search", products, err)
}

// ByCategory lists one category.
func (s *Service) ByCategory(ctx context.Context, category string) []domain.Product {
	products, err := s.backend.ProductsByCategory(ctx, category)
	return s.silent(ctx, "category", products, err)
}

// Related returns the other products in p's category.
func (s *Service) Related(ctx context.Context, p *domain.Product) []domain.Product {
	if p.Category == "" {
		return []domain.Product{}
	}
	out := make([]domain.Product, 0)
	for _, candidate := range s.ByCategory(ctx, p.Category) {
		if candidate.ID != p.ID {
			out = append(out, candidate)
		}
	}
	return out
}

// Group is one category section of the shop page.
type Group struct {
	Category string           `json:"category"`
	Products []domain.Product `json:"products"`
}

// GroupByCategory groups products in order of first appearance. Products
// without a category land in "Other".
func GroupByCategory(products []domain.Product) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, p := range products {
		cat := strings.TrimSpace(p.Category)
		if cat == "" {
			cat = domain.OtherCategory
		}
		i, ok := index[cat]
		if !ok {
			i = len(groups)
			index[cat] = i
			groups = append(groups, Group{Category: cat})
		}
		groups[i].Products = append(groups[i].Products, p)
	}
	return groups
}
