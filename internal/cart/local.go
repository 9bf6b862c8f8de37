package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/slimeyayush/altair-frontend/internal/domain"
	"github.com/slimeyayush/altair-frontend/internal/storage"
)

// LocalStore keeps the guest cart in client-local storage under a single key.
// Values are a JSON array of {productId, quantity, product} lines.
type LocalStore struct {
	store  storage.Store
	key    string
	logger *slog.Logger
}

// NewLocalStore creates a LocalStore on the guest cart key.
func NewLocalStore(store storage.Store, logger *slog.Logger) *LocalStore {
	return &LocalStore{store: store, key: domain.LocalCartKey, logger: logger}
}

// Load reads the guest cart. Missing or unreadable data yields an empty cart.
func (s *LocalStore) Load(ctx context.Context) *domain.Cart {
	data, err := s.store.Get(ctx, s.key)
	if err != nil {
		if !storage.IsNotFound(err) {
			s.logger.WarnContext(ctx, "failed to read local cart", slog.String("error", err.Error()))
		}
		return domain.NewCart()
	}

	var lines []domain.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		s.logger.WarnContext(ctx, "discarding unreadable local cart", slog.String("error", err.Error()))
		return domain.NewCart()
	}
	for i := range lines {
		// Lines written as {product, quantity} carry the id only on the product.
		if lines[i].ProductID == 0 && lines[i].Product != nil {
			lines[i].ProductID = lines[i].Product.ID
		}
	}

	c := &domain.Cart{Items: lines}
	c.Normalize()
	return c
}

// Save writes the guest cart.
func (s *LocalStore) Save(ctx context.Context, c *domain.Cart) error {
	lines := c.Items
	if lines == nil {
		lines = []domain.CartLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("marshal local cart: %w", err)
	}
	if err := s.store.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("save local cart: %w", err)
	}
	return nil
}
