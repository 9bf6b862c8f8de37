package cart

import (
	"context"

	"github.com/slimeyayush/altair-frontend/internal/domain"
	apperrors "github.com/slimeyayush/altair-frontend/pkg/errors"
)

// Backend is the server-side cart API. api.Client satisfies it.
type Backend interface {
	FetchCart(ctx context.Context, token string) (*domain.Cart, error)
	AddToCart(ctx context.Context, token string, productID int64) (*domain.Cart, error)
	UpdateCartItem(ctx context.Context, token string, productID int64, delta int) (*domain.Cart, error)
	RemoveCartItem(ctx context.Context, token string, productID int64) (*domain.Cart, error)
	ClearCart(ctx context.Context, token string) error
}

// TokenSource returns the member's bearer credential.
type TokenSource func(ctx context.Context) (string, error)

// RemoteStore is the member cart. Every call is an authenticated round trip
// returning the authoritative cart; quantities are never predicted locally.
type RemoteStore struct {
	backend Backend
	token   TokenSource
}

// NewRemoteStore creates a RemoteStore.
func NewRemoteStore(backend Backend, token TokenSource) *RemoteStore {
	return &RemoteStore{backend: backend, token: token}
}

func (s *RemoteStore) bearer(ctx context.Context) (string, error) {
	tok, err := s.token(ctx)
	if err != nil {
		return "", err
	}
	if tok == "" {
		return "", apperrors.Unauthorized("member session required")
	}
	return tok, nil
}

// Fetch returns the member's cart.
func (s *RemoteStore) Fetch(ctx context.Context) (*domain.Cart, error) {
	tok, err := s.bearer(ctx)
	if err != nil {
		return nil, err
	}
	return s.backend.FetchCart(ctx, tok)
}

// AddItem adds one unit of productID.
func (s *RemoteStore) AddItem(ctx context.Context, productID int64) (*domain.Cart, error) {
	tok, err := s.bearer(ctx)
	if err != nil {
		return nil, err
	}
	return s.backend.AddToCart(ctx, tok, productID)
}

// SetQuantity changes the quantity of productID by delta.
func (s *RemoteStore) SetQuantity(ctx context.Context, productID int64, delta int) (*domain.Cart, error) {
	tok, err := s.bearer(ctx)
	if err != nil {
		return nil, err
	}
	return s.backend.UpdateCartItem(ctx, tok, productID, delta)
}

// RemoveItem removes the line for productID.
func (s *RemoteStore) RemoveItem(ctx context.Context, productID int64) (*domain.Cart, error) {
	tok, err := s.bearer(ctx)
	if err != nil {
		return nil, err
	}
	return s.backend.RemoveCartItem(ctx, tok, productID)
}

// Clear empties the member's cart and returns the empty cart.
func (s *RemoteStore) Clear(ctx context.Context) (*domain.Cart, error) {
	tok, err := s.bearer(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.backend.ClearCart(ctx, tok); err != nil {
		return nil, err
	}
	return domain.NewCart(), nil
}
