// Package profile manages the signed-in member's saved address and orders.
package profile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/slimeyayush/altair-frontend/internal/domain"
	"github.com/slimeyayush/altair-frontend/internal/storage"
	apperrors "github.com/slimeyayush/altair-frontend/pkg/errors"
	"github.com/slimeyayush/altair-frontend/pkg/validator"
)

// Session reports the current member.
type Session interface {
	Wait(ctx context.Context) (domain.Session, error)
	Token(ctx context.Context) (string, error)
}

// Backend lists a member's orders.
type Backend interface {
	MyOrders(ctx context.Context, token string) ([]domain.Order, error)
}

// Service is the profile page.
type Service struct {
	sess    Session
	store   storage.Store
	backend Backend
	logger  *slog.Logger
}

// New creates a profile service.
func New(sess Session, store storage.Store, backend Backend, logger *slog.Logger) *Service {
	return &Service{sess: sess, store: store, backend: backend, logger: logger}
}

type addressInput struct {
	Address string `json:"address" validate:"required,max=500"`
}

func (s *Service) member(ctx context.Context) (*domain.Identity, error) {
	sess, err := s.sess.Wait(ctx)
	if err != nil {
		return nil, err
	}
	if !sess.IsMember() {
		return nil, apperrors.Unauthorized("sign in to view your profile")
	}
	return sess.Identity, nil
}

// Me returns the signed-in member.
func (s *Service) Me(ctx context.Context) (*domain.Identity, error) {
	return s.member(ctx)
}

// Address returns the member's saved address, "" when none is saved.
func (s *Service) Address(ctx context.Context) (string, error) {
	id, err := s.member(ctx)
	if err != nil {
		return "", err
	}
	data, err := s.store.Get(ctx, domain.AddressKey(id.UID))
	if err != nil {
		if storage.IsNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("load address: %w", err)
	}
	return string(data), nil
}

// SaveAddress stores the member's shipping address on this device.
func (s *Service) SaveAddress(ctx context.Context, address string) error {
	id, err := s.member(ctx)
	if err != nil {
		return err
	}
	in := addressInput{Address: strings.TrimSpace(address)}
	if err := validator.Validate(in); err != nil {
		return err
	}
	if err := s.store.Set(ctx, domain.AddressKey(id.UID), []byte(in.Address)); err != nil {
		return fmt.Errorf("save address: %w", err)
	}
	s.logger.InfoContext(ctx, "address saved", slog.String("uid", id.UID))
	return nil
}

// MyOrders lists the member's orders. Backend failures are logged and yield
// an empty list.
func (s *Service) MyOrders(ctx context.Context) ([]domain.Order, error) {
	if _, err := s.member(ctx); err != nil {
		return nil, err
	}
	token, err := s.sess.Token(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to get member token", slog.String("error", err.Error()))
		return []domain.Order{}, nil
	}
	orders, err := s.backend.MyOrders(ctx, token)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load orders", slog.String("error", err.Error()))
		return []domain.Order{}, nil
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}
