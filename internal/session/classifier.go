// Package session classifies the current user as pending, guest or member.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/slimeyayush/altair-frontend/internal/domain"
	apperrors "github.com/slimeyayush/altair-frontend/pkg/errors"
	"github.com/slimeyayush/altair-frontend/pkg/logger"
)

// Provider is the identity provider as seen by the classifier.
type Provider interface {
	// CurrentUser returns the signed-in member or nil for nobody.
	CurrentUser(ctx context.Context) (*domain.Identity, error)
	SignOut(ctx context.Context) error
}

// Listener observes transitions. It runs synchronously on the goroutine
// that caused the transition.
type Listener func(ctx context.Context, prev, cur domain.Session)

// Classifier tracks who is using the storefront.
type Classifier struct {
	provider Provider
	logger   *slog.Logger
	now      func() time.Time

	mu        sync.Mutex
	session   domain.Session
	listeners map[int]Listener
	nextID    int

	resolveOnce sync.Once
	resolved    chan struct{}
	markOnce    sync.Once
}

// New creates a classifier in the pending state.
func New(provider Provider, logger *slog.Logger) *Classifier {
	return &Classifier{
		provider:  provider,
		logger:    logger,
		now:       time.Now,
		session:   domain.Session{State: domain.SessionPending},
		listeners: make(map[int]Listener),
		resolved:  make(chan struct{}),
	}
}

// Current returns the session without waiting.
func (c *Classifier) Current() domain.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Resolve asks the provider once. A provider error classifies the session as
// guest; it is logged and never retried. Later calls return the current session.
func (c *Classifier) Resolve(ctx context.Context) domain.Session {
	c.resolveOnce.Do(func() {
		id, err := c.provider.CurrentUser(ctx)
		if err != nil {
			logger.WithContext(ctx, c.logger).WarnContext(ctx, "identity provider unavailable, continuing as guest",
				slog.String("error", err.Error()),
			)
			id = nil
		}
		if c.Current().State != domain.SessionPending {
			// SignIn or SignOut won the race.
			return
		}
		if id != nil {
			c.transition(ctx, domain.Session{State: domain.SessionMember, Identity: id})
		} else {
			c.transition(ctx, domain.Session{State: domain.SessionGuest})
		}
	})
	return c.Current()
}

// Wait blocks until the session has left pending.
func (c *Classifier) Wait(ctx context.Context) (domain.Session, error) {
	select {
	case <-c.resolved:
		return c.Current(), nil
	case <-ctx.Done():
		return domain.Session{State: domain.SessionPending}, ctx.Err()
	}
}

// SignIn records a freshly signed-in member.
func (c *Classifier) SignIn(ctx context.Context, id *domain.Identity) {
	c.transition(ctx, domain.Session{State: domain.SessionMember, Identity: id})
}

// SignOut signs out at the provider and becomes guest. A provider failure is
// logged; the local session is reset regardless.
func (c *Classifier) SignOut(ctx context.Context) error {
	err := c.provider.SignOut(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "provider sign-out failed", slog.String("error", err.Error()))
	}
	c.transition(ctx, domain.Session{State: domain.SessionGuest})
	return err
}

// Token returns the member's bearer credential, or "" for a guest. An ID
// token expiring within domain.RefreshSkew is refreshed through the provider without notifying listeners; a
// refused refresh is reported as an error and the session is left unchanged.
func (c *Classifier) Token(ctx context.Context) (string, error) {
	s, err := c.Wait(ctx)
	if err != nil {
		return "", err
	}
	if !s.IsMember() {
		return "", nil
	}
	if !s.Identity.NeedsRefresh(c.now()) {
		return s.Identity.IDToken, nil
	}

	id, err := c.provider.CurrentUser(ctx)
	if err != nil {
		return "", err
	}
	if id == nil || id.UID != s.Identity.UID {
		return "", apperrors.Unauthorized("session expired, please sign in again")
	}

	c.mu.Lock()
	if c.session.IsMember() && c.session.Identity.UID == id.UID {
		c.session.Identity = id
	}
	c.mu.Unlock()
	return id.IDToken, nil
}

// Subscribe registers fn for every transition and returns its cancel func.
func (c *Classifier) Subscribe(fn Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// transition stores next and notifies listeners when the state or member
// changed. Waiters are released before listeners run so a listener may call
// Token.
func (c *Classifier) transition(ctx context.Context, next domain.Session) {
	c.mu.Lock()
	prev := c.session
	c.session = next
	changed := prev.State != next.State || uidOf(prev) != uidOf(next)
	var ls []Listener
	if changed {
		ls = make([]Listener, 0, len(c.listeners))
		for i := 0; i < c.nextID; i++ {
			if fn, ok := c.listeners[i]; ok {
				ls = append(ls, fn)
			}
		}
	}
	c.mu.Unlock()

	if next.State != domain.SessionPending {
		c.markOnce.Do(func() { close(c.resolved) })
	}
	if changed {
		c.logger.DebugContext(ctx, "session transition",
			slog.String("from", prev.State.String()),
			slog.String("to", next.State.String()),
		)
		for _, fn := range ls {
			fn(ctx, prev, next)
		}
	}
}

func uidOf(s domain.Session) string {
	if s.Identity == nil {
		return ""
	}
	return s.Identity.UID
}
