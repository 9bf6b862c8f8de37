// Package cart is the single cart API used by every screen. It hides whether
// the cart lives in client-local storage (guest) or on the backend (member).
package cart

import (
	"context"
	"log/slog"
	"sync"

	"github.com/slimeyayush/altair-frontend/internal/domain"
	"github.com/slimeyayush/altair-frontend/internal/session"
	"github.com/slimeyayush/altair-frontend/pkg/logger"
)

// Session is the part of the session classifier the Facade depends on.
type Session interface {
	Wait(ctx context.Context) (domain.Session, error)
	Subscribe(fn session.Listener) func()
}

// Observer receives every new cart snapshot.
type Observer func(*domain.Cart)

// Facade routes cart operations to the store that matches the session.
type Facade struct {
	sess   Session
	local  *LocalStore
	remote *RemoteStore
	logger *slog.Logger
	unsub  func()

	mu       sync.Mutex
	ready    bool
	applied  domain.Session
	strategy strategy
	cart     *domain.Cart

	obsMu     sync.Mutex
	observers map[int]Observer
	nextObs   int
}

// NewFacade creates a Facade that follows sess.
func NewFacade(sess Session, local *LocalStore, remote *RemoteStore, logger *slog.Logger) *Facade {
	f := &Facade{
		sess:      sess,
		local:     local,
		remote:    remote,
		logger:    logger,
		cart:      domain.NewCart(),
		observers: make(map[int]Observer),
	}
	f.unsub = sess.Subscribe(f.onTransition)
	return f
}

// Close stops following the session.
func (f *Facade) Close() {
	f.unsub()
}

// Subscribe registers fn for every new snapshot and returns its cancel func.
func (f *Facade) Subscribe(fn Observer) func() {
	f.obsMu.Lock()
	defer f.obsMu.Unlock()
	id := f.nextObs
	f.nextObs++
	f.observers[id] = fn
	return func() {
		f.obsMu.Lock()
		defer f.obsMu.Unlock()
		delete(f.observers, id)
	}
}

func (f *Facade) publish(c *domain.Cart) {
	f.obsMu.Lock()
	obs := make([]Observer, 0, len(f.observers))
	for i := 0; i < f.nextObs; i++ {
		if fn, ok := f.observers[i]; ok {
			obs = append(obs, fn)
		}
	}
	f.obsMu.Unlock()

	for _, fn := range obs {
		fn(c.Clone())
	}
}

// Mode returns the session state the current strategy was chosen for.
func (f *Facade) Mode() domain.SessionState {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.ready {
		return domain.SessionPending
	}
	return f.applied.State
}

func (f *Facade) onTransition(ctx context.Context, _, cur domain.Session) {
	if cur.State == domain.SessionPending {
		return
	}
	f.mu.Lock()
	if f.ready && sameSession(f.applied, cur) {
		f.mu.Unlock()
		return
	}
	f.apply(ctx, cur)
	snap := f.cart.Clone()
	f.mu.Unlock()

	f.publish(snap)
}

// apply selects the strategy for s and loads its cart. Called with f.mu held.
func (f *Facade) apply(ctx context.Context, s domain.Session) {
	log := logger.WithContext(ctx, f.logger)

	switch {
	case s.IsMember():
		// The guest cart is discarded, never merged.
		f.strategy = memberStrategy{remote: f.remote}
		f.cart = domain.NewCart()
		c, err := f.strategy.load(ctx)
		if err != nil {
			log.ErrorContext(ctx, "failed to fetch member cart", slog.String("error", err.Error()))
		} else {
			f.cart = c
		}
	default:
		f.strategy = guestStrategy{local: f.local}
		f.cart, _ = f.strategy.load(ctx)
	}

	f.applied = s
	f.ready = true
	log.DebugContext(ctx, "cart strategy selected",
		slog.String("session", s.State.String()),
		slog.Int("lines", len(f.cart.Items)),
	)
}

func sameSession(a, b domain.Session) bool {
	if a.State != b.State {
		return false
	}
	if a.Identity == nil || b.Identity == nil {
		return a.Identity == b.Identity
	}
	return a.Identity.UID == b.Identity.UID
}

// mutation computes the next cart from the current one. Returning cur itself
// means nothing changed.
type mutation func(ctx context.Context, s strategy, cur *domain.Cart) (*domain.Cart, error)

// run waits for the session, applies m and republishes the result. On error
// the cached snapshot is kept and returned along with the error.
func (f *Facade) run(ctx context.Context, op string, m mutation) (*domain.Cart, error) {
	s, err := f.sess.Wait(ctx)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	if !f.ready {
		f.apply(ctx, s)
	}
	cur := f.cart
	next, err := m(ctx, f.strategy, cur)
	if err != nil {
		snap := cur.Clone()
		f.mu.Unlock()
		logger.WithContext(ctx, f.logger).ErrorContext(ctx, "cart operation failed",
			slog.String("op", op),
			slog.String("error", err.Error()),
		)
		return snap, err
	}
	f.cart = next
	snap := next.Clone()
	f.mu.Unlock()

	if next != cur {
		f.publish(snap)
	}
	return snap, nil
}

// Items returns the current cart.
func (f *Facade) Items(ctx context.Context) (*domain.Cart, error) {
	return f.run(ctx, "items", func(_ context.Context, _ strategy, cur *domain.Cart) (*domain.Cart, error) {
		return cur, nil
	})
}

// Reload re-reads the cart from its store and republishes it.
func (f *Facade) Reload(ctx context.Context) (*domain.Cart, error) {
	return f.run(ctx, "reload", func(ctx context.Context, s strategy, _ *domain.Cart) (*domain.Cart, error) {
		return s.load(ctx)
	})
}

// Add puts one unit of p in the cart. When the line already holds all
// available stock the call is a silent no-op.
func (f *Facade) Add(ctx context.Context, p *domain.Product) (*domain.Cart, error) {
	return f.run(ctx, "add", func(ctx context.Context, s strategy, cur *domain.Cart) (*domain.Cart, error) {
		if !p.CanIncrement(cur.QuantityOf(p.ID)) {
			return cur, nil
		}
		return s.add(ctx, cur, p)
	})
}

// SetQuantity changes the quantity of p's line by delta. Increments beyond
// stock are silent no-ops; a line reaching 0 is removed.
func (f *Facade) SetQuantity(ctx context.Context, p *domain.Product, delta int) (*domain.Cart, error) {
	return f.run(ctx, "set_quantity", func(ctx context.Context, s strategy, cur *domain.Cart) (*domain.Cart, error) {
		current := cur.QuantityOf(p.ID)
		if delta == 0 || current == 0 {
			return cur, nil
		}
		if delta > 0 && !p.CanIncrement(current+delta-1) {
			return cur, nil
		}
		return s.setQuantity(ctx, cur, p.ID, delta)
	})
}

// Remove drops the line for productID.
func (f *Facade) Remove(ctx context.Context, productID int64) (*domain.Cart, error) {
	return f.run(ctx, "remove", func(ctx context.Context, s strategy, cur *domain.Cart) (*domain.Cart, error) {
		if cur.Find(productID) < 0 {
			return cur, nil
		}
		return s.remove(ctx, cur, productID)
	})
}

// Clear empties the cart.
func (f *Facade) Clear(ctx context.Context) (*domain.Cart, error) {
	return f.run(ctx, "clear", func(ctx context.Context, s strategy, cur *domain.Cart) (*domain.Cart, error) {
		return s.clear(ctx, cur)
	})
}
