package cart

import (
	"context"

	"github.com/slimeyayush/altair-frontend/internal/domain"
)

// strategy applies cart operations for one kind of session. The Facade picks
// one per session transition.
type strategy interface {
	load(ctx context.Context) (*domain.Cart, error)
	add(ctx context.Context, cur *domain.Cart, p *domain.Product) (*domain.Cart, error)
	setQuantity(ctx context.Context, cur *domain.Cart, productID int64, delta int) (*domain.Cart, error)
	remove(ctx context.Context, cur *domain.Cart, productID int64) (*domain.Cart, error)
	clear(ctx context.Context, cur *domain.Cart) (*domain.Cart, error)
}

// guestStrategy mutates a copy of the cart and saves it locally.
type guestStrategy struct {
	local *LocalStore
}

func (g guestStrategy) load(ctx context.Context) (*domain.Cart, error) {
	return g.local.Load(ctx), nil
}

func (g guestStrategy) commit(ctx context.Context, next *domain.Cart) (*domain.Cart, error) {
	if err := g.local.Save(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

func (g guestStrategy) add(ctx context.Context, cur *domain.Cart, p *domain.Product) (*domain.Cart, error) {
	next := cur.Clone()
	next.Increment(p)
	return g.commit(ctx, next)
}

func (g guestStrategy) setQuantity(ctx context.Context, cur *domain.Cart, productID int64, delta int) (*domain.Cart, error) {
	next := cur.Clone()
	next.Adjust(productID, delta)
	return g.commit(ctx, next)
}

func (g guestStrategy) remove(ctx context.Context, cur *domain.Cart, productID int64) (*domain.Cart, error) {
	next := cur.Clone()
	next.Remove(productID)
	return g.commit(ctx, next)
}

func (g guestStrategy) clear(ctx context.Context, _ *domain.Cart) (*domain.Cart, error) {
	return g.commit(ctx, domain.NewCart())
}

// memberStrategy forwards every operation to the backend.
type memberStrategy struct {
	remote *RemoteStore
}

func (m memberStrategy) load(ctx context.Context) (*domain.Cart, error) {
	return m.remote.Fetch(ctx)
}

func (m memberStrategy) add(ctx context.Context, _ *domain.Cart, p *domain.Product) (*domain.Cart, error) {
	return m.remote.AddItem(ctx, p.ID)
}

func (m memberStrategy) setQuantity(ctx context.Context, _ *domain.Cart, productID int64, delta int) (*domain.Cart, error) {
	return m.remote.SetQuantity(ctx, productID, delta)
}

func (m memberStrategy) remove(ctx context.Context, _ *domain.Cart, productID int64) (*domain.Cart, error) {
	return m.remote.RemoveItem(ctx, productID)
}

func (m memberStrategy) clear(ctx context.Context, _ *domain.Cart) (*domain.Cart, error) {
	return m.remote.Clear(ctx)
}
