// Package search debounces as-you-type product search.
package search

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/slimeyayush/altair-frontend/internal/domain"
)

// DefaultDelay is how long input must settle before a search runs.
const DefaultDelay = 300 * time.Millisecond

// Searcher runs one search. catalog.Service satisfies it.
type Searcher interface {
	Search(ctx context.Context, query string) []domain.Product
}

// Result is delivered to subscribers when a search completes.
type Result struct {
	Query    string           `json:"query"`
	Products []domain.Product `json:"products"`
}

// Debouncer keeps at most one timer outstanding. Each Input cancels the
// pending timer and any search still in flight.
type Debouncer struct {
	searcher Searcher
	delay    time.Duration
	logger   *slog.Logger
	parent   context.Context

	mu     sync.Mutex
	gen    uint64
	timer  *time.Timer
	cancel context.CancelFunc
	subs   map[int]func(Result)
	nextID int
	closed bool
}

// New creates a Debouncer. Searches run under ctx; a non-positive delay uses
// DefaultDelay.
func New(ctx context.Context, searcher Searcher, delay time.Duration, logger *slog.Logger) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{
		searcher: searcher,
		delay:    delay,
		logger:   logger,
		parent:   ctx,
		subs:     make(map[int]func(Result)),
	}
}

// Subscribe registers fn for results and returns its cancel func.
func (d *Debouncer) Subscribe(fn func(Result)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextID
	d.nextID++
	d.subs[id] = fn
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.subs, id)
	}
}

// Input records a keystroke. A blank query cancels pending work and does
// nothing else.
func (d *Debouncer) Input(query string) {
	query = strings.TrimSpace(query)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.stopLocked()
	if query == "" {
		return
	}

	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen, query) })
}

// Cancel drops the pending timer and any in-flight search.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

// Close cancels pending work and ignores further input.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.closed = true
}

func (d *Debouncer) stopLocked() {
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

func (d *Debouncer) fire(gen uint64, query string) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(d.parent)
	d.timer = nil
	d.cancel = cancel
	d.mu.Unlock()
	defer cancel()

	d.logger.DebugContext(ctx, "search fired", slog.String("query", query))
	products := d.searcher.Search(ctx, query)

	d.mu.Lock()
	if gen != d.gen || ctx.Err() != nil {
		d.mu.Unlock()
		return
	}
	d.cancel = nil
	subs := make([]func(Result), 0, len(d.subs))
	for i := 0; i < d.nextID; i++ {
		if fn, ok := d.subs[i]; ok {
			subs = append(subs, fn)
		}
	}
	d.mu.Unlock()

	res := Result{Query: query, Products: products}
	for _, fn := range subs {
		fn(res)
	}
}
