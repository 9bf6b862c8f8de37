package search

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slimeyayush/altair-frontend/internal/domain"
)

type recordingSearcher struct {
	mu      sync.Mutex
	queries []string
	block   chan struct{}
}

func (s *recordingSearcher) Search(ctx context.Context, query string) []domain.Product {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	block := s.block
	s.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil
		}
	}
	return []domain.Product{{ID: 1, Name: query}}
}

func (s *recordingSearcher) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func collect(d *Debouncer) chan Result {
	ch := make(chan Result, 8)
	d.Subscribe(func(r Result) { ch <- r })
	return ch
}

func TestDebouncer_OnlyLastQueryRuns(t *testing.T) {
	s := &recordingSearcher{}
	d := New(context.Background(), s, 40*time.Millisecond, newTestLogger())
	defer d.Close()
	results := collect(d)

	d.Input("abc")
	time.Sleep(10 * time.Millisecond)
	d.Input("abcd")

	select {
	case r := <-results:
		assert.Equal(t, "abcd", r.Query)
		require.Len(t, r.Products, 1)
	case <-time.After(time.Second):
		t.Fatal("no result delivered")
	}

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, []string{"abcd"}, s.calls())
	assert.Empty(t, results)
}

func TestDebouncer_WaitsForDelay(t *testing.T) {
	s := &recordingSearcher{}
	d := New(context.Background(), s, 60*time.Millisecond, newTestLogger())
	defer d.Close()

	d.Input("mask")
	time.Sleep(20 * time.Millisecond)

	assert.Empty(t, s.calls())
	require.Eventually(t, func() bool { return len(s.calls()) == 1 }, time.Second, 5*time.Millisecond)
}

func TestDebouncer_BlankCancelsPending(t *testing.T) {
	s := &recordingSearcher{}
	d := New(context.Background(), s, 30*time.Millisecond, newTestLogger())
	defer d.Close()

	d.Input("walker")
	d.Input("   ")

	time.Sleep(80 * time.Millisecond)
	assert.Empty(t, s.calls())
}

func TestDebouncer_NewInputCancelsInFlight(t *testing.T) {
	s := &recordingSearcher{block: make(chan struct{})}
	d := New(context.Background(), s, 10*time.Millisecond, newTestLogger())
	defer d.Close()
	results := collect(d)

	d.Input("first")
	require.Eventually(t, func() bool { return len(s.calls()) == 1 }, time.Second, 2*time.Millisecond)

	s.mu.Lock()
	s.block = nil
	s.mu.Unlock()
	d.Input("second")

	select {
	case r := <-results:
		assert.Equal(t, "second", r.Query)
	case <-time.After(time.Second):
		t.Fatal("no result delivered")
	}
	assert.Empty(t, results, "the cancelled search must not deliver")
}

func TestDebouncer_DefaultDelay(t *testing.T) {
	d := New(context.Background(), &recordingSearcher{}, 0, newTestLogger())
	assert.Equal(t, DefaultDelay, d.delay)
	assert.Equal(t, 300*time.Millisecond, DefaultDelay)
}

func TestDebouncer_CloseIgnoresInput(t *testing.T) {
	s := &recordingSearcher{}
	d := New(context.Background(), s, 10*time.Millisecond, newTestLogger())
	d.Close()

	d.Input("late")

	time.Sleep(40 * time.Millisecond)
	assert.Empty(t, s.calls())
}
