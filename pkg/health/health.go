// Package health runs dependency checks for the dev backend's probes and the
// storefront's doctor command.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// Check reports whether one dependency is usable.
type Check func(ctx context.Context) error

type Status string

const (
	StatusUp       Status = "up"
	StatusDown     Status = "down"
	StatusDegraded Status = "degraded"
)

// Result is the outcome of one check.
type Result struct {
	Name      string `json:"name"`
	Status    Status `json:"status"`
	Critical  bool   `json:"critical"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// Report is the outcome of a full run. Checks are sorted by name.
type Report struct {
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Checks    []Result  `json:"checks,omitempty"`
}

type entry struct {
	check    Check
	critical bool
}

// Registry holds named checks. Adding a name twice replaces the first check.
type Registry struct {
	mu      sync.RWMutex
	checks  map[string]entry
	timeout time.Duration
}

// New creates a registry whose runs are bounded by timeout.
func New(timeout time.Duration) *Registry {
	return &Registry{checks: make(map[string]entry), timeout: timeout}
}

// Add registers check. A failing critical check makes the report down; a
// failing non-critical one only degrades it.
func (g *Registry) Add(name string, critical bool, check Check) {
	g.mu.Lock()
	g.checks[name] = entry{check: check, critical: critical}
	g.mu.Unlock()
}

// Run executes every check concurrently.
func (g *Registry) Run(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	g.mu.RLock()
	results := make([]Result, 0, len(g.checks))
	entries := make([]entry, 0, len(g.checks))
	for name, e := range g.checks {
		results = append(results, Result{Name: name, Critical: e.critical})
		entries = append(entries, e)
	}
	g.mu.RUnlock()

	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(res *Result, check Check) {
			defer wg.Done()
			start := time.Now()
			err := check(ctx)
			res.LatencyMS = time.Since(start).Milliseconds()
			res.Status = StatusUp
			if err != nil {
				res.Status = StatusDown
				res.Error = err.Error()
			}
		}(&results[i], entries[i].check)
	}
	wg.Wait()
	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })

	return Report{Status: overall(results), Timestamp: time.Now().UTC(), Checks: results}
}

func overall(results []Result) Status {
	status := StatusUp
	for _, res := range results {
		switch {
		case res.Status != StatusDown:
		case res.Critical:
			return StatusDown
		default:
			status = StatusDegraded
		}
	}
	return status
}

// Mount registers /healthz, which answers while the process runs, and
// /readyz, which answers 503 when a critical check fails.
func (g *Registry) Mount(r chi.Router) {
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		write(w, http.StatusOK, Report{Status: StatusUp, Timestamp: time.Now().UTC()})
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		rep := g.Run(r.Context())
		code := http.StatusOK
		if rep.Status == StatusDown {
			code = http.StatusServiceUnavailable
		}
		write(w, code, rep)
	})
}

func write(w http.ResponseWriter, status int, rep Report) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(rep)
}
