package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// buckets holds one token bucket per client and forgets clients idle for
// longer than ttl.
type buckets struct {
	mu    sync.Mutex
	byKey map[string]*bucket
	every rate.Limit
	burst int
	ttl   time.Duration
	now   func() time.Time
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

func newBuckets(every rate.Limit, burst int, ttl time.Duration) *buckets {
	return &buckets{byKey: make(map[string]*bucket), every: every, burst: burst, ttl: ttl, now: time.Now}
}

// take spends a token for key. When none is left it reports how long until
// one is.
func (b *buckets) take(key string) (ok bool, wait time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	for k, v := range b.byKey {
		if now.Sub(v.seen) > b.ttl {
			delete(b.byKey, k)
		}
	}
	bk, found := b.byKey[key]
	if !found {
		bk = &bucket{lim: rate.NewLimiter(b.every, b.burst)}
		b.byKey[key] = bk
	}
	bk.seen = now

	res := bk.lim.ReserveN(now, 1)
	if d := res.DelayFrom(now); d > 0 {
		res.CancelAt(now)
		return false, d
	}
	return true, 0
}

func (b *buckets) size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.byKey)
}

// RateLimit allows each client address perMinute requests with the given
// burst. Rejected requests get 429 with Retry-After. The dev backend mounts
// it on the admin login route.
func RateLimit(perMinute, burst int, logger *slog.Logger) func(http.Handler) http.Handler {
	b := newBuckets(rate.Limit(float64(perMinute)/60), burst, 10*time.Minute)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)
			ok, wait := b.take(key)
			if !ok {
				secs := int(math.Ceil(wait.Seconds()))
				logger.WarnContext(r.Context(), "login throttled",
					slog.String("client", key),
					slog.Int("retry_after_s", secs),
				)
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				writeJSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many attempts, try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey is the peer address without its port. The dev backend is not
// deployed behind a proxy, so forwarding headers are ignored.
func clientKey(r *http.Request) string {
	if a, ok := remoteAddr(r); ok {
		return a.String()
	}
	return r.RemoteAddr
}
