package middleware

import (
	"fmt"
	"net/http"
)

// CacheControl marks anonymous GET responses cacheable for maxAge seconds.
// Authenticated responses (carts, orders) are always private.
func CacheControl(maxAge int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.Header.Get("Authorization") != "":
				w.Header().Set("Cache-Control", "private, no-store")
			case r.Method == http.MethodGet:
				w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAge))
			}
			next.ServeHTTP(w, r)
		})
	}
}
