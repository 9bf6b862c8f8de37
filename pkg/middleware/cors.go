package middleware

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// CORSConfig describes which browser origins may call the API.
type CORSConfig struct {
	// Origins are exact origins such as "https://altairmedical.in" or
	// patterns with a leading "*." label such as "https://*.altairmedical.in".
	// A lone "*" allows every origin.
	Origins []string
	Methods []string
	Headers []string
	Expose  []string
	MaxAge  time.Duration
	// LocalhostAnyPort admits http://localhost and http://127.0.0.1 on any
	// port, for the storefront's dev server.
	LocalhostAnyPort bool
}

// DefaultCORSConfig allows any origin with the methods and headers the
// storefront sends.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		Origins: []string{"*"},
		Methods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		Headers: []string{"Accept", "Authorization", "Content-Type", CorrelationHeader},
		Expose:  []string{CorrelationHeader},
		MaxAge:  10 * time.Minute,
	}
}

type corsPolicy struct {
	any       bool
	exact     map[string]struct{}
	suffixes  []string // "scheme://" + "." + domain
	localhost bool
}

func newCORSPolicy(cfg CORSConfig) corsPolicy {
	p := corsPolicy{exact: make(map[string]struct{}), localhost: cfg.LocalhostAnyPort}
	for _, o := range cfg.Origins {
		o = strings.ToLower(strings.TrimRight(strings.TrimSpace(o), "/"))
		switch {
		case o == "":
		case o == "*":
			p.any = true
		case strings.Contains(o, "://*."):
			scheme, host, _ := strings.Cut(o, "://*")
			p.suffixes = append(p.suffixes, scheme+"://"+host)
		default:
			p.exact[o] = struct{}{}
		}
	}
	return p
}

func (p corsPolicy) allows(origin string) bool {
	if p.any {
		return true
	}
	origin = strings.ToLower(origin)
	if _, ok := p.exact[origin]; ok {
		return true
	}
	for _, s := range p.suffixes {
		scheme, domain, _ := strings.Cut(s, "://")
		if strings.HasPrefix(origin, scheme+"://") && strings.HasSuffix(origin, domain) &&
			len(origin) > len(scheme)+3+len(domain) {
			return true
		}
	}
	if p.localhost {
		u, err := url.Parse(origin)
		if err == nil && u.Scheme == "http" && (u.Hostname() == "localhost" || u.Hostname() == "127.0.0.1") {
			return true
		}
	}
	return false
}

// CORS answers preflight requests and labels responses for allowed origins.
// Requests from other origins are served without CORS headers, so the
// browser blocks them.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	def := DefaultCORSConfig()
	if len(cfg.Methods) == 0 {
		cfg.Methods = def.Methods
	}
	if len(cfg.Headers) == 0 {
		cfg.Headers = def.Headers
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = def.MaxAge
	}

	policy := newCORSPolicy(cfg)
	methods := strings.Join(cfg.Methods, ", ")
	headers := strings.Join(cfg.Headers, ", ")
	expose := strings.Join(cfg.Expose, ", ")
	maxAge := strconv.Itoa(int(cfg.MaxAge / time.Second))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""

			h := w.Header()
			h.Add("Vary", "Origin")
			if origin == "" || !policy.allows(origin) {
				if preflight {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if policy.any {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Set("Access-Control-Allow-Origin", origin)
			}

			if preflight {
				h.Set("Access-Control-Allow-Methods", methods)
				h.Set("Access-Control-Allow-Headers", headers)
				h.Set("Access-Control-Max-Age", maxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}
			if expose != "" {
				h.Set("Access-Control-Expose-Headers", expose)
			}
			next.ServeHTTP(w, r)
		})
	}
}
