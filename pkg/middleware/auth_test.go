package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func staticValidator(ctx context.Context, token string) (*Claims, error) {
	switch token {
	case "admin-token":
		return &Claims{Subject: "root", Role: RoleAdmin}, nil
	case "uid-1":
		return &Claims{Subject: "uid-1", Role: RoleMember}, nil
	}
	return nil, errors.New("unknown token")
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		status  int
		subject string
	}{
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, ""},
		{"empty token", "Bearer  ", http.StatusUnauthorized, ""},
		{"invalid token", "Bearer nope", http.StatusUnauthorized, ""},
		{"member", "Bearer uid-1", http.StatusOK, "uid-1"},
		{"case insensitive scheme", "bearer admin-token", http.StatusOK, "root"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var subject string
			h := Auth(staticValidator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				subject = SubjectFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.subject, subject)
			if tt.status == http.StatusUnauthorized {
				assert.Contains(t, rec.Body.String(), `"code":"UNAUTHORIZED"`)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	h := Auth(staticValidator)(RequireRole(RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer uid-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req.Header.Set("Authorization", "Bearer admin-token")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
