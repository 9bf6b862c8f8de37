package mockapi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/slimeyayush/altair-frontend/pkg/middleware"
)

const tokenIssuer = "altair-mockapi"

// AdminClaims are the claims of a back-office access token.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Tokens issues and validates HS256 admin tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens creates a token manager.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for username.
func (t *Tokens) Issue(username string) (string, error) {
	now := t.now().UTC()
	claims := &AdminClaims{
		Role: middleware.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			Issuer:    tokenIssuer,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign admin token: %w", err)
	}
	return signed, nil
}

// Parse validates a token and returns its claims.
func (t *Tokens) Parse(token string) (*AdminClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &AdminClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, fmt.Errorf("parse admin token: %w", err)
	}

	claims, ok := parsed.Claims.(*AdminClaims)
	if !ok || !parsed.Valid || claims.Role != middleware.RoleAdmin {
		return nil, errors.New("invalid admin token claims")
	}
	return claims, nil
}

// Validator resolves bearer tokens for middleware.Auth. Admin JWTs whose
// account still exists map to RoleAdmin; a member uid maps to RoleMember.
func Validator(tokens *Tokens, store *Store) middleware.TokenValidator {
	return func(_ context.Context, token string) (*middleware.Claims, error) {
		if claims, err := tokens.Parse(token); err == nil {
			if !store.HasAdmin(claims.Subject) {
				return nil, errors.New("admin account no longer exists")
			}
			return &middleware.Claims{Subject: claims.Subject, Role: middleware.RoleAdmin}, nil
		}
		if store.IsMember(token) {
			return &middleware.Claims{Subject: token, Role: middleware.RoleMember}, nil
		}
		return nil, errors.New("unknown token")
	}
}
