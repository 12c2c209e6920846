// Package auth issues and verifies the signed bearer tokens used by admins and customers.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the kind of principal a token was issued to.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

const issuer = "storefront"

// ErrWrongRole is returned when a valid token carries another role.
var ErrWrongRole = errors.New("token role mismatch")

// Claims are the storefront JWT claims.
type Claims struct {
	jwt.RegisteredClaims
	Role  Role   `json:"role"`
	Email string `json:"email,omitempty"`
}

// TokenManager signs and validates HS256 tokens for one role.
type TokenManager struct {
	secret []byte
	role   Role
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a token manager for role.
func NewTokenManager(secret string, role Role, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		role:   role,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a token for subject. It returns the token and its expiry.
func (tm *TokenManager) Issue(subject, email string) (string, time.Time, error) {
	now := tm.now().UTC()
	expires := now.Add(tm.ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Role:  tm.role,
		Email: email,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expires, nil
}

// Validate parses tokenString and checks its signature, expiry and role.
func (tm *TokenManager) Validate(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return tm.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.Role != tm.role {
		return nil, ErrWrongRole
	}
	return claims, nil
}

// CheckPassword compares a supplied password with the configured one in constant time.
func CheckPassword(configured, supplied string) bool {
	if configured == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(configured), []byte(supplied)) == 1
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

type claimsKey struct{}

// WithClaims stores claims in ctx.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the claims stored by WithClaims.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*Claims)
	return claims, ok && claims != nil
}

// UserID returns the customer subject from ctx, or "" for guests.
func UserID(ctx context.Context) string {
	claims, ok := ClaimsFromContext(ctx)
	if !ok || claims.Role != RoleCustomer {
		return ""
	}
	return claims.Subject
}
