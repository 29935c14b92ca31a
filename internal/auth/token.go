package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/bookshelf-auth/internal/domain"
)

const (
	DefaultSessionLifetime = 30 * 24 * time.Hour
	DefaultRenewalWindow   = 24 * time.Hour
)

// TokenManager issues and validates signed session tokens. Validation is a
// pure function of the token, the secret and the clock; it is safe for
// concurrent use.
type TokenManager struct {
	secret        []byte
	lifetime      time.Duration
	renewalWindow time.Duration
	now           func() time.Time
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, lifetime, renewalWindow time.Duration) *TokenManager {
	if lifetime <= 0 {
		lifetime = DefaultSessionLifetime
	}
	if renewalWindow <= 0 || renewalWindow >= lifetime {
		renewalWindow = DefaultRenewalWindow
	}
	return &TokenManager{
		secret:        []byte(secret),
		lifetime:      lifetime,
		renewalWindow: renewalWindow,
		now:           time.Now,
	}
}

// Claims describes the session token payload. Subject carries the identity id.
type Claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// UserID returns the identity the token was issued to.
func (c *Claims) UserID() string {
	return c.Subject
}

// Lifetime returns the configured session lifetime.
func (tm *TokenManager) Lifetime() time.Duration {
	return tm.lifetime
}

// Issue builds and signs a token for the identity.
func (tm *TokenManager) Issue(userID string, role domain.Role) (domain.SessionToken, error) {
	now := tm.now()
	expiresAt := now.Add(tm.lifetime)
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return domain.SessionToken{}, fmt.Errorf("signing session token: %w", err)
	}
	return domain.SessionToken{Value: tokenString, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Validate verifies the signature and expiry and returns the claims.
// Any malformed or tampered token yields ErrBadSignature.
func (tm *TokenManager) Validate(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrTokenRequired
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(_ *jwt.Token) (any, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrBadSignature, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrBadSignature
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: incomplete claims", ErrBadSignature)
	}
	return claims, nil
}

// MaybeRenew re-issues a token when the claims are still valid but expire
// within the renewal window. ok is false when no renewal is due.
func (tm *TokenManager) MaybeRenew(claims *Claims) (token domain.SessionToken, ok bool, err error) {
	if claims == nil || claims.ExpiresAt == nil {
		return domain.SessionToken{}, false, nil
	}
	remaining := claims.ExpiresAt.Time.Sub(tm.now())
	if remaining <= 0 || remaining >= tm.renewalWindow {
		return domain.SessionToken{}, false, nil
	}
	token, err = tm.Issue(claims.Subject, claims.Role)
	if err != nil {
		return domain.SessionToken{}, false, err
	}
	return token, true, nil
}

// RequireRole reports whether the token is valid and grants at least min.
// It is the authorisation predicate offered to the rest of the application.
func (tm *TokenManager) RequireRole(tokenStr string, min domain.Role) bool {
	claims, err := tm.Validate(tokenStr)
	if err != nil {
		return false
	}
	return claims.Role.AtLeast(min)
}
