package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/bookshelf-auth/internal/domain"
)

const (
	principalKey = "auth_principal"

	// RenewedTokenHeader carries a re-issued token for clients that do not
	// use the cookie.
	RenewedTokenHeader = "X-Session-Token"
)

// Principal represents the authenticated caller.
type Principal struct {
	UserID    string
	Role      domain.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// SessionMiddleware resolves the session token on every request. It never
// rejects a request itself: an absent or invalid token leaves the request
// anonymous, and gating is left to RouteGuard and RequireRole.
type SessionMiddleware struct {
	tokens *TokenManager
	cookie CookieConfig
	logger *zap.Logger
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(tokens *TokenManager, cookie CookieConfig, logger *zap.Logger) *SessionMiddleware {
	if cookie.Name == "" {
		cookie.Name = "session_token"
	}
	return &SessionMiddleware{tokens: tokens, cookie: cookie, logger: logger}
}

// Handle decodes the presented token and stores the principal.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	tokenStr := m.TokenFromRequest(c)
	if tokenStr == "" {
		return c.Next()
	}

	claims, err := m.tokens.Validate(tokenStr)
	if err != nil {
		if errors.Is(err, ErrBadSignature) {
			m.logger.Warn("rejected session token", zap.String("path", c.Path()), zap.Error(err))
		}
		m.ClearCookie(c)
		return c.Next()
	}

	principal := &Principal{
		UserID:    claims.UserID(),
		Role:      claims.Role,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}

	renewed, ok, err := m.tokens.MaybeRenew(claims)
	switch {
	case err != nil:
		m.logger.Warn("session renewal failed", zap.String("user_id", principal.UserID), zap.Error(err))
	case ok:
		m.SetCookie(c, renewed)
		c.Set(RenewedTokenHeader, renewed.Value)
		principal.IssuedAt = renewed.ExpiresAt.Add(-m.tokens.Lifetime())
		principal.ExpiresAt = renewed.ExpiresAt
	}

	c.Locals(principalKey, principal)
	return c.Next()
}

// TokenFromRequest reads the bearer token from the Authorization header,
// falling back to the session cookie.
func (m *SessionMiddleware) TokenFromRequest(c *fiber.Ctx) string {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return c.Cookies(m.cookie.Name)
}

// SetCookie stores the token in an HTTP-only cookie.
func (m *SessionMiddleware) SetCookie(c *fiber.Ctx, token domain.SessionToken) {
	c.Cookie(&fiber.Cookie{
		Name:     m.cookie.Name,
		Value:    token.Value,
		Path:     "/",
		Expires:  token.ExpiresAt,
		MaxAge:   int(time.Until(token.ExpiresAt).Seconds()),
		Secure:   m.cookie.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie on the client.
func (m *SessionMiddleware) ClearCookie(c *fiber.Ctx) {
	if c.Cookies(m.cookie.Name) == "" {
		return
	}
	c.Cookie(&fiber.Cookie{
		Name:     m.cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Secure:   m.cookie.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
