package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bookshelf-auth/internal/domain"
	apperrors "github.com/spec-kit/bookshelf-auth/pkg/util/errorutil"
)

// RouteGuard applies the page gating table before any handler runs.
func RouteGuard() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var role *domain.Role
		if principal, ok := PrincipalFromContext(c); ok {
			role = &principal.Role
		}
		decision := Decide(role, ClassifyPath(c.Path()))
		if decision == Allow {
			return c.Next()
		}
		return c.Redirect(decision.Target(), fiber.StatusFound)
	}
}

// RequireSession ensures the caller presented a valid session.
func RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return ErrTokenRequired
		}
		return c.Next()
	}
}

// RequireRole gates an API route on TokenManager.RequireRole.
func (m *SessionMiddleware) RequireRole(min domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := m.TokenFromRequest(c)
		if token == "" {
			return ErrTokenRequired
		}
		if !m.tokens.RequireRole(token, min) {
			if _, ok := PrincipalFromContext(c); !ok {
				return apperrors.NewUnauthorized("invalid session")
			}
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
