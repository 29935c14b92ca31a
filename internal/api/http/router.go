package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bookshelf-auth/internal/api/http/handlers"
	"github.com/spec-kit/bookshelf-auth/internal/auth"
	"github.com/spec-kit/bookshelf-auth/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Auth    *handlers.AuthHandler
	Session *auth.SessionMiddleware
}

// RegisterRoutes wires HTTP routes. The session middleware and the page
// guard run for every request, before any route handler.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.Session.Handle)
	app.Use(auth.RouteGuard())

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Get("/metrics", cfg.Session.RequireRole(domain.RoleAdmin), cfg.Health.Metrics)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/request-code", cfg.Auth.RequestCode)
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Get("/session", auth.RequireSession(), cfg.Auth.Session)

	admin := api.Group("/admin", cfg.Session.RequireRole(domain.RoleAdmin))
	admin.Get("/users/:id", cfg.Auth.AdminGetUser)
}
