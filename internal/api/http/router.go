package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/identity-service/internal/api/http/handlers"
	"github.com/spec-kit/identity-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Auth           *handlers.AuthHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes. Account creation and login are
// public; everything else requires a live session token.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle)
	authProtected.Get("/session", cfg.Auth.Session)
	authProtected.Post("/logout", cfg.Auth.Logout)
	authProtected.Post("/password/change", cfg.Auth.ChangePassword)

	users := app.Group("/users")
	users.Post("", cfg.Users.Create)

	usersProtected := users.Group("", cfg.AuthMiddleware.Handle)
	usersProtected.Get("", cfg.Users.List)
	usersProtected.Get("/:id", cfg.Users.Get)
	usersProtected.Patch("/:id", cfg.Users.Update)
	usersProtected.Delete("/:id", cfg.Users.Delete)
}
