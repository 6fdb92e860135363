package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Complaints     *handlers.ComplaintsHandler
	Notifications  *handlers.NotificationsHandler
	Analytics      *handlers.AnalyticsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        http.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	authProtected.Post("/logout", cfg.Auth.Logout)
	authProtected.Get("/me", cfg.Auth.Me)

	complaints := app.Group("/complaints", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	complaints.Post("/", cfg.Complaints.Create)
	complaints.Get("/", cfg.Complaints.List)
	complaints.Get("/stats", cfg.Complaints.Stats)
	complaints.Get("/recent", cfg.Complaints.Recent)
	complaints.Get("/:id", cfg.Complaints.Get)
	complaints.Patch("/:id/status", auth.RequireRole(domain.RoleStaff, domain.RoleAdmin), cfg.Complaints.UpdateStatus)
	complaints.Post("/:id/feedback", cfg.Complaints.SubmitFeedback)
	complaints.Get("/:id/feedback", cfg.Complaints.GetFeedback)

	app.Get("/analytics", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin), cfg.Analytics.Get)

	notifications := app.Group("/notifications", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	notifications.Get("/", cfg.Notifications.List)
	notifications.Get("/preferences", cfg.Notifications.GetPreferences)
	notifications.Put("/preferences", cfg.Notifications.UpdatePreferences)
	notifications.Post("/broadcast", auth.RequireRole(domain.RoleAdmin), cfg.Notifications.Broadcast)
	notifications.Post("/:id/read", cfg.Notifications.MarkRead)
}
