package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-bot/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health *handlers.HealthHandler
	Ops    *handlers.OpsHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	ops := app.Group("/ops")
	ops.Get("/tickets", cfg.Ops.Tickets)
	ops.Get("/metrics", cfg.Ops.Metrics)
	ops.Get("/settings/:key", cfg.Ops.GetSetting)
	ops.Put("/settings/:key", cfg.Ops.PutSetting)
}
