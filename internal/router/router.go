package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/skilltrack/rubric-api/internal/config"
	"github.com/skilltrack/rubric-api/internal/handler"
	"github.com/skilltrack/rubric-api/internal/middleware"
	"github.com/skilltrack/rubric-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	PolicyHandler  *handler.PolicyHandler
	GradingHandler *handler.GradingHandler
	JWTMiddleware  fiber.Handler
	SubmitLimiter  fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	staffOnly := middleware.RequireRole("staff", "teacher", "admin", "instructor")

	assignments := api.Group("/assignments", jwtMiddleware)
	if deps.PolicyHandler != nil {
		deps.PolicyHandler.Register(assignments, staffOnly)
	}
	if deps.GradingHandler != nil {
		deps.GradingHandler.Register(assignments, staffOnly, deps.SubmitLimiter)
	}
}
