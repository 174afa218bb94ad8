package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/corvidhq/copilot-api/internal/middleware"
)

// registerRoutes wires all handlers into the app.
//
// Route groups:
//   - /api/v1      API-key authenticated copilot surface
//   - /api/v1/scores/stats  JWT-guarded analytics for the dashboard
//   - /internal/v1 JWT-guarded key management
func registerRoutes(app *fiber.App, deps *Dependencies) {
	deps.HealthHandler.RegisterRoutes(app)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/v1", middleware.APIKeyAuth(deps.AuthService))
	if deps.Config.RateLimit.Enabled {
		api.Use(deps.RateLimitMiddleware.APIKeyRateLimit(deps.Config.RateLimit.RequestsPerMinute))
	}

	deps.CandidatesHandler.RegisterRoutes(api)
	deps.RolesHandler.RegisterRoutes(api)
	deps.MatchingHandler.RegisterRoutes(api)
	deps.ScoringHandler.RegisterRoutes(api)
	deps.TrainingHandler.RegisterRoutes(api)

	stats := app.Group("/api/v1", middleware.JWTAuth(deps.AuthService))
	deps.ScoringHandler.RegisterStatsRoutes(stats)

	internal := app.Group("/internal/v1", middleware.JWTAuth(deps.AuthService))
	deps.APIKeysHandler.RegisterRoutes(internal)
}
