package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/escalation-engine/internal/api/http/handlers"
	"github.com/spec-kit/escalation-engine/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Escalations    *handlers.EscalationHandler
	Rules          *handlers.RulesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	escalations := app.Group("/escalations", cfg.AuthMiddleware.Handle)

	triggers := escalations.Group("", auth.RequireRole(auth.RoleTeamLead, auth.RoleAdmin))
	triggers.Post("/run", cfg.Escalations.RunBatch)
	triggers.Post("/tickets/:id/run", cfg.Escalations.RunForTicket)
	triggers.Get("/tickets/:id/history", cfg.Escalations.ListTicketHistory)

	rules := escalations.Group("/rules", auth.RequireRole(auth.RoleAdmin))
	rules.Get("/", cfg.Rules.ListRules)
	rules.Post("/", cfg.Rules.CreateRule)
	rules.Get("/:id", cfg.Rules.GetRule)
	rules.Put("/:id", cfg.Rules.UpdateRule)
	rules.Patch("/:id/active", cfg.Rules.SetRuleActive)
}
