package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/careline/complaint-portal/internal/api/http/handlers"
	"github.com/careline/complaint-portal/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Escalations    *handlers.EscalationsHandler
	Units          *handlers.UnitsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	// public intake form submission
	app.Post("/tickets", cfg.Tickets.CreateTicket)
	app.Get("/units", cfg.Units.ListUnits)

	protected := app.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/tickets", cfg.Tickets.ListTickets)
	protected.Get("/tickets/by-unit/:unitId", cfg.Tickets.ListTicketsByUnit)
	protected.Post("/tickets/:id/escalate", cfg.Escalations.Escalate)
	protected.Get("/tickets/:id/escalations", cfg.Escalations.ListEscalations)
	protected.Get("/tickets/:id/escalation-units", cfg.Escalations.ListEscalationUnits)
	protected.Patch("/escalation-units/:id/status", cfg.Escalations.UpdateUnitStatus)
	protected.Post("/tickets/:id/respond", cfg.Tickets.Respond)
	protected.Get("/tickets/:id/responses", cfg.Tickets.ListResponses)
	protected.Post("/tickets/:id/flag", cfg.Tickets.Flag)
}
