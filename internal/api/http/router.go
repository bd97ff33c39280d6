package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-portal/internal/api/http/handlers"
	"github.com/spec-kit/complaint-portal/internal/auth"
	"github.com/spec-kit/complaint-portal/internal/domain"
	"github.com/spec-kit/complaint-portal/internal/observability"
)

// DomainRoutes holds the handlers serving one complaint domain.
type DomainRoutes struct {
	Complaints *handlers.ComplaintsHandler
	AdminAuth  *handlers.AdminAuthHandler
}

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Domains map[domain.Domain]DomainRoutes
	Metrics *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics.Handler())
	}

	api := app.Group("/api")
	for _, d := range domain.Domains {
		routes, ok := cfg.Domains[d]
		if !ok {
			continue
		}
		name := string(d)

		authGroup := api.Group("/auth/" + name + "-admin")
		authGroup.Post("/signup", routes.AdminAuth.Signup)
		authGroup.Post("/login", routes.AdminAuth.Login)

		complaints := api.Group("/" + name + "-complaints")
		complaints.Post("/", routes.Complaints.Submit)
		complaints.Get("/", auth.RequireBearer(), routes.Complaints.List)
		complaints.Get("/:id", auth.RequireBearer(), routes.Complaints.Get)
		complaints.Patch("/:id/status", auth.RequireBearer(), routes.Complaints.UpdateStatus)
	}
}
