package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/subscription-service/internal/api/http/handlers"
	"github.com/spec-kit/subscription-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Auth            *handlers.AuthHandler
	Admin           *handlers.AdminHandler
	Subscriptions   *handlers.SubscriptionsHandler
	AdminMiddleware *auth.AdminMiddleware
	MetricsGatherer prometheus.Gatherer
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.MetricsGatherer, promhttp.HandlerOpts{})))

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)

	adminGroup := app.Group("/admin")
	adminGroup.Post("/login", cfg.Admin.Login)
	plansGroup := adminGroup.Group("/plans", cfg.AdminMiddleware.Handle)
	plansGroup.Post("/", cfg.Admin.CreatePlan)
	plansGroup.Get("/", cfg.Admin.ListPlans)
	plansGroup.Put("/:planId", cfg.Admin.UpdatePlan)
	plansGroup.Delete("/:planId", cfg.Admin.DeletePlan)

	// fixed paths must precede the :userId wildcard
	subsGroup := app.Group("/subscriptions")
	subsGroup.Get("/stats", cfg.Subscriptions.Stats)
	subsGroup.Get("/plans", cfg.Subscriptions.ListPlans)
	subsGroup.Post("/", cfg.Subscriptions.Create)
	subsGroup.Get("/:userId", cfg.Subscriptions.GetActive)
	subsGroup.Put("/:userId", cfg.Subscriptions.Update)
	subsGroup.Delete("/:userId", cfg.Subscriptions.Cancel)
	subsGroup.Get("/:userId/history", cfg.Subscriptions.History)
}
