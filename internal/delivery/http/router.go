package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all HTTP routes. A nil gatherer leaves /metrics unmounted.
func SetupRoutes(app *fiber.App, handler *Handler, gatherer prometheus.Gatherer) {
	app.Get("/", handler.Root)

	// Health check
	app.Get("/health", handler.HealthCheck)

	if gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	// API v1 routes
	api := app.Group("/api/v1")
	{
		api.Get("/ml/status", handler.MLStatus)

		// Zone registry
		api.Get("/zones", handler.GetZones)
		api.Get("/zones/nearby", handler.NearbyZones)
		api.Get("/zones/:id", handler.GetZone)

		// Occupancy forecasts
		api.Post("/predict", handler.Predict)
		api.Get("/predict/overview", handler.PredictOverview)

		// Event catalog
		api.Get("/events", handler.GetEvents)
		api.Get("/events/:id", handler.GetEvent)
	}
}
