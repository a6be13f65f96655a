package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/smartcity/parking/internal/domain"
	"github.com/smartcity/parking/internal/service"
)

// HistoryInfo describes the loaded historical dataset
type HistoryInfo interface {
	Range() (time.Time, time.Time)
	Len() int
	Zones() []string
}

// Handler contains all HTTP handlers
type Handler struct {
	forecasts *service.ForecastService
	registry  *service.ZoneRegistry
	events    *service.EventCatalog
	history   HistoryInfo
	repo      service.DataRepository
}

// NewHandler creates a new handler
func NewHandler(
	forecasts *service.ForecastService,
	registry *service.ZoneRegistry,
	events *service.EventCatalog,
	history HistoryInfo,
	repo service.DataRepository,
) *Handler {
	return &Handler{
		forecasts: forecasts,
		registry:  registry,
		events:    events,
		history:   history,
		repo:      repo,
	}
}

// Root describes the API
func (h *Handler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "parking-forecast-api",
		"version": "1.0.0",
		"endpoints": []string{
			"/health",
			"/api/v1/ml/status",
			"/api/v1/zones",
			"/api/v1/predict",
			"/api/v1/predict/overview",
			"/api/v1/events",
		},
	})
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	database := "ok"
	if h.repo == nil {
		database = "disabled"
	} else if err := h.repo.Health(c.Context()); err != nil {
		database = "unavailable"
	}
	return c.JSON(fiber.Map{
		"status":   "ok",
		"service":  "parking-forecast-api",
		"version":  "1.0.0",
		"database": database,
	})
}

// MLStatus reports the serving model and the loaded history
func (h *Handler) MLStatus(c *fiber.Ctx) error {
	start, end := h.history.Range()
	model := h.forecasts.ModelName()
	data := fiber.Map{
		"model_loaded":       model != "",
		"model":              model,
		"observations":       h.history.Len(),
		"zones_with_history": len(h.history.Zones()),
		"registered_zones":   len(h.registry.Zones()),
	}
	if h.history.Len() > 0 {
		data["data_start"] = domain.FormatTimestamp(start)
		data["data_end"] = domain.FormatTimestamp(end)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// GetZones lists every registered zone
func (h *Handler) GetZones(c *fiber.Ctx) error {
	zones := h.registry.Zones()
	return c.JSON(domain.ZonesResponse{
		Data:    zones,
		Count:   len(zones),
		Success: true,
	})
}

// GetZone returns one zone by id
func (h *Handler) GetZone(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid zone id")
	}
	zone, err := h.registry.Resolve(id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    zone,
	})
}

// NearbyZones lists zones within radius_km of a point, closest first
func (h *Handler) NearbyZones(c *fiber.Ctx) error {
	if c.Query("lat") == "" || c.Query("lng") == "" {
		return fiber.NewError(fiber.StatusBadRequest, "lat and lng are required")
	}
	lat := c.QueryFloat("lat")
	lng := c.QueryFloat("lng")
	radius := c.QueryFloat("radius_km", 1.0)
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 || radius <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid coordinates or radius")
	}

	zones := h.registry.Nearby(lat, lng, radius)
	return c.JSON(fiber.Map{
		"success": true,
		"data":    zones,
		"count":   len(zones),
	})
}

// Predict forecasts occupancy for one zone
func (h *Handler) Predict(c *fiber.Ctx) error {
	var req domain.PredictionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if req.ZoneID <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "zone_id is required")
	}
	target, err := req.TargetTime()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	prediction, err := h.forecasts.Forecast(c.Context(), req.ZoneID, target)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    domain.NewPredictionResponse(prediction),
	})
}

// PredictOverview forecasts every zone at the same instant
func (h *Handler) PredictOverview(c *fiber.Ctx) error {
	target := time.Now().UTC().Truncate(time.Hour)
	if ts := c.Query("timestamp"); ts != "" {
		parsed, err := domain.ParseTimestamp(ts)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		target = parsed
	}

	predictions, err := h.forecasts.Overview(c.Context(), target)
	if err != nil {
		return err
	}

	data := make([]domain.PredictionResponse, len(predictions))
	for i, p := range predictions {
		data[i] = domain.NewPredictionResponse(p)
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"timestamp": domain.FormatTimestamp(target),
		"data":      data,
		"count":     len(data),
	})
}

// GetEvents lists events, optionally filtered by zone_id and date
func (h *Handler) GetEvents(c *fiber.Ctx) error {
	zoneID := c.QueryInt("zone_id", 0)
	date := c.Query("date")
	if date != "" {
		if _, err := time.Parse(time.DateOnly, date); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}
	}

	events := h.events.List(zoneID, date)
	return c.JSON(fiber.Map{
		"success": true,
		"data":    events,
		"count":   len(events),
	})
}

// GetEvent returns one event by id
func (h *Handler) GetEvent(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid event id")
	}
	event, err := h.events.Get(id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    event,
	})
}

// ErrorHandler renders errors as JSON, mapping domain errors to status codes
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
		message = fe.Message
	case errors.Is(err, domain.ErrNotFound):
		code = fiber.StatusNotFound
		message = err.Error()
	case errors.Is(err, domain.ErrEmptySeries):
		code = fiber.StatusUnprocessableEntity
		message = err.Error()
	case errors.Is(err, domain.ErrModelUnavailable):
		code = fiber.StatusServiceUnavailable
		message = err.Error()
	case errors.Is(err, domain.ErrMalformedData):
		code = fiber.StatusBadRequest
		message = err.Error()
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
