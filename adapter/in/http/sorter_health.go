package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"sorter_server/core/port/in"
	"sorter_server/pkg/metrics"
)

type HealthHandler struct {
	db     *pgxpool.Pool
	redis  *redis.Client
	sorter in.SorterService
}

// NewHealthHandler creates a health handler. db and redis may be nil.
func NewHealthHandler(sorter in.SorterService, db *pgxpool.Pool, redis *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, sorter: sorter}
}

func (h *HealthHandler) Register(app fiber.Router) {
	app.Get("/health", h.Health)
	app.Get("/ready", h.Ready)
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready reports the serving model and the reachability of configured backends.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	allHealthy := true

	status, err := h.sorter.ModelInfo(ctx)
	if err != nil {
		checks["model"] = "unhealthy: " + err.Error()
		allHealthy = false
	} else {
		checks["model"] = status.Model.Version
	}

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			checks["postgres"] = "unhealthy: " + err.Error()
			allHealthy = false
		} else {
			checks["postgres"] = "healthy"
		}
	} else {
		checks["postgres"] = "not configured"
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = "unhealthy: " + err.Error()
			allHealthy = false
		} else {
			checks["redis"] = "healthy"
		}
	} else {
		checks["redis"] = "not configured"
	}

	state := "ready"
	code := fiber.StatusOK
	if !allHealthy {
		state = "not ready"
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status":    state,
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// MetricsHandler reports latency percentiles, classification counters and extra gauges.
type MetricsHandler struct {
	latency  *metrics.LatencyRegistry
	counters *metrics.Counters
	gauges   map[string]func() any
}

func NewMetricsHandler(latency *metrics.LatencyRegistry, counters *metrics.Counters) *MetricsHandler {
	return &MetricsHandler{latency: latency, counters: counters, gauges: map[string]func() any{}}
}

// WithGauge adds a named value computed on every request.
func (h *MetricsHandler) WithGauge(name string, fn func() any) *MetricsHandler {
	h.gauges[name] = fn
	return h
}

func (h *MetricsHandler) Register(app fiber.Router) {
	app.Get("/metrics", h.Metrics)
}

func (h *MetricsHandler) Metrics(c *fiber.Ctx) error {
	latency := make(map[string]any)
	for op, s := range h.latency.AllStats() {
		latency[op] = s.ToMap()
	}

	body := fiber.Map{
		"latency":   latency,
		"counters":  h.counters.Snapshot(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	for name, fn := range h.gauges {
		body[name] = fn()
	}
	return c.JSON(body)
}
