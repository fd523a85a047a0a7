package bootstrap

import (
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"sorter_server/adapter/in/http"
	"sorter_server/infra/database"
	"sorter_server/infra/middleware"
	"sorter_server/pkg/logger"
)

// NewAPI builds the Fiber app over deps. The returned cleanup stops background helpers.
func NewAPI(deps *Dependencies) (*fiber.App, func()) {
	cfg := deps.Config

	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		// room for the JSON envelope around the largest accepted text
		BodyLimit:    cfg.MaxTextBytes + 4096,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	app.Use(middleware.Recover())
	app.Use(middleware.RequestID())
	app.Use(middleware.SecurityHeaders())
	app.Use(middleware.RequestLogger())
	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))

	allowOrigins := strings.Join(cfg.AllowedOrigins, ",")
	allowCredentials := allowOrigins != "" && allowOrigins != "*"
	if !allowCredentials && cfg.IsProduction() {
		allowOrigins = ""
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Request-ID",
		ExposeHeaders:    "X-Request-ID,X-RateLimit-Limit,X-RateLimit-Remaining,X-RateLimit-Reset",
		AllowCredentials: allowCredentials,
		MaxAge:           86400,
	}))

	http.NewHealthHandler(deps.SorterService, deps.DB, deps.Redis).Register(app)

	metricsHandler := http.NewMetricsHandler(deps.Latency, deps.Counters)
	if deps.DB != nil {
		metricsHandler.WithGauge("postgres", func() any { return database.GetPoolStats(deps.DB) })
	}
	if deps.Redis != nil {
		metricsHandler.WithGauge("redis", func() any { return database.GetRedisStats(deps.Redis) })
	}
	metricsHandler.Register(app)

	// routes registered below share the JSON and rate limit checks
	var closers []func()
	app.Use(middleware.RequireJSON())
	if cfg.RateLimitPerMin > 0 {
		rl := middleware.NewRateLimiter(cfg.RateLimitPerMin, time.Minute)
		closers = append(closers, rl.Close)
		app.Use(rl.Handler())
	}

	http.NewLegacyHandler(deps.SorterService, deps.InboxService, cfg.MaxTextBytes).Register(app)

	api := app.Group("/api/v1", middleware.NoCache(), middleware.JWTAuth(cfg.JWTSecret))
	http.NewAPIHandler(deps.SorterService, deps.InboxService, cfg.MaxTextBytes).Register(api)

	if !cfg.AuthEnabled() {
		logger.Warn("JWT_SECRET not set, /api/v1 is unauthenticated")
	}

	return app, func() {
		for _, c := range closers {
			c()
		}
	}
}
