// internal/api/router.go
package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hongngoc-nguyen/brandpulse/internal/common/logger"
)

// RouterOptions carries the pieces the router wires together. Limiter may be
// nil to run without rate limiting (tests, local development).
type RouterOptions struct {
	Handler *AnalyticsHandler
	Limiter *RateLimiter
	Logger  logger.Logger
	Version string
}

// NewApp builds the fiber application with the full middleware chain and
// route table.
func NewApp(opts RouterOptions) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "brandpulse",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestID())
	app.Use(accessLog(opts.Logger))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "healthy",
			"version": opts.Version,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := app.Group("/v1/analytics")
	if opts.Limiter != nil {
		v1.Use(opts.Limiter.Middleware())
	}

	v1.Get("/citations/timeline", opts.Handler.Timeline)
	v1.Get("/citations/platforms", opts.Handler.Platforms)
	v1.Get("/citations/clusters", opts.Handler.Clusters)
	v1.Get("/citations/competitors", opts.Handler.Competitors)
	v1.Get("/citations/sources", opts.Handler.Sources)
	v1.Get("/entities/top", opts.Handler.TopEntities)
	v1.Get("/summary", opts.Handler.Summary)
	v1.Get("/insights", opts.Handler.Insights)

	return app
}

// requestID assigns each request a correlation id, honoring one supplied by
// an upstream proxy.
func requestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals("requestID", id)
		c.Set("X-Request-ID", id)
		return c.Next()
	}
}

func accessLog(log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		log.Info("request completed", map[string]interface{}{
			"method":    c.Method(),
			"path":      c.Path(),
			"status":    c.Response().StatusCode(),
			"duration":  time.Since(start).String(),
			"requestID": c.Locals("requestID"),
		})
		return err
	}
}
