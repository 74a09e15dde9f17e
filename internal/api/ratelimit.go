// internal/api/ratelimit.go
package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/hongngoc-nguyen/brandpulse/internal/common/logger"
	"github.com/hongngoc-nguyen/brandpulse/internal/common/metrics"
)

// RateLimiter enforces a fixed-window request budget per client IP, counted
// in Redis so every instance shares the same budget.
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	logger logger.Logger
}

func NewRateLimiter(client *redis.Client, limit int, window time.Duration, log logger.Logger) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
		logger: log.With(map[string]interface{}{"component": "ratelimit"}),
	}
}

// Middleware returns the fiber handler. Redis being unreachable fails open:
// dashboards keep working and the outage is logged instead of surfaced as 429s.
func (r *RateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := "ratelimit:" + c.IP()

		count, err := r.client.Incr(c.Context(), key).Result()
		if err != nil {
			r.logger.Warn("rate limit check failed, allowing request", map[string]interface{}{
				"error": err.Error(),
			})
			return c.Next()
		}
		if count == 1 {
			if err := r.client.Expire(c.Context(), key, r.window).Err(); err != nil {
				r.logger.Warn("rate limit window not set", map[string]interface{}{
					"key":   key,
					"error": err.Error(),
				})
			}
		}

		if count > int64(r.limit) {
			metrics.RateLimitRejections.Inc()
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests",
			})
		}
		return c.Next()
	}
}
