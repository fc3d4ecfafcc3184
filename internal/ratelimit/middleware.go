package ratelimit

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/teamchat-service/pkg/util"
)

// Middleware gates requests per client IP. Fail-open: an unreachable
// counter store logs a warning and lets the request through, since rate
// limiting is protective rather than safety-critical.
func Middleware(limiter *Limiter, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		bucket := c.IP()
		if bucket == "" {
			bucket = "ip:unknown"
		}

		result, err := limiter.Allow(c.UserContext(), bucket)
		if err != nil {
			logger.Warn("rate limiter unavailable, allowing request", zap.Error(err))
			return c.Next()
		}

		resetSeconds := int(result.Reset.Seconds())
		c.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Set("X-RateLimit-Reset", strconv.Itoa(resetSeconds))

		if !result.Allowed {
			return apperrors.NewRateLimited(resetSeconds)
		}
		return c.Next()
	}
}
