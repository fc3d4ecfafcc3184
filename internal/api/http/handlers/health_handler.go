package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/teamchat-service/internal/persistence"
)

// HealthHandler exposes liveness and readiness probes.
type HealthHandler struct {
	mongo *persistence.Mongo
	redis *persistence.Redis
}

// NewHealthHandler constructs the handler.
func NewHealthHandler(mongo *persistence.Mongo, redis *persistence.Redis) *HealthHandler {
	return &HealthHandler{mongo: mongo, redis: redis}
}

// Live handles GET /health/live.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready handles GET /health/ready: both stores must answer.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	checks := fiber.Map{"mongo": "ok", "redis": "ok"}
	status := http.StatusOK

	if err := h.mongo.Ping(c.UserContext()); err != nil {
		checks["mongo"] = "unavailable"
		status = http.StatusServiceUnavailable
	}
	if err := h.redis.Ping(c.UserContext()); err != nil {
		checks["redis"] = "unavailable"
		status = http.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{"checks": checks})
}
