package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler reports service readiness.
type HealthHandler struct {
	model   string
	backend string
}

// NewHealthHandler creates the GET /health handler. Both values are fixed
// at startup, after the backend probes have passed.
func NewHealthHandler(model, backend string) *HealthHandler {
	return &HealthHandler{model: model, backend: backend}
}

// Handle returns the health payload.
func (h *HealthHandler) Handle(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":        "healthy",
		"model_loaded":  true,
		"whisper_model": h.model,
		"backend":       h.backend,
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	})
}
