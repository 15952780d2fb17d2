package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/codebuildervaibhav/podcast-transcriber/internal/logging"
)

// LogsHandler exposes the in-memory log buffer for troubleshooting from the
// browser.
type LogsHandler struct {
	buffer *logging.Buffer
}

// NewLogsHandler creates the GET /logs handler.
func NewLogsHandler(buf *logging.Buffer) *LogsHandler {
	return &LogsHandler{buffer: buf}
}

// Handle returns the retained log lines, oldest first.
func (h *LogsHandler) Handle(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"logs": h.buffer.Lines(),
	})
}
