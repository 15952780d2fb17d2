package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/codebuildervaibhav/podcast-transcriber/internal/journal"
)

// HistoryHandler lists recent requests from the in-memory journal: metadata
// only, never transcript text.
type HistoryHandler struct {
	journal *journal.Journal
	limit   int
	log     *zap.Logger
}

// NewHistoryHandler creates the GET /history handler.
func NewHistoryHandler(j *journal.Journal, limit int, log *zap.Logger) *HistoryHandler {
	if limit < 1 {
		limit = 50
	}
	return &HistoryHandler{journal: j, limit: limit, log: log}
}

// Handle returns recent requests, newest first.
func (h *HistoryHandler) Handle(c *fiber.Ctx) error {
	entries, err := h.journal.List(h.limit)
	if err != nil {
		h.log.Error("history listing failed", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to list request history",
			"code":  "ERR_INTERNAL",
		})
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	return c.JSON(fiber.Map{
		"requests": entries,
		"count":    len(entries),
	})
}
