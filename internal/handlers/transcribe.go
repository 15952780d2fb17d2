package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/codebuildervaibhav/podcast-transcriber/internal/journal"
	"github.com/codebuildervaibhav/podcast-transcriber/internal/queue"
	"github.com/codebuildervaibhav/podcast-transcriber/internal/types"
	"github.com/codebuildervaibhav/podcast-transcriber/internal/validate"
)

// TranscribeHandler accepts a podcast URL and blocks until the pipeline
// returns the transcript.
type TranscribeHandler struct {
	pool         *queue.WorkerPool
	journal      *journal.Journal
	defaultModel string
	log          *zap.Logger
}

// NewTranscribeHandler creates the POST /transcribe handler.
func NewTranscribeHandler(pool *queue.WorkerPool, j *journal.Journal, defaultModel string, log *zap.Logger) *TranscribeHandler {
	return &TranscribeHandler{
		pool:         pool,
		journal:      j,
		defaultModel: defaultModel,
		log:          log,
	}
}

// TranscribeRequest is the request body; Model is optional.
type TranscribeRequest struct {
	URL   string `json:"url"`
	Model string `json:"model"`
}

// Handle validates the request, submits a job, and waits for it.
func (h *TranscribeHandler) Handle(c *fiber.Ctx) error {
	started := time.Now()

	var req TranscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid request body",
			"code":  "ERR_INVALID_BODY",
		})
	}

	if req.URL == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "URL is required",
			"code":  "ERR_NO_URL",
		})
	}

	model := req.Model
	if model == "" {
		model = h.defaultModel
	}
	if !types.ValidModelSize(model) {
		return c.Status(400).JSON(fiber.Map{
			"error": fmt.Sprintf("Unknown model %q (valid: tiny, base, small, medium, large)", model),
			"code":  "ERR_INVALID_MODEL",
		})
	}

	// Validation precedes any network or filesystem action.
	source, err := validate.Classify(req.URL)
	if err != nil {
		h.log.Debug("rejected URL", zap.String("url", req.URL), zap.Error(err))
		return writeError(c, err)
	}

	requestID := uuid.New().String()
	if err := h.journal.Record(requestID, source.URL, string(source.Kind), model); err != nil {
		h.log.Warn("journal record failed", zap.Error(err))
	}

	job := queue.NewJob(requestID, source, model)
	if !h.pool.TrySubmit(job) {
		if err := h.journal.Fail(requestID, "ERR_QUEUE_FULL", 0); err != nil {
			h.log.Warn("journal update failed", zap.Error(err))
		}
		return c.Status(503).JSON(fiber.Map{
			"error": "Server is busy, try again shortly",
			"code":  "ERR_QUEUE_FULL",
		})
	}

	<-job.Done()

	if job.Err != nil {
		return writeError(c, job.Err)
	}

	result := job.Result
	return c.JSON(fiber.Map{
		"request_id": requestID,
		"model":      model,
		"text":       result.Text,
		"language":   result.Language,
		"duration":   result.Duration,
		"segments":   result.Segments,
		"formatted":  result.FormattedText(),
		"word_count": result.WordCount,
		"elapsed_ms": time.Since(started).Milliseconds(),
	})
}
