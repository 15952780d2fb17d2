package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/codebuildervaibhav/podcast-transcriber/internal/journal"
	"github.com/codebuildervaibhav/podcast-transcriber/internal/queue"
	"github.com/codebuildervaibhav/podcast-transcriber/internal/types"
	"github.com/codebuildervaibhav/podcast-transcriber/internal/validate"
)

// StreamHandler runs one transcription over a WebSocket connection. The
// client sends the same JSON body as POST /transcribe in its first text
// frame; the server streams {"stage": ...} progress events and terminates
// with {"stage": "done", "result": ...} or {"stage": "error", ...}.
type StreamHandler struct {
	pool         *queue.WorkerPool
	journal      *journal.Journal
	defaultModel string
	log          *zap.Logger
}

// NewStreamHandler creates the GET /ws/transcribe handler.
func NewStreamHandler(pool *queue.WorkerPool, j *journal.Journal, defaultModel string, log *zap.Logger) *StreamHandler {
	return &StreamHandler{
		pool:         pool,
		journal:      j,
		defaultModel: defaultModel,
		log:          log,
	}
}

// Handle processes one WebSocket transcription session.
func (h *StreamHandler) Handle(c *websocket.Conn) {
	defer c.Close()

	var req TranscribeRequest
	if err := c.ReadJSON(&req); err != nil {
		h.writeErrorFrame(c, "ERR_INVALID_BODY", "First frame must be a JSON transcription request")
		return
	}

	if req.URL == "" {
		h.writeErrorFrame(c, "ERR_NO_URL", "URL is required")
		return
	}

	model := req.Model
	if model == "" {
		model = h.defaultModel
	}
	if !types.ValidModelSize(model) {
		h.writeErrorFrame(c, "ERR_INVALID_MODEL", "Unknown model size")
		return
	}

	source, err := validate.Classify(req.URL)
	if err != nil {
		code := types.ErrorCode(err)
		h.writeErrorFrame(c, code, publicMessage(code))
		return
	}

	requestID := uuid.New().String()
	if err := h.journal.Record(requestID, source.URL, string(source.Kind), model); err != nil {
		h.log.Warn("journal record failed", zap.Error(err))
	}

	job := queue.NewJob(requestID, source, model)
	job.Events = make(chan string, 8)

	if !h.pool.TrySubmit(job) {
		if err := h.journal.Fail(requestID, "ERR_QUEUE_FULL", 0); err != nil {
			h.log.Warn("journal update failed", zap.Error(err))
		}
		h.writeErrorFrame(c, "ERR_QUEUE_FULL", "Server is busy, try again shortly")
		return
	}

	h.forwardEvents(c, job)

	if job.Err != nil {
		code := types.ErrorCode(job.Err)
		h.writeErrorFrame(c, code, publicMessage(code))
		return
	}

	result := job.Result
	if err := c.WriteJSON(fiber.Map{
		"stage": "done",
		"result": fiber.Map{
			"request_id": requestID,
			"model":      model,
			"text":       result.Text,
			"language":   result.Language,
			"duration":   result.Duration,
			"segments":   result.Segments,
			"formatted":  result.FormattedText(),
			"word_count": result.WordCount,
		},
	}); err != nil {
		h.log.Debug("websocket write failed", zap.Error(err))
	}
}

// forwardEvents relays progress stages until the job finishes, then drains
// whatever is still buffered. A client that goes away mid-job only loses
// frames; the pipeline and its cleanup are unaffected.
func (h *StreamHandler) forwardEvents(c *websocket.Conn, job *queue.Job) {
	for {
		select {
		case stage := <-job.Events:
			if err := c.WriteJSON(fiber.Map{"stage": stage}); err != nil {
				h.log.Debug("websocket write failed", zap.Error(err))
			}
		case <-job.Done():
			for {
				select {
				case stage := <-job.Events:
					if err := c.WriteJSON(fiber.Map{"stage": stage}); err != nil {
						h.log.Debug("websocket write failed", zap.Error(err))
					}
				default:
					return
				}
			}
		}
	}
}

func (h *StreamHandler) writeErrorFrame(c *websocket.Conn, code, message string) {
	if err := c.WriteJSON(fiber.Map{"stage": "error", "code": code, "error": message}); err != nil {
		h.log.Debug("websocket write failed", zap.Error(err))
	}
}
