package transcription

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/codebuildervaibhav/podcast-transcriber/internal/types"
)

// OpenAI transcribes through the hosted whisper-1 API. Unlike the local
// backend it is safe for concurrent calls; the client carries no per-request
// state.
type OpenAI struct {
	client   *openai.Client
	language string
	log      *zap.Logger
}

// NewOpenAI builds the hosted backend. baseURL overrides the API endpoint
// and is empty outside tests.
func NewOpenAI(apiKey, baseURL, language string, log *zap.Logger) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY is not set", types.ErrModelUnavailable)
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAI{
		client:   openai.NewClientWithConfig(cfg),
		language: language,
		log:      log,
	}, nil
}

func (o *OpenAI) Name() string {
	return "openai"
}

// Transcribe uploads the audio file and maps the verbose JSON response. The
// hosted API serves a single whisper model, so the requested model size is
// noted in logs but not sent.
func (o *OpenAI) Transcribe(ctx context.Context, audioPath, model string) (*types.TranscriptResult, error) {
	o.log.Debug("invoking hosted transcription",
		zap.String("audio", audioPath),
		zap.String("requested_model", model))

	resp, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
		Language: o.language,
	})
	if err != nil {
		return nil, classifyAPIFailure(err)
	}

	segments := make([]types.Segment, len(resp.Segments))
	for i, seg := range resp.Segments {
		segments[i] = types.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(seg.Text),
		}
	}

	duration := resp.Duration
	if duration == 0 && len(segments) > 0 {
		duration = segments[len(segments)-1].End
	}

	return &types.TranscriptResult{
		Text:     strings.TrimSpace(resp.Text),
		Language: resp.Language,
		Duration: duration,
		Segments: segments,
	}, nil
}

func classifyAPIFailure(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 400, 413, 415, 422:
			return fmt.Errorf("%w: %s", types.ErrUnreadableAudio, apiErr.Message)
		default:
			return fmt.Errorf("%w: api status %d: %s", types.ErrModelUnavailable, apiErr.HTTPStatusCode, apiErr.Message)
		}
	}
	// transport-level failure: the backend cannot be reached at all
	return fmt.Errorf("%w: %v", types.ErrModelUnavailable, err)
}
