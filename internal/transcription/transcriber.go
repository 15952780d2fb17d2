package transcription

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/codebuildervaibhav/podcast-transcriber/internal/types"
)

// Transcriber turns a local audio file into a transcript. model is a whisper
// model size (tiny..large); backends that run a fixed hosted model may
// ignore it.
type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, audioPath, model string) (*types.TranscriptResult, error)
}

// SlowWatch arms a timer that logs a warning when transcription outlives
// factor times the audio duration. The returned stop function disarms it;
// call it when the transcription finishes. A zero duration hint disables the
// watch.
func SlowWatch(log *zap.Logger, audioSeconds float64, factor int) func() {
	if audioSeconds <= 0 || factor <= 0 {
		return func() {}
	}

	threshold := time.Duration(float64(factor) * audioSeconds * float64(time.Second))
	timer := time.AfterFunc(threshold, func() {
		log.Warn("transcription running slow",
			zap.Float64("audio_seconds", audioSeconds),
			zap.Duration("threshold", threshold))
	})
	return func() { timer.Stop() }
}
