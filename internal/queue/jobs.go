package queue

import (
	"time"

	"github.com/codebuildervaibhav/podcast-transcriber/internal/types"
	"github.com/codebuildervaibhav/podcast-transcriber/internal/validate"
)

// Progress stages emitted on a Job's Events channel, in pipeline order.
const (
	StageQueued       = "queued"
	StageDownloading  = "downloading"
	StageTranscoding  = "transcoding"
	StageTranscribing = "transcribing"
)

// Job is one transcription request moving through the pipeline. The
// submitter blocks on Done(); when it closes, exactly one of Result or Err
// is set.
type Job struct {
	RequestID string
	Source    validate.Classified
	Model     string

	Result *types.TranscriptResult
	Err    error

	// Events receives progress stages when non-nil. Sends are best-effort
	// and never block the pipeline; give the channel a small buffer.
	Events chan string

	CreatedAt time.Time

	done chan struct{}
}

// NewJob creates a job for the classified source.
func NewJob(requestID string, source validate.Classified, model string) *Job {
	return &Job{
		RequestID: requestID,
		Source:    source,
		Model:     model,
		CreatedAt: time.Now(),
		done:      make(chan struct{}),
	}
}

// Done is closed once the pipeline has finished with this job.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

func (j *Job) finish() {
	close(j.done)
}

func (j *Job) emit(stage string) {
	if j.Events == nil {
		return
	}
	select {
	case j.Events <- stage:
	default:
	}
}
