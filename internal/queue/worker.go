package queue

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/codebuildervaibhav/podcast-transcriber/internal/acquire"
	"github.com/codebuildervaibhav/podcast-transcriber/internal/journal"
	"github.com/codebuildervaibhav/podcast-transcriber/internal/scratch"
	"github.com/codebuildervaibhav/podcast-transcriber/internal/transcription"
	"github.com/codebuildervaibhav/podcast-transcriber/internal/types"
	"github.com/codebuildervaibhav/podcast-transcriber/internal/validate"
)

// Acquirer is the slice of acquire.Acquirer the pipeline needs.
type Acquirer interface {
	Acquire(ctx context.Context, source validate.Classified, base string) (*types.AcquiredAudio, error)
}

var _ Acquirer = (*acquire.Acquirer)(nil)

// Options bound the pool and the pipeline stages.
type Options struct {
	Workers         int
	QueueSize       int
	DownloadTimeout time.Duration
	SlowFactor      int

	// Normalize and Probe override the ffmpeg-backed stage functions.
	// Production leaves them nil; tests use them to avoid shelling out.
	Normalize func(ctx context.Context, path string) (string, error)
	Probe     func(ctx context.Context, path string) float64
}

// WorkerPool runs the download → transcode → transcribe pipeline on a fixed
// number of workers consuming a bounded queue. The queue bound is the
// admission control: when it is full, submission fails instead of piling up
// work.
type WorkerPool struct {
	jobQueue    chan *Job
	workerCount int

	scratch     *scratch.Manager
	acquirer    Acquirer
	transcriber transcription.Transcriber
	journal     *journal.Journal

	normalize func(ctx context.Context, path string) (string, error)
	probe     func(ctx context.Context, path string) float64

	downloadTimeout time.Duration
	slowFactor      int
	log             *zap.Logger
}

// NewWorkerPool wires the pipeline collaborators together. journal may be
// nil, in which case outcomes are not recorded.
func NewWorkerPool(
	opts Options,
	m *scratch.Manager,
	acquirer Acquirer,
	transcriber transcription.Transcriber,
	j *journal.Journal,
	log *zap.Logger,
) *WorkerPool {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 16
	}
	if opts.DownloadTimeout <= 0 {
		opts.DownloadTimeout = 15 * time.Minute
	}
	if opts.Normalize == nil {
		opts.Normalize = transcription.NormalizeAudio
	}
	if opts.Probe == nil {
		opts.Probe = transcription.ProbeDuration
	}

	return &WorkerPool{
		jobQueue:        make(chan *Job, opts.QueueSize),
		workerCount:     opts.Workers,
		scratch:         m,
		acquirer:        acquirer,
		transcriber:     transcriber,
		journal:         j,
		normalize:       opts.Normalize,
		probe:           opts.Probe,
		downloadTimeout: opts.DownloadTimeout,
		slowFactor:      opts.SlowFactor,
		log:             log,
	}
}

// Start launches the workers.
func (wp *WorkerPool) Start() {
	wp.log.Info("starting worker pool",
		zap.Int("workers", wp.workerCount),
		zap.Int("queue_size", cap(wp.jobQueue)))
	for i := 0; i < wp.workerCount; i++ {
		go wp.worker(i)
	}
}

// TrySubmit enqueues the job without blocking. It reports false when the
// queue is full; callers surface that as back-pressure. The queued stage is
// emitted before the handoff so it always precedes the worker's own events;
// callers forward events only after a successful submit.
func (wp *WorkerPool) TrySubmit(job *Job) bool {
	job.emit(StageQueued)
	select {
	case wp.jobQueue <- job:
		wp.log.Info("job enqueued",
			zap.String("request_id", job.RequestID),
			zap.String("kind", string(job.Source.Kind)))
		return true
	default:
		return false
	}
}

func (wp *WorkerPool) worker(id int) {
	wp.log.Debug("worker started", zap.Int("worker", id))
	for job := range wp.jobQueue {
		wp.runJob(id, job)
	}
}

// runJob guards the pipeline with panic recovery so one poisoned request
// cannot take a worker down, and records the outcome exactly once.
func (wp *WorkerPool) runJob(id int, job *Job) {
	started := time.Now()
	defer job.finish()
	defer func() {
		if r := recover(); r != nil {
			wp.log.Error("panic processing job",
				zap.Int("worker", id),
				zap.String("request_id", job.RequestID),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
			job.Err = fmt.Errorf("internal pipeline failure: %v", r)
		}
		wp.recordOutcome(job, time.Since(started))
	}()

	job.Err = wp.processJob(id, job)
	if job.Err != nil {
		wp.log.Warn("job failed",
			zap.String("request_id", job.RequestID),
			zap.String("code", types.ErrorCode(job.Err)),
			zap.Error(job.Err))
	}
}

// processJob runs the request pipeline inside a scratch base whose files are
// removed on every exit path. Jobs run on a background context: a client
// that disconnects does not interrupt work mid-flight. Only the acquisition
// stage carries a deadline.
func (wp *WorkerPool) processJob(workerID int, job *Job) error {
	log := wp.log.With(
		zap.Int("worker", workerID),
		zap.String("request_id", job.RequestID))

	log.Info("processing job",
		zap.String("kind", string(job.Source.Kind)),
		zap.String("model", job.Model))

	if wp.journal != nil {
		if err := wp.journal.MarkProcessing(job.RequestID); err != nil {
			log.Warn("journal update failed", zap.Error(err))
		}
	}

	return wp.scratch.WithBase(func(base string) error {
		ctx := context.Background()

		job.emit(StageDownloading)
		acquireCtx, cancel := context.WithTimeout(ctx, wp.downloadTimeout)
		audio, err := wp.acquirer.Acquire(acquireCtx, job.Source, base)
		cancel()
		if err != nil {
			return err
		}

		audio.DurationHint = wp.probe(ctx, audio.LocalPath)
		log.Debug("audio acquired",
			zap.String("path", audio.LocalPath),
			zap.Float64("duration_hint", audio.DurationHint))

		job.emit(StageTranscoding)
		normalized, err := wp.normalize(ctx, audio.LocalPath)
		if err != nil {
			return err
		}

		job.emit(StageTranscribing)
		stop := transcription.SlowWatch(log, audio.DurationHint, wp.slowFactor)
		result, err := wp.transcriber.Transcribe(ctx, normalized, job.Model)
		stop()
		if err != nil {
			return err
		}

		result.WordCount = len(strings.Fields(result.Text))
		result.ProcessedAt = time.Now()
		if result.Duration == 0 {
			result.Duration = audio.DurationHint
		}
		job.Result = result

		log.Info("job completed",
			zap.Int("segments", len(result.Segments)),
			zap.Int("words", result.WordCount),
			zap.Float64("duration", result.Duration))
		return nil
	})
}

func (wp *WorkerPool) recordOutcome(job *Job, elapsed time.Duration) {
	if wp.journal == nil {
		return
	}
	if job.Err != nil {
		if err := wp.journal.Fail(job.RequestID, types.ErrorCode(job.Err), elapsed.Milliseconds()); err != nil {
			wp.log.Warn("journal update failed", zap.Error(err))
		}
		return
	}
	if err := wp.journal.Complete(job.RequestID, job.Result.Duration, job.Result.WordCount, elapsed.Milliseconds()); err != nil {
		wp.log.Warn("journal update failed", zap.Error(err))
	}
}
