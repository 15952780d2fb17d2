package scratch

import (
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Sweeper periodically removes scratch files left behind by crashed
// requests or abandoned downloader temp files.
type Sweeper struct {
	dir      string
	interval time.Duration
	maxAge   time.Duration
	log      *zap.Logger
	stopChan chan struct{}
}

// NewSweeper creates a sweeper for dir that removes files older than maxAge
// every interval.
func NewSweeper(dir string, interval, maxAge time.Duration, log *zap.Logger) *Sweeper {
	return &Sweeper{
		dir:      dir,
		interval: interval,
		maxAge:   maxAge,
		log:      log,
		stopChan: make(chan struct{}),
	}
}

// Start runs an initial sweep and then sweeps on the configured interval
// until Stop is called.
func (s *Sweeper) Start() {
	s.sweep()

	ticker := time.NewTicker(s.interval)
	go func() {
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stopChan:
				ticker.Stop()
				return
			}
		}
	}()

	s.log.Info("scratch sweeper started",
		zap.Duration("interval", s.interval),
		zap.Duration("max_age", s.maxAge))
}

// Stop halts the periodic sweep.
func (s *Sweeper) Stop() {
	close(s.stopChan)
}

func (s *Sweeper) sweep() {
	now := time.Now()

	var removedCount int
	var removedBytes int64

	err := filepath.Walk(s.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip files we can't stat
		}
		if info.IsDir() {
			return nil
		}

		age := now.Sub(info.ModTime())
		if age <= s.maxAge {
			return nil
		}

		size := info.Size()
		if err := os.Remove(path); err != nil {
			s.log.Warn("failed to remove orphaned scratch file",
				zap.String("path", path), zap.Error(err))
			return nil
		}
		removedCount++
		removedBytes += size
		s.log.Debug("removed orphaned scratch file",
			zap.String("file", filepath.Base(path)),
			zap.Duration("age", age.Round(time.Minute)),
			zap.Int64("bytes", size))
		return nil
	})
	if err != nil {
		s.log.Warn("scratch sweep failed", zap.Error(err))
	}

	if removedCount > 0 {
		s.log.Info("scratch sweep complete",
			zap.Int("files", removedCount),
			zap.Int64("bytes", removedBytes))
	}
}
