package logging

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Buffer keeps the most recent log lines in memory so the server can expose
// them over HTTP. Safe for concurrent use.
type Buffer struct {
	mu    sync.Mutex
	lines []string
	max   int
}

// NewBuffer returns a buffer retaining at most max lines.
func NewBuffer(max int) *Buffer {
	return &Buffer{lines: make([]string, 0, max), max: max}
}

// Write appends one rendered entry, dropping the oldest lines once the cap
// is reached.
func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lines = append(b.lines, strings.TrimRight(string(p), "\n"))
	if len(b.lines) > b.max {
		b.lines = b.lines[len(b.lines)-b.max:]
	}
	return len(p), nil
}

// Sync implements zapcore.WriteSyncer.
func (b *Buffer) Sync() error { return nil }

// Lines returns a copy of the retained lines, oldest first.
func (b *Buffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// Options controls logger construction.
type Options struct {
	// Debug switches to the development config and debug-level output.
	Debug bool
	// Capture, when non-nil, receives a JSON copy of every entry.
	Capture *Buffer
}

// New builds the process logger.
func New(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if opts.Debug {
		level = zapcore.DebugLevel
	}

	cfg := zap.NewProductionConfig()
	if opts.Debug {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = !opts.Debug

	var buildOpts []zap.Option
	if opts.Capture != nil {
		enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		capture := zapcore.NewCore(enc, opts.Capture, level)
		buildOpts = append(buildOpts, zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewTee(core, capture)
		}))
	}

	return cfg.Build(buildOpts...)
}
