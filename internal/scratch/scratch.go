package scratch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager hands out unique base paths under the scratch directory and
// guarantees that everything written under a base is removed when the
// request finishes.
type Manager struct {
	dir string
	log *zap.Logger
}

// NewManager creates the scratch directory if needed and returns a manager
// rooted there.
func NewManager(dir string, log *zap.Logger) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch dir %s: %w", dir, err)
	}
	return &Manager{dir: dir, log: log}, nil
}

// Dir returns the scratch directory root.
func (m *Manager) Dir() string {
	return m.dir
}

// WithBase allocates a unique base path under the scratch directory, runs fn
// with it, and afterwards removes every file sharing the base prefix. The
// cleanup runs on every exit path, panics included. Removal failures are
// logged and never escalated.
func (m *Manager) WithBase(fn func(base string) error) error {
	base := filepath.Join(m.dir, uuid.New().String())
	defer m.removeBase(base)
	return fn(base)
}

func (m *Manager) removeBase(base string) {
	matches, err := filepath.Glob(base + "*")
	if err != nil {
		m.log.Warn("scratch glob failed", zap.String("base", base), zap.Error(err))
		return
	}
	for _, path := range matches {
		if err := os.RemoveAll(path); err != nil && !os.IsNotExist(err) {
			m.log.Warn("failed to remove scratch file", zap.String("path", path), zap.Error(err))
			continue
		}
		m.log.Debug("removed scratch file", zap.String("path", path))
	}
}
