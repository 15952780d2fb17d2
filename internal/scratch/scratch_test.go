package scratch

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return m
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestWithBaseRemovesAllPrefixedFiles(t *testing.T) {
	t.Parallel()
	m := newTestManager(t)

	err := m.WithBase(func(base string) error {
		require.NoError(t, os.WriteFile(base+".mp3", []byte("audio"), 0o644))
		require.NoError(t, os.WriteFile(base+".norm.wav", []byte("wav"), 0o644))
		require.NoError(t, os.WriteFile(base+".mp3.part", []byte("partial"), 0o644))
		return nil
	})
	require.NoError(t, err)
	require.Empty(t, listDir(t, m.Dir()))
}

func TestWithBaseRemovesFilesOnError(t *testing.T) {
	t.Parallel()
	m := newTestManager(t)

	wantErr := os.ErrDeadlineExceeded
	err := m.WithBase(func(base string) error {
		require.NoError(t, os.WriteFile(base+".mp3", []byte("audio"), 0o644))
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)
	require.Empty(t, listDir(t, m.Dir()))
}

func TestWithBaseRemovesFilesOnPanic(t *testing.T) {
	t.Parallel()
	m := newTestManager(t)

	require.Panics(t, func() {
		_ = m.WithBase(func(base string) error {
			if err := os.WriteFile(base+".mp3", []byte("audio"), 0o644); err != nil {
				return err
			}
			panic("pipeline blew up")
		})
	})
	require.Empty(t, listDir(t, m.Dir()))
}

func TestWithBaseLeavesUnrelatedFilesAlone(t *testing.T) {
	t.Parallel()
	m := newTestManager(t)

	other := filepath.Join(m.Dir(), "unrelated.mp3")
	require.NoError(t, os.WriteFile(other, []byte("keep me"), 0o644))

	err := m.WithBase(func(base string) error {
		return os.WriteFile(base+".mp3", []byte("audio"), 0o644)
	})
	require.NoError(t, err)
	require.Equal(t, []string{"unrelated.mp3"}, listDir(t, m.Dir()))
}

func TestWithBaseAllocatesDistinctBases(t *testing.T) {
	t.Parallel()
	m := newTestManager(t)

	var mu sync.Mutex
	seen := make(map[string]bool)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.WithBase(func(base string) error {
				mu.Lock()
				defer mu.Unlock()
				require.False(t, seen[base])
				seen[base] = true
				return nil
			})
		}()
	}
	wg.Wait()
	require.Len(t, seen, 8)
}

func TestSweepRemovesOnlyOldFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	oldFile := filepath.Join(dir, "stale.mp3")
	freshFile := filepath.Join(dir, "fresh.mp3")
	require.NoError(t, os.WriteFile(oldFile, []byte("old"), 0o644))
	require.NoError(t, os.WriteFile(freshFile, []byte("new"), 0o644))

	past := time.Now().Add(-3 * time.Hour)
	require.NoError(t, os.Chtimes(oldFile, past, past))

	s := NewSweeper(dir, time.Hour, time.Hour, zap.NewNop())
	s.sweep()

	require.NoFileExists(t, oldFile)
	require.FileExists(t, freshFile)
}

func TestSweeperStartStop(t *testing.T) {
	t.Parallel()
	s := NewSweeper(t.TempDir(), 50*time.Millisecond, time.Hour, zap.NewNop())
	s.Start()
	s.Stop()
}
