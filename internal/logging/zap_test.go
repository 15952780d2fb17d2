package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBufferKeepsMostRecentLines(t *testing.T) {
	t.Parallel()

	b := NewBuffer(3)
	for _, line := range []string{"one\n", "two\n", "three\n", "four\n"} {
		_, err := b.Write([]byte(line))
		require.NoError(t, err)
	}
	require.Equal(t, []string{"two", "three", "four"}, b.Lines())
}

func TestBufferLinesReturnsCopy(t *testing.T) {
	t.Parallel()

	b := NewBuffer(4)
	_, err := b.Write([]byte("original\n"))
	require.NoError(t, err)

	lines := b.Lines()
	lines[0] = "mutated"
	require.Equal(t, []string{"original"}, b.Lines())
}

func TestNewCapturesEntries(t *testing.T) {
	t.Parallel()

	buf := NewBuffer(16)
	log, err := New(Options{Capture: buf})
	require.NoError(t, err)

	log.Info("pipeline ready", zap.String("backend", "local"))

	lines := buf.Lines()
	require.Len(t, lines, 1)
	require.Contains(t, lines[0], "pipeline ready")
	require.Contains(t, lines[0], `"backend":"local"`)
}

func TestNewDebugEnablesDebugLevel(t *testing.T) {
	t.Parallel()

	buf := NewBuffer(16)
	log, err := New(Options{Debug: true, Capture: buf})
	require.NoError(t, err)

	log.Debug("stage detail")
	require.Len(t, buf.Lines(), 1)
}

func TestNewInfoSuppressesDebug(t *testing.T) {
	t.Parallel()

	buf := NewBuffer(16)
	log, err := New(Options{Capture: buf})
	require.NoError(t, err)

	log.Debug("hidden")
	require.Empty(t, buf.Lines())
}
