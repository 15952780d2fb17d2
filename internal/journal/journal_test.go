package journal

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codebuildervaibhav/podcast-transcriber/internal/types"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestRecordAndList(t *testing.T) {
	t.Parallel()
	j := openTestJournal(t)

	require.NoError(t, j.Record("req-1", "https://example.com/ep.mp3", "direct", "base"))

	entries, err := j.List(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	require.Equal(t, "req-1", e.RequestID)
	require.Equal(t, "https://example.com/ep.mp3", e.URL)
	require.Equal(t, "direct", e.Kind)
	require.Equal(t, "base", e.Model)
	require.Equal(t, types.StatusQueued, e.Status)
	require.Empty(t, e.ErrorCode)
	require.False(t, e.CreatedAt.IsZero())
}

func TestLifecycleToCompleted(t *testing.T) {
	t.Parallel()
	j := openTestJournal(t)

	require.NoError(t, j.Record("req-1", "https://example.com/ep.mp3", "direct", "base"))
	require.NoError(t, j.MarkProcessing("req-1"))
	require.NoError(t, j.Complete("req-1", 61.5, 180, 9200))

	entries, err := j.List(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	require.Equal(t, types.StatusCompleted, e.Status)
	require.InDelta(t, 61.5, e.Duration, 0.001)
	require.Equal(t, 180, e.WordCount)
	require.EqualValues(t, 9200, e.ElapsedMS)
}

func TestLifecycleToFailed(t *testing.T) {
	t.Parallel()
	j := openTestJournal(t)

	require.NoError(t, j.Record("req-1", "https://youtube.com/watch?v=x", "youtube", "base"))
	require.NoError(t, j.MarkProcessing("req-1"))
	require.NoError(t, j.Fail("req-1", "ERR_DOWNLOAD_FAILED", 450))

	entries, err := j.List(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	require.Equal(t, types.StatusFailed, e.Status)
	require.Equal(t, "ERR_DOWNLOAD_FAILED", e.ErrorCode)
	require.EqualValues(t, 450, e.ElapsedMS)
}

func TestListNewestFirstAndLimited(t *testing.T) {
	t.Parallel()
	j := openTestJournal(t)

	require.NoError(t, j.Record("req-1", "https://example.com/1.mp3", "direct", "base"))
	require.NoError(t, j.Record("req-2", "https://example.com/2.mp3", "direct", "base"))
	require.NoError(t, j.Record("req-3", "https://example.com/3.mp3", "direct", "base"))

	entries, err := j.List(2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "req-3", entries[0].RequestID)
	require.Equal(t, "req-2", entries[1].RequestID)
}

func TestDuplicateRequestIDRejected(t *testing.T) {
	t.Parallel()
	j := openTestJournal(t)

	require.NoError(t, j.Record("req-1", "https://example.com/1.mp3", "direct", "base"))
	require.Error(t, j.Record("req-1", "https://example.com/2.mp3", "direct", "base"))
}
