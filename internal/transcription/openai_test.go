package transcription

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/codebuildervaibhav/podcast-transcriber/internal/types"
)

const verboseTranscriptionResponse = `{
  "task": "transcribe",
  "language": "english",
  "duration": 4.2,
  "text": " Hello from the API. ",
  "segments": [
    {"id": 0, "seek": 0, "start": 0.0, "end": 4.2, "text": " Hello from the API. ",
     "tokens": [], "temperature": 0.0, "avg_logprob": -0.2,
     "compression_ratio": 1.0, "no_speech_prob": 0.01, "transient": false}
  ]
}`

func newTranscriptionServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.True(t, strings.HasSuffix(r.URL.Path, "/audio/transcriptions"), "unexpected path %s", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestOpenAITranscribe(t *testing.T) {
	t.Parallel()

	srv := newTranscriptionServer(t, http.StatusOK, verboseTranscriptionResponse)
	defer srv.Close()

	backend, err := NewOpenAI("test-key", srv.URL, "", zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, "openai", backend.Name())

	audio := filepath.Join(t.TempDir(), "ep.norm.wav")
	require.NoError(t, os.WriteFile(audio, []byte("fake audio"), 0o644))

	result, err := backend.Transcribe(context.Background(), audio, "base")
	require.NoError(t, err)
	require.Equal(t, "Hello from the API.", result.Text)
	require.Equal(t, "english", result.Language)
	require.InDelta(t, 4.2, result.Duration, 0.001)
	require.Len(t, result.Segments, 1)
	require.Equal(t, "Hello from the API.", result.Segments[0].Text)
}

func TestOpenAITranscribeAuthFailure(t *testing.T) {
	t.Parallel()

	srv := newTranscriptionServer(t, http.StatusUnauthorized,
		`{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error"}}`)
	defer srv.Close()

	backend, err := NewOpenAI("test-key", srv.URL, "", zap.NewNop())
	require.NoError(t, err)

	audio := filepath.Join(t.TempDir(), "ep.norm.wav")
	require.NoError(t, os.WriteFile(audio, []byte("fake audio"), 0o644))

	_, err = backend.Transcribe(context.Background(), audio, "base")
	require.ErrorIs(t, err, types.ErrModelUnavailable)
}

func TestOpenAITranscribeRejectedAudio(t *testing.T) {
	t.Parallel()

	srv := newTranscriptionServer(t, http.StatusBadRequest,
		`{"error": {"message": "Invalid file format.", "type": "invalid_request_error"}}`)
	defer srv.Close()

	backend, err := NewOpenAI("test-key", srv.URL, "", zap.NewNop())
	require.NoError(t, err)

	audio := filepath.Join(t.TempDir(), "ep.norm.wav")
	require.NoError(t, os.WriteFile(audio, []byte("fake audio"), 0o644))

	_, err = backend.Transcribe(context.Background(), audio, "base")
	require.ErrorIs(t, err, types.ErrUnreadableAudio)
}

func TestOpenAITranscribeUnreachable(t *testing.T) {
	t.Parallel()

	srv := newTranscriptionServer(t, http.StatusOK, verboseTranscriptionResponse)
	srv.Close() // refuse connections

	backend, err := NewOpenAI("test-key", srv.URL, "", zap.NewNop())
	require.NoError(t, err)

	audio := filepath.Join(t.TempDir(), "ep.norm.wav")
	require.NoError(t, os.WriteFile(audio, []byte("fake audio"), 0o644))

	_, err = backend.Transcribe(context.Background(), audio, "base")
	require.ErrorIs(t, err, types.ErrModelUnavailable)
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	t.Parallel()

	_, err := NewOpenAI("", "", "", zap.NewNop())
	require.ErrorIs(t, err, types.ErrModelUnavailable)
}
