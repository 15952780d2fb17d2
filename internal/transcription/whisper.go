package transcription

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/codebuildervaibhav/podcast-transcriber/internal/types"
)

// Whisper shells out to Python's whisper CLI. Whether the model tolerates
// concurrent invocations is unconfirmed, so calls are serialized with a
// mutex; the hosted backend should be used when throughput matters.
type Whisper struct {
	python   string
	language string
	log      *zap.Logger
	mu       sync.Mutex
}

// NewWhisper verifies the python interpreter is present and returns the
// local backend. Whisper itself is only exercised on the first
// transcription, which may also download model weights into the local cache;
// that first call is slow but must not be failed for it.
func NewWhisper(python, language string, log *zap.Logger) (*Whisper, error) {
	if python == "" {
		python = "python3"
	}
	if _, err := exec.LookPath(python); err != nil {
		return nil, fmt.Errorf("%w: %s not found in PATH", types.ErrModelUnavailable, python)
	}

	log.Info("local whisper backend ready",
		zap.String("python", python),
		zap.String("language_hint", language))

	return &Whisper{python: python, language: language, log: log}, nil
}

func (w *Whisper) Name() string {
	return "local"
}

// Transcribe runs python -m whisper on the audio file and parses its JSON
// output. The output directory shares the audio file's scratch prefix, so
// even if removal here is skipped the request cleanup sweeps it up.
func (w *Whisper) Transcribe(ctx context.Context, audioPath, model string) (*types.TranscriptResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	absPath, err := filepath.Abs(audioPath)
	if err != nil {
		return nil, fmt.Errorf("resolve audio path: %w", err)
	}

	outputDir := audioPath + ".whisper"
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create whisper output dir: %w", err)
	}
	defer os.RemoveAll(outputDir)

	args := []string{"-m", "whisper", absPath,
		"--model", model,
		"--output_dir", outputDir,
		"--output_format", "json",
		"--fp16", "False",
	}
	if w.language != "" {
		args = append(args, "--language", w.language)
	}

	w.log.Debug("invoking whisper",
		zap.String("model", model),
		zap.String("audio", audioPath))

	cmd := exec.CommandContext(ctx, w.python, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		w.log.Debug("whisper failed", zap.String("output", string(output)))
		return nil, classifyWhisperFailure(string(output), err)
	}

	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	jsonData, err := os.ReadFile(filepath.Join(outputDir, baseName+".json"))
	if err != nil {
		return nil, fmt.Errorf("read whisper output: %w", err)
	}

	result, err := parseWhisperJSON(jsonData)
	if err != nil {
		return nil, err
	}

	w.log.Debug("whisper transcription complete",
		zap.Int("segments", len(result.Segments)),
		zap.Float64("duration", result.Duration))
	return result, nil
}

// whisperOutput matches the whisper CLI's JSON output format.
type whisperOutput struct {
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Segments []whisperSegment `json:"segments"`
}

type whisperSegment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

func parseWhisperJSON(data []byte) (*types.TranscriptResult, error) {
	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse whisper JSON: %w", err)
	}

	segments := make([]types.Segment, len(out.Segments))
	for i, seg := range out.Segments {
		segments[i] = types.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(seg.Text),
		}
	}

	// Silent audio comes back with no segments and empty text; that is a
	// successful transcription, not an error.
	var duration float64
	if len(segments) > 0 {
		duration = segments[len(segments)-1].End
	}

	return &types.TranscriptResult{
		Text:     strings.TrimSpace(out.Text),
		Language: out.Language,
		Duration: duration,
		Segments: segments,
	}, nil
}

// classifyWhisperFailure maps the CLI's stderr to an error kind: a missing
// whisper installation or a failed model fetch is a backend problem, while
// a decode error means the input bytes are not audio.
func classifyWhisperFailure(output string, err error) error {
	lower := strings.ToLower(output)
	switch {
	case strings.Contains(lower, "no module named whisper"),
		strings.Contains(lower, "modulenotfounderror"):
		return fmt.Errorf("%w: whisper is not installed for this interpreter", types.ErrModelUnavailable)
	case strings.Contains(lower, "checksum does not match"),
		strings.Contains(lower, "failed to download"):
		return fmt.Errorf("%w: model download failed", types.ErrModelUnavailable)
	case strings.Contains(lower, "failed to load audio"),
		strings.Contains(lower, "invalid data found"),
		strings.Contains(lower, "error opening input"):
		return fmt.Errorf("%w: %s", types.ErrUnreadableAudio, lastLine([]byte(output)))
	default:
		return fmt.Errorf("whisper transcription failed: %v: %s", err, lastLine([]byte(output)))
	}
}
