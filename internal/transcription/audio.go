package transcription

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/codebuildervaibhav/podcast-transcriber/internal/types"
)

// NormalizeAudio converts an audio file to 16 kHz mono 16-bit PCM WAV, the
// input whisper handles best. The output lands next to the input with a
// .norm.wav suffix so it shares the request's scratch prefix and its
// cleanup. A decode failure means the bytes are not usable audio.
func NormalizeAudio(ctx context.Context, inputPath string) (string, error) {
	outputPath := inputPath + ".norm.wav"

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", inputPath,
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-y",
		outputPath,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%w: ffmpeg: %v: %s", types.ErrUnreadableAudio, err, lastLine(output))
	}
	return outputPath, nil
}

// ProbeDuration returns the duration of an audio file in seconds via
// ffprobe. The hint is best-effort: any failure yields 0.
func ProbeDuration(ctx context.Context, path string) float64 {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		return 0
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil || seconds < 0 {
		return 0
	}
	return seconds
}

// lastLine extracts the final non-empty line of subprocess output, which for
// ffmpeg is where the actual error message lives.
func lastLine(output []byte) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
