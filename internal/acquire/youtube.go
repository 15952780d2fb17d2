package acquire

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lrstanley/go-ytdlp"
	"go.uber.org/zap"

	"github.com/codebuildervaibhav/podcast-transcriber/internal/types"
)

// downloadYouTube drives yt-dlp to extract the best available audio as mp3,
// mirroring the classic bestaudio/best + FFmpegExtractAudio setup.
func (a *Acquirer) downloadYouTube(ctx context.Context, rawURL, base string) (*types.AcquiredAudio, error) {
	dl := ytdlp.New().
		ExtractAudio().
		AudioFormat("mp3").
		AudioQuality("192K").
		Format("bestaudio/best").
		NoPlaylist().
		NoProgress().
		Output(base + ".%(ext)s")

	result, err := dl.Run(ctx, rawURL)
	if err != nil {
		if result != nil {
			a.log.Debug("yt-dlp failed", zap.String("stderr", result.Stderr))
		}
		return nil, fmt.Errorf("%w: yt-dlp: %v", types.ErrDownloadFailed, err)
	}

	path, err := findExtractedAudio(base)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrDownloadFailed, err)
	}

	a.log.Debug("youtube extraction complete", zap.String("path", path))
	return &types.AcquiredAudio{LocalPath: path}, nil
}

// findExtractedAudio locates the file yt-dlp produced. The requested format
// is mp3, but the post-processor can be skipped when ffmpeg deems the source
// already suitable, so a few known extensions are probed before falling back
// to whatever single file matches the base.
func findExtractedAudio(base string) (string, error) {
	for _, ext := range []string{".mp3", ".m4a", ".wav", ".opus"} {
		candidate := base + ext
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	matches, err := filepath.Glob(base + ".*")
	if err != nil {
		return "", err
	}
	for _, match := range matches {
		if strings.HasSuffix(match, ".part") {
			continue
		}
		return match, nil
	}
	return "", fmt.Errorf("yt-dlp reported success but produced no output file")
}
