package acquire

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/codebuildervaibhav/podcast-transcriber/internal/types"
)

var contentTypeExtensions = map[string]string{
	"audio/mpeg":   ".mp3",
	"audio/mp3":    ".mp3",
	"audio/mp4":    ".m4a",
	"audio/x-m4a":  ".m4a",
	"audio/aac":    ".aac",
	"audio/wav":    ".wav",
	"audio/x-wav":  ".wav",
	"audio/wave":   ".wav",
	"audio/ogg":    ".ogg",
	"audio/flac":   ".flac",
	"audio/x-flac": ".flac",
	"audio/opus":   ".opus",
	"audio/webm":   ".webm",
}

// downloadDirect streams the URL to base+ext via a .part temp file that is
// renamed into place only on success, so a failed download never leaves a
// half-written destination behind.
func (a *Acquirer) downloadDirect(ctx context.Context, rawURL, base string) (*types.AcquiredAudio, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrDownloadFailed, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d from %s", types.ErrDownloadFailed, resp.StatusCode, rawURL)
	}
	if resp.ContentLength > 0 && resp.ContentLength > a.maxBytes {
		return nil, fmt.Errorf("%w: content length %d exceeds %d byte limit", types.ErrDownloadFailed, resp.ContentLength, a.maxBytes)
	}

	dest := base + extensionFor(rawURL, resp.Header.Get("Content-Type"))
	tempPath := dest + ".part"

	outFile, err := os.Create(tempPath)
	if err != nil {
		return nil, fmt.Errorf("%w: create temp file: %v", types.ErrDownloadFailed, err)
	}

	success := false
	defer func() {
		_ = outFile.Close()
		if !success {
			_ = os.Remove(tempPath)
		}
	}()

	written, err := io.Copy(outFile, io.LimitReader(resp.Body, a.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrDownloadFailed, err)
	}
	if written > a.maxBytes {
		return nil, fmt.Errorf("%w: download exceeds %d byte limit", types.ErrDownloadFailed, a.maxBytes)
	}

	if err := outFile.Close(); err != nil {
		return nil, fmt.Errorf("%w: close temp file: %v", types.ErrDownloadFailed, err)
	}
	if err := os.Rename(tempPath, dest); err != nil {
		return nil, fmt.Errorf("%w: move temp file into place: %v", types.ErrDownloadFailed, err)
	}
	success = true

	a.log.Debug("direct download complete",
		zap.String("path", dest),
		zap.Int64("bytes", written))

	return &types.AcquiredAudio{LocalPath: dest}, nil
}

// extensionFor picks a filename extension for the downloaded audio: the URL
// path's own extension wins, then the Content-Type, then ".mp3".
func extensionFor(rawURL, contentType string) string {
	if u, err := url.Parse(rawURL); err == nil {
		if ext := strings.ToLower(path.Ext(u.Path)); ext != "" && len(ext) <= 6 {
			return ext
		}
	}

	if contentType != "" {
		if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
			if ext, ok := contentTypeExtensions[mediaType]; ok {
				return ext
			}
		}
	}

	return ".mp3"
}
