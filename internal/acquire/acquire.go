package acquire

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/codebuildervaibhav/podcast-transcriber/internal/types"
	"github.com/codebuildervaibhav/podcast-transcriber/internal/validate"
)

const userAgent = "podcast-transcriber/1.0"

// Acquirer turns a classified URL into a local audio file written under the
// request's scratch base prefix.
type Acquirer struct {
	client   *http.Client
	maxBytes int64
	log      *zap.Logger
}

// New returns an acquirer. client may be nil, in which case a default with a
// generous timeout is used; per-request deadlines come from the context.
func New(client *http.Client, maxBytes int64, log *zap.Logger) *Acquirer {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Minute}
	}
	return &Acquirer{client: client, maxBytes: maxBytes, log: log}
}

// Acquire downloads the audio for c, writing only files prefixed with base.
// The returned AcquiredAudio points at a file under that prefix.
func (a *Acquirer) Acquire(ctx context.Context, c validate.Classified, base string) (*types.AcquiredAudio, error) {
	a.log.Info("acquiring audio",
		zap.String("kind", string(c.Kind)),
		zap.String("url", c.URL))

	switch c.Kind {
	case types.KindYouTube:
		return a.downloadYouTube(ctx, c.URL, base)
	case types.KindRSSFeed:
		return a.resolveFeed(ctx, c.URL, base)
	case types.KindDirectAudio, types.KindUnsupported:
		// Unsupported URLs get a generic download attempt; whatever comes
		// back is judged by the decoder later.
		return a.downloadDirect(ctx, c.URL, base)
	default:
		return nil, fmt.Errorf("%w: unknown source kind %q", types.ErrDownloadFailed, c.Kind)
	}
}
