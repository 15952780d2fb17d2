package types

import (
	"errors"
	"time"
)

// Request status constants
const (
	StatusQueued     = "QUEUED"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

// Kind classifies what a submitted URL points at.
type Kind string

const (
	KindDirectAudio Kind = "direct"
	KindYouTube     Kind = "youtube"
	KindRSSFeed     Kind = "rss"
	KindUnsupported Kind = "unsupported"
)

// ModelSizes are the whisper model names a request may ask for.
var ModelSizes = []string{"tiny", "base", "small", "medium", "large"}

// DefaultModelSize is used when a request does not name a model.
const DefaultModelSize = "base"

// ValidModelSize reports whether name is a recognized model size.
func ValidModelSize(name string) bool {
	for _, m := range ModelSizes {
		if name == m {
			return true
		}
	}
	return false
}

// Failure kinds. Components wrap these with fmt.Errorf("...: %w", ...) and
// the HTTP layer maps them to status codes with errors.Is.
var (
	ErrMalformedURL     = errors.New("malformed URL")
	ErrDownloadFailed   = errors.New("download failed")
	ErrFeedParse        = errors.New("feed parse failed")
	ErrNoEpisodes       = errors.New("no episodes found")
	ErrUnreadableAudio  = errors.New("unreadable audio")
	ErrModelUnavailable = errors.New("model unavailable")
)

// ErrorCode maps an error to its wire code, used in HTTP error bodies and
// the request journal.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrMalformedURL):
		return "ERR_MALFORMED_URL"
	case errors.Is(err, ErrNoEpisodes):
		return "ERR_NO_EPISODES"
	case errors.Is(err, ErrFeedParse):
		return "ERR_FEED_PARSE"
	case errors.Is(err, ErrDownloadFailed):
		return "ERR_DOWNLOAD_FAILED"
	case errors.Is(err, ErrUnreadableAudio):
		return "ERR_UNREADABLE_AUDIO"
	case errors.Is(err, ErrModelUnavailable):
		return "ERR_MODEL_UNAVAILABLE"
	default:
		return "ERR_INTERNAL"
	}
}

// AcquiredAudio is the downloaded artifact for one request. The file lives
// under the request's scratch base and is removed when the request finishes.
type AcquiredAudio struct {
	LocalPath    string
	DurationHint float64 // seconds; 0 when unknown
}

// TranscriptResult is the output of one transcription.
type TranscriptResult struct {
	Text        string    `json:"text"`
	Language    string    `json:"language,omitempty"`
	Duration    float64   `json:"duration"`
	Segments    []Segment `json:"segments,omitempty"`
	WordCount   int       `json:"word_count"`
	ProcessedAt time.Time `json:"processed_at"`
}

// Segment is a timestamped portion of the transcript.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}
