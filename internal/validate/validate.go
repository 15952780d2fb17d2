package validate

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/codebuildervaibhav/podcast-transcriber/internal/types"
)

// Classified is the outcome of classifying a user-supplied URL.
type Classified struct {
	Kind types.Kind
	URL  string
}

var youtubeHosts = map[string]bool{
	"youtube.com":       true,
	"www.youtube.com":   true,
	"m.youtube.com":     true,
	"music.youtube.com": true,
	"youtu.be":          true,
}

var audioExtensions = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".wav":  true,
	".ogg":  true,
	".oga":  true,
	".flac": true,
	".aac":  true,
	".opus": true,
	".wma":  true,
}

var feedExtensions = map[string]bool{
	".xml":  true,
	".rss":  true,
	".atom": true,
}

// Classify parses and classifies a raw URL string without performing any
// network or filesystem access. A string that does not parse as an absolute
// http(s) URL with a host is rejected with types.ErrMalformedURL. URLs that
// match no known pattern come back as KindUnsupported, which is not an
// error: the acquirer still attempts a generic download for them.
func Classify(raw string) (Classified, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Classified{}, fmt.Errorf("%w: empty URL", types.ErrMalformedURL)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Classified{}, fmt.Errorf("%w: %v", types.ErrMalformedURL, err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return Classified{}, fmt.Errorf("%w: unsupported scheme %q", types.ErrMalformedURL, u.Scheme)
	}
	if u.Host == "" {
		return Classified{}, fmt.Errorf("%w: missing host", types.ErrMalformedURL)
	}

	return Classified{Kind: kindOf(u), URL: u.String()}, nil
}

func kindOf(u *url.URL) types.Kind {
	if youtubeHosts[strings.ToLower(u.Hostname())] {
		return types.KindYouTube
	}

	ext := strings.ToLower(path.Ext(u.Path))
	if audioExtensions[ext] {
		return types.KindDirectAudio
	}
	if feedExtensions[ext] {
		return types.KindRSSFeed
	}
	if hasFeedSegment(u.Path) {
		return types.KindRSSFeed
	}
	return types.KindUnsupported
}

// hasFeedSegment reports whether any path segment is exactly "feed" or
// "rss", the common layout for podcast feed URLs without an extension.
func hasFeedSegment(p string) bool {
	for _, seg := range strings.Split(strings.ToLower(p), "/") {
		if seg == "feed" || seg == "rss" {
			return true
		}
	}
	return false
}
