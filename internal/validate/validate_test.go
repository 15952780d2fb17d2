package validate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codebuildervaibhav/podcast-transcriber/internal/types"
)

func TestClassifyRejectsMalformedInput(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"plain text", "not a url"},
		{"ftp scheme", "ftp://example.com/episode.mp3"},
		{"file scheme", "file:///etc/passwd"},
		{"no host", "http://"},
		{"relative path", "/podcasts/episode.mp3"},
		{"control character", "http://exam\x7fple.com/ep.mp3"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Classify(tc.raw)
			require.ErrorIs(t, err, types.ErrMalformedURL)
		})
	}
}

func TestClassifyKinds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
		want types.Kind
	}{
		{"youtube watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", types.KindYouTube},
		{"youtube bare host", "https://youtube.com/watch?v=abc", types.KindYouTube},
		{"youtube mobile", "https://m.youtube.com/watch?v=abc", types.KindYouTube},
		{"youtube music", "https://music.youtube.com/watch?v=abc", types.KindYouTube},
		{"youtu.be short link", "https://youtu.be/dQw4w9WgXcQ", types.KindYouTube},
		{"youtube uppercase host", "https://WWW.YOUTUBE.COM/watch?v=abc", types.KindYouTube},

		{"mp3", "https://cdn.example.com/show/ep42.mp3", types.KindDirectAudio},
		{"m4a", "https://cdn.example.com/ep.m4a", types.KindDirectAudio},
		{"wav with query", "http://example.com/audio.wav?token=xyz", types.KindDirectAudio},
		{"uppercase extension", "https://example.com/EPISODE.MP3", types.KindDirectAudio},
		{"ogg", "https://example.com/ep.ogg", types.KindDirectAudio},
		{"flac", "https://example.com/ep.flac", types.KindDirectAudio},
		{"opus", "https://example.com/ep.opus", types.KindDirectAudio},

		{"rss xml", "https://feeds.example.com/podcast.xml", types.KindRSSFeed},
		{"rss extension", "https://example.com/show.rss", types.KindRSSFeed},
		{"atom extension", "https://example.com/show.atom", types.KindRSSFeed},
		{"feed path segment", "https://example.com/podcast/feed", types.KindRSSFeed},
		{"rss path segment", "https://example.com/rss/all", types.KindRSSFeed},

		{"plain page", "https://example.com/episodes/42", types.KindUnsupported},
		{"rss-like but not a segment", "https://example.com/rssprayer", types.KindUnsupported},
		{"video file", "https://example.com/clip.mp4", types.KindUnsupported},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Classify(tc.raw)
			require.NoError(t, err)
			require.Equal(t, tc.want, got.Kind)
			require.NotEmpty(t, got.URL)
		})
	}
}

func TestClassifyTrimsWhitespace(t *testing.T) {
	t.Parallel()

	got, err := Classify("  https://example.com/ep.mp3\n")
	require.NoError(t, err)
	require.Equal(t, types.KindDirectAudio, got.Kind)
	require.Equal(t, "https://example.com/ep.mp3", got.URL)
}
