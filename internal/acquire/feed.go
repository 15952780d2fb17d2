package acquire

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/codebuildervaibhav/podcast-transcriber/internal/types"
	"github.com/codebuildervaibhav/podcast-transcriber/internal/validate"
)

// resolveFeed fetches an RSS/Atom feed, picks the most recently published
// episode carrying an audio enclosure, and downloads that enclosure. When no
// item has a publish date the first listed episode with an enclosure wins.
func (a *Acquirer) resolveFeed(ctx context.Context, rawURL, base string) (*types.AcquiredAudio, error) {
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	parser.Client = a.client

	feed, err := parser.ParseURLWithContext(rawURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrFeedParse, err)
	}

	item, enclosure := pickEpisode(feed)
	if item == nil {
		return nil, fmt.Errorf("%w: feed %q has no episode with an audio enclosure", types.ErrNoEpisodes, feed.Title)
	}

	a.log.Info("resolved feed episode",
		zap.String("feed", feed.Title),
		zap.String("episode", item.Title),
		zap.String("enclosure", enclosure.URL))

	return a.downloadDirect(ctx, enclosure.URL, base)
}

func pickEpisode(feed *gofeed.Feed) (*gofeed.Item, *gofeed.Enclosure) {
	var best *gofeed.Item
	var bestEnclosure *gofeed.Enclosure

	for _, item := range feed.Items {
		enclosure := audioEnclosure(item)
		if enclosure == nil {
			continue
		}
		if best == nil {
			best, bestEnclosure = item, enclosure
			continue
		}
		// A dated episode displaces an undated pick; among dated episodes
		// the latest publish date wins; undated episodes keep feed order.
		if item.PublishedParsed != nil &&
			(best.PublishedParsed == nil || item.PublishedParsed.After(*best.PublishedParsed)) {
			best, bestEnclosure = item, enclosure
		}
	}
	return best, bestEnclosure
}

// audioEnclosure finds an enclosure that plausibly holds audio: an audio/*
// MIME type, or failing that a URL that classifies as direct audio (some
// feeds omit or mislabel the type).
func audioEnclosure(item *gofeed.Item) *gofeed.Enclosure {
	for _, enclosure := range item.Enclosures {
		if enclosure == nil || enclosure.URL == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(enclosure.Type), "audio/") {
			return enclosure
		}
	}
	for _, enclosure := range item.Enclosures {
		if enclosure == nil || enclosure.URL == "" {
			continue
		}
		if c, err := validate.Classify(enclosure.URL); err == nil && c.Kind == types.KindDirectAudio {
			return enclosure
		}
	}
	return nil
}
