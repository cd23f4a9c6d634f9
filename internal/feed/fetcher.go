package feed

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"logiscan/internal/model"

	"github.com/mmcdole/gofeed"
)

// Fetcher downloads and parses RSS/Atom feeds.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher creates a Fetcher. A non-positive timeout defaults to 20s.
func NewFetcher(userAgent string, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: strings.TrimSpace(userAgent),
	}
}

// Fetch returns every item of the feed at feedURL. Any transport, status or
// parse error fails the whole feed.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) ([]model.FeedItem, error) {
	fp := gofeed.NewParser()
	fp.Client = f.client
	if f.userAgent != "" {
		fp.UserAgent = f.userAgent
	}
	parsed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", feedURL, err)
	}
	items := make([]model.FeedItem, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		if it == nil {
			continue
		}
		items = append(items, toFeedItem(it))
	}
	return items, nil
}

func toFeedItem(it *gofeed.Item) model.FeedItem {
	out := model.FeedItem{
		Title:       strings.TrimSpace(it.Title),
		Link:        strings.TrimSpace(it.Link),
		Description: it.Description,
		Summary:     it.Content,
	}
	if it.PublishedParsed != nil {
		t := it.PublishedParsed.UTC()
		out.PublishedAt = &t
	}
	return out
}
