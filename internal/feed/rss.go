package feed

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"newswire/internal/model"
)

// Some feeds reject obvious bot user agents.
const rssUserAgent = "Mozilla/5.0 (X11; Linux x86_64) newswire/1.0"

// RSSSource sweeps a fixed list of feed URLs. One Fetch walks every feed;
// feeds that fail to download or parse are logged and skipped so a single
// dead feed never starves the rest of the sweep.
type RSSSource struct {
	urls   []string
	parser *gofeed.Parser
	logger *slog.Logger
}

// RSSOption configures an RSSSource.
type RSSOption func(*RSSSource)

// WithRSSTimeout sets the per-feed HTTP timeout.
func WithRSSTimeout(d time.Duration) RSSOption {
	return func(s *RSSSource) {
		s.parser.Client.Timeout = d
	}
}

// WithRSSLogger sets the logger.
func WithRSSLogger(logger *slog.Logger) RSSOption {
	return func(s *RSSSource) {
		s.logger = logger
	}
}

// NewRSSSource creates a sweep source over the given feed URLs.
func NewRSSSource(urls []string, opts ...RSSOption) *RSSSource {
	parser := gofeed.NewParser()
	parser.UserAgent = rssUserAgent
	parser.Client = &http.Client{Timeout: 30 * time.Second}

	s := &RSSSource{
		urls:   urls,
		parser: parser,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name identifies the source in logs.
func (s *RSSSource) Name() string { return "rss" }

// Fetch downloads and parses every configured feed and returns the combined
// entries. Returns an error only when the context is done.
func (s *RSSSource) Fetch(ctx context.Context) ([]model.WorkItem, error) {
	var items []model.WorkItem

	for _, url := range s.urls {
		if err := ctx.Err(); err != nil {
			return items, err
		}

		feed, err := s.parser.ParseURLWithContext(url, ctx)
		if err != nil {
			s.logger.Warn("feed fetch failed", "feed", url, "error", err)
			continue
		}

		for _, entry := range feed.Items {
			items = append(items, s.convert(url, entry))
		}
		s.logger.Debug("feed fetched", "feed", url, "entries", len(feed.Items))
	}

	return items, nil
}

// convert normalizes one feed entry. Markup in the description and content
// fields is stripped; the published time falls back to the fetch time when
// the feed omits or mangles it.
func (s *RSSSource) convert(feedURL string, entry *gofeed.Item) model.WorkItem {
	published := time.Now().UTC()
	if entry.PublishedParsed != nil {
		published = entry.PublishedParsed.UTC()
	}

	return model.WorkItem{
		Source:      feedURL,
		Title:       entry.Title,
		Link:        entry.Link,
		Published:   published,
		Summary:     StripHTML(entry.Description),
		Content:     StripHTML(entry.Content),
		Description: StripHTML(entry.Description),
	}
}
