package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/opportunity-hack/grantfinder/internal/logger"
)

// maxFeedBodyBytes limits the size of feed responses we will read.
const maxFeedBodyBytes = 2 * 1024 * 1024 // 2 MB

// DefaultTimeout bounds a single feed fetch.
const DefaultTimeout = 15 * time.Second

// Config holds the RSS source configuration.
type Config struct {
	Enabled bool          `mapstructure:"enabled"`
	URLs    []string      `mapstructure:"urls"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Source fetches configured feeds and yields the URLs of their entries.
type Source struct {
	client *http.Client
	urls   []string
	log    logger.Interface
}

// NewSource creates an RSS source over the given feed URLs.
func NewSource(cfg Config, log logger.Interface) *Source {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Source{
		client: &http.Client{Timeout: timeout},
		urls:   cfg.URLs,
		log:    log,
	}
}

// Discover fetches every configured feed and returns the entry URLs in feed
// order. A failing feed is logged and skipped; one dead feed never blocks
// discovery from the rest.
func (s *Source) Discover(ctx context.Context) []string {
	var urls []string

	for _, feedURL := range s.urls {
		items, err := s.fetch(ctx, feedURL)
		if err != nil {
			s.log.Warn("feed fetch failed",
				"feed", feedURL,
				"error", err.Error(),
			)
			continue
		}

		for _, item := range items {
			urls = append(urls, item.URL)
		}

		s.log.Debug("feed fetched",
			"feed", feedURL,
			"items", len(items),
		)
	}

	return urls
}

func (s *Source) fetch(ctx context.Context, feedURL string) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}

	return Parse(string(body))
}
