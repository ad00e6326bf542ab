// Package search discovers seed URLs through web-search APIs. The only
// implementation today is Google Custom Search.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/opportunity-hack/grantfinder/internal/logger"
)

const (
	googleEndpoint = "https://www.googleapis.com/customsearch/v1"

	// resultsPerPage is the API's hard page-size limit.
	resultsPerPage = 10

	// Credential length floors; shorter values are placeholders, not keys.
	minAPIKeyLen   = 20
	minEngineIDLen = 10
)

// DefaultTimeout bounds a single search API call.
const DefaultTimeout = 15 * time.Second

// Config holds the search source configuration.
type Config struct {
	Enabled         bool          `mapstructure:"enabled"`
	APIKey          string        `mapstructure:"api_key"`
	EngineID        string        `mapstructure:"engine_id"`
	Queries         []string      `mapstructure:"queries"`
	ResultsPerQuery int           `mapstructure:"results_per_query"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// GoogleClient queries the Google Custom Search API for candidate grant
// pages.
type GoogleClient struct {
	cfg      Config
	client   *http.Client
	endpoint string
	log      logger.Interface
}

// NewGoogleClient creates a search client.
func NewGoogleClient(cfg Config, log logger.Interface) *GoogleClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if cfg.ResultsPerQuery <= 0 {
		cfg.ResultsPerQuery = resultsPerPage
	}

	return &GoogleClient{
		cfg:      cfg,
		client:   &http.Client{Timeout: timeout},
		endpoint: googleEndpoint,
		log:      log,
	}
}

// searchResponse is the slice of the API response we care about.
type searchResponse struct {
	Items []struct {
		Link string `json:"link"`
	} `json:"items"`
}

// Discover runs every configured query and returns the result URLs.
// Missing or placeholder credentials disable the source with a warning
// instead of erroring, since search is a supplemental seed channel.
func (g *GoogleClient) Discover(ctx context.Context) []string {
	if len(g.cfg.APIKey) < minAPIKeyLen || len(g.cfg.EngineID) < minEngineIDLen {
		g.log.Warn("search credentials missing or invalid, skipping search discovery")
		return nil
	}

	var urls []string

	for _, query := range g.cfg.Queries {
		results, err := g.runQuery(ctx, query)
		if err != nil {
			g.log.Warn("search query failed",
				"query", query,
				"error", err.Error(),
			)
			continue
		}

		urls = append(urls, results...)

		g.log.Debug("search query completed",
			"query", query,
			"results", len(results),
		)
	}

	return urls
}

// runQuery pages through results for one query, up to ResultsPerQuery. Each
// API call costs quota, so paging stops as soon as a page comes back short.
func (g *GoogleClient) runQuery(ctx context.Context, query string) ([]string, error) {
	var links []string

	for start := 1; len(links) < g.cfg.ResultsPerQuery; start += resultsPerPage {
		page, err := g.fetchPage(ctx, query, start)
		if err != nil {
			return links, err
		}
		if len(page) == 0 {
			break
		}

		links = append(links, page...)

		if len(page) < resultsPerPage {
			break
		}
	}

	if len(links) > g.cfg.ResultsPerQuery {
		links = links[:g.cfg.ResultsPerQuery]
	}

	return links, nil
}

func (g *GoogleClient) fetchPage(ctx context.Context, query string, start int) ([]string, error) {
	params := url.Values{}
	params.Set("key", g.cfg.APIKey)
	params.Set("cx", g.cfg.EngineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(resultsPerPage))
	params.Set("start", strconv.Itoa(start))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("search request: status %d: %s", resp.StatusCode, string(body))
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	links := make([]string, 0, len(decoded.Items))
	for _, item := range decoded.Items {
		if item.Link != "" {
			links = append(links, item.Link)
		}
	}

	return links, nil
}
