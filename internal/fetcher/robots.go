package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/temoto/robotstxt"
)

// robotsTxtPath is the well-known path for robots.txt files.
const robotsTxtPath = "/robots.txt"

// maxRobotsBodyBytes limits the size of robots.txt responses we will read.
const maxRobotsBodyBytes = 512 * 1024 // 512 KB

// RobotsChecker checks and caches robots.txt rules per host. Entries are
// populated lazily, at most once per host per run, and never invalidated.
type RobotsChecker struct {
	httpClient *http.Client
	userAgent  string

	mu    sync.Mutex
	cache map[string]*robotsEntry
}

// robotsEntry is fetched exactly once per host; concurrent callers for the
// same host share the single fetch through the entry's once.
type robotsEntry struct {
	once     sync.Once
	data     *robotstxt.RobotsData
	allowAll bool
}

// NewRobotsChecker creates a new RobotsChecker.
func NewRobotsChecker(httpClient *http.Client, userAgent string) *RobotsChecker {
	return &RobotsChecker{
		httpClient: httpClient,
		userAgent:  userAgent,
		cache:      make(map[string]*robotsEntry),
	}
}

// IsAllowed checks if the given URL is allowed by the host's robots.txt,
// fetching and caching the rules on first use. Missing or errored
// robots.txt results in allow-all, per standard crawling practice.
func (r *RobotsChecker) IsAllowed(ctx context.Context, rawURL string) (bool, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false, fmt.Errorf("robots: parse url: %w", err)
	}

	host := strings.ToLower(parsed.Host)
	if host == "" {
		return false, fmt.Errorf("robots: empty host in url %q", rawURL)
	}

	entry := r.entryFor(host)
	entry.once.Do(func() {
		r.populate(ctx, entry, host, parsed.Scheme)
	})

	if entry.allowAll {
		return true, nil
	}

	// Rules can match on query strings, so test the full path?query form.
	pathQuery := parsed.Path
	if parsed.RawQuery != "" {
		pathQuery += "?" + parsed.RawQuery
	}

	return entry.data.TestAgent(pathQuery, r.userAgent), nil
}

func (r *RobotsChecker) entryFor(host string) *robotsEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.cache[host]
	if !ok {
		entry = &robotsEntry{}
		r.cache[host] = entry
	}

	return entry
}

// populate fetches and parses robots.txt for the host. Any failure, a
// non-2xx status, or unparseable content degrades to allow-all.
func (r *RobotsChecker) populate(ctx context.Context, entry *robotsEntry, host, scheme string) {
	if scheme == "" {
		scheme = "https"
	}

	robotsURL := scheme + "://" + host + robotsTxtPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, http.NoBody)
	if err != nil {
		entry.allowAll = true
		return
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		entry.allowAll = true
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		entry.allowAll = true
		return
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBodyBytes))
	if err != nil {
		entry.allowAll = true
		return
	}

	data, err := robotstxt.FromBytes(body)
	if err != nil {
		entry.allowAll = true
		return
	}

	entry.data = data
}
