// Package domain provides the data model shared across the crawl engine.
package domain

import "time"

// SourceKind identifies where a URL task originated.
type SourceKind string

const (
	SourceSeed        SourceKind = "seed"
	SourceSearch      SourceKind = "search"
	SourceRSS         SourceKind = "rss"
	SourceCrawledLink SourceKind = "crawled_link"
)

// URLTask represents a discovered URL waiting to be crawled.
// NormalizedURL is the dedup key; no two tasks with the same normalized
// URL are ever enqueued in one run.
type URLTask struct {
	URL           string     `json:"url"`
	NormalizedURL string     `json:"normalized_url"`
	Domain        string     `json:"domain"`
	Depth         int        `json:"depth"`
	Source        SourceKind `json:"source"`
	ParentURL     string     `json:"parent_url,omitempty"`
	DiscoveredAt  time.Time  `json:"discovered_at"`
}
