// Package feed discovers seed URLs from RSS and Atom feeds that publish
// grant announcements.
package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// httpPrefix marks a GUID that is usable as a URL.
const httpPrefix = "http"

// Item is a single feed entry pointing at a candidate grant page.
type Item struct {
	URL         string
	Title       string
	PublishedAt time.Time
}

// Parse reads an RSS or Atom feed body and returns its items. Entries
// without a usable link are skipped; an empty feed yields an empty slice.
func Parse(body string) ([]Item, error) {
	parsed, err := gofeed.NewParser().ParseString(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		link := entryLink(entry)
		if link == "" {
			continue
		}

		item := Item{URL: link, Title: entry.Title}
		if entry.PublishedParsed != nil {
			item.PublishedAt = *entry.PublishedParsed
		}

		items = append(items, item)
	}

	return items, nil
}

// entryLink prefers the entry's Link, falling back to an HTTP-looking GUID.
func entryLink(entry *gofeed.Item) string {
	if entry.Link != "" {
		return entry.Link
	}
	if strings.HasPrefix(entry.GUID, httpPrefix) {
		return entry.GUID
	}
	return ""
}
