package feed_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opportunity-hack/grantfinder/internal/feed"
	"github.com/opportunity-hack/grantfinder/internal/logger"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Grant Announcements</title>
    <item>
      <title>New Technology Grant Open</title>
      <link>https://example.org/grants/tech</link>
      <pubDate>Mon, 02 Jun 2025 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>GUID Only Entry</title>
      <guid>https://example.org/grants/guid-only</guid>
    </item>
    <item>
      <title>No Usable Link</title>
      <guid isPermaLink="false">internal-id-123</guid>
    </item>
  </channel>
</rss>`

func TestParse_RSS(t *testing.T) {
	items, err := feed.Parse(sampleRSS)
	require.NoError(t, err)
	require.Len(t, items, 2, "entry without a usable link is skipped")

	assert.Equal(t, "https://example.org/grants/tech", items[0].URL)
	assert.Equal(t, "New Technology Grant Open", items[0].Title)
	assert.False(t, items[0].PublishedAt.IsZero())

	assert.Equal(t, "https://example.org/grants/guid-only", items[1].URL,
		"HTTP GUID should serve as the link fallback")
}

func TestParse_Atom(t *testing.T) {
	const atom = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Funding Feed</title>
  <entry>
    <title>Civic Tech RFP</title>
    <link href="https://example.org/rfp/civic-tech"/>
    <id>urn:uuid:1</id>
  </entry>
</feed>`

	items, err := feed.Parse(atom)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "https://example.org/rfp/civic-tech", items[0].URL)
}

func TestParse_InvalidBody(t *testing.T) {
	_, err := feed.Parse("not a feed at all")
	assert.Error(t, err)
}

func TestDiscover_CollectsAcrossFeeds(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer good.Close()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	source := feed.NewSource(feed.Config{
		URLs: []string{broken.URL, good.URL},
	}, logger.NewNoOp())

	urls := source.Discover(context.Background())

	// The broken feed is skipped, not fatal.
	assert.Equal(t, []string{
		"https://example.org/grants/tech",
		"https://example.org/grants/guid-only",
	}, urls)
}

func TestDiscover_NoFeeds(t *testing.T) {
	source := feed.NewSource(feed.Config{}, logger.NewNoOp())
	assert.Empty(t, source.Discover(context.Background()))
}
