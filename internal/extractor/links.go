package extractor

import (
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/opportunity-hack/grantfinder/internal/policy"
)

// skippedExtensions are link targets that cannot contain crawlable HTML.
var skippedExtensions = map[string]struct{}{
	".pdf": {}, ".doc": {}, ".docx": {}, ".xls": {}, ".xlsx": {},
	".ppt": {}, ".pptx": {}, ".zip": {}, ".tar": {}, ".gz": {},
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".svg": {},
	".ico": {}, ".css": {}, ".js": {}, ".mp3": {}, ".mp4": {},
	".avi": {}, ".mov": {}, ".webm": {}, ".woff": {}, ".woff2": {},
}

// extractLinks collects outbound anchors, resolved to absolute form, in
// document order. Non-HTTP schemes, binary targets, and URLs matching the
// policy's block patterns are dropped. Duplicates within a page are removed
// here; cross-page dedup belongs to the frontier.
func extractLinks(doc *goquery.Document, pageURL string, pol policy.Policy) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	var links []string
	seen := make(map[string]struct{})

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")

		resolved := resolveLink(base, href)
		if resolved == "" {
			return
		}
		if policy.MatchesAny(pol.BlockPatterns, resolved) {
			return
		}
		if _, dup := seen[resolved]; dup {
			return
		}

		seen[resolved] = struct{}{}
		links = append(links, resolved)
	})

	return links
}

// resolveLink makes an href absolute and filters out targets the crawl can
// never use. Returns "" for rejected links.
func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	if resolved.Host == "" {
		return ""
	}

	ext := strings.ToLower(path.Ext(resolved.Path))
	if _, skip := skippedExtensions[ext]; skip {
		return ""
	}

	resolved.Fragment = ""

	return resolved.String()
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
