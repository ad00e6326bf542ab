// Package extractor turns fetched HTML into normalized text, best-effort
// structured grant fields, and filtered outbound links.
package extractor

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/opportunity-hack/grantfinder/internal/domain"
	"github.com/opportunity-hack/grantfinder/internal/policy"
)

// nonContentSelectors lists boilerplate elements stripped before text
// extraction.
const nonContentSelectors = "script, style, noscript, nav, header, footer, aside, form, iframe"

// excerptLength bounds the text excerpt carried on emitted records.
const excerptLength = 500

var whitespaceRE = regexp.MustCompile(`\s+`)

// Config holds the vocabulary the extractor matches against page text.
type Config struct {
	TechSkills       []string
	NonprofitSectors []string
}

// Extractor parses HTML pages. Safe for concurrent use.
type Extractor struct {
	techSkills []string
	sectors    []string
}

// New creates an Extractor with the given keyword vocabulary.
func New(cfg Config) *Extractor {
	return &Extractor{
		techSkills: lowerAll(cfg.TechSkills),
		sectors:    lowerAll(cfg.NonprofitSectors),
	}
}

// Extract parses a page body. Parse failures degrade to minimal content with
// empty fields rather than erroring: partial extraction is still scoreable.
// Outbound links matching the policy's block patterns are dropped here and
// never reach the frontier.
func (e *Extractor) Extract(body []byte, pageURL string, pol policy.Policy) *domain.ExtractedContent {
	content := &domain.ExtractedContent{
		URL: pageURL,
		Fields: domain.CandidateFields{
			// Assume eligible unless the page states otherwise.
			HackathonEligible: true,
		},
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return content
	}

	content.Title = extractTitle(doc, pageURL)
	content.Description = extractDescription(doc)
	content.Text = e.extractText(doc)
	content.Links = extractLinks(doc, pageURL, pol)

	lower := strings.ToLower(content.Text)
	content.Fields = domain.CandidateFields{
		FundingAmount:       extractFundingAmount(content.Text),
		Deadline:            extractDeadline(content.Text),
		ApplicationURL:      extractApplicationURL(doc, pageURL),
		Eligibility:         extractEligibility(content.Text),
		TechFocus:           matchTerms(lower, e.techSkills),
		NonprofitSectors:    matchTerms(lower, e.sectors),
		VolunteerComponent:  hasVolunteerComponent(lower),
		RemoteParticipation: checkRemoteParticipation(lower),
		HackathonEligible:   checkHackathonEligible(lower),
	}

	return content
}

// Excerpt returns the leading slice of normalized text for record storage.
func Excerpt(text string) string {
	if len(text) <= excerptLength {
		return text
	}
	return text[:excerptLength] + "..."
}

// extractText pulls the main text, preferring the densest content container
// (article, main, or role=main) over the full body, then stripping
// boilerplate elements and collapsing whitespace.
func (e *Extractor) extractText(doc *goquery.Document) string {
	container := pickContainer(doc)
	if container == nil {
		return ""
	}

	container.Find(nonContentSelectors).Remove()

	return normalizeWhitespace(container.Text())
}

// pickContainer chooses the candidate element with the highest ratio of text
// to markup. A dedicated content element wins over <body> only when it holds
// a meaningful share of the page text, which filters out decorative
// <article> stubs.
func pickContainer(doc *goquery.Document) *goquery.Selection {
	body := doc.Find("body").First()
	if body.Length() == 0 {
		return nil
	}

	bodyTextLen := len(normalizeWhitespace(body.Text()))

	var best *goquery.Selection
	bestDensity := 0.0

	for _, selector := range []string{"article", "main", "[role='main']"} {
		candidate := doc.Find(selector).First()
		if candidate.Length() == 0 {
			continue
		}

		textLen := len(normalizeWhitespace(candidate.Text()))
		if bodyTextLen > 0 && textLen*2 < bodyTextLen {
			continue
		}

		elements := candidate.Find("*").Length() + 1
		density := float64(textLen) / float64(elements)
		if density > bestDensity {
			bestDensity = density
			best = candidate
		}
	}

	if best != nil {
		return best
	}

	return body
}

// extractTitle prefers h1, then og:title, then <title>, then a placeholder
// derived from the host.
func extractTitle(doc *goquery.Document, pageURL string) string {
	if h1 := normalizeWhitespace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}

	if ogTitle, ok := doc.Find("meta[property='og:title']").Attr("content"); ok {
		if t := strings.TrimSpace(ogTitle); t != "" {
			return t
		}
	}

	if title := normalizeWhitespace(doc.Find("title").First().Text()); title != "" {
		return title
	}

	return "Grant opportunity at " + hostOf(pageURL)
}

// extractDescription prefers meta description, then og:description, then the
// first paragraph.
func extractDescription(doc *goquery.Document) string {
	if desc, ok := doc.Find("meta[name='description']").Attr("content"); ok {
		if d := strings.TrimSpace(desc); d != "" {
			return d
		}
	}

	if ogDesc, ok := doc.Find("meta[property='og:description']").Attr("content"); ok {
		if d := strings.TrimSpace(ogDesc); d != "" {
			return d
		}
	}

	return normalizeWhitespace(doc.Find("p").First().Text())
}

// matchTerms returns the vocabulary terms present in the text, preserving
// vocabulary order for deterministic output.
func matchTerms(lowerText string, vocabulary []string) []string {
	var matched []string
	for _, term := range vocabulary {
		if strings.Contains(lowerText, term) {
			matched = append(matched, term)
		}
	}
	return matched
}

func normalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(s, " "))
}

func lowerAll(terms []string) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = strings.ToLower(t)
	}
	return out
}
