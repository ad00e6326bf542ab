package extractor

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/opportunity-hack/grantfinder/internal/domain"
)

// Field extraction is best effort and pattern ordered: the first matching
// pattern wins, so more specific forms come first.

var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\$\s*([\d,]+(?:\.\d{1,2})?)(?:\s*-\s*\$\s*([\d,]+(?:\.\d{1,2})?))?`),
	regexp.MustCompile(`(?i)([\d,]+(?:\.\d{1,2})?)\s*(?:USD|dollars)`),
	regexp.MustCompile(`(?i)grants?\s*of\s*(?:up to)?\s*\$\s*([\d,]+(?:\.\d{1,2})?)`),
	regexp.MustCompile(`(?i)awards?\s*(?:up to|of)\s*\$\s*([\d,]+(?:\.\d{1,2})?)`),
	regexp.MustCompile(`(?i)funding\s*(?:up to|of)\s*\$\s*([\d,]+(?:\.\d{1,2})?)`),
	regexp.MustCompile(`(?i)budget\s*(?:up to|of)\s*\$\s*([\d,]+(?:\.\d{1,2})?)`),
}

var deadlinePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:deadline|due date|closes|applications? due|submission deadline)(?:\s*:)?\s*([A-Za-z]+\s+\d{1,2},?\s+\d{4})`),
	regexp.MustCompile(`(?i)(?:deadline|due date|closes|applications? due|submission deadline)(?:\s*:)?\s*(\d{1,2}(?:st|nd|rd|th)?\s+[A-Za-z]+,?\s+\d{4})`),
	regexp.MustCompile(`(?i)(?:deadline|due date|closes|applications? due|submission deadline)(?:\s*:)?\s*(\d{1,2}/\d{1,2}/\d{2,4})`),
	regexp.MustCompile(`(?i)(?:deadline|due date|closes|applications? due|submission deadline)(?:\s*:)?\s*(\d{4}-\d{2}-\d{2})`),
	regexp.MustCompile(`(?i)(?:applications? must be received by|submit before|apply before)(?:\s*:)?\s*([A-Za-z]+\s+\d{1,2},?\s+\d{4})`),
	regexp.MustCompile(`(?i)(?:applications? must be received by|submit before|apply before)(?:\s*:)?\s*(\d{1,2}(?:st|nd|rd|th)?\s+[A-Za-z]+,?\s+\d{4})`),
	regexp.MustCompile(`(?i)(?:applications? must be received by|submit before|apply before)(?:\s*:)?\s*(\d{1,2}/\d{1,2}/\d{2,4})`),
	regexp.MustCompile(`(?i)(?:applications? must be received by|submit before|apply before)(?:\s*:)?\s*(\d{4}-\d{2}-\d{2})`),
}

var eligibilityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:eligibility|who can apply|qualified candidates)(?:\s*:)?\s*([^.]*\.)`),
	regexp.MustCompile(`(?i)(?:eligible organizations|eligible applicants|eligibility criteria)(?:\s*:)?\s*([^.]*\.)`),
	regexp.MustCompile(`(?i)(?:requirements|qualifications)(?:\s*:)?\s*([^.]*\.)`),
}

// applicationKeywords mark links that likely lead to an application form.
var applicationKeywords = []string{
	"apply", "application", "submit", "proposal", "register",
	"grant application", "submit application", "apply now",
	"submit proposal", "application form",
}

var volunteerSignals = []string{
	"volunteer", "pro bono", "skills-based volunteering",
	"technical volunteers", "volunteer developers", "volunteer time",
}

var remotePositive = []string{
	"remote participation", "virtual participation", "online participation",
	"participate remotely", "remote-friendly", "virtual event",
	"online only", "remote work",
}

var remoteNegative = []string{
	"in-person only", "on-site required", "no remote participation",
	"physical presence required", "must attend in person",
}

var hackathonNegative = []string{
	"no prototypes", "established organizations only",
	"minimum years of operation", "established revenue",
	"proof of financial stability", "minimum annual budget",
	"no startups", "existing projects only",
}

// extractFundingAmount finds a dollar amount, supporting "$X - $Y" ranges.
// Amounts are assumed USD.
func extractFundingAmount(text string) *domain.FundingAmount {
	for _, pattern := range amountPatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}

		amount, err := parseAmount(match[1])
		if err != nil {
			continue
		}

		result := &domain.FundingAmount{Amount: amount, Currency: "USD"}
		if len(match) > 2 && match[2] != "" {
			if rangeMax, rangeErr := parseAmount(match[2]); rangeErr == nil {
				result.RangeMax = &rangeMax
			}
		}

		return result
	}

	return nil
}

func parseAmount(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

// extractDeadline finds a deadline date. The value is kept as matched text;
// date parsing is left to downstream consumers because grant pages mix
// formats freely.
func extractDeadline(text string) string {
	for _, pattern := range deadlinePatterns {
		if match := pattern.FindStringSubmatch(text); match != nil {
			return strings.TrimSpace(match[1])
		}
	}
	return ""
}

func extractEligibility(text string) string {
	for _, pattern := range eligibilityPatterns {
		if match := pattern.FindStringSubmatch(text); match != nil {
			return strings.TrimSpace(match[1])
		}
	}
	return ""
}

// extractApplicationURL looks for a link whose anchor text or href suggests
// an application form, checking anchor text first since it is the stronger
// signal.
func extractApplicationURL(doc *goquery.Document, pageURL string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}

	var found string

	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.ToLower(strings.TrimSpace(sel.Text()))
		for _, keyword := range applicationKeywords {
			if strings.Contains(text, keyword) {
				found = resolveHref(base, sel)
				return found == ""
			}
		}
		return true
	})

	if found != "" {
		return found
	}

	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		lower := strings.ToLower(href)
		for _, keyword := range applicationKeywords {
			if strings.Contains(lower, keyword) {
				found = resolveHref(base, sel)
				return found == ""
			}
		}
		return true
	})

	return found
}

func resolveHref(base *url.URL, sel *goquery.Selection) string {
	href, ok := sel.Attr("href")
	if !ok {
		return ""
	}

	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}

	return base.ResolveReference(ref).String()
}

func hasVolunteerComponent(lowerText string) bool {
	return containsAny(lowerText, volunteerSignals)
}

// checkRemoteParticipation returns nil when the page says nothing either
// way.
func checkRemoteParticipation(lowerText string) *bool {
	yes := true
	no := false

	if containsAny(lowerText, remotePositive) {
		return &yes
	}
	if containsAny(lowerText, remoteNegative) {
		return &no
	}

	return nil
}

// checkHackathonEligible defaults to eligible; explicit disqualifiers beat
// positive signals.
func checkHackathonEligible(lowerText string) bool {
	if containsAny(lowerText, hackathonNegative) {
		return false
	}
	return true
}

func containsAny(text string, signals []string) bool {
	for _, signal := range signals {
		if strings.Contains(text, signal) {
			return true
		}
	}
	return false
}
