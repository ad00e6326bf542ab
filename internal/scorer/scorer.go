// Package scorer assigns relevance scores to extracted pages and decides
// whether they become opportunity records. Scoring is fully deterministic:
// identical text and configuration always produce identical scores.
package scorer

import (
	"strings"

	"github.com/opportunity-hack/grantfinder/internal/domain"
	"github.com/opportunity-hack/grantfinder/internal/policy"
)

// Default tuning values.
const (
	// DefaultThreshold is the minimum normalized score to accept a page.
	DefaultThreshold = 0.35

	// DefaultSaturationK is the half-score constant of the normalizing
	// function score/(score+k): a raw score of k maps to 0.5.
	DefaultSaturationK = 6.0

	// DefaultOccurrenceCap bounds how often a single keyword can count, so
	// keyword-stuffed pages cannot dominate.
	DefaultOccurrenceCap = 3
)

// Raw-score bonuses for populated structured fields. A concrete dollar
// amount or deadline is worth more than topical keyword matches alone.
const (
	fundingBonus     = 1.5
	deadlineBonus    = 1.0
	techFocusBonus   = 0.5
	sectorBonus      = 0.5
	eligibilityBonus = 0.5
)

// Bonuses for keyword placement outside the body text.
const (
	titleMatchBonus = 1.0
	urlMatchBonus   = 0.5
)

// Config holds scorer tuning.
type Config struct {
	Threshold     float64 `mapstructure:"threshold"`
	SaturationK   float64 `mapstructure:"saturation_k"`
	OccurrenceCap int     `mapstructure:"occurrence_cap"`
}

// WithDefaults returns a copy of the config with defaults applied for
// zero-value fields.
func (c Config) WithDefaults() Config {
	if c.Threshold <= 0 {
		c.Threshold = DefaultThreshold
	}
	if c.SaturationK <= 0 {
		c.SaturationK = DefaultSaturationK
	}
	if c.OccurrenceCap <= 0 {
		c.OccurrenceCap = DefaultOccurrenceCap
	}
	return c
}

// Scorer scores extracted content against a keyword vocabulary. Safe for
// concurrent use; all state is immutable after construction.
type Scorer struct {
	vocabulary    []KeywordWeight
	threshold     float64
	saturationK   float64
	occurrenceCap int
}

// New creates a Scorer. A nil vocabulary selects the built-in one.
func New(cfg Config, vocabulary []KeywordWeight) *Scorer {
	cfg = cfg.WithDefaults()
	if vocabulary == nil {
		vocabulary = DefaultVocabulary()
	}

	return &Scorer{
		vocabulary:    vocabulary,
		threshold:     cfg.Threshold,
		saturationK:   cfg.SaturationK,
		occurrenceCap: cfg.OccurrenceCap,
	}
}

// Threshold reports the configured acceptance threshold.
func (s *Scorer) Threshold() float64 {
	return s.threshold
}

// Score computes the relevance score in [0,1] and the accept decision for a
// page. The policy's content filters act as a hard gate: pages that are too
// short or missing every required keyword score zero without further work.
func (s *Scorer) Score(content *domain.ExtractedContent, filters policy.ContentFilters) (float64, bool) {
	lowerText := strings.ToLower(content.Text)

	if !passesHardFilter(lowerText, filters) {
		return 0, false
	}

	raw := s.keywordScore(lowerText)
	raw += s.placementScore(content)
	raw += fieldBonus(content.Fields)

	// Saturating normalization: monotone in raw, asymptotic to 1, so no
	// single page can run away from the rest of the distribution.
	normalized := raw / (raw + s.saturationK)

	return normalized, normalized >= s.threshold
}

// passesHardFilter applies the policy content filters: minimum text length
// and at least one required keyword when any are configured.
func passesHardFilter(lowerText string, filters policy.ContentFilters) bool {
	if len(lowerText) < filters.MinContentLength {
		return false
	}

	if len(filters.RequireKeywords) == 0 {
		return true
	}

	for _, keyword := range filters.RequireKeywords {
		if strings.Contains(lowerText, strings.ToLower(keyword)) {
			return true
		}
	}

	return false
}

// keywordScore accumulates weight × capped occurrence count over the
// vocabulary in table order.
func (s *Scorer) keywordScore(lowerText string) float64 {
	var score float64
	for _, kw := range s.vocabulary {
		count := strings.Count(lowerText, kw.Term)
		if count > s.occurrenceCap {
			count = s.occurrenceCap
		}
		score += kw.Weight * float64(count)
	}
	return score
}

// placementScore awards one-shot bonuses for vocabulary terms appearing in
// the title or the URL. URL matching also tries the hyphenated form since
// paths rarely contain spaces.
func (s *Scorer) placementScore(content *domain.ExtractedContent) float64 {
	lowerTitle := strings.ToLower(content.Title)
	lowerURL := strings.ToLower(content.URL)

	var score float64
	titleMatched, urlMatched := false, false

	for _, kw := range s.vocabulary {
		if !titleMatched && strings.Contains(lowerTitle, kw.Term) {
			score += titleMatchBonus
			titleMatched = true
		}
		if !urlMatched && strings.Contains(lowerURL, strings.ReplaceAll(kw.Term, " ", "-")) {
			score += urlMatchBonus
			urlMatched = true
		}
		if titleMatched && urlMatched {
			break
		}
	}

	return score
}

// fieldBonus awards a fixed bonus per populated structured field.
func fieldBonus(fields domain.CandidateFields) float64 {
	var bonus float64
	if fields.FundingAmount != nil {
		bonus += fundingBonus
	}
	if fields.Deadline != "" {
		bonus += deadlineBonus
	}
	if len(fields.TechFocus) > 0 {
		bonus += techFocusBonus
	}
	if len(fields.NonprofitSectors) > 0 {
		bonus += sectorBonus
	}
	if fields.Eligibility != "" {
		bonus += eligibilityBonus
	}
	return bonus
}
