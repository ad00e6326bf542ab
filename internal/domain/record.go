package domain

import (
	"fmt"
	"time"
)

// OpportunityRecord is an accepted grant opportunity. Immutable after
// creation; at most one record exists per normalized URL per crawl run.
type OpportunityRecord struct {
	ID           string          `json:"id"`
	URL          string          `json:"url"`
	SourceName   string          `json:"source_name"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Excerpt      string          `json:"excerpt"`
	Fields       CandidateFields `json:"fields"`
	Score        float64         `json:"relevance_score"`
	Accepted     bool            `json:"accepted"`
	Source       SourceKind      `json:"source_kind"`
	Depth        int             `json:"depth"`
	DiscoveredAt time.Time       `json:"discovered_at"`
	FoundAt      time.Time       `json:"found_at"`
}

// FundingString renders the funding amount for reports, or "" when absent.
func (r *OpportunityRecord) FundingString() string {
	fa := r.Fields.FundingAmount
	if fa == nil {
		return ""
	}
	if fa.RangeMax != nil {
		return fmt.Sprintf("%s %.2f - %.2f", fa.Currency, fa.Amount, *fa.RangeMax)
	}
	return fmt.Sprintf("%s %.2f", fa.Currency, fa.Amount)
}
