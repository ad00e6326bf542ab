package domain

// FundingAmount is a dollar figure extracted from page text.
// RangeMax is set when the page states a range ("$10,000 - $50,000").
type FundingAmount struct {
	Amount   float64  `json:"amount"`
	Currency string   `json:"currency"`
	RangeMax *float64 `json:"range_max,omitempty"`
}

// CandidateFields holds the best-effort structured fields pulled from a page.
// Every field is optional; absence is a valid, non-error outcome.
type CandidateFields struct {
	FundingAmount       *FundingAmount `json:"funding_amount,omitempty"`
	Deadline            string         `json:"deadline,omitempty"`
	ApplicationURL      string         `json:"application_url,omitempty"`
	Eligibility         string         `json:"eligibility,omitempty"`
	TechFocus           []string       `json:"tech_focus,omitempty"`
	NonprofitSectors    []string       `json:"nonprofit_sectors,omitempty"`
	VolunteerComponent  bool           `json:"volunteer_component"`
	RemoteParticipation *bool          `json:"remote_participation,omitempty"`
	HackathonEligible   bool           `json:"hackathon_eligible"`
}

// ExtractedContent is the normalized output of parsing a fetched page.
type ExtractedContent struct {
	URL         string
	Title       string
	Description string
	// Text is the boilerplate-stripped, whitespace-normalized page text.
	Text   string
	Fields CandidateFields
	// Links are absolute outbound URLs in document order, already filtered
	// by the domain's block patterns.
	Links []string
}
