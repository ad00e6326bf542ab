package extractor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opportunity-hack/grantfinder/internal/extractor"
	"github.com/opportunity-hack/grantfinder/internal/policy"
)

func newTestExtractor() *extractor.Extractor {
	return extractor.New(extractor.Config{
		TechSkills:       []string{"python", "machine learning"},
		NonprofitSectors: []string{"education", "homelessness"},
	})
}

func TestExtract_TitlePreference(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		name string
		html string
		want string
	}{
		{
			"h1 wins",
			`<html><head><title>Page Title</title></head><body><h1>Community Tech Grant</h1></body></html>`,
			"Community Tech Grant",
		},
		{
			"og:title when no h1",
			`<html><head><meta property="og:title" content="OG Grant Title"><title>Page Title</title></head><body></body></html>`,
			"OG Grant Title",
		},
		{
			"title tag fallback",
			`<html><head><title>Plain Title</title></head><body></body></html>`,
			"Plain Title",
		},
		{
			"host placeholder when nothing",
			`<html><body><p>text</p></body></html>`,
			"Grant opportunity at example.org",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := e.Extract([]byte(tt.html), "https://example.org/grants", policy.Policy{})
			assert.Equal(t, tt.want, content.Title)
		})
	}
}

func TestExtract_DescriptionPreference(t *testing.T) {
	e := newTestExtractor()

	html := `<html><head>
		<meta name="description" content="Meta description here.">
		<meta property="og:description" content="OG description.">
	</head><body><p>First paragraph.</p></body></html>`

	content := e.Extract([]byte(html), "https://example.org/", policy.Policy{})
	assert.Equal(t, "Meta description here.", content.Description)

	html = `<html><body><p>  First   paragraph.  </p></body></html>`
	content = e.Extract([]byte(html), "https://example.org/", policy.Policy{})
	assert.Equal(t, "First paragraph.", content.Description)
}

func TestExtract_StripsBoilerplate(t *testing.T) {
	e := newTestExtractor()

	html := `<html><body>
		<nav>Navigation menu</nav>
		<script>var x = 1;</script>
		<main><p>Grant funding for nonprofit education programs.</p></main>
		<footer>Copyright notice</footer>
	</body></html>`

	content := e.Extract([]byte(html), "https://example.org/", policy.Policy{})

	assert.Contains(t, content.Text, "Grant funding for nonprofit education")
	assert.NotContains(t, content.Text, "Navigation menu")
	assert.NotContains(t, content.Text, "var x = 1")
	assert.NotContains(t, content.Text, "Copyright notice")
}

func TestExtract_MalformedHTMLDegrades(t *testing.T) {
	e := newTestExtractor()

	// Broken markup still yields usable content, never an error.
	content := e.Extract([]byte("<html><body><p>grant funding"), "https://example.org/x", policy.Policy{})

	require.NotNil(t, content)
	assert.Equal(t, "https://example.org/x", content.URL)
	assert.Contains(t, content.Text, "grant funding")
}

func TestExtract_FundingAmount(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		name      string
		text      string
		amount    float64
		rangeMax  float64
		wantRange bool
		wantNil   bool
	}{
		{name: "simple dollar amount", text: "Apply for our $50,000 technology grant today.", amount: 50000},
		{name: "range", text: "Grants range from $10,000 - $50,000 per project.", amount: 10000, rangeMax: 50000, wantRange: true},
		{name: "usd suffix", text: "Awards of 25,000 USD are available.", amount: 25000},
		{name: "decimal", text: "A stipend of $1,500.50 is provided.", amount: 1500.50},
		{name: "no amount", text: "This page has no funding figures.", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := "<html><body><p>" + tt.text + "</p></body></html>"
			content := e.Extract([]byte(html), "https://example.org/", policy.Policy{})

			if tt.wantNil {
				assert.Nil(t, content.Fields.FundingAmount)
				return
			}

			require.NotNil(t, content.Fields.FundingAmount)
			assert.InDelta(t, tt.amount, content.Fields.FundingAmount.Amount, 0.001)
			assert.Equal(t, "USD", content.Fields.FundingAmount.Currency)

			if tt.wantRange {
				require.NotNil(t, content.Fields.FundingAmount.RangeMax)
				assert.InDelta(t, tt.rangeMax, *content.Fields.FundingAmount.RangeMax, 0.001)
			}
		})
	}
}

func TestExtract_Deadline(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"month day year", "Application deadline: March 15, 2026.", "March 15, 2026"},
		{"slash date", "Applications due 03/15/2026 at midnight.", "03/15/2026"},
		{"iso date", "Submission deadline: 2026-03-15.", "2026-03-15"},
		{"apply before", "Please apply before April 1, 2026 to qualify.", "April 1, 2026"},
		{"none", "There is no closing date mentioned here.", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := "<html><body><p>" + tt.text + "</p></body></html>"
			content := e.Extract([]byte(html), "https://example.org/", policy.Policy{})
			assert.Equal(t, tt.want, content.Fields.Deadline)
		})
	}
}

func TestExtract_EligibilityAndVocabulary(t *testing.T) {
	e := newTestExtractor()

	html := `<html><body><main><p>
		Eligibility: registered 501(c)(3) nonprofits only.
		We fund Python and machine learning projects addressing homelessness
		and education. Technical volunteers welcome.
	</p></main></body></html>`

	content := e.Extract([]byte(html), "https://example.org/", policy.Policy{})

	assert.Contains(t, content.Fields.Eligibility, "501(c)(3) nonprofits")
	assert.Equal(t, []string{"python", "machine learning"}, content.Fields.TechFocus)
	assert.Equal(t, []string{"education", "homelessness"}, content.Fields.NonprofitSectors)
	assert.True(t, content.Fields.VolunteerComponent)
}

func TestExtract_RemoteParticipation(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		name string
		text string
		want *bool
	}{
		{"positive", "Remote participation is fully supported.", boolPtr(true)},
		{"negative", "This program is in-person only.", boolPtr(false)},
		{"unstated", "A grant program for nonprofits.", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := "<html><body><p>" + tt.text + "</p></body></html>"
			content := e.Extract([]byte(html), "https://example.org/", policy.Policy{})
			assert.Equal(t, tt.want, content.Fields.RemoteParticipation)
		})
	}
}

func TestExtract_HackathonEligibility(t *testing.T) {
	e := newTestExtractor()

	html := `<html><body><p>Open to established organizations only with proven revenue.</p></body></html>`
	content := e.Extract([]byte(html), "https://example.org/", policy.Policy{})
	assert.False(t, content.Fields.HackathonEligible, "explicit disqualifier should mark ineligible")

	html = `<html><body><p>We welcome prototype and early stage submissions.</p></body></html>`
	content = e.Extract([]byte(html), "https://example.org/", policy.Policy{})
	assert.True(t, content.Fields.HackathonEligible)
}

func TestExtract_ApplicationURL(t *testing.T) {
	e := newTestExtractor()

	html := `<html><body>
		<a href="/about">About us</a>
		<a href="/grants/apply">Apply Now</a>
	</body></html>`

	content := e.Extract([]byte(html), "https://example.org/grants", policy.Policy{})
	assert.Equal(t, "https://example.org/grants/apply", content.Fields.ApplicationURL)
}

func boolPtr(b bool) *bool { return &b }
