package scorer

// KeywordWeight pairs a lowercase search term with its scoring weight.
type KeywordWeight struct {
	Term   string
	Weight float64
}

// Weight tiers. Grant signals are the strongest indicator that a page is an
// actual funding opportunity rather than news about one.
const (
	grantSignalWeight = 1.0
	urgencyWeight     = 0.75
	techForGoodWeight = 0.5
)

// DefaultVocabulary returns the built-in keyword table in a fixed order.
// Order matters for nothing but reproducibility of iteration, which keeps
// scoring byte-for-byte deterministic across runs.
func DefaultVocabulary() []KeywordWeight {
	vocabulary := make([]KeywordWeight, 0, len(grantSignals)+len(urgencyTerms)+len(techForGoodTerms))
	for _, term := range grantSignals {
		vocabulary = append(vocabulary, KeywordWeight{Term: term, Weight: grantSignalWeight})
	}
	for _, term := range urgencyTerms {
		vocabulary = append(vocabulary, KeywordWeight{Term: term, Weight: urgencyWeight})
	}
	for _, term := range techForGoodTerms {
		vocabulary = append(vocabulary, KeywordWeight{Term: term, Weight: techForGoodWeight})
	}
	return vocabulary
}

// grantSignals are strong indicators of an open funding opportunity.
var grantSignals = []string{
	"grant application",
	"funding opportunity",
	"grant opportunity",
	"request for proposals",
	"call for applications",
	"call for proposals",
	"notice of funding",
	"grant guidelines",
	"eligibility criteria",
	"selection criteria",
	"award amount",
	"funding amount",
	"grant period",
	"application process",
}

// urgencyTerms indicate an active application window.
var urgencyTerms = []string{
	"apply now",
	"application deadline",
	"submission deadline",
	"applications due",
	"closing soon",
	"deadline approaching",
}

// techForGoodTerms match the mission focus: technology serving nonprofits
// and communities.
var techForGoodTerms = []string{
	"technology for social good",
	"hackathon funding",
	"tech volunteer",
	"coding for good",
	"nonprofit technology",
	"civic tech",
	"social impact technology",
	"digital inclusion",
	"nonprofit digital transformation",
	"tech skills-based volunteering",
	"capacity building technology",
	"nonprofit software development",
	"social innovation tech",
	"community tech",
	"tech4good",
	"tech for nonprofit",
}
