package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Built-in seed URLs: tech-for-good funders, corporate grant programs, and
// hackathon/innovation funds.
var defaultSeeds = []string{
	"https://www.techsoup.org/community/grant-opportunities",
	"https://www.ffwd.org/tech-nonprofit-funding-opportunities/",
	"https://www.nten.org/funding/",
	"https://digitalimpactalliance.org/funding-opportunities/",
	"https://www.nethope.org/what-we-do/grants-and-funding-opportunities/",
	"https://www.google.org/impactchallenge/",
	"https://nonprofit.microsoft.com/en-us/grants",
	"https://www.okta.com/okta-for-good/",
	"https://www.twilio.org/impact-fund/",
	"https://www.salesforce.org/grants/",
	"https://mlh.io/grants",
	"https://www.knightfoundation.org/grants",
	"https://solve.mit.edu/challenges",
	"https://www.drkfoundation.org/apply-for-funding/",
	"https://echoinggreen.org/fellowship/",
	"https://www.challenge.gov/",
	"https://www.grants.gov/web/grants/search-grants.html",
	"https://usdigitalresponse.org/governments/funding/",
	"https://candid.org/find-funding",
}

// defaultSearchQueries seed the search source when none are configured.
// Year-stamped queries keep results current without config edits.
func defaultSearchQueries() []string {
	year := time.Now().Year()

	return []string{
		"technology for social good grants",
		"hackathon funding nonprofit application",
		"tech volunteer grants nonprofit",
		"tech for good funding opportunity",
		"digital nonprofit grants application",
		"Arizona nonprofit technology grants",
		"Arizona tech for social good funding",
		"Arizona hackathon funding social impact",
		"grant application nonprofit technology",
		"grant application civic tech",
		"grant application digital inclusion",
		fmt.Sprintf("%d nonprofit technology grants", year),
		fmt.Sprintf("%d tech for social good funding", year),
		"upcoming hackathon funding social impact",
		"nonprofit technology grant application",
		"open source social impact funding",
		"hackathon social good grant",
	}
}

// defaultFeeds are RSS channels that publish grant announcements.
var defaultFeeds = []string{
	"https://www.grants.gov/rss/GG_NewOppByCategory.xml",
	"https://philanthropynewsdigest.org/feeds/rfps",
	"https://www.insidephilanthropy.com/home/feed",
	"https://www.grantcraft.org/feed/",
	"https://ssir.org/rss/",
}

// defaultBlockPatterns drop link targets that never contain grant content:
// paywalled aggregators, social networks, and account/utility pages.
var defaultBlockPatterns = []string{
	`instrumentl\.com`,
	`grantwatch\.com`,
	`grantforward\.com`,
	`grantgopher\.com`,
	`grantmakers\.io`,
	`grantselect\.com`,
	`grantstation\.com`,
	`nerdwallet\.com`,
	`console\.aws\.amazon\.com`,
	`linkedin\.com`,
	`twitter\.com`,
	`facebook\.com`,
	`instagram\.com`,
	`youtube\.com`,
	`tiktok\.com`,
	`google\.com/search`,
	`pinterest\.com`,
	`reddit\.com`,
	`tumblr\.com`,
	`medium\.com/login`,
	`wikipedia\.org`,
	`/login`,
	`/signin`,
	`/signup`,
	`/register`,
	`/cart`,
	`/checkout`,
	`/account`,
	`/privacy`,
	`/terms`,
}

// defaultRequireKeywords gate scoring: a page mentioning none of these is
// rejected before the keyword table is consulted.
var defaultRequireKeywords = []string{"grant", "funding", "opportunity", "apply"}

var defaultTechSkills = []string{
	"python", "javascript", "typescript", "react", "node.js", "java",
	"mobile development", "android", "ios", "flutter",
	"web development", "frontend", "backend", "full stack", "api",
	"data analysis", "data science", "machine learning", "artificial intelligence",
	"nlp", "computer vision", "deep learning",
	"ux design", "ui design", "user experience", "product design",
	"devops", "cloud", "aws", "azure", "gcp", "kubernetes", "docker",
	"database", "sql", "nosql", "postgresql", "mongodb",
	"blockchain", "cybersecurity", "iot", "augmented reality", "virtual reality",
	"product management", "project management", "agile",
}

var defaultNonprofitSectors = []string{
	"education", "healthcare", "environment", "poverty", "homelessness",
	"disaster relief", "human rights", "arts", "culture", "community development",
	"economic development", "youth", "elderly", "veterans", "disabilities",
	"mental health", "advocacy", "legal aid", "refugees", "immigration",
	"food security", "hunger", "clean water", "affordable housing",
	"racial equity", "gender equality", "financial inclusion",
	"digital literacy", "workforce development", "child welfare", "public health",
	"criminal justice", "climate change", "conservation",
	"renewable energy", "social justice", "civic engagement",
}

// domainDefaults carry tuned crawl behavior for known grant-heavy sites.
// fundsforngos.org is deep and article-dense, so it gets depth-first order,
// a higher page budget, and a slower delay range.
var domainDefaults = map[string]any{
	"fundsforngos.org": map[string]any{
		"max_pages":          200,
		"max_depth":          4,
		"max_concurrent":     5,
		"depth_priority":     true,
		"respect_robots_txt": true,
		"delay_min":          "1500ms",
		"delay_max":          "3s",
		"content_patterns":   []string{`/grants/`, `/funds/`, `/opportunities/`},
		"block_patterns":     []string{`/author/`, `/category/`, `/tag/`, `/page/`, `/search/`},
		"min_content_length": 1000,
		"require_keywords":   []string{"grant", "funding", "opportunity", "apply"},
	},
}

// SetDefaults installs default values on the viper instance. Defaults lose
// to both config file values and environment variables.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger", map[string]any{
		"level":       "info",
		"encoding":    "json",
		"development": false,
	})

	v.SetDefault("crawler", map[string]any{
		"workers":        10,
		"batch_size":     20,
		"flush_interval": "30s",
	})

	v.SetDefault("fetcher", map[string]any{
		"timeout":      "10s",
		"max_retries":  3,
		"backoff_base": "1s",
		"backoff_max":  "30s",
	})

	v.SetDefault("scorer", map[string]any{
		"threshold":      0.35,
		"saturation_k":   6.0,
		"occurrence_cap": 3,
	})

	v.SetDefault("policy.default", map[string]any{
		"max_pages":          100,
		"max_depth":          2,
		"max_concurrent":     5,
		"delay_min":          "700ms",
		"delay_max":          "2100ms",
		"depth_priority":     false,
		"respect_robots_txt": true,
		"block_patterns":     defaultBlockPatterns,
		"min_content_length": 300,
		"require_keywords":   defaultRequireKeywords,
	})
	v.SetDefault("policy.domains", domainDefaults)

	v.SetDefault("seeds", defaultSeeds)

	v.SetDefault("search", map[string]any{
		"enabled":           false,
		"queries":           defaultSearchQueries(),
		"results_per_query": 10,
		"timeout":           "15s",
	})

	v.SetDefault("feeds", map[string]any{
		"enabled": false,
		"urls":    defaultFeeds,
		"timeout": "15s",
	})

	v.SetDefault("keywords", map[string]any{
		"tech_skills":       defaultTechSkills,
		"nonprofit_sectors": defaultNonprofitSectors,
	})

	v.SetDefault("output", map[string]any{
		"dir":         "results",
		"ndjson":      true,
		"csv":         true,
		"top_results": 25,
	})

	v.SetDefault("database", map[string]any{
		"enabled": false,
		"host":    "localhost",
		"port":    "5432",
		"user":    "grantfinder",
		"dbname":  "grantfinder",
		"sslmode": "disable",
	})
}
