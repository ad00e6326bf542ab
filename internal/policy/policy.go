// Package policy resolves per-domain crawl behavior: page and depth caps,
// concurrency limits, politeness delays, and URL pattern filters. A single
// global default is merged with optional per-domain overrides; override
// fields replace the default, unset fields inherit it.
package policy

import (
	"fmt"
	"regexp"
	"time"
)

// Default policy values, applied when neither the global default nor a
// domain override sets a field.
const (
	DefaultMaxPages      = 100
	DefaultMaxDepth      = 2
	DefaultMaxConcurrent = 5
	DefaultDelayMin      = 700 * time.Millisecond
	DefaultDelayMax      = 2100 * time.Millisecond
)

// ContentFilters gate pages before scoring.
type ContentFilters struct {
	// MinContentLength drops pages whose normalized text is shorter.
	MinContentLength int
	// RequireKeywords drops pages containing none of these terms
	// (case-insensitive substring match). Empty means no requirement.
	RequireKeywords []string
}

// Policy is the resolved, immutable crawl configuration for one domain.
type Policy struct {
	MaxPages      int
	MaxDepth      int
	MaxConcurrent int
	DelayMin      time.Duration
	DelayMax      time.Duration
	// DepthPriority selects depth-first (stack) pop order for the domain's
	// frontier queue instead of the default breadth-first order.
	DepthPriority bool
	RespectRobots bool
	// ContentPatterns mark URLs likely to hold relevant content; matching
	// URLs are prioritized within the domain's queue.
	ContentPatterns []*regexp.Regexp
	// BlockPatterns drop matching outbound links at extraction time.
	BlockPatterns  []*regexp.Regexp
	ContentFilters ContentFilters
}

// Override holds the per-domain configuration fields an operator may set.
// Nil fields inherit the global default. Pattern lists replace the default
// list wholesale rather than merging, so operators can silence noisy
// defaults per site.
type Override struct {
	MaxPages         *int           `mapstructure:"max_pages"`
	MaxDepth         *int           `mapstructure:"max_depth"`
	MaxConcurrent    *int           `mapstructure:"max_concurrent"`
	DelayMin         *time.Duration `mapstructure:"delay_min"`
	DelayMax         *time.Duration `mapstructure:"delay_max"`
	DepthPriority    *bool          `mapstructure:"depth_priority"`
	RespectRobots    *bool          `mapstructure:"respect_robots_txt"`
	ContentPatterns  []string       `mapstructure:"content_patterns"`
	BlockPatterns    []string       `mapstructure:"block_patterns"`
	MinContentLength *int           `mapstructure:"min_content_length"`
	RequireKeywords  []string       `mapstructure:"require_keywords"`
}

// ConfigError reports invalid policy configuration detected at load time.
// It is fatal: a run never starts with a broken policy table.
type ConfigError struct {
	Domain string
	Field  string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Domain == "" {
		return fmt.Sprintf("policy config: %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("policy config: domain %q: %s: %v", e.Domain, e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// compilePatterns compiles a pattern list, attributing failures to the
// given domain and field for operator-readable errors.
func compilePatterns(patterns []string, domainName, field string) ([]*regexp.Regexp, error) {
	if len(patterns) == 0 {
		return nil, nil
	}

	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, &ConfigError{Domain: domainName, Field: field, Err: err}
		}
		compiled = append(compiled, re)
	}

	return compiled, nil
}

// MatchesAny reports whether the URL matches any pattern in the list.
func MatchesAny(patterns []*regexp.Regexp, url string) bool {
	for _, re := range patterns {
		if re.MatchString(url) {
			return true
		}
	}
	return false
}
