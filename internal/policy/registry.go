package policy

import (
	"errors"
	"strings"
	"sync"
	"time"
)

var errInvertedDelayRange = errors.New("delay_max must be >= delay_min")

// DefaultConfig holds the global default policy in its config-facing form.
type DefaultConfig struct {
	MaxPages         int            `mapstructure:"max_pages"`
	MaxDepth         int            `mapstructure:"max_depth"`
	MaxConcurrent    int            `mapstructure:"max_concurrent"`
	DelayMin         time.Duration  `mapstructure:"delay_min"`
	DelayMax         time.Duration  `mapstructure:"delay_max"`
	DepthPriority    bool           `mapstructure:"depth_priority"`
	RespectRobots    bool           `mapstructure:"respect_robots_txt"`
	ContentPatterns  []string       `mapstructure:"content_patterns"`
	BlockPatterns    []string       `mapstructure:"block_patterns"`
	MinContentLength int            `mapstructure:"min_content_length"`
	RequireKeywords  []string       `mapstructure:"require_keywords"`
}

// Registry resolves the effective Policy for any domain. All regexes are
// compiled and validated at construction; Resolve never fails.
type Registry struct {
	defaultPolicy Policy
	overrides     map[string]Policy

	mu    sync.RWMutex
	cache map[string]Policy
}

// NewRegistry builds a registry from the global default and per-domain
// overrides. Returns a *ConfigError if any pattern fails to compile or a
// delay range is inverted.
func NewRegistry(def DefaultConfig, overrides map[string]Override) (*Registry, error) {
	base, err := buildDefault(def)
	if err != nil {
		return nil, err
	}

	resolved := make(map[string]Policy, len(overrides))
	for domainName, ov := range overrides {
		merged, mergeErr := merge(base, domainName, ov)
		if mergeErr != nil {
			return nil, mergeErr
		}
		resolved[strings.ToLower(domainName)] = merged
	}

	return &Registry{
		defaultPolicy: base,
		overrides:     resolved,
		cache:         make(map[string]Policy),
	}, nil
}

// Resolve returns the effective policy for a domain. An exact override wins;
// otherwise parent domains are consulted (sub.example.com inherits an
// example.com override) before falling back to the global default.
func (r *Registry) Resolve(domainName string) Policy {
	key := strings.ToLower(domainName)

	r.mu.RLock()
	cached, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return cached
	}

	resolved := r.lookup(key)

	r.mu.Lock()
	r.cache[key] = resolved
	r.mu.Unlock()

	return resolved
}

// Default returns the global default policy.
func (r *Registry) Default() Policy {
	return r.defaultPolicy
}

// HasOverride reports whether the domain (or a parent) carries an override.
func (r *Registry) HasOverride(domainName string) bool {
	key := strings.ToLower(domainName)
	if _, ok := r.overrides[key]; ok {
		return true
	}
	parts := strings.Split(key, ".")
	for i := 1; i < len(parts)-1; i++ {
		if _, ok := r.overrides[strings.Join(parts[i:], ".")]; ok {
			return true
		}
	}
	return false
}

func (r *Registry) lookup(key string) Policy {
	if p, ok := r.overrides[key]; ok {
		return p
	}

	// Walk parent domains: sub.example.com -> example.com.
	parts := strings.Split(key, ".")
	for i := 1; i < len(parts)-1; i++ {
		parent := strings.Join(parts[i:], ".")
		if p, ok := r.overrides[parent]; ok {
			return p
		}
	}

	return r.defaultPolicy
}

func buildDefault(def DefaultConfig) (Policy, error) {
	p := Policy{
		MaxPages:      def.MaxPages,
		MaxDepth:      def.MaxDepth,
		MaxConcurrent: def.MaxConcurrent,
		DelayMin:      def.DelayMin,
		DelayMax:      def.DelayMax,
		DepthPriority: def.DepthPriority,
		RespectRobots: def.RespectRobots,
		ContentFilters: ContentFilters{
			MinContentLength: def.MinContentLength,
			RequireKeywords:  def.RequireKeywords,
		},
	}

	if p.MaxPages <= 0 {
		p.MaxPages = DefaultMaxPages
	}
	if p.MaxDepth <= 0 {
		p.MaxDepth = DefaultMaxDepth
	}
	if p.MaxConcurrent <= 0 {
		p.MaxConcurrent = DefaultMaxConcurrent
	}
	if p.DelayMin <= 0 {
		p.DelayMin = DefaultDelayMin
	}
	if p.DelayMax <= 0 {
		p.DelayMax = DefaultDelayMax
	}
	if p.DelayMax < p.DelayMin {
		return Policy{}, &ConfigError{Field: "delay range", Err: errInvertedDelayRange}
	}

	var err error
	if p.ContentPatterns, err = compilePatterns(def.ContentPatterns, "", "content_patterns"); err != nil {
		return Policy{}, err
	}
	if p.BlockPatterns, err = compilePatterns(def.BlockPatterns, "", "block_patterns"); err != nil {
		return Policy{}, err
	}

	return p, nil
}

// merge applies an override on top of the default. Scalar fields replace
// when set; pattern and keyword lists replace wholesale when present.
func merge(base Policy, domainName string, ov Override) (Policy, error) {
	p := base

	if ov.MaxPages != nil {
		p.MaxPages = *ov.MaxPages
	}
	if ov.MaxDepth != nil {
		p.MaxDepth = *ov.MaxDepth
	}
	if ov.MaxConcurrent != nil {
		p.MaxConcurrent = *ov.MaxConcurrent
	}
	if ov.DelayMin != nil {
		p.DelayMin = *ov.DelayMin
	}
	if ov.DelayMax != nil {
		p.DelayMax = *ov.DelayMax
	}
	if ov.DepthPriority != nil {
		p.DepthPriority = *ov.DepthPriority
	}
	if ov.RespectRobots != nil {
		p.RespectRobots = *ov.RespectRobots
	}
	if ov.MinContentLength != nil {
		p.ContentFilters.MinContentLength = *ov.MinContentLength
	}
	if ov.RequireKeywords != nil {
		p.ContentFilters.RequireKeywords = ov.RequireKeywords
	}

	if p.DelayMax < p.DelayMin {
		return Policy{}, &ConfigError{Domain: domainName, Field: "delay range", Err: errInvertedDelayRange}
	}

	var err error
	if ov.ContentPatterns != nil {
		if p.ContentPatterns, err = compilePatterns(ov.ContentPatterns, domainName, "content_patterns"); err != nil {
			return Policy{}, err
		}
	}
	if ov.BlockPatterns != nil {
		if p.BlockPatterns, err = compilePatterns(ov.BlockPatterns, domainName, "block_patterns"); err != nil {
			return Policy{}, err
		}
	}

	return p, nil
}
