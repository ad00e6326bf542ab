// Package config loads and validates the application configuration from
// file, environment, and defaults.
package config

import (
	"errors"

	"github.com/opportunity-hack/grantfinder/internal/crawler"
	"github.com/opportunity-hack/grantfinder/internal/feed"
	"github.com/opportunity-hack/grantfinder/internal/fetcher"
	"github.com/opportunity-hack/grantfinder/internal/logger"
	"github.com/opportunity-hack/grantfinder/internal/policy"
	"github.com/opportunity-hack/grantfinder/internal/scorer"
	"github.com/opportunity-hack/grantfinder/internal/search"
	"github.com/opportunity-hack/grantfinder/internal/storage"
)

// Config is the full application configuration.
type Config struct {
	Logger   logger.Config  `mapstructure:"logger"`
	Crawler  crawler.Config `mapstructure:"crawler"`
	Fetcher  fetcher.Config `mapstructure:"fetcher"`
	Scorer   scorer.Config  `mapstructure:"scorer"`
	Policy   PolicyConfig   `mapstructure:"policy"`
	Seeds    []string       `mapstructure:"seeds"`
	Search   search.Config  `mapstructure:"search"`
	Feeds    feed.Config    `mapstructure:"feeds"`
	Keywords KeywordsConfig `mapstructure:"keywords"`
	Output   OutputConfig   `mapstructure:"output"`
	Database DatabaseConfig `mapstructure:"database"`
}

// PolicyConfig pairs the global default policy with per-domain overrides.
type PolicyConfig struct {
	Default policy.DefaultConfig       `mapstructure:"default"`
	Domains map[string]policy.Override `mapstructure:"domains"`
}

// KeywordsConfig holds the extractor's matching vocabulary.
type KeywordsConfig struct {
	TechSkills       []string `mapstructure:"tech_skills"`
	NonprofitSectors []string `mapstructure:"nonprofit_sectors"`
}

// OutputConfig selects local file outputs.
type OutputConfig struct {
	Dir    string `mapstructure:"dir"`
	NDJSON bool   `mapstructure:"ndjson"`
	CSV    bool   `mapstructure:"csv"`
	// TopResults caps the summary table; 0 shows everything.
	TopResults int `mapstructure:"top_results"`
}

// DatabaseConfig enables the optional Postgres sink.
type DatabaseConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	storage.Config `mapstructure:",squash"`
}

// Validate checks cross-field constraints not already enforced by the
// policy registry. Violations are fatal at startup.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 && !c.Search.Enabled && !c.Feeds.Enabled {
		return errors.New("config: no seed sources: set seeds, enable search, or enable feeds")
	}

	if !c.Output.NDJSON && !c.Output.CSV && !c.Database.Enabled {
		return errors.New("config: no output sink: enable ndjson, csv, or database")
	}

	if c.Scorer.Threshold < 0 || c.Scorer.Threshold > 1 {
		return errors.New("config: scorer threshold must be within [0,1]")
	}

	return nil
}
