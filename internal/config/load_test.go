package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opportunity-hack/grantfinder/internal/config"
	"github.com/opportunity-hack/grantfinder/internal/scorer"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.Seeds, "built-in seed list applies without a config file")
	assert.InDelta(t, scorer.DefaultThreshold, cfg.Scorer.Threshold, 0.0001)
	assert.True(t, cfg.Output.NDJSON)
	assert.True(t, cfg.Output.CSV)
	assert.False(t, cfg.Database.Enabled)
	assert.False(t, cfg.Search.Enabled)

	// The shipped domain overrides come through the defaults too.
	assert.Contains(t, cfg.Policy.Domains, "fundsforngos.org")
}

func TestLoad_ConfigFile(t *testing.T) {
	path := writeConfigFile(t, `
seeds:
  - https://example.org/grants
crawler:
  workers: 3
  flush_interval: 5s
scorer:
  threshold: 0.5
policy:
  default:
    max_depth: 4
  domains:
    example.org:
      max_pages: 42
      depth_priority: true
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"https://example.org/grants"}, cfg.Seeds)
	assert.Equal(t, 3, cfg.Crawler.Workers)
	assert.Equal(t, 5*time.Second, cfg.Crawler.FlushInterval)
	assert.InDelta(t, 0.5, cfg.Scorer.Threshold, 0.0001)
	assert.Equal(t, 4, cfg.Policy.Default.MaxDepth)

	ov, ok := cfg.Policy.Domains["example.org"]
	require.True(t, ok)
	require.NotNil(t, ov.MaxPages)
	assert.Equal(t, 42, *ov.MaxPages)
	require.NotNil(t, ov.DepthPriority)
	assert.True(t, *ov.DepthPriority)
}

func TestLoad_MissingNamedFileFails(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_EnvAliases(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "env-api-key-0123456789abcdef")
	t.Setenv("GOOGLE_CSE_ID", "env-engine-id")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "env-api-key-0123456789abcdef", cfg.Search.APIKey)
	assert.Equal(t, "env-engine-id", cfg.Search.EngineID)
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestLoad_PrefixedEnvOverride(t *testing.T) {
	t.Setenv("GRANTFINDER_SCORER_THRESHOLD", "0.6")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.InDelta(t, 0.6, cfg.Scorer.Threshold, 0.0001)
}

func TestValidate(t *testing.T) {
	base := func() *config.Config {
		return &config.Config{
			Seeds:  []string{"https://example.org"},
			Output: config.OutputConfig{NDJSON: true},
			Scorer: scorer.Config{Threshold: 0.35},
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("no seed sources", func(t *testing.T) {
		cfg := base()
		cfg.Seeds = nil
		assert.ErrorContains(t, cfg.Validate(), "no seed sources")
	})

	t.Run("feeds count as a seed source", func(t *testing.T) {
		cfg := base()
		cfg.Seeds = nil
		cfg.Feeds.Enabled = true
		assert.NoError(t, cfg.Validate())
	})

	t.Run("no output sink", func(t *testing.T) {
		cfg := base()
		cfg.Output.NDJSON = false
		assert.ErrorContains(t, cfg.Validate(), "no output sink")
	})

	t.Run("threshold out of range", func(t *testing.T) {
		cfg := base()
		cfg.Scorer.Threshold = 1.5
		assert.ErrorContains(t, cfg.Validate(), "threshold")
	})
}
