package crawl

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/opportunity-hack/grantfinder/internal/config"
)

func registerFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.String("config", "", "config file (default ./config.yaml)")
	flags.Bool("debug", false, "enable debug logging")

	flags.Int("workers", 0, "worker pool size")
	flags.Int("max-depth", 0, "default maximum crawl depth")
	flags.Int("max-pages", 0, "default per-domain page cap")
	flags.Int("max-concurrent", 0, "default per-domain concurrency cap")
	flags.Duration("delay-min", 0, "default minimum inter-request delay per domain")
	flags.Duration("delay-max", 0, "default maximum inter-request delay per domain")
	flags.Bool("depth-first", false, "prefer depth-first frontier order by default")
	flags.Float64("threshold", 0, "relevance acceptance threshold (0-1)")
	flags.Duration("save-interval", 0, "incremental record flush interval")

	flags.StringSlice("seeds", nil, "seed URLs (replaces configured seeds)")
	flags.Bool("search", false, "enable search API seed discovery")
	flags.Bool("rss", false, "enable RSS feed seed discovery")

	flags.String("output-dir", "", "directory for NDJSON/CSV output")
	flags.String("proxy-file", "", "file with one proxy URI per line")
}

// applyFlags overlays explicitly set flags onto the loaded configuration.
// Only changed flags override; defaults never clobber config file values.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("debug") {
		cfg.Logger.Level = "debug"
	}
	if flags.Changed("workers") {
		cfg.Crawler.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("max-depth") {
		cfg.Policy.Default.MaxDepth, _ = flags.GetInt("max-depth")
	}
	if flags.Changed("max-pages") {
		cfg.Policy.Default.MaxPages, _ = flags.GetInt("max-pages")
	}
	if flags.Changed("max-concurrent") {
		cfg.Policy.Default.MaxConcurrent, _ = flags.GetInt("max-concurrent")
	}
	if flags.Changed("delay-min") {
		cfg.Policy.Default.DelayMin, _ = flags.GetDuration("delay-min")
	}
	if flags.Changed("delay-max") {
		cfg.Policy.Default.DelayMax, _ = flags.GetDuration("delay-max")
	}
	if flags.Changed("depth-first") {
		cfg.Policy.Default.DepthPriority, _ = flags.GetBool("depth-first")
	}
	if flags.Changed("threshold") {
		cfg.Scorer.Threshold, _ = flags.GetFloat64("threshold")
	}
	if flags.Changed("save-interval") {
		var interval time.Duration
		interval, _ = flags.GetDuration("save-interval")
		cfg.Crawler.FlushInterval = interval
	}
	if flags.Changed("seeds") {
		cfg.Seeds, _ = flags.GetStringSlice("seeds")
	}
	if flags.Changed("search") {
		cfg.Search.Enabled, _ = flags.GetBool("search")
	}
	if flags.Changed("rss") {
		cfg.Feeds.Enabled, _ = flags.GetBool("rss")
	}
	if flags.Changed("output-dir") {
		cfg.Output.Dir, _ = flags.GetString("output-dir")
	}

	if flags.Changed("proxy-file") {
		path, _ := flags.GetString("proxy-file")
		proxies, err := readProxyFile(path)
		if err != nil {
			return err
		}
		cfg.Fetcher.ProxyURLs = proxies
	}

	return cfg.Validate()
}
