// Package crawl implements the crawl command: it wires the configuration,
// seed sources, crawl engine, and output sinks together and runs one crawl.
package crawl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/opportunity-hack/grantfinder/internal/config"
	"github.com/opportunity-hack/grantfinder/internal/crawler"
	"github.com/opportunity-hack/grantfinder/internal/domain"
	"github.com/opportunity-hack/grantfinder/internal/extractor"
	"github.com/opportunity-hack/grantfinder/internal/feed"
	"github.com/opportunity-hack/grantfinder/internal/fetcher"
	"github.com/opportunity-hack/grantfinder/internal/frontier"
	"github.com/opportunity-hack/grantfinder/internal/logger"
	"github.com/opportunity-hack/grantfinder/internal/output"
	"github.com/opportunity-hack/grantfinder/internal/policy"
	"github.com/opportunity-hack/grantfinder/internal/ratelimit"
	"github.com/opportunity-hack/grantfinder/internal/scorer"
	"github.com/opportunity-hack/grantfinder/internal/search"
	"github.com/opportunity-hack/grantfinder/internal/storage"
)

// Output file names inside the output directory.
const (
	ndjsonFileName = "opportunities.ndjson"
	csvFileName    = "opportunities.csv"
)

// Command returns the crawl command.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl for grant opportunities",
		Long: `Crawl seed URLs (plus optional search and RSS discovery) for grant
opportunities, score each page, and write accepted records to the configured
sinks.`,
		RunE: runCrawl,
	}

	registerFlags(cmd)

	return cmd
}

func runCrawl(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	log := logger.New(cfg.Logger)

	// Policy problems are fatal before any fetch happens.
	registry, err := policy.NewRegistry(cfg.Policy.Default, cfg.Policy.Domains)
	if err != nil {
		return err
	}

	fetch, err := fetcher.New(cfg.Fetcher, log)
	if err != nil {
		return err
	}

	sink, collector, err := buildSinks(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	front := frontier.New(registry)
	engine := crawler.New(cfg.Crawler, crawler.Deps{
		Policies: registry,
		Frontier: front,
		Limiter:  ratelimit.New(registry),
		Fetcher:  fetch,
		Extractor: extractor.New(extractor.Config{
			TechSkills:       cfg.Keywords.TechSkills,
			NonprofitSectors: cfg.Keywords.NonprofitSectors,
		}),
		Scorer: scorer.New(cfg.Scorer, nil),
		Sink:   sink,
		Logger: log,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seedFrontier(ctx, engine, cfg, log)

	stats, runErr := engine.Run(ctx)

	if closeErr := sink.Close(); closeErr != nil {
		log.Error("closing sinks", "error", closeErr.Error())
	}

	output.RenderSummary(os.Stdout, stats, collector.Records(), cfg.Output.TopResults)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	return nil
}

// seedFrontier loads depth-zero tasks from the static seed list and the
// optional search and RSS sources.
func seedFrontier(ctx context.Context, engine *crawler.Crawler, cfg *config.Config, log logger.Interface) {
	for _, seed := range cfg.Seeds {
		engine.AddSeed(seed, domain.SourceSeed)
	}

	if cfg.Search.Enabled {
		for _, u := range search.NewGoogleClient(cfg.Search, log).Discover(ctx) {
			engine.AddSeed(u, domain.SourceSearch)
		}
	}

	if cfg.Feeds.Enabled {
		for _, u := range feed.NewSource(cfg.Feeds, log).Discover(ctx) {
			engine.AddSeed(u, domain.SourceRSS)
		}
	}
}

// buildSinks assembles the configured record sinks plus the in-memory
// collector used for the end-of-run summary table.
func buildSinks(ctx context.Context, cfg *config.Config) (*output.MultiSink, *output.CollectorSink, error) {
	collector := output.NewCollectorSink()
	sinks := []output.Sink{collector}

	if cfg.Output.NDJSON || cfg.Output.CSV {
		if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create output dir: %w", err)
		}
	}

	if cfg.Output.NDJSON {
		ndjson, err := output.NewNDJSONSink(filepath.Join(cfg.Output.Dir, ndjsonFileName))
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, ndjson)
	}

	if cfg.Output.CSV {
		csv, err := output.NewCSVSink(filepath.Join(cfg.Output.Dir, csvFileName))
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, csv)
	}

	if cfg.Database.Enabled {
		db, err := storage.Connect(cfg.Database.Config)
		if err != nil {
			return nil, nil, err
		}

		store := storage.NewRecordStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, nil, err
		}

		sinks = append(sinks, store)
	}

	return output.NewMultiSink(sinks...), collector, nil
}

// readProxyFile loads one proxy URI per line, skipping blanks and comments.
func readProxyFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open proxy file: %w", err)
	}
	defer file.Close()

	var proxies []string

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		proxies = append(proxies, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read proxy file: %w", err)
	}

	return proxies, nil
}
