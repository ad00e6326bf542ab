// Package crawler drives the crawl: a bounded worker pool pulls URL tasks
// from the frontier and runs each through fetch, extract, and score, feeding
// discovered links back and emitting accepted records to a sink.
package crawler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/opportunity-hack/grantfinder/internal/domain"
	"github.com/opportunity-hack/grantfinder/internal/extractor"
	"github.com/opportunity-hack/grantfinder/internal/fetcher"
	"github.com/opportunity-hack/grantfinder/internal/frontier"
	"github.com/opportunity-hack/grantfinder/internal/logger"
	"github.com/opportunity-hack/grantfinder/internal/policy"
	"github.com/opportunity-hack/grantfinder/internal/ratelimit"
	"github.com/opportunity-hack/grantfinder/internal/scorer"
)

// Default orchestration values.
const (
	DefaultWorkers       = 10
	DefaultBatchSize     = 20
	DefaultFlushInterval = 30 * time.Second
)

// Config holds orchestrator configuration.
type Config struct {
	Workers       int           `mapstructure:"workers"`
	BatchSize     int           `mapstructure:"batch_size"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
}

// WithDefaults returns a copy of the config with defaults applied for
// zero-value fields.
func (c Config) WithDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = DefaultFlushInterval
	}
	return c
}

// Deps are the collaborators a Crawler is wired with.
type Deps struct {
	Policies  *policy.Registry
	Frontier  *frontier.Frontier
	Limiter   *ratelimit.Limiter
	Fetcher   *fetcher.Fetcher
	Extractor *extractor.Extractor
	Scorer    *scorer.Scorer
	Sink      RecordSink
	Logger    logger.Interface
}

// Crawler orchestrates one crawl run.
type Crawler struct {
	cfg   Config
	deps  Deps
	coord *coordinator
	emit  *emitter

	fetched  atomic.Int64
	failed   atomic.Int64
	blocked  atomic.Int64
	accepted atomic.Int64
	dropped  atomic.Int64
	enqueued atomic.Int64
}

// New creates a Crawler from its dependencies.
func New(cfg Config, deps Deps) *Crawler {
	cfg = cfg.WithDefaults()

	return &Crawler{
		cfg:   cfg,
		deps:  deps,
		coord: newCoordinator(deps.Frontier),
		emit:  newEmitter(deps.Sink, cfg.BatchSize, deps.Logger),
	}
}

// AddSeed enqueues a starting URL at depth zero. Returns false when the URL
// is invalid or already enqueued.
func (c *Crawler) AddSeed(rawURL string, source domain.SourceKind) bool {
	ok := c.deps.Frontier.Add(rawURL, 0, source, "")
	if ok {
		c.enqueued.Add(1)
	}
	return ok
}

// Run executes the crawl until the frontier drains or the context is
// cancelled. On cancellation, in-flight tasks finish their pipeline and
// their results are still emitted; no new fetches start. Run always flushes
// pending records before returning.
func (c *Crawler) Run(ctx context.Context) (*domain.CrawlStats, error) {
	stats := &domain.CrawlStats{Started: time.Now()}

	c.deps.Logger.Info("crawl started",
		"workers", c.cfg.Workers,
		"seeds", c.deps.Frontier.Len(),
	)

	stopWatch := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			c.coord.stop()
		case <-stopWatch:
		}
	}()

	flushDone := make(chan struct{})
	go c.flushLoop(ctx, flushDone)

	var wg sync.WaitGroup
	for i := 0; i < c.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.worker(ctx)
		}()
	}
	wg.Wait()

	close(stopWatch)
	close(flushDone)

	// Final flush runs even when ctx is cancelled so completed work is not
	// lost; the sink gets its own short deadline.
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	c.emit.flush(flushCtx)

	stats.Finished = time.Now()
	stats.Fetched = c.fetched.Load()
	stats.Failed = c.failed.Load()
	stats.Blocked = c.blocked.Load()
	stats.Accepted = c.accepted.Load()
	stats.Dropped = c.dropped.Load()
	stats.Enqueued = c.enqueued.Load()

	c.deps.Logger.Info("crawl finished",
		"elapsed", stats.Elapsed().String(),
		"fetched", stats.Fetched,
		"failed", stats.Failed,
		"blocked", stats.Blocked,
		"accepted", stats.Accepted,
		"dropped", stats.Dropped,
	)

	return stats, ctx.Err()
}

// worker pulls tasks until the coordinator reports drain or stop.
func (c *Crawler) worker(ctx context.Context) {
	for {
		task, ok := c.coord.next()
		if !ok {
			return
		}

		c.process(ctx, task)
		c.coord.finish()
	}
}

// process runs one task through the fetch, extract, score pipeline. All
// failures are contained here; nothing a single task does can abort the
// pool.
func (c *Crawler) process(ctx context.Context, task domain.URLTask) {
	pol := c.deps.Policies.Resolve(task.Domain)

	permit, err := c.deps.Limiter.Acquire(ctx, task.Domain)
	if err != nil {
		// Cancelled while waiting for a slot. The task never started, so it
		// counts as neither fetched nor failed.
		return
	}

	result := c.deps.Fetcher.Fetch(ctx, task.URL, pol)
	c.deps.Limiter.Release(permit)

	if !result.OK() {
		c.recordFetchFailure(task, result)
		return
	}

	c.fetched.Add(1)

	content := c.deps.Extractor.Extract(result.Body, task.URL, pol)
	score, accepted := c.deps.Scorer.Score(content, pol.ContentFilters)

	// Outbound links are enqueued even for rejected pages: a low-relevance
	// hub can still link to relevant ones.
	c.enqueueLinks(task, content.Links)

	if !accepted {
		c.dropped.Add(1)
		c.deps.Logger.Debug("page dropped",
			"url", task.URL,
			"score", score,
		)
		return
	}

	c.accepted.Add(1)
	c.emit.add(ctx, buildRecord(task, content, score))

	c.deps.Logger.Info("opportunity found",
		"url", task.URL,
		"title", content.Title,
		"score", score,
	)
}

func (c *Crawler) recordFetchFailure(task domain.URLTask, result *domain.FetchResult) {
	if result.Status == domain.FetchBlocked {
		c.blocked.Add(1)
	} else {
		c.failed.Add(1)
	}

	c.deps.Logger.Debug("fetch failed",
		"url", task.URL,
		"status", string(result.Status),
		"http_status", result.HTTPStatus,
		"attempts", result.Attempts,
		"reason", result.Reason,
	)
}

func (c *Crawler) enqueueLinks(task domain.URLTask, links []string) {
	for _, link := range links {
		if c.deps.Frontier.Add(link, task.Depth+1, domain.SourceCrawledLink, task.URL) {
			c.enqueued.Add(1)
		}
	}
}

// flushLoop periodically flushes the emitter so records reach the sink
// incrementally instead of piling up for the whole run.
func (c *Crawler) flushLoop(ctx context.Context, done <-chan struct{}) {
	ticker := time.NewTicker(c.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.emit.flush(ctx)
		case <-done:
			return
		}
	}
}

func buildRecord(task domain.URLTask, content *domain.ExtractedContent, score float64) *domain.OpportunityRecord {
	return &domain.OpportunityRecord{
		ID:           uuid.NewString(),
		URL:          task.URL,
		SourceName:   task.Domain,
		Title:        content.Title,
		Description:  content.Description,
		Excerpt:      extractor.Excerpt(content.Text),
		Fields:       content.Fields,
		Score:        score,
		Accepted:     true,
		Source:       task.Source,
		Depth:        task.Depth,
		DiscoveredAt: task.DiscoveredAt,
		FoundAt:      time.Now(),
	}
}
