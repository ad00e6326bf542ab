// Package fetcher performs single-URL HTTP retrieval for the crawl engine:
// timeouts, retry with exponential backoff, user-agent rotation, optional
// proxy rotation, and robots.txt compliance.
package fetcher

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"mime"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/opportunity-hack/grantfinder/internal/domain"
	"github.com/opportunity-hack/grantfinder/internal/logger"
	"github.com/opportunity-hack/grantfinder/internal/policy"
)

// Default fetch configuration values.
const (
	DefaultTimeout     = 10 * time.Second
	DefaultMaxRetries  = 3
	DefaultBackoffBase = 1 * time.Second
	DefaultBackoffMax  = 30 * time.Second
)

// maxResponseBodyBytes limits the size of fetched page bodies.
const maxResponseBodyBytes = 5 * 1024 * 1024 // 5 MB

// Reason strings for blocked results.
const (
	ReasonRobotsDisallowed = "robots_disallowed"
	ReasonNonHTML          = "non_html_content"
)

// Config holds fetcher configuration.
type Config struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
	BackoffBase time.Duration `mapstructure:"backoff_base"`
	BackoffMax  time.Duration `mapstructure:"backoff_max"`
	UserAgents  []string      `mapstructure:"user_agents"`
	ProxyURLs   []string      `mapstructure:"proxy_urls"`
}

// WithDefaults returns a copy of the config with defaults applied for
// zero-value fields.
func (c Config) WithDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = DefaultBackoffBase
	}
	if c.BackoffMax <= 0 {
		c.BackoffMax = DefaultBackoffMax
	}
	return c
}

// Fetcher retrieves pages. It is safe for concurrent use.
type Fetcher struct {
	client      *http.Client
	robots      *RobotsChecker
	agents      *AgentPool
	maxRetries  int
	timeout     time.Duration
	backoffBase time.Duration
	backoffMax  time.Duration
	log         logger.Interface
}

// New creates a Fetcher. Proxy URIs, when configured, are rotated
// round-robin per attempt.
func New(cfg Config, log logger.Interface) (*Fetcher, error) {
	cfg = cfg.WithDefaults()

	ring, err := NewProxyRing(cfg.ProxyURLs)
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxyFn := ring.ProxyFunc(); proxyFn != nil {
		transport.Proxy = proxyFn
	}

	client := &http.Client{Transport: transport}
	agents := NewAgentPool(cfg.UserAgents)

	return &Fetcher{
		client:      client,
		robots:      NewRobotsChecker(client, agents.First()),
		agents:      agents,
		maxRetries:  cfg.MaxRetries,
		timeout:     cfg.Timeout,
		backoffBase: cfg.BackoffBase,
		backoffMax:  cfg.BackoffMax,
		log:         log,
	}, nil
}

// attemptState is the explicit retry state machine: which attempt is next
// and how long to back off before it.
type attemptState struct {
	attempt     int
	maxAttempts int
	nextBackoff time.Duration
	backoffMax  time.Duration
}

// advance records a retryable failure and computes the next backoff with
// jitter. Returns false when attempts are exhausted.
func (s *attemptState) advance() bool {
	s.attempt++
	if s.attempt >= s.maxAttempts {
		return false
	}

	jitter := time.Duration(rand.Int63n(int64(s.nextBackoff/2 + 1)))
	s.nextBackoff = min(s.nextBackoff*2, s.backoffMax)
	s.nextBackoff += jitter
	if s.nextBackoff > s.backoffMax {
		s.nextBackoff = s.backoffMax
	}

	return true
}

// Fetch retrieves a URL under the given domain policy. The returned result
// always has a terminal Status; fetch failures are data, not errors.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, pol policy.Policy) *domain.FetchResult {
	start := time.Now()

	result := &domain.FetchResult{URL: rawURL}
	defer func() { result.Elapsed = time.Since(start) }()

	if pol.RespectRobots {
		allowed, err := f.robots.IsAllowed(ctx, rawURL)
		if err == nil && !allowed {
			result.Status = domain.FetchBlocked
			result.Reason = ReasonRobotsDisallowed
			return result
		}
	}

	state := attemptState{
		maxAttempts: f.maxRetries + 1,
		nextBackoff: f.backoffBase,
		backoffMax:  f.backoffMax,
	}

	for {
		result.Attempts = state.attempt + 1

		status, retryAfter := f.attempt(ctx, rawURL, result)
		result.Status = status

		if status == domain.FetchOK || status == domain.FetchBlocked {
			return result
		}
		if retryAfter < 0 {
			// Non-retryable: a permanent HTTP status or a request that can
			// never be built.
			return result
		}
		if ctx.Err() != nil {
			return result
		}
		if !state.advance() {
			return result
		}

		delay := state.nextBackoff
		if retryAfter > 0 {
			delay = retryAfter
		}

		f.log.Debug("retrying fetch",
			"url", rawURL,
			"attempt", state.attempt,
			"status", string(status),
			"delay", delay.String(),
		)

		if err := sleep(ctx, delay); err != nil {
			return result
		}
	}
}

// attempt performs one GET. The second return value is the retry delay:
// negative for non-retryable failures, zero for backoff-schedule retries,
// positive when Retry-After supplied one.
func (f *Fetcher) attempt(ctx context.Context, rawURL string, result *domain.FetchResult) (domain.FetchStatus, time.Duration) {
	attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return domain.FetchNetworkError, -1
	}

	req.Header.Set("User-Agent", f.agents.Pick())
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return classifyTransportError(err), 0
	}
	defer resp.Body.Close()

	result.HTTPStatus = resp.StatusCode

	switch {
	case resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices:
		return f.readBody(resp, result)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable:
		return domain.FetchHTTPError, parseRetryAfter(resp.Header.Get("Retry-After"))
	default:
		return domain.FetchHTTPError, -1
	}
}

// readBody reads an HTML body up to the size limit. Non-HTML content types
// are reported as blocked without reading the body.
func (f *Fetcher) readBody(resp *http.Response, result *domain.FetchResult) (domain.FetchStatus, time.Duration) {
	if !isHTMLContentType(resp.Header.Get("Content-Type")) {
		result.Reason = ReasonNonHTML
		return domain.FetchBlocked, 0
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return classifyTransportError(err), 0
	}

	result.Body = body
	return domain.FetchOK, 0
}

// classifyTransportError splits transport failures into timeout vs network
// error, the two retryable classes.
func classifyTransportError(err error) domain.FetchStatus {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.FetchTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.FetchTimeout
	}

	return domain.FetchNetworkError
}

// parseRetryAfter reads a Retry-After header in either of its two forms,
// delta-seconds or an HTTP date. Returns 0 (use the backoff schedule) when
// absent, unparseable, or already in the past.
func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}

	when, err := http.ParseTime(value)
	if err != nil {
		return 0
	}

	if delay := time.Until(when); delay > 0 {
		return delay
	}

	return 0
}

func isHTMLContentType(contentType string) bool {
	if contentType == "" {
		// Assume HTML when the server does not say otherwise.
		return true
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
