package frontier_test

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/opportunity-hack/grantfinder/internal/domain"
	"github.com/opportunity-hack/grantfinder/internal/frontier"
	"github.com/opportunity-hack/grantfinder/internal/policy"
)

func newTestRegistry(t *testing.T, def policy.DefaultConfig, overrides map[string]policy.Override) *policy.Registry {
	t.Helper()

	registry, err := policy.NewRegistry(def, overrides)
	if err != nil {
		t.Fatalf("NewRegistry() unexpected error: %v", err)
	}

	return registry
}

func TestAdd_DedupByNormalizedURL(t *testing.T) {
	f := frontier.New(newTestRegistry(t, policy.DefaultConfig{}, nil))

	if !f.Add("https://example.com/grants", 0, domain.SourceSeed, "") {
		t.Fatal("first Add() = false, want true")
	}

	// Same URL in different spellings.
	duplicates := []string{
		"https://example.com/grants",
		"https://EXAMPLE.com/grants/",
		"https://example.com:443/grants#apply",
		"https://example.com/grants?utm_source=x",
	}
	for _, dup := range duplicates {
		if f.Add(dup, 0, domain.SourceSeed, "") {
			t.Errorf("Add(%q) = true, want false (duplicate)", dup)
		}
	}

	if got := f.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}

func TestAdd_ConcurrentDuplicatesAdmitOne(t *testing.T) {
	f := frontier.New(newTestRegistry(t, policy.DefaultConfig{}, nil))

	// Many goroutines race to add the same URL, each claiming a different
	// parent. The seen-check and insert are a single atomic step, so exactly
	// one wins.
	const racers = 16

	var wg sync.WaitGroup
	var admitted atomic.Int32
	start := make(chan struct{})
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			parent := fmt.Sprintf("https://example.com/hub/%d", i)
			if f.Add("https://example.com/grants", 1, domain.SourceCrawledLink, parent) {
				admitted.Add(1)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	if got := admitted.Load(); got != 1 {
		t.Errorf("Add() admitted %d duplicates, want exactly 1", got)
	}
	if got := f.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}

	if _, ok := f.Next(); !ok {
		t.Fatal("Next() = false, want the single admitted task")
	}
	if _, ok := f.Next(); ok {
		t.Error("Next() returned a second task for one admitted URL")
	}
}

func TestAdd_RejectsBeyondDepthCap(t *testing.T) {
	f := frontier.New(newTestRegistry(t, policy.DefaultConfig{MaxDepth: 2}, nil))

	if !f.Add("https://example.com/a", 2, domain.SourceCrawledLink, "") {
		t.Error("Add() at max depth = false, want true")
	}
	if f.Add("https://example.com/b", 3, domain.SourceCrawledLink, "") {
		t.Error("Add() beyond max depth = true, want false")
	}
}

func TestAdd_EnforcesPerDomainPageCap(t *testing.T) {
	f := frontier.New(newTestRegistry(t, policy.DefaultConfig{MaxPages: 3}, nil))

	for i := 0; i < 3; i++ {
		url := fmt.Sprintf("https://example.com/page-%d", i)
		if !f.Add(url, 0, domain.SourceSeed, "") {
			t.Fatalf("Add(%q) = false, want true", url)
		}
	}

	if f.Add("https://example.com/page-over", 0, domain.SourceSeed, "") {
		t.Error("Add() over page cap = true, want false")
	}

	// Other domains are unaffected.
	if !f.Add("https://other.org/page", 0, domain.SourceSeed, "") {
		t.Error("Add() for fresh domain = false, want true")
	}

	if got := f.PageCount("example.com"); got != 3 {
		t.Errorf("PageCount(example.com) = %d, want 3", got)
	}
}

func TestNext_BreadthFirstOrder(t *testing.T) {
	f := frontier.New(newTestRegistry(t, policy.DefaultConfig{}, nil))

	f.Add("https://example.com/first", 0, domain.SourceSeed, "")
	f.Add("https://example.com/second", 1, domain.SourceCrawledLink, "")
	f.Add("https://example.com/third", 1, domain.SourceCrawledLink, "")

	want := []string{"/first", "/second", "/third"}
	for _, path := range want {
		task, ok := f.Next()
		if !ok {
			t.Fatalf("Next() drained early, want %s", path)
		}
		if task.URL != "https://example.com"+path {
			t.Errorf("Next() = %q, want suffix %q", task.URL, path)
		}
	}
}

func TestNext_DepthFirstOrder(t *testing.T) {
	depthFirst := true
	overrides := map[string]policy.Override{
		"example.com": {DepthPriority: &depthFirst},
	}
	f := frontier.New(newTestRegistry(t, policy.DefaultConfig{}, overrides))

	f.Add("https://example.com/first", 0, domain.SourceSeed, "")
	f.Add("https://example.com/second", 1, domain.SourceCrawledLink, "")
	f.Add("https://example.com/third", 2, domain.SourceCrawledLink, "")

	task, ok := f.Next()
	if !ok {
		t.Fatal("Next() drained, want task")
	}
	if task.URL != "https://example.com/third" {
		t.Errorf("depth-first Next() = %q, want newest entry", task.URL)
	}
}

func TestNext_PrioritizesContentPatternMatches(t *testing.T) {
	f := frontier.New(newTestRegistry(t, policy.DefaultConfig{
		ContentPatterns: []string{`/grants/`},
	}, nil))

	f.Add("https://example.com/about", 0, domain.SourceSeed, "")
	f.Add("https://example.com/news", 0, domain.SourceSeed, "")
	f.Add("https://example.com/grants/open", 0, domain.SourceSeed, "")

	task, ok := f.Next()
	if !ok {
		t.Fatal("Next() drained, want task")
	}
	if task.URL != "https://example.com/grants/open" {
		t.Errorf("Next() = %q, want the content-pattern match first", task.URL)
	}
}

func TestNext_RotatesAcrossDomains(t *testing.T) {
	f := frontier.New(newTestRegistry(t, policy.DefaultConfig{}, nil))

	f.Add("https://a.com/1", 0, domain.SourceSeed, "")
	f.Add("https://a.com/2", 0, domain.SourceSeed, "")
	f.Add("https://b.org/1", 0, domain.SourceSeed, "")

	seen := make(map[string]bool)
	for i := 0; i < 2; i++ {
		task, ok := f.Next()
		if !ok {
			t.Fatal("Next() drained early")
		}
		seen[task.Domain] = true
	}

	if !seen["a.com"] || !seen["b.org"] {
		t.Errorf("first two pops came from one domain: %v", seen)
	}
}

func TestNext_DrainsToEmpty(t *testing.T) {
	f := frontier.New(newTestRegistry(t, policy.DefaultConfig{}, nil))

	f.Add("https://example.com/only", 0, domain.SourceSeed, "")

	if _, ok := f.Next(); !ok {
		t.Fatal("Next() = false, want the queued task")
	}
	if _, ok := f.Next(); ok {
		t.Error("Next() on empty frontier = true, want false")
	}
	if got := f.Len(); got != 0 {
		t.Errorf("Len() = %d, want 0", got)
	}
}
