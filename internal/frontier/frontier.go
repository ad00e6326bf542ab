package frontier

import (
	"sync"
	"time"

	"github.com/opportunity-hack/grantfinder/internal/domain"
	"github.com/opportunity-hack/grantfinder/internal/policy"
)

// Frontier holds discovered-but-unvisited URL tasks plus the set of URLs
// already seen this run. A normalized URL enters the frontier at most once:
// the seen-check and the insert happen in one critical section, so two
// workers can never both enqueue (or both process) the same URL.
//
// Each domain gets its own queue. Pop order within a domain follows its
// resolved policy: depth-first (stack) when DepthPriority is set, otherwise
// breadth-first (queue). URLs matching the domain's content patterns are
// popped ahead of non-matching ones. Across domains the frontier rotates so
// one deep site cannot monopolize the workers.
type Frontier struct {
	policies *policy.Registry

	mu        sync.Mutex
	queues    map[string][]entry
	domains   []string
	cursor    int
	seen      map[string]struct{}
	pageCount map[string]int
	pending   int
}

type entry struct {
	task       domain.URLTask
	prioritize bool
}

// New creates an empty frontier using the given policy registry.
func New(policies *policy.Registry) *Frontier {
	return &Frontier{
		policies:  policies,
		queues:    make(map[string][]entry),
		seen:      make(map[string]struct{}),
		pageCount: make(map[string]int),
	}
}

// Add normalizes and enqueues a URL. It returns false when the URL is
// invalid, already seen, beyond the domain's depth cap, or the domain has
// reached its page cap. On success the URL is immediately marked seen.
func (f *Frontier) Add(rawURL string, depth int, source domain.SourceKind, parentURL string) bool {
	normalized, err := Normalize(rawURL)
	if err != nil {
		return false
	}

	host, err := Host(normalized)
	if err != nil {
		return false
	}

	pol := f.policies.Resolve(host)
	if depth > pol.MaxDepth {
		return false
	}

	task := domain.URLTask{
		URL:           rawURL,
		NormalizedURL: normalized,
		Domain:        host,
		Depth:         depth,
		Source:        source,
		ParentURL:     parentURL,
		DiscoveredAt:  time.Now(),
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, dup := f.seen[normalized]; dup {
		return false
	}
	if f.pageCount[host] >= pol.MaxPages {
		return false
	}

	f.seen[normalized] = struct{}{}
	f.pageCount[host]++

	if _, exists := f.queues[host]; !exists {
		f.domains = append(f.domains, host)
	}
	f.queues[host] = append(f.queues[host], entry{
		task:       task,
		prioritize: policy.MatchesAny(pol.ContentPatterns, normalized),
	})
	f.pending++

	return true
}

// Next pops the next task, rotating across domains. Returns false when no
// task is pending.
func (f *Frontier) Next() (domain.URLTask, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// Each pass either returns a task or drops an empty domain.
	for len(f.domains) > 0 {
		f.cursor %= len(f.domains)
		host := f.domains[f.cursor]
		queue := f.queues[host]

		if len(queue) == 0 {
			f.dropDomain(f.cursor)
			continue
		}

		idx := f.pickIndex(host, queue)
		task := queue[idx].task
		f.queues[host] = append(queue[:idx], queue[idx+1:]...)
		f.pending--
		f.cursor++

		return task, true
	}

	return domain.URLTask{}, false
}

// Len returns the number of pending tasks.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending
}

// PageCount returns how many URLs have been admitted for a domain.
func (f *Frontier) PageCount(host string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pageCount[host]
}

// pickIndex selects which queued entry to pop for a domain. Depth-priority
// domains pop the newest entry (stack order), others the oldest (queue
// order); in both cases entries matching content patterns win over those
// that don't.
func (f *Frontier) pickIndex(host string, queue []entry) int {
	depthFirst := f.policies.Resolve(host).DepthPriority

	fallback := 0
	if depthFirst {
		fallback = len(queue) - 1
	}

	if depthFirst {
		for i := len(queue) - 1; i >= 0; i-- {
			if queue[i].prioritize {
				return i
			}
		}
	} else {
		for i := range queue {
			if queue[i].prioritize {
				return i
			}
		}
	}

	return fallback
}

// dropDomain removes the domain at position i from the rotation.
func (f *Frontier) dropDomain(i int) {
	host := f.domains[i]
	delete(f.queues, host)
	f.domains = append(f.domains[:i], f.domains[i+1:]...)
	if f.cursor >= len(f.domains) {
		f.cursor = 0
	}
}
