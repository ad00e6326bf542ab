package crawler

import (
	"sync"

	"github.com/opportunity-hack/grantfinder/internal/domain"
	"github.com/opportunity-hack/grantfinder/internal/frontier"
)

// coordinator distributes frontier tasks to workers and detects drain. The
// in-flight count and the frontier poll sit behind one mutex, so "frontier
// empty and nothing in flight" is a single atomic observation: a worker that
// is about to enqueue more links still counts as in flight, and the pool can
// never be judged drained under it.
type coordinator struct {
	frontier *frontier.Frontier

	mu       sync.Mutex
	cond     *sync.Cond
	inflight int
	stopped  bool
}

func newCoordinator(f *frontier.Frontier) *coordinator {
	c := &coordinator{frontier: f}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// next blocks until a task is available, the crawl is drained, or stop was
// called. The second return value is false only on drain or stop; a caller
// receiving a task has been counted in flight and must call finish.
func (c *coordinator) next() (domain.URLTask, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for {
		if c.stopped {
			return domain.URLTask{}, false
		}

		if task, ok := c.frontier.Next(); ok {
			c.inflight++
			return task, true
		}

		if c.inflight == 0 {
			// Drained: no pending tasks and no worker that could add any.
			c.cond.Broadcast()
			return domain.URLTask{}, false
		}

		c.cond.Wait()
	}
}

// finish marks a task complete. Workers enqueue discovered links before
// calling finish, so waiters woken here observe the links.
func (c *coordinator) finish() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.inflight--
	c.cond.Broadcast()
}

// stop wakes all waiting workers and makes next return false. In-flight
// tasks run to completion.
func (c *coordinator) stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopped = true
	c.cond.Broadcast()
}
