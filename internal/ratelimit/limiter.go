// Package ratelimit bounds concurrent requests per domain and enforces a
// randomized politeness delay between same-domain requests.
package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/opportunity-hack/grantfinder/internal/policy"
)

// Limiter hands out per-domain permits. Each domain gets a counting gate
// capped at its policy's MaxConcurrent; acquisition blocks until a slot
// frees. Waiters are served first-come-first-served, so a saturated domain
// cannot starve late requests. Between same-domain acquisitions a delay
// drawn uniformly from the domain's delay range is enforced.
type Limiter struct {
	policies *policy.Registry

	mu    sync.Mutex
	gates map[string]*gate
}

type gate struct {
	sem *semaphore.Weighted

	mu sync.Mutex
	// notBefore is the earliest time the next request to this domain may
	// start, advanced by a random delay on every acquisition.
	notBefore time.Time

	delayMin time.Duration
	delayMax time.Duration
}

// Permit represents a granted slot; it must be released exactly once.
type Permit struct {
	gate *gate
}

// New creates a limiter resolving gate parameters from the policy registry.
func New(policies *policy.Registry) *Limiter {
	return &Limiter{
		policies: policies,
		gates:    make(map[string]*gate),
	}
}

// Acquire blocks until the domain has a free slot and its politeness delay
// has elapsed, or the context is cancelled.
func (l *Limiter) Acquire(ctx context.Context, domainName string) (*Permit, error) {
	g := l.gateFor(domainName)

	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	if err := g.waitTurn(ctx); err != nil {
		g.sem.Release(1)
		return nil, err
	}

	return &Permit{gate: g}, nil
}

// Release frees the permit's slot.
func (l *Limiter) Release(p *Permit) {
	if p == nil || p.gate == nil {
		return
	}
	p.gate.sem.Release(1)
	p.gate = nil
}

func (l *Limiter) gateFor(domainName string) *gate {
	l.mu.Lock()
	defer l.mu.Unlock()

	g, ok := l.gates[domainName]
	if !ok {
		pol := l.policies.Resolve(domainName)
		g = &gate{
			sem:      semaphore.NewWeighted(int64(pol.MaxConcurrent)),
			delayMin: pol.DelayMin,
			delayMax: pol.DelayMax,
		}
		l.gates[domainName] = g
	}

	return g
}

// waitTurn sleeps until the domain's next allowed request time, then pushes
// that time forward by a random delay for the request after this one.
func (g *gate) waitTurn(ctx context.Context) error {
	g.mu.Lock()

	now := time.Now()
	wait := g.notBefore.Sub(now)

	start := now
	if wait > 0 {
		start = g.notBefore
	}
	g.notBefore = start.Add(g.randomDelay())

	g.mu.Unlock()

	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *gate) randomDelay() time.Duration {
	if g.delayMax <= g.delayMin {
		return g.delayMin
	}
	return g.delayMin + time.Duration(rand.Int63n(int64(g.delayMax-g.delayMin)))
}
