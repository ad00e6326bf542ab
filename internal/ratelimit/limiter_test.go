package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/opportunity-hack/grantfinder/internal/policy"
	"github.com/opportunity-hack/grantfinder/internal/ratelimit"
)

func newTestLimiter(t *testing.T, def policy.DefaultConfig) *ratelimit.Limiter {
	t.Helper()

	registry, err := policy.NewRegistry(def, nil)
	if err != nil {
		t.Fatalf("NewRegistry() unexpected error: %v", err)
	}

	return ratelimit.New(registry)
}

func TestAcquire_BoundsConcurrencyPerDomain(t *testing.T) {
	limiter := newTestLimiter(t, policy.DefaultConfig{
		MaxConcurrent: 2,
		DelayMin:      time.Millisecond,
		DelayMax:      2 * time.Millisecond,
	})

	ctx := context.Background()

	first, err := limiter.Acquire(ctx, "example.com")
	if err != nil {
		t.Fatalf("Acquire() unexpected error: %v", err)
	}
	second, err := limiter.Acquire(ctx, "example.com")
	if err != nil {
		t.Fatalf("Acquire() unexpected error: %v", err)
	}

	// The third slot must block until a release.
	blockedCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()

	if _, err := limiter.Acquire(blockedCtx, "example.com"); err == nil {
		t.Fatal("Acquire() beyond max_concurrent succeeded, want block until release")
	}

	limiter.Release(first)

	third, err := limiter.Acquire(ctx, "example.com")
	if err != nil {
		t.Fatalf("Acquire() after release unexpected error: %v", err)
	}

	limiter.Release(second)
	limiter.Release(third)
}

func TestAcquire_SeparateDomainsDoNotShareSlots(t *testing.T) {
	limiter := newTestLimiter(t, policy.DefaultConfig{
		MaxConcurrent: 1,
		DelayMin:      time.Millisecond,
		DelayMax:      2 * time.Millisecond,
	})

	ctx := context.Background()

	a, err := limiter.Acquire(ctx, "a.com")
	if err != nil {
		t.Fatalf("Acquire(a.com) unexpected error: %v", err)
	}

	// b.org has its own gate and must not block on a.com's slot.
	bCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()

	b, err := limiter.Acquire(bCtx, "b.org")
	if err != nil {
		t.Fatalf("Acquire(b.org) blocked on another domain's slot: %v", err)
	}

	limiter.Release(a)
	limiter.Release(b)
}

func TestAcquire_EnforcesDelayBetweenRequests(t *testing.T) {
	const delay = 40 * time.Millisecond

	limiter := newTestLimiter(t, policy.DefaultConfig{
		MaxConcurrent: 5,
		DelayMin:      delay,
		DelayMax:      delay,
	})

	ctx := context.Background()

	first, err := limiter.Acquire(ctx, "example.com")
	if err != nil {
		t.Fatalf("Acquire() unexpected error: %v", err)
	}
	limiter.Release(first)

	start := time.Now()
	second, err := limiter.Acquire(ctx, "example.com")
	if err != nil {
		t.Fatalf("Acquire() unexpected error: %v", err)
	}
	limiter.Release(second)

	if elapsed := time.Since(start); elapsed < delay/2 {
		t.Errorf("second Acquire() returned after %v, want politeness delay near %v", elapsed, delay)
	}
}

func TestAcquire_CancelledContext(t *testing.T) {
	limiter := newTestLimiter(t, policy.DefaultConfig{
		MaxConcurrent: 1,
		DelayMin:      time.Millisecond,
		DelayMax:      2 * time.Millisecond,
	})

	held, err := limiter.Acquire(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("Acquire() unexpected error: %v", err)
	}
	defer limiter.Release(held)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := limiter.Acquire(ctx, "example.com"); err == nil {
		t.Error("Acquire() with cancelled context = nil error, want error")
	}
}
