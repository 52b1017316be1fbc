package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, capacity int, window time.Duration, failOpen bool) (*Limiter, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return NewLimiter(rdb, capacity, window, failOpen), mr
}

func TestAcquireExhaustsBucket(t *testing.T) {
	limiter, _ := newTestLimiter(t, 5, time.Minute, false)

	// Frozen clock: no refill between calls.
	frozen := time.Now()
	limiter.now = func() time.Time { return frozen }

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := limiter.Acquire(ctx, "fp"); err != nil {
			t.Fatalf("Acquire %d failed: %v", i+1, err)
		}
	}

	if err := limiter.Acquire(ctx, "fp"); err != ErrRateLimited {
		t.Errorf("Expected ErrRateLimited on call 6, got %v", err)
	}
}

func TestAcquireIndependentFingerprints(t *testing.T) {
	limiter, _ := newTestLimiter(t, 1, time.Minute, false)

	frozen := time.Now()
	limiter.now = func() time.Time { return frozen }

	ctx := context.Background()
	if err := limiter.Acquire(ctx, "alice"); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if err := limiter.Acquire(ctx, "alice"); err != ErrRateLimited {
		t.Errorf("Expected ErrRateLimited for alice, got %v", err)
	}
	if err := limiter.Acquire(ctx, "bob"); err != nil {
		t.Errorf("bob should have a fresh bucket, got %v", err)
	}
}

func TestAcquireGreedyRefill(t *testing.T) {
	limiter, _ := newTestLimiter(t, 4, 2*time.Second, false)

	current := time.Now()
	limiter.now = func() time.Time { return current }

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		if err := limiter.Acquire(ctx, "fp"); err != nil {
			t.Fatalf("Acquire %d failed: %v", i+1, err)
		}
	}
	if err := limiter.Acquire(ctx, "fp"); err != ErrRateLimited {
		t.Fatalf("Expected drained bucket, got %v", err)
	}

	// Half a window at 2 tokens/sec accrues 2 tokens.
	current = current.Add(time.Second)
	if err := limiter.Acquire(ctx, "fp"); err != nil {
		t.Errorf("Expected refilled token, got %v", err)
	}
	if err := limiter.Acquire(ctx, "fp"); err != nil {
		t.Errorf("Expected second refilled token, got %v", err)
	}
	if err := limiter.Acquire(ctx, "fp"); err != ErrRateLimited {
		t.Errorf("Expected ErrRateLimited after refill spent, got %v", err)
	}
}

func TestAcquireRefillCapsAtCapacity(t *testing.T) {
	limiter, _ := newTestLimiter(t, 2, time.Second, false)

	current := time.Now()
	limiter.now = func() time.Time { return current }

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := limiter.Acquire(ctx, "fp"); err != nil {
			t.Fatalf("Acquire failed: %v", err)
		}
	}

	// A long idle stretch refills to capacity, not beyond.
	current = current.Add(time.Hour)
	for i := 0; i < 2; i++ {
		if err := limiter.Acquire(ctx, "fp"); err != nil {
			t.Fatalf("Acquire %d after idle failed: %v", i+1, err)
		}
	}
	if err := limiter.Acquire(ctx, "fp"); err != ErrRateLimited {
		t.Errorf("Bucket exceeded capacity after idle, err = %v", err)
	}
}

func TestAcquireEvictionResetsBucket(t *testing.T) {
	limiter, mr := newTestLimiter(t, 1, time.Minute, false)

	frozen := time.Now()
	limiter.now = func() time.Time { return frozen }

	ctx := context.Background()
	if err := limiter.Acquire(ctx, "fp"); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if err := limiter.Acquire(ctx, "fp"); err != ErrRateLimited {
		t.Fatalf("Expected drained bucket, got %v", err)
	}

	// Store-side eviction only resets the bucket to full.
	mr.FlushAll()
	if err := limiter.Acquire(ctx, "fp"); err != nil {
		t.Errorf("Expected fresh bucket after eviction, got %v", err)
	}
}

func TestAcquireConcurrentSharedFingerprint(t *testing.T) {
	limiter, _ := newTestLimiter(t, 10, time.Minute, false)

	frozen := time.Now()
	limiter.now = func() time.Time { return frozen }

	var wg sync.WaitGroup
	results := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- limiter.Acquire(context.Background(), "shared")
		}()
	}
	wg.Wait()
	close(results)

	allowed := 0
	for err := range results {
		if err == nil {
			allowed++
		} else if err != ErrRateLimited {
			t.Errorf("Unexpected error: %v", err)
		}
	}
	if allowed != 10 {
		t.Errorf("Expected exactly 10 allowed under contention, got %d", allowed)
	}
}

func TestAcquireBackendDownFailClosed(t *testing.T) {
	limiter, mr := newTestLimiter(t, 5, time.Minute, false)
	mr.Close()

	err := limiter.Acquire(context.Background(), "fp")
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("Expected ErrBackendUnavailable, got %v", err)
	}
}

func TestAcquireBackendDownFailOpen(t *testing.T) {
	limiter, mr := newTestLimiter(t, 5, time.Minute, true)
	mr.Close()

	if err := limiter.Acquire(context.Background(), "fp"); err != nil {
		t.Errorf("Expected fail-open allow, got %v", err)
	}
}

func TestRetryAfter(t *testing.T) {
	limiter, _ := newTestLimiter(t, 5, 30*time.Second, false)
	if limiter.RetryAfter() != 30*time.Second {
		t.Errorf("RetryAfter() = %v, want 30s", limiter.RetryAfter())
	}
}
