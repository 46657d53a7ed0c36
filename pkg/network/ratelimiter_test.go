package network

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestRateLimiter_Unlimited(t *testing.T) {
	rl := NewRateLimiter(0)
	if rl != nil {
		t.Fatal("expected no limiter for a zero rate")
	}
	for i := 0; i < 100; i++ {
		if err := rl.Wait(context.Background()); err != nil {
			t.Fatalf("Wait failed: %v", err)
		}
	}
}

func TestRateLimiter_CancelledWait(t *testing.T) {
	// 1 fetch per second, burst of one token
	rl := NewRateLimiter(1)
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	if err := rl.Wait(ctx); err == nil {
		t.Error("expected the deadline to interrupt the wait")
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("cancelled wait took %v", elapsed)
	}

	rl.mu.Lock()
	tokens := rl.tokens
	rl.mu.Unlock()
	if tokens < -0.5 {
		t.Errorf("expected the reserved token refunded, have %.2f", tokens)
	}
}

func TestRateLimiter_QueuesConcurrentFetches(t *testing.T) {
	// 20 per second: the first 20 pass at once, the next 4 queue 50ms apart.
	rl := NewRateLimiter(20)
	for i := 0; i < 20; i++ {
		rl.Wait(context.Background())
	}

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := rl.Wait(context.Background()); err != nil {
				t.Errorf("Wait failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if elapsed := time.Since(start); elapsed < 180*time.Millisecond {
		t.Errorf("four queued fetches finished in %v", elapsed)
	}
}
