package ratelimit

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestKeyedRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		rps      float64
		burst    int
		calls    int
		wantPass int
	}{
		{name: "burst allows initial requests", rps: 1, burst: 3, calls: 3, wantPass: 3},
		{name: "exceeding burst blocks", rps: 1, burst: 2, calls: 5, wantPass: 2},
		{name: "zero burst allows nothing", rps: 1, burst: 0, calls: 2, wantPass: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := New(tt.rps, tt.burst)
			defer rl.Stop()

			passed := 0
			for range tt.calls {
				if rl.Allow("10.0.0.1") {
					passed++
				}
			}

			if passed != tt.wantPass {
				t.Errorf("Allow() passed %d, want %d", passed, tt.wantPass)
			}
		})
	}
}

func TestKeyedRateLimiter_IndependentKeys(t *testing.T) {
	rl := New(0.001, 1)
	defer rl.Stop()

	if !rl.Allow("a") {
		t.Fatal("first request for a should pass")
	}
	if rl.Allow("a") {
		t.Error("second request for a should be limited")
	}
	if !rl.Allow("b") {
		t.Error("b must not share a's bucket")
	}
	if rl.Len() != 2 {
		t.Errorf("Len() = %d, want 2", rl.Len())
	}
}

func TestKeyedRateLimiter_RetryAfter(t *testing.T) {
	rl := New(1, 1)
	defer rl.Stop()

	if !rl.Allow("k") {
		t.Fatal("first request should pass")
	}
	if d := rl.RetryAfter("k"); d <= 0 || d > time.Second {
		t.Errorf("RetryAfter() = %v, want (0, 1s]", d)
	}
	if rl.Allow("k") {
		t.Error("second request within the window should be refused")
	}
}

func TestKeyedRateLimiter_EvictsIdle(t *testing.T) {
	rl := NewWithEviction(1, 1, time.Minute, time.Hour)
	defer rl.Stop()

	now := time.Now()
	rl.now = func() time.Time { return now }
	rl.Allow("old")

	now = now.Add(2 * time.Minute)
	rl.Allow("fresh")

	if removed := rl.evictIdle(); removed != 1 {
		t.Errorf("evictIdle() removed %d, want 1", removed)
	}
	if rl.Len() != 1 {
		t.Errorf("Len() = %d after eviction, want 1", rl.Len())
	}
}

func TestKeyedRateLimiter_ConcurrentUse(t *testing.T) {
	rl := New(1000, 1000)
	defer rl.Stop()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Go(func() {
			for range 100 {
				rl.Allow(string(rune('a' + i)))
			}
		})
	}
	wg.Wait()

	if rl.Len() != 8 {
		t.Errorf("Len() = %d, want 8", rl.Len())
	}
}

func TestKeyedRateLimiter_StopReleasesSweeper(t *testing.T) {
	defer goleak.VerifyNone(t)

	rl := NewWithEviction(1, 1, time.Millisecond, time.Millisecond)
	rl.Allow("x")
	time.Sleep(5 * time.Millisecond)
	rl.Stop()
	rl.Stop()
}
