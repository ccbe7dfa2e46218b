// Package ratelimit provides a keyed token-bucket limiter used to throttle
// credential endpoints per client address.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Defaults for idle eviction.
const (
	DefaultIdleTTL       = 15 * time.Minute
	DefaultSweepInterval = time.Minute
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedRateLimiter gives every key its own token bucket. Buckets untouched
// for longer than the idle TTL are evicted by a background sweeper, which
// runs until Stop is called.
type KeyedRateLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time

	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

// New creates a limiter allowing rps requests per second per key with the
// given burst, evicting buckets idle for DefaultIdleTTL.
func New(rps float64, burst int) *KeyedRateLimiter {
	return NewWithEviction(rps, burst, DefaultIdleTTL, DefaultSweepInterval)
}

// NewWithEviction is New with explicit eviction timing.
func NewWithEviction(rps float64, burst int, idleTTL, sweepEvery time.Duration) *KeyedRateLimiter {
	krl := &KeyedRateLimiter{
		entries: make(map[string]*entry),
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
		now:     time.Now,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}

	go krl.sweep(sweepEvery)

	return krl
}

// Allow reports whether a request for key may proceed now. It never blocks.
func (krl *KeyedRateLimiter) Allow(key string) bool {
	return krl.limiterFor(key).Allow()
}

// RetryAfter estimates how long key must wait for its next token.
func (krl *KeyedRateLimiter) RetryAfter(key string) time.Duration {
	r := krl.limiterFor(key).Reserve()
	defer r.Cancel()
	if !r.OK() {
		return 0
	}
	return r.Delay()
}

// Len returns the number of tracked keys.
func (krl *KeyedRateLimiter) Len() int {
	krl.mu.Lock()
	defer krl.mu.Unlock()
	return len(krl.entries)
}

func (krl *KeyedRateLimiter) limiterFor(key string) *rate.Limiter {
	krl.mu.Lock()
	defer krl.mu.Unlock()

	e, ok := krl.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(krl.limit, krl.burst)}
		krl.entries[key] = e
	}
	e.lastSeen = krl.now()
	return e.limiter
}

// evictIdle drops buckets not seen within the idle TTL and returns how many
// were removed.
func (krl *KeyedRateLimiter) evictIdle() int {
	krl.mu.Lock()
	defer krl.mu.Unlock()

	cutoff := krl.now().Add(-krl.idleTTL)
	removed := 0
	for key, e := range krl.entries {
		if e.lastSeen.Before(cutoff) {
			delete(krl.entries, key)
			removed++
		}
	}
	return removed
}

// Stop shuts down the sweeper and waits for it to exit. Safe to call twice.
func (krl *KeyedRateLimiter) Stop() {
	krl.stopOnce.Do(func() {
		close(krl.done)
	})
	<-krl.stopped
}

func (krl *KeyedRateLimiter) sweep(every time.Duration) {
	defer close(krl.stopped)

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-krl.done:
			return
		case <-ticker.C:
			krl.evictIdle()
		}
	}
}
