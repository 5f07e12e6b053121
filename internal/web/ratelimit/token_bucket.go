package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"
)

// TokenBucket is an in-process limiter. Each key holds up to capacity
// tokens, refilled at capacity per window.
type TokenBucket struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	capacity int
	window   time.Duration
	now      func() time.Time
	done     chan struct{}
	once     sync.Once
}

type bucket struct {
	tokens     float64
	lastRefill time.Time
}

// NewTokenBucket creates a token bucket limiter. Idle buckets are swept every
// two windows.
func NewTokenBucket(capacity int, window time.Duration) (*TokenBucket, error) {
	if capacity <= 0 {
		return nil, errors.New("capacity must be greater than 0")
	}
	if window <= 0 {
		return nil, errors.New("window must be greater than 0")
	}

	tb := &TokenBucket{
		buckets:  make(map[string]*bucket),
		capacity: capacity,
		window:   window,
		now:      time.Now,
		done:     make(chan struct{}),
	}
	go tb.sweep(2 * window)
	return tb, nil
}

// Allow takes a token for key
func (tb *TokenBucket) Allow(ctx context.Context, key string) (*Decision, error) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	b, ok := tb.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(tb.capacity), lastRefill: now}
		tb.buckets[key] = b
	}

	if elapsed := now.Sub(b.lastRefill); elapsed > 0 {
		b.tokens += float64(tb.capacity) * elapsed.Seconds() / tb.window.Seconds()
		if b.tokens > float64(tb.capacity) {
			b.tokens = float64(tb.capacity)
		}
		b.lastRefill = now
	}

	d := &Decision{Limit: tb.capacity, ResetAt: now.Add(tb.untilToken(b.tokens))}
	if b.tokens >= 1 {
		b.tokens--
		d.Allowed = true
	}
	d.Remaining = int(b.tokens)
	return d, nil
}

// untilToken is how long until one more token is available
func (tb *TokenBucket) untilToken(tokens float64) time.Duration {
	if tokens >= 1 {
		return 0
	}
	perToken := tb.window / time.Duration(tb.capacity)
	return time.Duration((1 - tokens) * float64(perToken))
}

func (tb *TokenBucket) sweep(idle time.Duration) {
	ticker := time.NewTicker(idle)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			tb.mu.Lock()
			now := tb.now()
			for key, b := range tb.buckets {
				if now.Sub(b.lastRefill) > idle {
					delete(tb.buckets, key)
				}
			}
			tb.mu.Unlock()
		case <-tb.done:
			return
		}
	}
}

// Close stops the sweeper
func (tb *TokenBucket) Close() error {
	tb.once.Do(func() { close(tb.done) })
	return nil
}
