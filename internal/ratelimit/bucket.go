package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket is a token bucket refilled continuously at rate tokens per
// second up to capacity.
type TokenBucket struct {
	mu       sync.Mutex
	capacity float64
	tokens   float64
	rate     float64
	last     time.Time
	now      func() time.Time
}

// NewTokenBucket returns a full bucket.
func NewTokenBucket(capacity int, rate float64) *TokenBucket {
	return newBucket(capacity, rate, time.Now)
}

func newBucket(capacity int, rate float64, now func() time.Time) *TokenBucket {
	return &TokenBucket{
		capacity: float64(capacity),
		tokens:   float64(capacity),
		rate:     rate,
		last:     now(),
		now:      now,
	}
}

// Allow takes n tokens if they are available.
func (b *TokenBucket) Allow(n int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill()
	if b.tokens < float64(n) {
		return false
	}
	b.tokens -= float64(n)
	return true
}

// Refund returns n tokens taken by a request that was rejected later.
func (b *TokenBucket) Refund(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens += float64(n)
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
}

// Wait reports how long until n tokens will be available. It does not take
// them.
func (b *TokenBucket) Wait(n int) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill()
	deficit := float64(n) - b.tokens
	if deficit <= 0 || b.rate <= 0 {
		return 0
	}
	return time.Duration(deficit / b.rate * float64(time.Second))
}

// Tokens returns the tokens currently available.
func (b *TokenBucket) Tokens() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill()
	return b.tokens
}

// Capacity returns the bucket size.
func (b *TokenBucket) Capacity() int {
	return int(b.capacity)
}

func (b *TokenBucket) refill() {
	now := b.now()
	b.tokens += now.Sub(b.last).Seconds() * b.rate
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.last = now
}

// Reset fills the bucket.
func (b *TokenBucket) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens = b.capacity
	b.last = b.now()
}
