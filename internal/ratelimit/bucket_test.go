package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func TestTokenBucket(t *testing.T) {
	clock := newClock()
	b := newBucket(3, 1, clock.now)

	assert.True(t, b.Allow(1))
	assert.True(t, b.Allow(2))
	assert.False(t, b.Allow(1))
	assert.Equal(t, time.Second, b.Wait(1))

	clock.advance(500 * time.Millisecond)
	assert.False(t, b.Allow(1))
	assert.Equal(t, 500*time.Millisecond, b.Wait(1))

	clock.advance(500 * time.Millisecond)
	assert.True(t, b.Allow(1))

	clock.advance(time.Hour)
	assert.Equal(t, 3.0, b.Tokens(), "refill is capped at capacity")
}

func TestTokenBucketRefund(t *testing.T) {
	b := newBucket(2, 0, newClock().now)
	assert.True(t, b.Allow(2))
	b.Refund(1)
	assert.Equal(t, 1.0, b.Tokens())
	b.Refund(5)
	assert.Equal(t, 2.0, b.Tokens())
	assert.Equal(t, 2, b.Capacity())
}

func TestTokenBucketZeroRateWait(t *testing.T) {
	b := newBucket(1, 0, newClock().now)
	assert.True(t, b.Allow(1))
	assert.Equal(t, time.Duration(0), b.Wait(1))
}

func TestTokenBucketReset(t *testing.T) {
	b := newBucket(2, 0.1, newClock().now)
	b.Allow(2)
	b.Reset()
	assert.Equal(t, 2.0, b.Tokens())
}
