// Package retry re-runs flaky operations with capped exponential backoff.
// Output writes and font downloads go through it.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying. Run returns the inner error.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

type Config struct {
	// MaxAttempts includes the first call. 0 retries until ctx is done.
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	// Jitter spreads each delay by up to this fraction in either direction.
	Jitter float64
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts:  5,
		InitialDelay: 50 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2.0,
		Jitter:       0.1,
	}
}

type Manager struct {
	config Config
}

func NewManager(config Config) *Manager {
	if config.Multiplier < 1 {
		config.Multiplier = 1
	}
	return &Manager{config: config}
}

// Run calls fn until it succeeds, returns a Permanent error, runs out of
// attempts or ctx ends. attempt starts at 1. The last error of fn is
// returned as is.
func (m *Manager) Run(ctx context.Context, fn func(ctx context.Context, attempt int) error) error {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}
		var p *permanentError
		if errors.As(err, &p) {
			return p.err
		}
		if m.config.MaxAttempts > 0 && attempt >= m.config.MaxAttempts {
			return err
		}

		timer := time.NewTimer(m.NextDelay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// NextDelay is the wait after the given failed attempt.
func (m *Manager) NextDelay(attempt int) time.Duration {
	d := float64(m.config.InitialDelay) * math.Pow(m.config.Multiplier, float64(attempt-1))
	if limit := float64(m.config.MaxDelay); limit > 0 && d > limit {
		d = limit
	}
	if j := m.config.Jitter; j > 0 {
		d += d * j * (2*rand.Float64() - 1)
	}
	return time.Duration(math.Max(d, 0))
}
