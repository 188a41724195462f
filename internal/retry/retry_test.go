package retry

import (
	"context"
	"errors"
	"io/fs"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts:  attempts,
		InitialDelay: 5 * time.Millisecond,
		MaxDelay:     20 * time.Millisecond,
		Multiplier:   2.0,
		Jitter:       0,
	}
}

func TestRun(t *testing.T) {
	t.Run("first attempt", func(t *testing.T) {
		var attempts atomic.Int32
		err := NewManager(fastConfig(3)).Run(context.Background(), func(ctx context.Context, attempt int) error {
			attempts.Add(1)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, int32(1), attempts.Load())
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		var attempts atomic.Int32
		diskFull := errors.New("no space left on device")
		err := NewManager(fastConfig(3)).Run(context.Background(), func(ctx context.Context, attempt int) error {
			attempts.Add(1)
			return diskFull
		})
		assert.Equal(t, diskFull, err)
		assert.Equal(t, int32(3), attempts.Load())
	})

	t.Run("succeeds after transient failures", func(t *testing.T) {
		var attempts atomic.Int32
		err := NewManager(fastConfig(5)).Run(context.Background(), func(ctx context.Context, attempt int) error {
			attempts.Add(1)
			if attempt < 3 {
				return errors.New("resource temporarily unavailable")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, int32(3), attempts.Load())
	})

	t.Run("permanent error stops at once", func(t *testing.T) {
		var attempts atomic.Int32
		err := NewManager(fastConfig(5)).Run(context.Background(), func(ctx context.Context, attempt int) error {
			attempts.Add(1)
			return Permanent(fs.ErrPermission)
		})
		assert.Equal(t, fs.ErrPermission, err)
		assert.False(t, IsPermanent(err))
		assert.Equal(t, int32(1), attempts.Load())
	})

	t.Run("context cancellation", func(t *testing.T) {
		cfg := fastConfig(0)
		cfg.InitialDelay = 100 * time.Millisecond
		cfg.MaxDelay = time.Second

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()

		var attempts atomic.Int32
		err := NewManager(cfg).Run(ctx, func(ctx context.Context, attempt int) error {
			attempts.Add(1)
			return errors.New("always fails")
		})
		assert.Equal(t, context.DeadlineExceeded, err)
		assert.Equal(t, int32(1), attempts.Load())
	})
}

func TestPermanent(t *testing.T) {
	assert.Nil(t, Permanent(nil))

	err := Permanent(fs.ErrPermission)
	assert.True(t, IsPermanent(err))
	assert.True(t, errors.Is(err, fs.ErrPermission))
	assert.Equal(t, fs.ErrPermission.Error(), err.Error())
	assert.False(t, IsPermanent(errors.New("plain")))
}

func TestNextDelay(t *testing.T) {
	m := NewManager(Config{
		MaxAttempts:  4,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     100 * time.Millisecond,
		Multiplier:   2.0,
	})
	assert.Equal(t, 10*time.Millisecond, m.NextDelay(1))
	assert.Equal(t, 20*time.Millisecond, m.NextDelay(2))
	assert.Equal(t, 40*time.Millisecond, m.NextDelay(3))
	assert.Equal(t, 80*time.Millisecond, m.NextDelay(4))
	assert.Equal(t, 100*time.Millisecond, m.NextDelay(5))

	jittered := NewManager(Config{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, Multiplier: 2, Jitter: 0.5})
	for i := 0; i < 10; i++ {
		d := jittered.NextDelay(1)
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
		assert.LessOrEqual(t, d, 150*time.Millisecond)
	}

	assert.Equal(t, 5, DefaultConfig().MaxAttempts)

	flat := NewManager(Config{InitialDelay: 10 * time.Millisecond})
	assert.Equal(t, 10*time.Millisecond, flat.NextDelay(3), "multiplier below 1 keeps the delay flat")
}

func TestRunAttemptNumbers(t *testing.T) {
	var seen []int
	err := NewManager(fastConfig(3)).Run(context.Background(), func(ctx context.Context, attempt int) error {
		seen = append(seen, attempt)
		return errors.New("device busy")
	})
	require.Error(t, err)
	assert.Equal(t, []int{1, 2, 3}, seen)
}
