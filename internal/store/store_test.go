package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmmcquay/chessbook/internal/game"
	"github.com/dmmcquay/chessbook/internal/retry"
)

func testRetry() *retry.Manager {
	return retry.NewManager(retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1})
}

func TestFileName(t *testing.T) {
	g := &game.Game{Tags: []game.Tag{
		{Key: "Event", Value: "Rated Blitz game"},
		{Key: "Site", Value: "https://lichess.org/abc"},
		{Key: "Date", Value: "2023.04.??"},
		{Key: "White", Value: "A. Player"},
		{Key: "Black", Value: "B/C"},
	}}
	assert.Equal(t,
		"2023-04-__Rated Blitz game_https___lichess-org_abc_( A. Player - B_C ).html",
		FileName(g, ".html"))
}

func TestIncrementedName(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "x.txt")

	assert.Equal(t, base, IncrementedName(base))

	require.NoError(t, os.WriteFile(base, nil, 0o644))
	assert.Equal(t, filepath.Join(dir, "x-1.txt"), IncrementedName(base))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "x-1.txt"), nil, 0o644))
	assert.Equal(t, filepath.Join(dir, "x-2.txt"), IncrementedName(base))
	assert.Equal(t, filepath.Join(dir, "x-2.txt"), IncrementedName(filepath.Join(dir, "x-1.txt")))

	// an existing sequence number is continued
	require.NoError(t, os.WriteFile(filepath.Join(dir, "y-7.txt"), nil, 0o644))
	assert.Equal(t, filepath.Join(dir, "y-8.txt"), IncrementedName(filepath.Join(dir, "y-7.txt")))
}

func TestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s := New(dir, testRetry(), nil)
	assert.Equal(t, dir, s.Dir())

	first, err := s.Save(context.Background(), "game.txt", []byte("one"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "game.txt"), first)

	second, err := s.Save(context.Background(), "game.txt", []byte("two"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "game-1.txt"), second)

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "one", string(data), "existing output is never overwritten")

	data, err = os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	// directory components of the name are dropped
	third, err := s.Save(context.Background(), "../escape.txt", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "escape.txt"), third)
}

func TestSave_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(t.TempDir(), testRetry(), nil).Save(ctx, "game.txt", []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}
