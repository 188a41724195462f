package opening

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmmcquay/chessbook/internal/game"
)

func defaultClassifier(t *testing.T) *Classifier {
	t.Helper()
	records, err := Default()
	require.NoError(t, err)
	require.NotEmpty(t, records)
	return New(records)
}

func TestDefault(t *testing.T) {
	records, err := Default()
	require.NoError(t, err)
	assert.Len(t, records, 47)

	for _, r := range records {
		assert.NotEmpty(t, r.Code)
		assert.True(t, strings.HasPrefix(r.MoveText, "1. "), r.Code)
		_, err := game.PositionFromFEN(r.FEN)
		assert.NoError(t, err, r.Code)
	}
}

func TestClassify_A01(t *testing.T) {
	c := defaultClassifier(t)

	tests := []struct {
		name string
		code string
	}{
		{"correct code", "A01"},
		{"wrong code", "B01"},
		{"no code", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := c.Classify(tt.code, "1. b3")
			require.True(t, ok)
			assert.Equal(t, "A01", rec.Code)
			assert.Equal(t, "1. b3", rec.MoveText)
			assert.Equal(t, "rnbqkbnr/pppppppp/8/8/8/1P6/P1PPPPPP/RNBQKBNR b KQkq - 0 1", rec.FEN)
		})
	}
}

func TestClassify_LongestPrefix(t *testing.T) {
	c := defaultClassifier(t)

	pgn := "1.e4 Nf6 2.e5 Nd5 3.d4 d6 4.Nf3 Bg4 5.Bc4 e6 6.O-O Nb6 7.Be2 Be7 8.h3 Bh5 0-1"
	rec, ok := c.Classify("B05", pgn)
	require.True(t, ok)
	assert.Equal(t, "B05", rec.Code)
	assert.Equal(t, "modern variation, 4...Bg4", rec.Variant)

	rec, ok = c.Classify("", "1. e4 e5 2. Nf3 Nc6 3. Bb5 a6 4. Ba4 Nf6")
	require.True(t, ok)
	assert.Equal(t, "C70", rec.Code)

	// a matching given code wins over a longer match elsewhere
	rec, ok = c.Classify("C60", "1. e4 e5 2. Nf3 Nc6 3. Bb5 a6 4. Ba4 Nf6")
	require.True(t, ok)
	assert.Equal(t, "C60", rec.Code)
}

func TestClassify_NoMatch(t *testing.T) {
	c := defaultClassifier(t)

	_, ok := c.Classify("", "1. e4 Ke2")
	assert.False(t, ok, "malformed move text")

	_, ok = c.Classify("", "")
	assert.False(t, ok)

	_, ok = c.Classify("", "1. a3")
	assert.False(t, ok, "not in the dataset")

	empty := New(nil)
	_, ok = empty.Classify("A01", "1. b3")
	assert.False(t, ok)
	assert.Equal(t, 0, empty.Len())
}

func TestClassifyGame(t *testing.T) {
	c := defaultClassifier(t)

	games, err := game.ParseString(`[Event "Casual"]
[Result "1-0"]

1. e4 e5 2. Bc4 Nc6 3. Qh5 Nf6 4. Qxf7# 1-0
`)
	require.NoError(t, err)
	rec, ok := c.ClassifyGame(games[0])
	require.True(t, ok)
	assert.Equal(t, "C23", rec.Code)

	_, ok = c.ClassifyGame(nil)
	assert.False(t, ok)
}

func TestIsPrefix(t *testing.T) {
	assert.True(t, isPrefix("1. d4", "1. d4"))
	assert.True(t, isPrefix("1. d4", "1. d4 d5"))
	assert.False(t, isPrefix("1. e4 e5 2. Nf3", "1. e4 e5 2. Nf3x"))
	assert.False(t, isPrefix("", "1. d4"))
	assert.False(t, isPrefix("1. d4 d5", "1. d4"))
}

func TestLoad_BadRows(t *testing.T) {
	records, err := Load(strings.NewReader("eco,pgn\nA01,1. b3\nZ99,1. e5\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Z99")
	require.Len(t, records, 1)
	assert.Equal(t, "A01", records[0].Code)

	_, err = Load(strings.NewReader("name,variant\nx,y\n"))
	assert.Error(t, err)

	_, err = Load(strings.NewReader(""))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	data := "code,name,moves\nA04,Reti opening,1.Nf3\n"

	csvPath := filepath.Join(dir, "eco.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(data), 0o644))
	records, err := LoadFile(csvPath)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "1. Nf3", records[0].MoveText)
	assert.Equal(t, "Reti opening", records[0].Name)

	zipPath := filepath.Join(dir, "eco.zip")
	f, err := os.Create(zipPath)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("eco.csv")
	require.NoError(t, err)
	_, err = w.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	records, err = LoadFile(zipPath)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "A04", records[0].Code)

	_, err = LoadFile(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestRecordSummary(t *testing.T) {
	r := Record{Code: "A01", Group: "Flank openings", Name: "Nimzovich-Larsen attack?", MoveText: "1. b3"}
	assert.Equal(t, "A", r.Volume())
	assert.Equal(t, "A - Flank openings\nA01 - Nimzovich-Larsen attack\n\n1. b3", r.Summary())
	assert.Equal(t, "A01 Nimzovich-Larsen attack (1. b3)", r.String())
}
