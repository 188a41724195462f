package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ply(side Color, san, from, to string, after *fakePosition) Ply {
	return Ply{Side: side, SAN: san, From: mustSquare(from), To: mustSquare(to), After: after}
}

func TestWalk_E4E5(t *testing.T) {
	afterWhite := startPosition().move("e2", "e4")
	afterBlack := afterWhite.move("e7", "e5")

	moves, err := Walk(Line{Plies: []Ply{
		ply(White, "e4", "e2", "e4", afterWhite),
		ply(Black, "e5", "e7", "e5", afterBlack),
	}})
	require.NoError(t, err)
	require.Len(t, moves, 2)

	w, b := moves[0], moves[1]
	assert.Equal(t, 1, w.Number)
	assert.Equal(t, 1, b.Number)
	assert.Equal(t, afterE4, w.Encoded())
	assert.Equal(t, afterE4E5, b.Encoded())
	assert.Equal(t, NoSquare, w.Check)

	assert.Equal(t, Code("-w"), b.Grid.At(mustSquare("e2")))
	assert.Equal(t, Code("-b"), b.Grid.At(mustSquare("e7")))
	assert.Equal(t, Code("Pw"), b.Grid.At(mustSquare("e4")))
	assert.Equal(t, Code("pb"), b.Grid.At(mustSquare("e5")))

	// grids are independent values
	assert.NotEqual(t, w.Grid, b.Grid)

	runs := w.Runs()
	require.Len(t, runs, 5)
	assert.Equal(t, MarkTo, runs[1].Mark)
	assert.Equal(t, MarkFrom, runs[3].Mark)

	assert.Equal(t, "1. e4 ...", w.Notation())
	assert.Equal(t, "1. ... e5", b.Notation())
}

func TestWalk_DiscoveredCheck(t *testing.T) {
	// the bishop steps off the e-file and uncovers the rook on e1
	before := &fakePosition{pieces: map[Square]Piece{
		mustSquare("e8"): {Kind: 'K', Color: Black},
		mustSquare("e2"): {Kind: 'B', Color: White},
		mustSquare("e1"): {Kind: 'R', Color: White},
		mustSquare("g1"): {Kind: 'K', Color: White},
	}}
	after := before.move("e2", "d3")
	after.checked = Black

	moves, err := Walk(Line{Plies: []Ply{ply(White, "Bd3+", "e2", "d3", after)}})
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, mustSquare("e8"), moves[0].Check)

	e8, _ := Locate("e8")
	d3, _ := Locate("d3")
	var checkRun, toRun int
	pos := 0
	for _, r := range moves[0].Runs() {
		switch r.Mark {
		case MarkCheck:
			checkRun = pos
		case MarkTo:
			toRun = pos
		}
		pos += len([]rune(r.Text))
	}
	assert.Equal(t, e8, checkRun)
	assert.Equal(t, d3, toRun)
}

func TestWalk_CheckOnlyForSideToMove(t *testing.T) {
	// a position where White is flagged in check after White moved must
	// not mark anything: only the side that has to respond counts
	after := startPosition().move("e2", "e4")
	after.checked = White

	moves, err := Walk(Line{Plies: []Ply{ply(White, "e4", "e2", "e4", after)}})
	require.NoError(t, err)
	assert.Equal(t, NoSquare, moves[0].Check)
}

func TestWalk_Errors(t *testing.T) {
	pos := startPosition()
	tests := []struct {
		name  string
		plies []Ply
	}{
		{"no side", []Ply{{SAN: "e4", From: 12, To: 28, After: pos}}},
		{"no position", []Ply{{Side: White, SAN: "e4", From: 12, To: 28}}},
		{"bad square", []Ply{{Side: White, SAN: "e4", From: NoSquare, To: 28, After: pos}}},
		{"same side twice", []Ply{
			ply(White, "e4", "e2", "e4", pos),
			ply(White, "d4", "d2", "d4", pos),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Walk(Line{Plies: tt.plies})
			assert.Error(t, err)
		})
	}
}

func TestPair(t *testing.T) {
	pos := startPosition()
	plies := []Ply{
		ply(White, "e4", "e2", "e4", pos),
		ply(Black, "e5", "e7", "e5", pos),
		ply(White, "Nf3", "g1", "f3", pos),
		ply(Black, "Nc6", "b8", "c6", pos),
		ply(White, "Bb5", "f1", "b5", pos),
	}

	for n := 0; n <= len(plies); n++ {
		moves, err := Walk(Line{Plies: plies[:n]})
		require.NoError(t, err)
		full := Pair(moves)
		assert.Len(t, full, (n+1)/2, "%d half-moves", n)
		for i, fm := range full {
			assert.Equal(t, i+1, fm.Number)
			require.NotNil(t, fm.White)
		}
		if n%2 == 1 {
			assert.Nil(t, full[len(full)-1].Black)
		}
	}

	moves, _ := Walk(Line{Plies: plies})
	full := Pair(moves)
	assert.Equal(t, "Nc6", full[1].Black.SAN)
	assert.Equal(t, "Bb5", full[2].White.SAN)
	assert.Equal(t, 3, full[2].White.Number)
}

func TestPair_BlackToMoveFirst(t *testing.T) {
	pos := startPosition()
	moves, err := Walk(Line{StartNumber: 12, Plies: []Ply{
		ply(Black, "Nc6", "b8", "c6", pos),
		ply(White, "Nf3", "g1", "f3", pos),
		ply(Black, "Nf6", "g8", "f6", pos),
	}})
	require.NoError(t, err)
	assert.Equal(t, "12. ... Nc6", moves[0].Notation())
	assert.Equal(t, "13. Nf3 ...", moves[1].Notation())

	full := Pair(moves)
	require.Len(t, full, 2)
	assert.Nil(t, full[0].White)
	assert.Equal(t, 12, full[0].Number)
	assert.Equal(t, "Nc6", full[0].Black.SAN)
	assert.Equal(t, 13, full[1].Number)
	assert.Equal(t, "Nf6", full[1].Black.SAN)
}
