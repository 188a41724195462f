package game

import (
	"github.com/dmmcquay/chessbook/internal/board"
)

var (
	knightSteps = [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingSteps   = [8][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	straight    = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diagonal    = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

func onBoard(file, rank int) bool {
	return file >= 0 && file < 8 && rank >= 0 && rank < 8
}

// Attacked reports whether any piece of side by attacks sq.
func (p *Position) Attacked(sq board.Square, by board.Color) bool {
	f, r := sq.File(), sq.Rank()

	is := func(file, rank int, kinds ...byte) bool {
		if !onBoard(file, rank) {
			return false
		}
		pc := p.squares[board.NewSquare(file, rank)]
		if pc.Color != by {
			return false
		}
		for _, k := range kinds {
			if pc.Kind == k {
				return true
			}
		}
		return false
	}

	for _, s := range knightSteps {
		if is(f+s[0], r+s[1], 'N') {
			return true
		}
	}
	for _, s := range kingSteps {
		if is(f+s[0], r+s[1], 'K') {
			return true
		}
	}

	// pawns attack towards the opponent
	dir := -1
	if by == board.Black {
		dir = 1
	}
	if is(f-1, r+dir, 'P') || is(f+1, r+dir, 'P') {
		return true
	}

	slide := func(dirs [4][2]int, kinds ...byte) bool {
		for _, d := range dirs {
			file, rank := f+d[0], r+d[1]
			for onBoard(file, rank) {
				pc := p.squares[board.NewSquare(file, rank)]
				if !pc.Empty() {
					if is(file, rank, kinds...) {
						return true
					}
					break
				}
				file, rank = file+d[0], rank+d[1]
			}
		}
		return false
	}
	return slide(straight, 'R', 'Q') || slide(diagonal, 'B', 'Q')
}
