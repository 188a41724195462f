package board

import (
	"github.com/pkg/errors"
)

// offsets maps each square to its rune offset in an encoded grid.
var offsets = func() [64]int {
	var t [64]int
	for sq := Square(0); sq < 64; sq++ {
		// skip the top border row, then one stride per rank from rank 8
		// down, then past the leading rank label
		t[sq] = RowStride + RowStride*(7-sq.Rank()) + 1 + sq.File()
	}
	return t
}()

// Offset returns the rune offset of a valid square in an encoded grid.
func Offset(sq Square) int {
	return offsets[sq]
}

// Locate returns the rune offset of a named square, e.g. "e4" -> 60.
func Locate(name string) (int, error) {
	sq, err := ParseSquare(name)
	if err != nil {
		return 0, err
	}
	return offsets[sq], nil
}

// SquareAt is the inverse of Offset.
func SquareAt(offset int) (Square, error) {
	row, col := offset/RowStride, offset%RowStride
	if row < 1 || row > 8 || col < 1 || col > 8 {
		return NoSquare, errors.Wrapf(ErrLookup, "offset %d is not a square", offset)
	}
	return NewSquare(col-1, 8-row), nil
}
