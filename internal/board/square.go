package board

import (
	"github.com/pkg/errors"
)

// Square indexes the 64 squares: a1=0, b1=1, ..., h1=7, a2=8, ..., h8=63.
type Square int8

// NoSquare marks an absent square.
const NoSquare Square = -1

// NewSquare builds a square from 0-based file and rank indices.
func NewSquare(file, rank int) Square {
	return Square(rank*8 + file)
}

// ParseSquare reads an algebraic square name such as "e4".
func ParseSquare(name string) (Square, error) {
	if len(name) != 2 || name[0] < 'a' || name[0] > 'h' || name[1] < '1' || name[1] > '8' {
		return NoSquare, errors.Wrapf(ErrLookup, "square %q", name)
	}
	return NewSquare(int(name[0]-'a'), int(name[1]-'1')), nil
}

// File returns the 0-based file index (a=0).
func (s Square) File() int { return int(s) % 8 }

// Rank returns the 0-based rank index (rank 1 = 0).
func (s Square) Rank() int { return int(s) / 8 }

// Valid reports whether s is one of the 64 squares.
func (s Square) Valid() bool { return s >= 0 && s < 64 }

func (s Square) String() string {
	if !s.Valid() {
		return ""
	}
	return string([]byte{byte('a' + s.File()), byte('1' + s.Rank())})
}

// Color is a side.
type Color int8

const (
	NoColor Color = iota
	White
	Black
)

// Other returns the opposing side.
func (c Color) Other() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	}
	return NoColor
}

func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	}
	return "NoColor"
}

// Piece is an occupant: Kind is one of "KQRBNP" (upper case) and Color
// its owner. The zero value is an empty square.
type Piece struct {
	Kind  byte
	Color Color
}

// Empty reports whether the piece value denotes no occupant.
func (p Piece) Empty() bool {
	return p.Kind == 0 || p.Color == NoColor
}

// Letter returns the occupant letter used in glyph codes: upper case for
// White, lower case for Black.
func (p Piece) Letter() byte {
	if p.Empty() {
		return '-'
	}
	k := p.Kind
	if k >= 'a' && k <= 'z' {
		k -= 'a' - 'A'
	}
	if p.Color == Black {
		return k + ('a' - 'A')
	}
	return k
}

// Position is the board occupancy the Game Source hands to the renderer.
type Position interface {
	// PieceAt returns the occupant of sq, or the zero Piece.
	PieceAt(sq Square) Piece
	// KingSquare returns the square of c's king.
	KingSquare(c Color) (Square, bool)
	// InCheck reports whether c's king is attacked.
	InCheck(c Color) bool
}
