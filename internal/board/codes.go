package board

import (
	"github.com/pkg/errors"
)

// ErrLookup is returned when a glyph code or square name is outside the
// fixed tables. It always indicates a corrupted grid or a programming error.
var ErrLookup = errors.New("lookup failed")

// Code is a two-character glyph identifier for one grid cell.
//
// For playing squares the first character is the occupant ('-' empty,
// uppercase White, lowercase Black, 'o'/'x' marked) and the second the
// square colour ('w' or 'b'). Border cells carry decoration codes.
type Code string

// Square colours as used in the second character of a square code.
const (
	LightSquare byte = 'w'
	DarkSquare  byte = 'b'
)

// Border decorations.
const (
	CornerTopLeft     Code = "tl"
	CornerTopRight    Code = "tr"
	CornerBottomLeft  Code = "bl"
	CornerBottomRight Code = "br"
	BorderTop         Code = "--"
	BorderRight       Code = "||"
	BorderRightToMove Code = "|x"
)

// codeTable maps glyph codes to the display characters of the chess
// diagram fonts (Chess Merida, Leipzig, Condal, Kingdom).
var codeTable = map[Code]rune{
	// light squares
	"-w": '\x2a',
	"ow": '\x2e',
	"xw": '\x78',
	"Kw": '\x6b',
	"Qw": '\x71',
	"Rw": '\x72',
	"Bw": '\x62',
	"Nw": '\x6e',
	"Pw": '\x70',
	"kw": '\x6c',
	"qw": '\x77',
	"rw": '\x74',
	"bw": '\x76',
	"nw": '\x6d',
	"pw": '\x6f',

	// dark squares
	"-b": '\x2b',
	"ob": '\x3a',
	"xb": '\x58',
	"Kb": '\x4b',
	"Qb": '\x51',
	"Rb": '\x52',
	"Bb": '\x42',
	"Nb": '\x4e',
	"Pb": '\x50',
	"kb": '\x4c',
	"qb": '\x57',
	"rb": '\x54',
	"bb": '\x56',
	"nb": '\x4d',
	"pb": '\x4f',

	// figurines, colour independent
	"fk": '\xa2',
	"fq": '\xa3',
	"fr": '\xa6',
	"fb": '\xa5',
	"fn": '\xa4',
	"fp": '\xa7',

	// borders
	CornerTopLeft:     '\x31',
	CornerTopRight:    '\x33',
	CornerBottomLeft:  '\x37',
	CornerBottomRight: '\x39',
	BorderTop:         '\x32',
	BorderRight:       '\x35',
	// not in Chess Leipzig, closest match
	BorderRightToMove: '\x25',

	// file labels along the bottom border
	"a-": '\xc8',
	"b-": '\xc9',
	"c-": '\xca',
	"d-": '\xcb',
	"e-": '\xcc',
	"f-": '\xcd',
	"g-": '\xce',
	"h-": '\xcf',

	// rank labels along the left border
	"1|": '\xc0',
	"2|": '\xc1',
	"3|": '\xc2',
	"4|": '\xc3',
	"5|": '\xc4',
	"6|": '\xc5',
	"7|": '\xc6',
	"8|": '\xc7',
}

// reverseTable is the inverse of codeTable, built once.
var reverseTable = func() map[rune]Code {
	m := make(map[rune]Code, len(codeTable))
	for c, r := range codeTable {
		m[r] = c
	}
	return m
}()

// Fonts lists the diagram fonts known to work with the code table and the
// TTF file each one ships as.
var Fonts = map[string]string{
	"Chess Condal":  "CONDFONT.TTF",
	"Chess Kingdom": "KINGFONT.TTF",
	"Chess Leipzig": "LEIPFONT.TTF",
	"Chess Merida":  "MERIFONT.TTF",
}

// DefaultFont is the diagram font used when none is configured.
const DefaultFont = "Chess Merida"

// Lookup returns the display character for a glyph code.
func Lookup(c Code) (rune, error) {
	r, ok := codeTable[c]
	if !ok {
		return 0, errors.Wrapf(ErrLookup, "glyph code %q", string(c))
	}
	return r, nil
}

// Decode returns the glyph code a display character was encoded from.
func Decode(r rune) (Code, error) {
	c, ok := reverseTable[r]
	if !ok {
		return "", errors.Wrapf(ErrLookup, "display character %q", r)
	}
	return c, nil
}

// Codes returns the number of entries in the code table.
func Codes() int {
	return len(codeTable)
}

// FileLabel returns the bottom border code for a file index 0..7.
func FileLabel(file int) Code {
	return Code([]byte{byte('a' + file), '-'})
}

// RankLabel returns the left border code for a rank index 0..7.
func RankLabel(rank int) Code {
	return Code([]byte{byte('1' + rank), '|'})
}

// SquareColor returns the fixed colour of a square, a1 being dark.
func SquareColor(file, rank int) byte {
	if (file+rank)%2 == 0 {
		return DarkSquare
	}
	return LightSquare
}

// IsSquare reports whether the code describes a playing square.
func (c Code) IsSquare() bool {
	if len(c) != 2 {
		return false
	}
	if c[0] == 'f' || (c[1] != LightSquare && c[1] != DarkSquare) {
		return false
	}
	_, ok := codeTable[c]
	return ok
}

// Occupant returns the first character of a square code.
func (c Code) Occupant() byte {
	if len(c) == 0 {
		return 0
	}
	return c[0]
}

// figures maps occupant letters to Unicode chess symbols.
var figures = map[byte]rune{
	'K': '♔', 'Q': '♕', 'R': '♖', 'B': '♗', 'N': '♘', 'P': '♙',
	'k': '♚', 'q': '♛', 'r': '♜', 'b': '♝', 'n': '♞', 'p': '♟',
}

// Figure returns a Unicode rendering of the code for plain-text output.
// Empty squares become '·' or ' ', borders become labels or box glyphs.
func (c Code) Figure() rune {
	if c.IsSquare() {
		switch c[0] {
		case '-':
			if c[1] == DarkSquare {
				return '·'
			}
			return ' '
		case 'o':
			return '•'
		case 'x':
			return '×'
		}
		if r, ok := figures[c[0]]; ok {
			return r
		}
	}
	switch c {
	case CornerTopLeft:
		return '┌'
	case CornerTopRight:
		return '┐'
	case CornerBottomLeft:
		return '└'
	case CornerBottomRight:
		return '┘'
	case BorderTop:
		return '─'
	case BorderRight, BorderRightToMove:
		return '│'
	}
	if len(c) == 2 {
		switch {
		case c[1] == '-':
			return rune(c[0])
		case c[1] == '|':
			return rune(c[0])
		case c[0] == 'f':
			if r, ok := figures[c[1]]; ok {
				return r
			}
		}
	}
	return '?'
}
