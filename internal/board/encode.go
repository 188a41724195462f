package board

import (
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// RowStride is the number of runes per encoded row: ten glyphs and a line
// break.
const RowStride = Size + 1

// Encode translates every cell through the code table, one display
// character per code, each row followed by a line break.
func Encode(g Grid) (string, error) {
	var sb strings.Builder
	sb.Grow(Size * RowStride * 2)
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			r, err := Lookup(g[row][col])
			if err != nil {
				return "", errors.Wrapf(err, "row %d col %d", row, col)
			}
			sb.WriteRune(r)
		}
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

// MustEncode is Encode for grids built by this package, where a missing
// code means the grid was corrupted.
func MustEncode(g Grid) string {
	s, err := Encode(g)
	if err != nil {
		panic(err)
	}
	return s
}

// EncodeString encodes the GlyphString form of a grid.
func EncodeString(glyphs string) (string, error) {
	g, err := ParseGrid(glyphs)
	if err != nil {
		return "", err
	}
	return Encode(g)
}

// DecodeString turns an encoded sequence back into a grid.
func DecodeString(encoded string) (Grid, error) {
	var g Grid
	rows := strings.Split(strings.TrimSuffix(encoded, "\n"), "\n")
	if len(rows) != Size {
		return g, errors.Errorf("encoded grid has %d rows, want %d", len(rows), Size)
	}
	for row, line := range rows {
		if n := utf8.RuneCountInString(line); n != Size {
			return g, errors.Errorf("encoded row %d has %d glyphs, want %d", row, n, Size)
		}
		col := 0
		for _, r := range line {
			c, err := Decode(r)
			if err != nil {
				return g, errors.Wrapf(err, "row %d col %d", row, col)
			}
			g[row][col] = c
			col++
		}
	}
	return g, nil
}

// Figures renders the grid with Unicode chess symbols instead of font
// codes, keeping the same row and column layout.
func Figures(g Grid) string {
	var sb strings.Builder
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			sb.WriteRune(g[row][col].Figure())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
