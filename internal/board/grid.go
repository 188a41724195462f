package board

import (
	"strings"

	"github.com/pkg/errors"
)

// Size is the side length of a grid including its one-cell border.
const Size = 10

// Grid is a 10x10 layout of glyph codes: row 0 and 9 are the top and bottom
// borders, column 0 and 9 the left and right borders, and rows/columns 1..8
// hold the 64 squares from White's viewpoint (rank 8 on row 1, file a on
// column 1).
//
// Grid is a value type; assigning or passing it copies every cell.
type Grid [Size][Size]Code

// startLayout is the initial position from White's viewpoint.
const startLayout = "" +
	"tl -- -- -- -- -- -- -- -- tr \n" +
	"8| rw nb bw qb kw bb nw rb || \n" +
	"7| pb pw pb pw pb pw pb pw || \n" +
	"6| -w -b -w -b -w -b -w -b || \n" +
	"5| -b -w -b -w -b -w -b -w || \n" +
	"4| -w -b -w -b -w -b -w -b || \n" +
	"3| -b -w -b -w -b -w -b -w || \n" +
	"2| Pw Pb Pw Pb Pw Pb Pw Pb || \n" +
	"1| Rb Nw Bb Qw Kb Bw Nb Rw || \n" +
	"bl a- b- c- d- e- f- g- h- br \n"

var (
	startGrid = mustParse(startLayout)
	emptyGrid = func() Grid {
		g := startGrid
		for row := 1; row <= 8; row++ {
			for col := 1; col <= 8; col++ {
				file, rank := col-1, 8-row
				g[row][col] = Code([]byte{'-', SquareColor(file, rank)})
			}
		}
		return g
	}()
)

// StartGrid returns the initial position from White's viewpoint.
func StartGrid() Grid {
	return startGrid
}

// EmptyGrid returns a board without pieces from White's viewpoint.
func EmptyGrid() Grid {
	return emptyGrid
}

// ParseGrid reads the GlyphString form back into a grid. Codes are
// separated by any amount of whitespace; exactly 100 codes are required and
// each must be present in the code table.
func ParseGrid(s string) (Grid, error) {
	var g Grid
	fields := strings.Fields(s)
	if len(fields) != Size*Size {
		return g, errors.Errorf("grid has %d codes, want %d", len(fields), Size*Size)
	}
	for i, f := range fields {
		c := Code(f)
		if _, err := Lookup(c); err != nil {
			return g, errors.Wrapf(err, "cell %d", i)
		}
		g[i/Size][i%Size] = c
	}
	return g, nil
}

func mustParse(s string) Grid {
	g, err := ParseGrid(s)
	if err != nil {
		panic(err)
	}
	return g
}

// Format flattens the grid row by row, writing sep after every code and a
// line break after every row.
func (g Grid) Format(sep string) string {
	var sb strings.Builder
	sb.Grow(Size * (Size*(2+len(sep)) + 1))
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			sb.WriteString(string(g[row][col]))
			sb.WriteString(sep)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// String returns the human readable GlyphString, codes separated by a space.
func (g Grid) String() string {
	return g.Format(" ")
}

// Codes returns the 100 codes in row-major order.
func (g Grid) Codes() []Code {
	out := make([]Code, 0, Size*Size)
	for row := 0; row < Size; row++ {
		out = append(out, g[row][:]...)
	}
	return out
}

// At returns the code of the cell holding sq.
func (g Grid) At(sq Square) Code {
	row, col := cell(sq)
	return g[row][col]
}

// cell returns the grid row and column of a square from White's viewpoint.
func cell(sq Square) (row, col int) {
	return 1 + (7 - sq.Rank()), 1 + sq.File()
}
