package board

// Flip turns a grid to the opposite side's viewpoint.
//
// The 64 squares are rotated 180 degrees. Rank labels on the left and file
// labels on the bottom are reversed; the top border, the right border and
// the bottom-left corner keep their codes. Flip(Flip(g)) == g.
func Flip(g Grid) Grid {
	var out Grid

	for row := 1; row <= 8; row++ {
		for col := 1; col <= 8; col++ {
			out[row][col] = g[9-row][9-col]
		}
	}

	out[0] = g[0]
	for row := 1; row < Size; row++ {
		out[row][9] = g[row][9]
	}
	for row := 1; row <= 8; row++ {
		out[row][0] = g[9-row][0]
	}
	out[9][0] = g[9][0]
	for col := 1; col <= 8; col++ {
		out[9][col] = g[9][9-col]
	}

	return out
}

// IsFlipped reports whether b shows the same position as a from the other
// side of the board.
func IsFlipped(a, b Grid) bool {
	return a == Flip(b)
}

// FlipSquare returns the square whose cell sq occupies once the grid is
// flipped, so marks can be placed on a flipped encoding.
func FlipSquare(sq Square) Square {
	if !sq.Valid() {
		return sq
	}
	return 63 - sq
}
