package board

// Project lays a position onto the grid from White's viewpoint.
//
// Every square starts as the empty code of its colour; occupied squares
// get the occupant letter in front of the same colour suffix, so the
// checkerboard pattern survives whatever stands on it.
func Project(pos Position) Grid {
	g := EmptyGrid()
	if pos == nil {
		return g
	}
	for sq := Square(0); sq < 64; sq++ {
		p := pos.PieceAt(sq)
		if p.Empty() {
			continue
		}
		row, col := cell(sq)
		cur := g[row][col]
		g[row][col] = Code([]byte{p.Letter(), cur[1]})
	}
	return g
}
