package game

import (
	"github.com/notnil/chess"

	"github.com/dmmcquay/chessbook/internal/board"
)

// Position adapts a notnil/chess position to the occupancy the board
// renderer consumes. Occupancy is copied out once; the adapter is
// immutable.
type Position struct {
	pos     *chess.Position
	squares [64]board.Piece
}

var kinds = map[chess.PieceType]byte{
	chess.King:   'K',
	chess.Queen:  'Q',
	chess.Rook:   'R',
	chess.Bishop: 'B',
	chess.Knight: 'N',
	chess.Pawn:   'P',
}

// NewPosition wraps pos.
func NewPosition(pos *chess.Position) *Position {
	p := &Position{pos: pos}
	for sq, pc := range pos.Board().SquareMap() {
		kind, ok := kinds[pc.Type()]
		if !ok {
			continue
		}
		p.squares[sq] = board.Piece{Kind: kind, Color: color(pc.Color())}
	}
	return p
}

// StartPosition returns the standard initial position.
func StartPosition() *Position {
	return NewPosition(chess.NewGame().Position())
}

// PositionFromFEN parses a FEN record.
func PositionFromFEN(fen string) (*Position, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, malformed(err, "fen %q", fen)
	}
	return NewPosition(chess.NewGame(opt).Position()), nil
}

func (p *Position) PieceAt(sq board.Square) board.Piece {
	if !sq.Valid() {
		return board.Piece{}
	}
	return p.squares[sq]
}

func (p *Position) KingSquare(c board.Color) (board.Square, bool) {
	for sq, pc := range p.squares {
		if pc.Kind == 'K' && pc.Color == c {
			return board.Square(sq), true
		}
	}
	return board.NoSquare, false
}

// InCheck reports whether c's king is attacked, computed from the
// occupancy alone so discovered checks are found regardless of how the
// move was annotated.
func (p *Position) InCheck(c board.Color) bool {
	k, ok := p.KingSquare(c)
	if !ok {
		return false
	}
	return p.Attacked(k, c.Other())
}

// Turn returns the side to move.
func (p *Position) Turn() board.Color {
	return color(p.pos.Turn())
}

// FEN returns the FEN record of the position.
func (p *Position) FEN() string {
	return p.pos.String()
}

// Chess exposes the wrapped position.
func (p *Position) Chess() *chess.Position {
	return p.pos
}

func color(c chess.Color) board.Color {
	switch c {
	case chess.White:
		return board.White
	case chess.Black:
		return board.Black
	}
	return board.NoColor
}
