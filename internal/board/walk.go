package board

import (
	"fmt"

	"github.com/pkg/errors"
)

// Ply is one move as handed over by the game source: the side that made
// it, its notation against the position before the move, origin and
// destination, and the position after it.
type Ply struct {
	Side  Color
	SAN   string
	From  Square
	To    Square
	After Position
}

// Line is a replayed game. StartNumber is the full-move number of the first
// ply, 1 for games from the standard initial position.
type Line struct {
	StartNumber int
	Plies       []Ply
}

// HalfMove is the rendered record of one ply.
type HalfMove struct {
	Number int
	Side   Color
	SAN    string
	From   Square
	To     Square
	// Check is the king square of the side to move after the ply, or
	// NoSquare when that side is not in check.
	Check Square
	Grid  Grid
}

// Notation returns the caption line, "12. Nf3 ..." for White and
// "12. ... Nc6" for Black.
func (h HalfMove) Notation() string {
	if h.Side == Black {
		return fmt.Sprintf("%d. ... %s", h.Number, h.SAN)
	}
	return fmt.Sprintf("%d. %s ...", h.Number, h.SAN)
}

// Encoded returns the display characters of the post-move grid.
func (h HalfMove) Encoded() string {
	return MustEncode(h.Grid)
}

// Runs partitions the encoded grid with the ply's marks applied.
func (h HalfMove) Runs() []Run {
	return PartitionMarks(h.Encoded(), h.Check, h.From, h.To)
}

// FullMove pairs a White ply with Black's reply. Either side may be nil: the
// last move of a game can be White's alone, and a line that starts with
// Black to move has no White half for its first number.
type FullMove struct {
	Number int
	White  *HalfMove
	Black  *HalfMove
}

// Walk builds one HalfMove per ply in order.
func Walk(line Line) ([]HalfMove, error) {
	number := line.StartNumber
	if number < 1 {
		number = 1
	}

	out := make([]HalfMove, 0, len(line.Plies))
	var prev Color
	for i, p := range line.Plies {
		switch {
		case p.Side != White && p.Side != Black:
			return nil, errors.Errorf("ply %d: no side", i)
		case p.After == nil:
			return nil, errors.Errorf("ply %d (%s): no resulting position", i, p.SAN)
		case !p.From.Valid() || !p.To.Valid():
			return nil, errors.Wrapf(ErrLookup, "ply %d (%s): squares %d-%d", i, p.SAN, p.From, p.To)
		case prev != NoColor && p.Side == prev:
			return nil, errors.Errorf("ply %d (%s): %s moved twice", i, p.SAN, p.Side)
		}
		if prev == Black && p.Side == White {
			number++
		}
		prev = p.Side

		check := NoSquare
		toMove := p.Side.Other()
		if p.After.InCheck(toMove) {
			if k, ok := p.After.KingSquare(toMove); ok {
				check = k
			}
		}

		out = append(out, HalfMove{
			Number: number,
			Side:   p.Side,
			SAN:    p.SAN,
			From:   p.From,
			To:     p.To,
			Check:  check,
			Grid:   Project(p.After),
		})
	}
	return out, nil
}

// Pair groups half-moves into full moves, preserving order.
func Pair(moves []HalfMove) []FullMove {
	out := make([]FullMove, 0, (len(moves)+1)/2)
	for i := range moves {
		h := &moves[i]
		if h.Side == Black {
			if n := len(out); n > 0 && out[n-1].Number == h.Number && out[n-1].Black == nil && out[n-1].White != nil {
				out[n-1].Black = h
				continue
			}
			out = append(out, FullMove{Number: h.Number, Black: h})
			continue
		}
		out = append(out, FullMove{Number: h.Number, White: h})
	}
	return out
}
