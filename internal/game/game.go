// Package game reads PGN game records and replays them into the ply
// sequence the board renderer walks.
package game

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/dmmcquay/chessbook/internal/board"
)

// ErrMalformed is returned for move text, FEN or PGN input that cannot be
// parsed or replayed.
var ErrMalformed = errors.New("malformed game record")

func malformed(err error, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if err != nil {
		msg += ": " + err.Error()
	}
	return errors.Wrap(ErrMalformed, msg)
}

// Tag is one PGN header pair.
type Tag struct {
	Key   string
	Value string
}

// Game is one replayed game record.
type Game struct {
	// Index is the 0-based position of the game in its source.
	Index int
	// Tags keeps the header pairs in source order.
	Tags []Tag
	// Start is the position before the first ply.
	Start *Position
	// Line is the replayed ply sequence.
	Line board.Line
	// SAN is the notation of each ply in order.
	SAN []string
	// MoveText is the normalised move text, e.g. "1. e4 e5 2. Nf3".
	MoveText string
	Result   string
}

// Tag returns the value of a header, or "" when absent.
func (g *Game) Tag(key string) string {
	for _, t := range g.Tags {
		if t.Key == key {
			return t.Value
		}
	}
	return ""
}

// ECO returns the opening code header.
func (g *Game) ECO() string {
	return g.Tag("ECO")
}

// Date returns the Date header with '-' separators.
func (g *Game) Date() string {
	return strings.ReplaceAll(g.Tag("Date"), ".", "-")
}

// Header is the running page header:
// "<date> <event>, <site>\n<white> vs. <black>   <result>".
func (g *Game) Header() string {
	return fmt.Sprintf("%s %s, %s\n%s vs. %s   %s",
		g.Date(), g.Tag("Event"), g.Tag("Site"), g.Tag("White"), g.Tag("Black"), g.Result)
}

// Title is a one-line summary used in listings and logs.
func (g *Game) Title() string {
	return fmt.Sprintf("%s vs. %s, %s %s (%s)",
		g.Tag("White"), g.Tag("Black"), g.Tag("Event"), g.Date(), g.Result)
}

// Walk replays the line into rendered half-moves.
func (g *Game) Walk() ([]board.HalfMove, error) {
	return board.Walk(g.Line)
}
