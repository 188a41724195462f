package game

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/notnil/chess"
	"github.com/pkg/errors"

	"github.com/dmmcquay/chessbook/internal/board"
)

// Parse reads every game of a PGN stream. Games parsed before a malformed
// one are returned together with the error.
func Parse(r io.Reader) ([]*Game, error) {
	scanner := chess.NewScanner(r)

	var games []*Game
	for scanner.Scan() {
		g, err := FromChess(scanner.Next(), len(games))
		if err != nil {
			return games, err
		}
		games = append(games, g)
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return games, malformed(err, "game %d", len(games)+1)
	}
	if len(games) == 0 {
		return nil, malformed(nil, "no games found")
	}
	return games, nil
}

// ParseString is Parse for in-memory PGN text.
func ParseString(pgn string) ([]*Game, error) {
	return Parse(strings.NewReader(pgn))
}

// ParseFile reads all games of a PGN file.
func ParseFile(path string) ([]*Game, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	games, err := Parse(f)
	if err != nil {
		return games, errors.Wrapf(err, "parse %s", path)
	}
	return games, nil
}

// FromChess converts a parsed library game into a replayed Game.
func FromChess(cg *chess.Game, index int) (*Game, error) {
	if cg == nil {
		return nil, malformed(nil, "game %d is empty", index+1)
	}

	positions := cg.Positions()
	moves := cg.Moves()
	if len(positions) != len(moves)+1 {
		return nil, malformed(nil, "game %d: %d positions for %d moves", index+1, len(positions), len(moves))
	}

	g := &Game{
		Index: index,
		Start: NewPosition(positions[0]),
		Line:  board.Line{StartNumber: fullMoveNumber(positions[0].String())},
	}
	for _, tp := range cg.TagPairs() {
		g.Tags = append(g.Tags, Tag{Key: tp.Key, Value: tp.Value})
	}

	notation := chess.AlgebraicNotation{}
	for i, m := range moves {
		after := NewPosition(positions[i+1])
		san := withCheckSuffix(notation.Encode(positions[i], m), after)
		g.SAN = append(g.SAN, san)
		g.Line.Plies = append(g.Line.Plies, board.Ply{
			Side:  color(positions[i].Turn()),
			SAN:   san,
			From:  board.Square(m.S1()),
			To:    board.Square(m.S2()),
			After: after,
		})
	}

	g.MoveText = FormatMoveText(g.Line)
	g.Result = g.Tag("Result")
	if g.Result == "" {
		g.Result = string(cg.Outcome())
	}
	return g, nil
}

// FindPGNFiles lists the *.pgn files of dir in name order.
func FindPGNFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", dir)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pgn") {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}
