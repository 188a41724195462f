package game

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/notnil/chess"

	"github.com/dmmcquay/chessbook/internal/board"
)

var (
	commentRe    = regexp.MustCompile(`\{[^}]*\}|;[^\n]*`)
	moveNumberRe = regexp.MustCompile(`^\d+\.+`)
	results      = map[string]bool{"1-0": true, "0-1": true, "1/2-1/2": true, "*": true}
)

// Tokens splits move text into SAN tokens, dropping move numbers,
// comments, variations, NAGs and the result marker.
func Tokens(text string) []string {
	text = commentRe.ReplaceAllString(text, " ")
	text = stripVariations(text)

	var out []string
	for _, f := range strings.Fields(text) {
		f = moveNumberRe.ReplaceAllString(f, "")
		if f == "" || results[f] || strings.HasPrefix(f, "$") {
			continue
		}
		f = strings.TrimRight(f, "!?")
		f = strings.ReplaceAll(f, "0-0", "O-O")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func stripVariations(s string) string {
	var sb strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '(':
			depth++
		case r == ')':
			if depth > 0 {
				depth--
			}
		case depth == 0:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Replay applies SAN moves from start and returns the plies. The
// returned SAN strings are re-encoded, so check suffixes and
// disambiguation are canonical.
func Replay(start *Position, sans []string) (board.Line, error) {
	line := board.Line{StartNumber: fullMoveNumber(start.FEN())}
	pos := start.Chess()
	notation := chess.AlgebraicNotation{}
	for i, san := range sans {
		m, err := notation.Decode(pos, san)
		if err != nil {
			return line, malformed(err, "move %d %q", i+1, san)
		}
		side := color(pos.Turn())
		encoded := notation.Encode(pos, m)
		pos = pos.Update(m)
		after := NewPosition(pos)
		line.Plies = append(line.Plies, board.Ply{
			Side:  side,
			SAN:   withCheckSuffix(encoded, after),
			From:  board.Square(m.S1()),
			To:    board.Square(m.S2()),
			After: after,
		})
	}
	return line, nil
}

// withCheckSuffix sets the '+' or '#' suffix from the position after the
// move, whatever the library tagged the move with.
func withCheckSuffix(san string, after *Position) string {
	san = strings.TrimRight(san, "+#")
	if !after.InCheck(after.Turn()) {
		return san
	}
	if len(after.Chess().ValidMoves()) == 0 {
		return san + "#"
	}
	return san + "+"
}

// FormatMoveText numbers SAN moves the way the opening dataset stores
// them: "1. e4 e5 2. Nf3", or "12...Nc6 13. Nf3" for a line starting with
// Black.
func FormatMoveText(line board.Line) string {
	var sb strings.Builder
	number := line.StartNumber
	if number < 1 {
		number = 1
	}
	for i, p := range line.Plies {
		if i > 0 {
			sb.WriteByte(' ')
		}
		switch {
		case p.Side == board.White:
			sb.WriteString(strconv.Itoa(number) + ". ")
		case i == 0:
			sb.WriteString(strconv.Itoa(number) + "...")
		}
		sb.WriteString(p.SAN)
		if p.Side == board.Black {
			number++
		}
	}
	return sb.String()
}

// Normalise parses loose move text such as "1.e4 Nf6 2.e5" from the
// initial position and returns it in canonical form "1. e4 Nf6 2. e5".
func Normalise(text string) (string, error) {
	tokens := Tokens(text)
	if len(tokens) == 0 {
		return "", malformed(nil, "no moves in %q", text)
	}
	line, err := Replay(StartPosition(), tokens)
	if err != nil {
		return "", err
	}
	return FormatMoveText(line), nil
}

func fullMoveNumber(fen string) int {
	fields := strings.Fields(fen)
	if len(fields) < 6 {
		return 1
	}
	n, err := strconv.Atoi(fields[5])
	if err != nil || n < 1 {
		return 1
	}
	return n
}
