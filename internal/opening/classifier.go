package opening

import (
	"sort"
	"strings"

	"github.com/dmmcquay/chessbook/internal/game"
)

// Classifier finds the opening record that best matches a game. It is
// immutable after construction and safe for concurrent use.
type Classifier struct {
	records []Record
	byCode  map[string][]int
}

// New builds a classifier over records. Within one code, longer move texts
// are tried first.
func New(records []Record) *Classifier {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].MoveText) > len(sorted[j].MoveText)
	})

	c := &Classifier{records: sorted, byCode: make(map[string][]int)}
	for i, r := range sorted {
		c.byCode[r.Code] = append(c.byCode[r.Code], i)
	}
	return c
}

// Len returns the number of records.
func (c *Classifier) Len() int {
	return len(c.records)
}

// Records returns the dataset ordered longest move text first.
func (c *Classifier) Records() []Record {
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

// Classify normalises moveText and returns the record with the longest
// move text that is a prefix of it. Records with the given code are tried
// first; a wrong or empty code falls back to the whole dataset. Malformed
// move text yields no match.
func (c *Classifier) Classify(code, moveText string) (Record, bool) {
	normalised, err := game.Normalise(moveText)
	if err != nil {
		return Record{}, false
	}
	return c.match(strings.TrimSpace(code), normalised)
}

// ClassifyGame classifies a parsed game. Games that do not start from the
// initial position have no classification.
func (c *Classifier) ClassifyGame(g *game.Game) (Record, bool) {
	if g == nil || !strings.HasPrefix(g.MoveText, "1. ") {
		return Record{}, false
	}
	if g.Start != nil && g.Start.FEN() != game.StartPosition().FEN() {
		return Record{}, false
	}
	return c.match(g.ECO(), g.MoveText)
}

func (c *Classifier) match(code, normalised string) (Record, bool) {
	if code != "" {
		for _, i := range c.byCode[code] {
			if isPrefix(c.records[i].MoveText, normalised) {
				return c.records[i], true
			}
		}
	}
	for _, r := range c.records {
		if isPrefix(r.MoveText, normalised) {
			return r, true
		}
	}
	return Record{}, false
}

// isPrefix reports whether prefix is a whole-move prefix of text.
func isPrefix(prefix, text string) bool {
	if prefix == "" || !strings.HasPrefix(text, prefix) {
		return false
	}
	return len(text) == len(prefix) || text[len(prefix)] == ' '
}
