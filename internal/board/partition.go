package board

import (
	"strings"
)

// Mark is the highlight applied to a single square glyph.
type Mark int

const (
	MarkNone Mark = iota
	MarkCheck
	MarkFrom
	MarkTo
)

func (m Mark) String() string {
	switch m {
	case MarkCheck:
		return "check"
	case MarkFrom:
		return "from"
	case MarkTo:
		return "to"
	}
	return "plain"
}

// Run is a contiguous slice of an encoded grid. Marked runs hold exactly
// one glyph.
type Run struct {
	Text string
	Mark Mark
}

// Partition splits an encoded grid into plain runs and single-glyph marked
// runs at the named squares. Empty names are skipped. When two names refer
// to the same square the later one in check, from, to order wins.
// Zero-length plain runs are omitted; joining the run texts gives back
// encoded unchanged.
func Partition(encoded, check, from, to string) ([]Run, error) {
	sqs := [3]Square{NoSquare, NoSquare, NoSquare}
	for i, name := range [3]string{check, from, to} {
		if name == "" {
			continue
		}
		sq, err := ParseSquare(name)
		if err != nil {
			return nil, err
		}
		sqs[i] = sq
	}
	return PartitionMarks(encoded, sqs[0], sqs[1], sqs[2]), nil
}

// PartitionMarks is Partition for callers already holding squares. NoSquare
// leaves a mark unset.
func PartitionMarks(encoded string, check, from, to Square) []Run {
	marks := make(map[int]Mark, 3)
	for _, m := range []struct {
		sq   Square
		mark Mark
	}{{check, MarkCheck}, {from, MarkFrom}, {to, MarkTo}} {
		if m.sq.Valid() {
			marks[Offset(m.sq)] = m.mark
		}
	}

	runs := make([]Run, 0, 2*len(marks)+1)
	start, idx := 0, 0
	for pos, r := range encoded {
		mark, ok := marks[idx]
		idx++
		if !ok {
			continue
		}
		if pos > start {
			runs = append(runs, Run{Text: encoded[start:pos]})
		}
		end := pos + len(string(r))
		runs = append(runs, Run{Text: encoded[pos:end], Mark: mark})
		start = end
	}
	if start < len(encoded) {
		runs = append(runs, Run{Text: encoded[start:]})
	}
	return runs
}

// Join concatenates run texts in order.
func Join(runs []Run) string {
	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}
