// Package document lays rendered games out as paginated books. Layout is
// written against the Sink interface; each output format implements it.
package document

import (
	"strings"

	"github.com/dmmcquay/chessbook/internal/board"
)

// Role tells a sink what a piece of text is for.
type Role int

const (
	RoleBody Role = iota
	RoleHeader
	RoleFooter
	RoleTitle
	RoleDiagram
	RoleCaption
	RoleOpening
)

// Style annotates emitted text. Colors are hex "RRGGBB"; empty means the
// sink default.
type Style struct {
	Role       Role
	Font       string
	Size       float64
	Color      string
	Background string
	Mark       board.Mark
}

// BreakKind ends the current block of text.
type BreakKind int

const (
	// Paragraph ends a standalone block.
	Paragraph BreakKind = iota
	// Cell ends a block that sits beside the next one in a row.
	Cell
	// Row ends a row of cells.
	Row
	// Page starts a new page.
	Page
)

// Sink accepts styled text.
type Sink interface {
	Emit(text string, style Style) error
	Break(kind BreakKind) error
}

// Writer is a sink that produces a finished artifact.
type Writer interface {
	Sink
	// Bytes finishes the document.
	Bytes() ([]byte, error)
	// Ext is the file extension including the dot.
	Ext() string
	// MIME is the media type of Bytes.
	MIME() string
}

// Formats known to New.
const (
	FormatText = "text"
	FormatHTML = "html"
	FormatPNG  = "png"
)

type span struct {
	text  string
	style Style
}

// block is one cell or paragraph, split into lines.
type block struct {
	lines [][]span
}

func (b block) diagram() bool {
	for _, l := range b.lines {
		for _, s := range l {
			if s.style.Role == RoleDiagram {
				return true
			}
		}
	}
	return false
}

type item struct {
	cells []block
	row   bool
	page  bool
}

// layout is the format independent accumulator behind every sink.
type layout struct {
	cur   []span
	cells []block
	items []item
}

func (l *layout) Emit(text string, style Style) error {
	if text != "" {
		l.cur = append(l.cur, span{text: text, style: style})
	}
	return nil
}

func (l *layout) Break(kind BreakKind) error {
	switch kind {
	case Paragraph:
		l.flushRow()
		l.items = append(l.items, item{cells: []block{l.take()}})
	case Cell:
		l.cells = append(l.cells, l.take())
	case Row:
		if len(l.cur) > 0 {
			l.cells = append(l.cells, l.take())
		}
		l.flushRow()
	case Page:
		l.flush()
		l.items = append(l.items, item{page: true})
	}
	return nil
}

// flush closes any open block and row.
func (l *layout) flush() {
	if len(l.cur) > 0 {
		l.items = append(l.items, item{cells: []block{l.take()}})
	}
	l.flushRow()
}

func (l *layout) flushRow() {
	if len(l.cells) > 0 {
		l.items = append(l.items, item{cells: l.cells, row: true})
		l.cells = nil
	}
}

// take splits the pending spans into lines and resets them.
func (l *layout) take() block {
	var b block
	line := []span{}
	for _, s := range l.cur {
		parts := strings.Split(s.text, "\n")
		for i, p := range parts {
			if i > 0 {
				b.lines = append(b.lines, line)
				line = []span{}
			}
			if p != "" {
				line = append(line, span{text: p, style: s.style})
			}
		}
	}
	b.lines = append(b.lines, line)
	l.cur = nil
	return b
}

// Diagram converts encoded glyph runs into styled spans: marked runs get
// the check color or the from/to backgrounds, everything else the
// diagram font. The trailing line break of the last row is dropped.
func Diagram(sink Sink, runs []board.Run, opts Options) error {
	base := Style{Role: RoleDiagram, Font: opts.Font, Size: opts.Size}
	for i, r := range runs {
		text := r.Text
		if i == len(runs)-1 {
			text = strings.TrimSuffix(text, "\n")
		}
		st := base
		st.Mark = r.Mark
		switch r.Mark {
		case board.MarkCheck:
			st.Color = opts.CheckColor
		case board.MarkFrom:
			st.Background = opts.FromBackground
		case board.MarkTo:
			st.Background = opts.ToBackground
		}
		if err := sink.Emit(text, st); err != nil {
			return err
		}
	}
	return nil
}
