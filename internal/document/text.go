package document

import (
	"strings"
	"unicode/utf8"

	"github.com/dmmcquay/chessbook/internal/board"
)

// TextWriter renders a document as plain text. Rows print their cells side
// by side and pages are separated by a form feed.
type TextWriter struct {
	layout
	// Unicode replaces diagram font characters with chess symbols.
	Unicode bool
	// Gap is the space between cells of a row.
	Gap int
}

// NewText returns a text writer.
func NewText(unicode bool) *TextWriter {
	return &TextWriter{Unicode: unicode, Gap: 4}
}

func (w *TextWriter) Ext() string  { return ".txt" }
func (w *TextWriter) MIME() string { return "text/plain; charset=utf-8" }

func (w *TextWriter) Bytes() ([]byte, error) {
	w.flush()

	var sb strings.Builder
	for _, it := range w.items {
		if it.page {
			sb.WriteString("\f\n")
			continue
		}
		cells := make([][]string, len(it.cells))
		widths := make([]int, len(it.cells))
		height := 0
		for i, b := range it.cells {
			cells[i] = w.lines(b)
			for _, l := range cells[i] {
				if n := utf8.RuneCountInString(l); n > widths[i] {
					widths[i] = n
				}
			}
			if len(cells[i]) > height {
				height = len(cells[i])
			}
		}
		for row := 0; row < height; row++ {
			var line strings.Builder
			for i := range cells {
				var l string
				if row < len(cells[i]) {
					l = cells[i][row]
				}
				line.WriteString(l)
				if i < len(cells)-1 {
					line.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(l)+w.Gap))
				}
			}
			sb.WriteString(strings.TrimRight(line.String(), " "))
			sb.WriteByte('\n')
		}
		if it.row && len(it.cells) > 0 && !it.cells[0].diagram() {
			sb.WriteByte('\n')
		}
	}
	return []byte(sb.String()), nil
}

func (w *TextWriter) lines(b block) []string {
	out := make([]string, 0, len(b.lines))
	for _, l := range b.lines {
		var sb strings.Builder
		for _, s := range l {
			if s.style.Role == RoleDiagram && w.Unicode {
				sb.WriteString(figures(s.text))
				continue
			}
			sb.WriteString(s.text)
		}
		out = append(out, sb.String())
	}
	return out
}

// figures maps diagram font characters back to Unicode chess symbols.
func figures(encoded string) string {
	var sb strings.Builder
	for _, r := range encoded {
		c, err := board.Decode(r)
		if err != nil {
			sb.WriteRune(r)
			continue
		}
		sb.WriteRune(c.Figure())
	}
	return sb.String()
}
