package document

import (
	"fmt"
	"html"
	"strings"
)

// HTMLWriter renders a printable HTML page. Diagrams use the chess font by
// name, so the font has to be installed where the page is viewed or
// printed.
type HTMLWriter struct {
	layout
	Title string
}

// NewHTML returns an HTML writer.
func NewHTML(title string) *HTMLWriter {
	return &HTMLWriter{Title: title}
}

func (w *HTMLWriter) Ext() string  { return ".html" }
func (w *HTMLWriter) MIME() string { return "text/html; charset=utf-8" }

func (w *HTMLWriter) Bytes() ([]byte, error) {
	w.flush()

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&sb, "<title>%s</title>\n", html.EscapeString(w.Title))
	sb.WriteString("<style>\n" +
		"pre.diagram { margin: 0; line-height: 1; }\n" +
		"td { vertical-align: top; padding: 0 2em 0 0; }\n" +
		".header { font-size: small; }\n" +
		".footer { font-size: small; text-align: right; }\n" +
		".page { page-break-after: always; }\n" +
		"</style>\n</head>\n<body>\n")

	inTable := false
	closeTable := func() {
		if inTable {
			sb.WriteString("</table>\n")
			inTable = false
		}
	}
	for _, it := range w.items {
		switch {
		case it.page:
			closeTable()
			sb.WriteString("<div class=\"page\"></div>\n")
		case it.row:
			if !inTable {
				sb.WriteString("<table>\n")
				inTable = true
			}
			sb.WriteString("<tr>")
			for _, b := range it.cells {
				sb.WriteString("<td>")
				writeBlock(&sb, b)
				sb.WriteString("</td>")
			}
			sb.WriteString("</tr>\n")
		default:
			closeTable()
			for _, b := range it.cells {
				writeBlock(&sb, b)
				sb.WriteByte('\n')
			}
		}
	}
	closeTable()
	sb.WriteString("</body>\n</html>\n")
	return []byte(sb.String()), nil
}

func writeBlock(sb *strings.Builder, b block) {
	if b.diagram() {
		sb.WriteString("<pre class=\"diagram\">")
		for i, l := range b.lines {
			if i > 0 {
				sb.WriteByte('\n')
			}
			for _, s := range l {
				writeSpan(sb, s)
			}
		}
		sb.WriteString("</pre>")
		return
	}

	class := ""
	if len(b.lines) > 0 && len(b.lines[0]) > 0 {
		switch b.lines[0][0].style.Role {
		case RoleHeader:
			class = " class=\"header\""
		case RoleFooter:
			class = " class=\"footer\""
		}
	}
	fmt.Fprintf(sb, "<p%s>", class)
	for i, l := range b.lines {
		if i > 0 {
			sb.WriteString("<br>")
		}
		for _, s := range l {
			writeSpan(sb, s)
		}
	}
	sb.WriteString("</p>")
}

func writeSpan(sb *strings.Builder, s span) {
	var css []string
	if s.style.Font != "" {
		css = append(css, fmt.Sprintf("font-family: '%s'", html.EscapeString(s.style.Font)))
	}
	if s.style.Size > 0 {
		css = append(css, fmt.Sprintf("font-size: %gpt", s.style.Size))
	}
	if s.style.Color != "" {
		css = append(css, "color: #"+html.EscapeString(s.style.Color))
	}
	if s.style.Background != "" {
		css = append(css, "background-color: #"+html.EscapeString(s.style.Background))
	}
	text := html.EscapeString(s.text)
	if len(css) == 0 {
		sb.WriteString(text)
		return
	}
	fmt.Fprintf(sb, "<span style=\"%s\">%s</span>", strings.Join(css, "; "), text)
}
