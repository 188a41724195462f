package document

import (
	"fmt"
	"strings"
)

// New returns a writer for format. PNG output uses the given font data.
func New(format, title string, unicode bool, diagramTTF []byte) (Writer, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return NewText(unicode), nil
	case FormatHTML:
		return NewHTML(title), nil
	case FormatPNG:
		w, err := NewPNG(diagramTTF, nil)
		if err != nil {
			return nil, err
		}
		return w, nil
	}
	return nil, fmt.Errorf("unknown document format %q", format)
}
