package document

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strconv"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	pngDPI    = 72
	pngMargin = 24
	pngGap    = 24
	pngRule   = 16
)

// PNGWriter rasterises a document into a single image, pages stacked top
// to bottom with a rule in between. Diagrams need the TTF of a chess
// diagram font; without one the Go regular font stands in.
type PNGWriter struct {
	layout
	diagram *truetype.Font
	caption *truetype.Font
	faces   map[faceKey]font.Face
}

type faceKey struct {
	diagram bool
	size    float64
}

// NewPNG parses the given fonts. Nil data selects the Go regular font.
func NewPNG(diagramTTF, captionTTF []byte) (*PNGWriter, error) {
	parse := func(data []byte, what string) (*truetype.Font, error) {
		if len(data) == 0 {
			data = goregular.TTF
		}
		f, err := freetype.ParseFont(data)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s font", what)
		}
		return f, nil
	}
	d, err := parse(diagramTTF, "diagram")
	if err != nil {
		return nil, err
	}
	c, err := parse(captionTTF, "caption")
	if err != nil {
		return nil, err
	}
	return &PNGWriter{diagram: d, caption: c, faces: make(map[faceKey]font.Face)}, nil
}

func (w *PNGWriter) Ext() string  { return ".png" }
func (w *PNGWriter) MIME() string { return "image/png" }

func (w *PNGWriter) fontFor(s Style) (*truetype.Font, float64) {
	size := s.Size
	if size <= 0 {
		size = 12
	}
	if s.Role == RoleDiagram {
		return w.diagram, size
	}
	return w.caption, size
}

func (w *PNGWriter) face(s Style) font.Face {
	f, size := w.fontFor(s)
	key := faceKey{diagram: s.Role == RoleDiagram, size: size}
	if face, ok := w.faces[key]; ok {
		return face
	}
	face := truetype.NewFace(f, &truetype.Options{Size: size, DPI: pngDPI, Hinting: font.HintingNone})
	w.faces[key] = face
	return face
}

type lineBox struct {
	width, height, ascent int
}

func (w *PNGWriter) measureLine(l []span) lineBox {
	if len(l) == 0 {
		m := w.face(Style{}).Metrics()
		return lineBox{height: m.Height.Ceil(), ascent: m.Ascent.Ceil()}
	}
	var lb lineBox
	for _, s := range l {
		face := w.face(s.style)
		m := face.Metrics()
		lb.width += font.MeasureString(face, s.text).Ceil()
		if h := m.Height.Ceil(); h > lb.height {
			lb.height = h
		}
		if a := m.Ascent.Ceil(); a > lb.ascent {
			lb.ascent = a
		}
	}
	return lb
}

func (w *PNGWriter) measureBlock(b block) (int, int) {
	width, height := 0, 0
	for _, l := range b.lines {
		lb := w.measureLine(l)
		if lb.width > width {
			width = lb.width
		}
		height += lb.height
	}
	return width, height
}

func (w *PNGWriter) measureItem(it item) (int, int) {
	if it.page {
		return 0, pngRule
	}
	width, height := 0, 0
	for i, b := range it.cells {
		cw, ch := w.measureBlock(b)
		width += cw
		if i > 0 {
			width += pngGap
		}
		if ch > height {
			height = ch
		}
	}
	return width, height
}

func (w *PNGWriter) Bytes() ([]byte, error) {
	w.flush()

	width, height := 0, 0
	for _, it := range w.items {
		iw, ih := w.measureItem(it)
		if iw > width {
			width = iw
		}
		height += ih
	}
	img := image.NewRGBA(image.Rect(0, 0, width+2*pngMargin, height+2*pngMargin))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	y := pngMargin
	for _, it := range w.items {
		_, ih := w.measureItem(it)
		if it.page {
			rule := image.Rect(pngMargin, y+pngRule/2, img.Bounds().Dx()-pngMargin, y+pngRule/2+1)
			draw.Draw(img, rule, image.NewUniform(color.Gray{Y: 0x80}), image.Point{}, draw.Src)
			y += ih
			continue
		}
		x := pngMargin
		for _, b := range it.cells {
			if err := w.drawBlock(img, b, x, y); err != nil {
				return nil, err
			}
			cw, _ := w.measureBlock(b)
			x += cw + pngGap
		}
		y += ih
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Wrap(err, "encode png")
	}
	return buf.Bytes(), nil
}

func (w *PNGWriter) drawBlock(img *image.RGBA, b block, x, y int) error {
	for _, l := range b.lines {
		lb := w.measureLine(l)
		pen := x
		for _, s := range l {
			face := w.face(s.style)
			sw := font.MeasureString(face, s.text).Ceil()
			if bg, ok := parseHex(s.style.Background); ok {
				draw.Draw(img, image.Rect(pen, y, pen+sw, y+lb.height), image.NewUniform(bg), image.Point{}, draw.Src)
			}
			fg, ok := parseHex(s.style.Color)
			if !ok {
				fg = color.Black
			}

			f, size := w.fontFor(s.style)
			c := freetype.NewContext()
			c.SetDPI(pngDPI)
			c.SetFont(f)
			c.SetFontSize(size)
			c.SetClip(img.Bounds())
			c.SetDst(img)
			c.SetSrc(image.NewUniform(fg))
			c.SetHinting(font.HintingNone)
			if _, err := c.DrawString(s.text, freetype.Pt(pen, y+lb.ascent)); err != nil {
				return errors.Wrap(err, "draw text")
			}
			pen += sw
		}
		y += lb.height
	}
	return nil
}

// parseHex reads "RRGGBB", with or without a leading '#'.
func parseHex(s string) (color.Color, bool) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return nil, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return nil, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}
