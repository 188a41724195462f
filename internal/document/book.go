package document

import (
	"fmt"
	"strings"

	"github.com/dmmcquay/chessbook/internal/board"
	"github.com/dmmcquay/chessbook/internal/game"
	"github.com/dmmcquay/chessbook/internal/opening"
)

// Options controls fonts, highlight colors and pagination.
type Options struct {
	// Font is the chess diagram font name.
	Font string
	Size float64
	// CaptionFont is used for every non-diagram text.
	CaptionFont    string
	CaptionSize    float64
	CheckColor     string
	FromBackground string
	ToBackground   string
	// MovesPerPage is the number of full moves per diagram page.
	MovesPerPage int
}

// DefaultOptions mirrors the printed booklet layout: Chess Merida at 20pt,
// Verdana captions, three full moves per page.
func DefaultOptions() Options {
	return Options{
		Font:           board.DefaultFont,
		Size:           20,
		CaptionFont:    "Verdana",
		CaptionSize:    10,
		CheckColor:     "FF0000",
		FromBackground: "C0C0C0",
		ToBackground:   "808080",
		MovesPerPage:   3,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Font == "" {
		o.Font = d.Font
	}
	if o.Size <= 0 {
		o.Size = d.Size
	}
	if o.CaptionFont == "" {
		o.CaptionFont = d.CaptionFont
	}
	if o.CaptionSize <= 0 {
		o.CaptionSize = d.CaptionSize
	}
	if o.MovesPerPage <= 0 {
		o.MovesPerPage = d.MovesPerPage
	}
	return o
}

// Book is everything needed to lay out one game.
type Book struct {
	Game  *game.Game
	Moves []board.FullMove
	// Opening is nil when the game could not be classified.
	Opening *opening.Record
}

// Pages returns the total page count: the title page plus the diagram
// pages.
func (b Book) Pages(movesPerPage int) int {
	if movesPerPage <= 0 {
		movesPerPage = DefaultOptions().MovesPerPage
	}
	return 1 + (len(b.Moves)+movesPerPage-1)/movesPerPage
}

// Compose writes the book to sink: a title page with the headers, the move
// text and the opening, followed by diagram pages with one row of two
// boards per full move. Every page carries the running header and a
// "Page N of M" footer.
func Compose(sink Sink, b Book, opts Options) error {
	opts = opts.withDefaults()
	if b.Game == nil {
		return fmt.Errorf("compose: no game")
	}
	c := composer{sink: sink, opts: opts, book: b, total: b.Pages(opts.MovesPerPage)}
	return c.run()
}

type composer struct {
	sink  Sink
	opts  Options
	book  Book
	page  int
	total int
	err   error
}

func (c *composer) emit(text string, st Style) {
	if c.err == nil {
		c.err = c.sink.Emit(text, st)
	}
}

func (c *composer) brk(kind BreakKind) {
	if c.err == nil {
		c.err = c.sink.Break(kind)
	}
}

func (c *composer) caption(role Role) Style {
	return Style{Role: role, Font: c.opts.CaptionFont, Size: c.opts.CaptionSize}
}

func (c *composer) startPage() {
	c.page++
	c.emit(c.book.Game.Header(), c.caption(RoleHeader))
	c.brk(Paragraph)
}

func (c *composer) endPage() {
	c.emit(fmt.Sprintf("Page %d of %d", c.page, c.total), c.caption(RoleFooter))
	c.brk(Paragraph)
	if c.page < c.total {
		c.brk(Page)
	}
}

func (c *composer) run() error {
	c.titlePage()
	for start := 0; start < len(c.book.Moves) && c.err == nil; start += c.opts.MovesPerPage {
		end := start + c.opts.MovesPerPage
		if end > len(c.book.Moves) {
			end = len(c.book.Moves)
		}
		c.startPage()
		for i := start; i < end; i++ {
			c.fullMove(i)
		}
		c.endPage()
	}
	return c.err
}

func (c *composer) titlePage() {
	g := c.book.Game
	c.startPage()

	var sb strings.Builder
	for _, t := range g.Tags {
		fmt.Fprintf(&sb, "[%s] \"%s\"\n", t.Key, t.Value)
	}
	sb.WriteString("\n")
	sb.WriteString(g.MoveText + "  " + g.Result)
	c.emit(sb.String(), c.caption(RoleTitle))
	c.brk(Paragraph)

	if rec := c.book.Opening; rec != nil {
		c.emit(rec.Summary(), c.caption(RoleOpening))
		c.brk(Paragraph)
		if pos, err := game.PositionFromFEN(rec.FEN); err == nil {
			encoded := board.MustEncode(board.Project(pos))
			c.diagram(board.PartitionMarks(encoded, board.NoSquare, board.NoSquare, board.NoSquare))
			c.brk(Paragraph)
			c.emit(rec.String(), c.caption(RoleCaption))
			c.brk(Paragraph)
		}
	}
	c.endPage()
}

func (c *composer) diagram(runs []board.Run) {
	if c.err == nil {
		c.err = Diagram(c.sink, runs, c.opts)
	}
}

func (c *composer) fullMove(i int) {
	fm := c.book.Moves[i]
	last := i == len(c.book.Moves)-1

	for _, h := range []*board.HalfMove{fm.White, fm.Black} {
		if h != nil {
			c.diagram(h.Runs())
		}
		c.brk(Cell)
	}
	c.brk(Row)

	white, black := notation(fm.White), notation(fm.Black)
	if last {
		// the result goes after the final half-move
		if fm.Black == nil {
			white += "   " + c.book.Game.Result
		} else {
			black += "   " + c.book.Game.Result
		}
	}
	c.emit(white, c.caption(RoleCaption))
	c.brk(Cell)
	c.emit(black, c.caption(RoleCaption))
	c.brk(Cell)
	c.brk(Row)
}

func notation(h *board.HalfMove) string {
	if h == nil {
		return ""
	}
	return h.Notation()
}

// Position lays out a single diagram with an optional caption.
func Position(sink Sink, runs []board.Run, caption string, opts Options) error {
	opts = opts.withDefaults()
	if err := Diagram(sink, runs, opts); err != nil {
		return err
	}
	if err := sink.Break(Paragraph); err != nil {
		return err
	}
	if caption == "" {
		return nil
	}
	if err := sink.Emit(caption, Style{Role: RoleCaption, Font: opts.CaptionFont, Size: opts.CaptionSize}); err != nil {
		return err
	}
	return sink.Break(Paragraph)
}
