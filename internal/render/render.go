// Package render turns PGN text and FEN positions into finished documents.
// It is the service behind both the MCP tools and the batch converter.
package render

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmmcquay/chessbook/internal/board"
	"github.com/dmmcquay/chessbook/internal/cache"
	"github.com/dmmcquay/chessbook/internal/config"
	"github.com/dmmcquay/chessbook/internal/document"
	"github.com/dmmcquay/chessbook/internal/game"
	"github.com/dmmcquay/chessbook/internal/logging"
	"github.com/dmmcquay/chessbook/internal/metrics"
	"github.com/dmmcquay/chessbook/internal/opening"
)

// ErrInvalidRequest marks caller mistakes: bad format names, out of range
// game numbers, unreadable squares.
var ErrInvalidRequest = errors.New("invalid request")

// GameRequest selects what renderGame draws.
type GameRequest struct {
	PGN    string
	Format string
	// GameIndex is 1-based; 0 renders every game into one document.
	GameIndex      int
	Unicode        bool
	IncludeOpening bool
}

// PositionRequest describes a single diagram. Empty squares are unmarked;
// an empty Check marks the king of the side to move when it is in check.
type PositionRequest struct {
	FEN     string
	From    string
	To      string
	Check   string
	Flip    bool
	Format  string
	Unicode bool
}

// Document is a rendered artefact.
type Document struct {
	Data   []byte
	MIME   string
	Ext    string
	Pages  int
	Cached bool
}

// GameSummary is one line of listGames output.
type GameSummary struct {
	Index  int    `json:"index"`
	White  string `json:"white"`
	Black  string `json:"black"`
	Event  string `json:"event"`
	Site   string `json:"site"`
	Date   string `json:"date"`
	Result string `json:"result"`
	ECO    string `json:"eco,omitempty"`
	Plies  int    `json:"plies"`
}

// Status is reported by the health tool.
type Status struct {
	Format       string      `json:"format"`
	Font         string      `json:"font"`
	FontLoaded   bool        `json:"fontLoaded"`
	MovesPerPage int         `json:"movesPerPage"`
	Openings     int         `json:"openings"`
	CacheEnabled bool        `json:"cacheEnabled"`
	Cache        cache.Stats `json:"cache"`
}

// Renderer is safe for concurrent use once configured.
type Renderer struct {
	cfg        *config.Config
	classifier *opening.Classifier
	logger     logging.ContextLogger
	fontTTF    []byte
	cache      *cache.Manager
	prom       *metrics.PrometheusCollector
	collector  *metrics.Collector
}

// New creates a renderer. classifier may be nil, in which case no game is
// ever classified.
func New(cfg *config.Config, classifier *opening.Classifier, logger logging.ContextLogger) *Renderer {
	return &Renderer{
		cfg:        cfg,
		classifier: classifier,
		logger:     logger,
		cache:      cache.NewManager(nil, logger),
	}
}

// SetFont sets the diagram TTF used for PNG output.
func (r *Renderer) SetFont(ttf []byte) {
	r.fontTTF = ttf
}

// SetCache replaces the default disabled cache.
func (r *Renderer) SetCache(m *cache.Manager) {
	r.cache = m
}

// SetMetrics attaches collectors; either may be nil.
func (r *Renderer) SetMetrics(prom *metrics.PrometheusCollector, collector *metrics.Collector) {
	r.prom = prom
	r.collector = collector
}

func (r *Renderer) options() document.Options {
	rc := r.cfg.Render
	return document.Options{
		Font:           rc.FontName,
		Size:           rc.FontSize,
		CaptionFont:    rc.CaptionFont,
		CaptionSize:    rc.CaptionSize,
		CheckColor:     rc.CheckColor,
		FromBackground: rc.FromBackground,
		ToBackground:   rc.ToBackground,
		MovesPerPage:   rc.MovesPerPage,
	}
}

func (r *Renderer) format(requested string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(requested))
	if f == "" {
		f = r.cfg.Render.Format
	}
	switch f {
	case document.FormatText, document.FormatHTML, document.FormatPNG:
		return f, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", ErrInvalidRequest, requested)
}

// RenderGame implements RendererInterface.
func (r *Renderer) RenderGame(ctx context.Context, req GameRequest) (*Document, error) {
	format, err := r.format(req.Format)
	if err != nil {
		return nil, err
	}
	key := cache.Key{
		Tool:  "renderGame",
		Input: req.PGN,
		Options: map[string]string{
			"format":  format,
			"game":    strconv.Itoa(req.GameIndex),
			"unicode": strconv.FormatBool(req.Unicode),
			"opening": strconv.FormatBool(req.IncludeOpening),
		},
	}

	entry, hit, err := r.cache.GetOrRender(key, func() (cache.Entry, error) {
		games, err := r.parse(req.PGN)
		if err != nil {
			return cache.Entry{}, err
		}
		if req.GameIndex < 0 || req.GameIndex > len(games) {
			return cache.Entry{}, fmt.Errorf("%w: game %d of %d", ErrInvalidRequest, req.GameIndex, len(games))
		}
		if req.GameIndex > 0 {
			games = games[req.GameIndex-1 : req.GameIndex]
		}
		return r.compose(ctx, games, format, req.Unicode, req.IncludeOpening)
	})
	if err != nil {
		return nil, err
	}
	return toDocument(entry, hit), nil
}

func toDocument(e cache.Entry, hit bool) *Document {
	return &Document{Data: e.Data, MIME: e.MIME, Ext: e.Ext, Pages: e.Pages, Cached: hit}
}

func (r *Renderer) parse(pgn string) ([]*game.Game, error) {
	if strings.TrimSpace(pgn) == "" {
		return nil, fmt.Errorf("%w: empty PGN", ErrInvalidRequest)
	}
	games, err := game.ParseString(pgn)
	if err != nil {
		if r.prom != nil {
			r.prom.RecordPGNError()
		}
		return nil, fmt.Errorf("failed to parse PGN: %w", err)
	}
	return games, nil
}

// compose lays out games one after another in a single writer, each
// starting on a new page.
func (r *Renderer) compose(ctx context.Context, games []*game.Game, format string, unicode, includeOpening bool) (cache.Entry, error) {
	title := "chessbook"
	if len(games) == 1 {
		title = games[0].Title()
	}
	w, err := document.New(format, title, unicode, r.fontTTF)
	if err != nil {
		return cache.Entry{}, fmt.Errorf("failed to create %s writer: %w", format, err)
	}

	opts := r.options()
	pages := 0
	for i, g := range games {
		if err := ctx.Err(); err != nil {
			return cache.Entry{}, err
		}
		gctx := logging.ContextWithGame(ctx, logging.GameRef{Index: g.Index + 1, Title: g.Title()})
		start := time.Now()

		b, err := r.Book(gctx, g, includeOpening)
		if err != nil {
			return cache.Entry{}, err
		}
		if i > 0 {
			if err := w.Break(document.Page); err != nil {
				return cache.Entry{}, err
			}
		}
		if err := document.Compose(w, b, opts); err != nil {
			return cache.Entry{}, fmt.Errorf("failed to compose game %d: %w", g.Index+1, err)
		}
		n := b.Pages(opts.MovesPerPage)
		pages += n
		r.recordRender(format, n, time.Since(start))
		r.logger.WithContext(gctx).Debug("Composed game", "pages", n, "format", format)
	}

	data, err := w.Bytes()
	if err != nil {
		return cache.Entry{}, fmt.Errorf("failed to finish %s document: %w", format, err)
	}
	return cache.Entry{Data: data, MIME: w.MIME(), Ext: w.Ext(), Pages: pages}, nil
}

func (r *Renderer) recordRender(format string, pages int, d time.Duration) {
	if r.prom != nil {
		r.prom.RecordRender(format, pages, d.Seconds())
	}
	if r.collector != nil {
		r.collector.RecordRender(format, pages)
	}
}

func (r *Renderer) recordLookup(found bool) {
	if r.prom != nil {
		r.prom.RecordOpeningLookup(found)
	}
	if r.collector != nil {
		r.collector.RecordOpeningLookup(found)
	}
}

// Book walks a game into full moves and attaches its opening.
func (r *Renderer) Book(ctx context.Context, g *game.Game, includeOpening bool) (document.Book, error) {
	halves, err := g.Walk()
	if err != nil {
		return document.Book{}, fmt.Errorf("failed to walk game %d: %w", g.Index+1, err)
	}
	b := document.Book{Game: g, Moves: board.Pair(halves)}
	if includeOpening && r.classifier != nil {
		rec, ok := r.classifier.ClassifyGame(g)
		r.recordLookup(ok)
		if ok {
			b.Opening = &rec
		} else {
			r.logger.WithContext(ctx).Debug("No opening classification", "eco", g.ECO())
		}
	}
	return b, nil
}

// RenderPosition implements RendererInterface.
func (r *Renderer) RenderPosition(ctx context.Context, req PositionRequest) (*Document, error) {
	format, err := r.format(req.Format)
	if err != nil {
		return nil, err
	}
	key := cache.Key{
		Tool:  "renderPosition",
		Input: req.FEN,
		Options: map[string]string{
			"format":  format,
			"from":    req.From,
			"to":      req.To,
			"check":   req.Check,
			"flip":    strconv.FormatBool(req.Flip),
			"unicode": strconv.FormatBool(req.Unicode),
		},
	}

	entry, hit, err := r.cache.GetOrRender(key, func() (cache.Entry, error) {
		start := time.Now()
		runs, caption, err := r.positionRuns(req)
		if err != nil {
			return cache.Entry{}, err
		}
		w, err := document.New(format, caption, req.Unicode, r.fontTTF)
		if err != nil {
			return cache.Entry{}, fmt.Errorf("failed to create %s writer: %w", format, err)
		}
		if err := document.Position(w, runs, caption, r.options()); err != nil {
			return cache.Entry{}, fmt.Errorf("failed to lay out position: %w", err)
		}
		data, err := w.Bytes()
		if err != nil {
			return cache.Entry{}, fmt.Errorf("failed to finish %s document: %w", format, err)
		}
		r.recordRender(format, 1, time.Since(start))
		return cache.Entry{Data: data, MIME: w.MIME(), Ext: w.Ext(), Pages: 1}, nil
	})
	if err != nil {
		return nil, err
	}
	return toDocument(entry, hit), nil
}

func (r *Renderer) positionRuns(req PositionRequest) ([]board.Run, string, error) {
	pos := game.StartPosition()
	if fen := strings.TrimSpace(req.FEN); fen != "" {
		p, err := game.PositionFromFEN(fen)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		pos = p
	}

	square := func(name, what string) (board.Square, error) {
		if name == "" {
			return board.NoSquare, nil
		}
		sq, err := board.ParseSquare(strings.ToLower(name))
		if err != nil {
			return board.NoSquare, fmt.Errorf("%w: %s square: %v", ErrInvalidRequest, what, err)
		}
		return sq, nil
	}
	from, err := square(req.From, "from")
	if err != nil {
		return nil, "", err
	}
	to, err := square(req.To, "to")
	if err != nil {
		return nil, "", err
	}
	check, err := square(req.Check, "check")
	if err != nil {
		return nil, "", err
	}
	if req.Check == "" && pos.InCheck(pos.Turn()) {
		check, _ = pos.KingSquare(pos.Turn())
	}

	grid := board.Project(pos)
	if req.Flip {
		grid = board.Flip(grid)
		check, from, to = board.FlipSquare(check), board.FlipSquare(from), board.FlipSquare(to)
	}
	encoded, err := board.Encode(grid)
	if err != nil {
		return nil, "", err
	}

	caption := pos.Turn().String() + " to move"
	return board.PartitionMarks(encoded, check, from, to), caption, nil
}

// Classify implements RendererInterface. pgn may be a full game record or
// bare move text such as "1. e4 e5 2. Nf3".
func (r *Renderer) Classify(ctx context.Context, pgn, eco string) (*opening.Record, error) {
	if r.classifier == nil {
		return nil, nil
	}
	if strings.TrimSpace(pgn) == "" {
		return nil, fmt.Errorf("%w: empty move text", ErrInvalidRequest)
	}

	var (
		rec opening.Record
		ok  bool
	)
	games, err := game.ParseString(pgn)
	switch {
	case err != nil:
		rec, ok = r.classifier.Classify(eco, pgn)
	case eco != "":
		g := *games[0]
		g.Tags = append([]game.Tag{{Key: "ECO", Value: eco}}, g.Tags...)
		rec, ok = r.classifier.ClassifyGame(&g)
	default:
		rec, ok = r.classifier.ClassifyGame(games[0])
	}
	r.recordLookup(ok)
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// ListGames implements RendererInterface.
func (r *Renderer) ListGames(ctx context.Context, pgn string) ([]GameSummary, error) {
	games, err := r.parse(pgn)
	if err != nil {
		return nil, err
	}
	out := make([]GameSummary, 0, len(games))
	for _, g := range games {
		out = append(out, GameSummary{
			Index:  g.Index + 1,
			White:  g.Tag("White"),
			Black:  g.Tag("Black"),
			Event:  g.Tag("Event"),
			Site:   g.Tag("Site"),
			Date:   g.Date(),
			Result: g.Result,
			ECO:    g.ECO(),
			Plies:  len(g.Line.Plies),
		})
	}
	return out, nil
}

// Status implements RendererInterface.
func (r *Renderer) Status() Status {
	s := Status{
		Format:       r.cfg.Render.Format,
		Font:         r.cfg.Render.FontName,
		FontLoaded:   len(r.fontTTF) > 0,
		MovesPerPage: r.cfg.Render.MovesPerPage,
		CacheEnabled: r.cache.IsEnabled(),
		Cache:        r.cache.Stats(),
	}
	if r.classifier != nil {
		s.Openings = r.classifier.Len()
	}
	return s
}
