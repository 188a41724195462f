package render

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/go-multierror"

	"github.com/dmmcquay/chessbook/internal/game"
	"github.com/dmmcquay/chessbook/internal/logging"
	"github.com/dmmcquay/chessbook/internal/store"
)

// Summary counts what a batch conversion did.
type Summary struct {
	Files   int
	Games   int
	Written []string
	Failed  int
}

// Converter writes one document per game for every PGN file of a
// directory. Files and games are processed one at a time; a failing game
// is recorded and skipped.
type Converter struct {
	renderer *Renderer
	store    *store.Store
	logger   logging.ContextLogger
	format   string
	unicode  bool
}

func NewConverter(r *Renderer, s *store.Store, logger logging.ContextLogger) *Converter {
	return &Converter{
		renderer: r,
		store:    s,
		logger:   logger,
		format:   r.cfg.Render.Format,
		unicode:  r.cfg.Render.Unicode,
	}
}

// ConvertDir converts every *.pgn file directly inside dir.
func (c *Converter) ConvertDir(ctx context.Context, dir string) (Summary, error) {
	var sum Summary
	files, err := game.FindPGNFiles(dir)
	if err != nil {
		return sum, fmt.Errorf("failed to list PGN files: %w", err)
	}
	if len(files) == 0 {
		c.logger.Warn("No PGN files found", "dir", dir)
		return sum, nil
	}

	var result *multierror.Error
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			result = multierror.Append(result, err)
			break
		}
		fileSum, err := c.ConvertFile(ctx, path)
		sum.Files++
		sum.Games += fileSum.Games
		sum.Failed += fileSum.Failed
		sum.Written = append(sum.Written, fileSum.Written...)
		if err != nil {
			result = multierror.Append(result, err)
		}
	}

	c.logger.Info("Batch conversion finished",
		"files", sum.Files, "games", sum.Games, "written", len(sum.Written), "failed", sum.Failed)
	return sum, result.ErrorOrNil()
}

// ConvertFile converts each game of one PGN file. Games parsed before a
// malformed one are still converted.
func (c *Converter) ConvertFile(ctx context.Context, path string) (Summary, error) {
	sum := Summary{Files: 1}
	var result *multierror.Error

	games, err := game.ParseFile(path)
	if err != nil {
		if c.renderer.prom != nil {
			c.renderer.prom.RecordPGNError()
		}
		result = multierror.Append(result, err)
		sum.Failed++
	}

	for _, g := range games {
		if err := ctx.Err(); err != nil {
			result = multierror.Append(result, err)
			break
		}
		sum.Games++
		gctx := logging.ContextWithGame(ctx, logging.GameRef{
			File:  filepath.Base(path),
			Index: g.Index + 1,
			Title: g.Title(),
		})
		written, err := c.convertGame(gctx, g)
		if err != nil {
			c.logger.WithContext(gctx).Error("Failed to convert game: %v", err)
			result = multierror.Append(result, fmt.Errorf("%s game %d: %w", filepath.Base(path), g.Index+1, err))
			sum.Failed++
			continue
		}
		c.logger.WithContext(gctx).Info("Wrote document", "path", written)
		sum.Written = append(sum.Written, written)
	}
	return sum, result.ErrorOrNil()
}

func (c *Converter) convertGame(ctx context.Context, g *game.Game) (string, error) {
	entry, err := c.renderer.compose(ctx, []*game.Game{g}, c.format, c.unicode, true)
	if err != nil {
		return "", err
	}
	path, err := c.store.Save(ctx, store.FileName(g, entry.Ext), entry.Data)
	if c.renderer.prom != nil {
		c.renderer.prom.RecordSave(err)
	}
	return path, err
}
