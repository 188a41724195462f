// Package store writes rendered documents to disk without overwriting
// earlier output.
package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/dmmcquay/chessbook/internal/game"
	"github.com/dmmcquay/chessbook/internal/logging"
	"github.com/dmmcquay/chessbook/internal/retry"
)

var (
	tagCleaner    = strings.NewReplacer("/", "_", ":", "_", ".", "-")
	playerCleaner = strings.NewReplacer("/", "_", ":", "_")
	sequenceRe    = regexp.MustCompile(`^(.*)-(\d+)$`)
)

// FileName builds the output name of a game:
// "<date>_<event>_<site>_( <white> - <black> )<ext>".
func FileName(g *game.Game, ext string) string {
	name := fmt.Sprintf("%s_%s_%s_( %s - %s )%s",
		g.Date(),
		tagCleaner.Replace(g.Tag("Event")),
		tagCleaner.Replace(g.Tag("Site")),
		playerCleaner.Replace(g.Tag("White")),
		playerCleaner.Replace(g.Tag("Black")),
		ext)
	return strings.ReplaceAll(name, "??", "_")
}

// IncrementedName returns path, or the first "<name>-N<ext>" that does not
// exist yet. A name already ending in "-N" continues from N.
func IncrementedName(path string) string {
	ext := filepath.Ext(path)
	name := strings.TrimSuffix(path, ext)
	seq := 0
	if m := sequenceRe.FindStringSubmatch(name); m != nil {
		name = m[1]
		seq, _ = strconv.Atoi(m[2])
	}
	for exists(path) {
		seq++
		path = fmt.Sprintf("%s-%d%s", name, seq, ext)
	}
	return path
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// Store saves documents into a directory.
type Store struct {
	dir    string
	retry  *retry.Manager
	logger logging.ContextLogger
}

// New returns a store writing into dir. Transient write failures are
// retried with rm.
func New(dir string, rm *retry.Manager, logger logging.ContextLogger) *Store {
	return &Store{dir: dir, retry: rm, logger: logger}
}

// Dir returns the output directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes data under name and returns the path actually used, which
// carries an increment when name was taken.
func (s *Store) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(s.dir, filepath.Base(name))
	err := s.retry.Run(ctx, func(ctx context.Context, attempt int) error {
		path = IncrementedName(path)
		err := writeExclusive(path, data)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, fs.ErrExist):
			// lost a race for the name, try the next one
			return err
		case errors.Is(err, fs.ErrPermission):
			return retry.Permanent(err)
		}
		if s.logger != nil {
			s.logger.WithFields(map[string]interface{}{
				"path":    path,
				"attempt": attempt,
			}).Warn("Write failed, retrying: %v", err)
		}
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to save %s: %w", name, err)
	}

	if s.logger != nil {
		s.logger.WithField("path", path).Debug("Saved %d bytes", len(data))
	}
	return path, nil
}

func writeExclusive(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}
