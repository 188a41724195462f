package render

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/golang/freetype/truetype"

	"github.com/dmmcquay/chessbook/internal/logging"
	"github.com/dmmcquay/chessbook/internal/retry"
)

// maxFontBytes bounds a downloaded font file.
const maxFontBytes = 8 << 20

// FontLoader finds the diagram font on disk, downloading it once when a
// URL is configured and the file is missing.
type FontLoader struct {
	Path   string
	URL    string
	Client *http.Client
	Retry  *retry.Manager
	Logger logging.ContextLogger
}

// Load returns the TTF data, or nil when no font is available. A nil
// result is not an error: PNG output then falls back to a built-in face.
func (l *FontLoader) Load(ctx context.Context) ([]byte, error) {
	if l.Path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(l.Path)
	switch {
	case err == nil:
		return data, validateFont(data, l.Path)
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read font %s: %w", l.Path, err)
	case l.URL == "":
		l.Logger.Warn("Diagram font not found, PNG output uses the fallback face", "path", l.Path)
		return nil, nil
	}

	l.Logger.Info("Downloading diagram font", "url", l.URL, "path", l.Path)
	if err := l.Retry.Run(ctx, func(ctx context.Context, attempt int) error {
		if attempt > 1 {
			l.Logger.Debug("Retrying font download", "attempt", attempt)
		}
		var err error
		data, err = l.download(ctx)
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to download font: %w", err)
	}
	if err := validateFont(data, l.URL); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(l.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create font directory: %w", err)
	}
	if err := os.WriteFile(l.Path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to save font: %w", err)
	}
	return data, nil
}

func (l *FontLoader) download(ctx context.Context) ([]byte, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL, nil)
	if err != nil {
		return nil, retry.Permanent(err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("font server returned %s", resp.Status)
	case resp.StatusCode != http.StatusOK:
		return nil, retry.Permanent(fmt.Errorf("font server returned %s", resp.Status))
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFontBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxFontBytes {
		return nil, retry.Permanent(fmt.Errorf("font larger than %d bytes", maxFontBytes))
	}
	return data, nil
}

func validateFont(data []byte, source string) error {
	if _, err := truetype.Parse(data); err != nil {
		return fmt.Errorf("%s is not a TrueType font: %w", source, err)
	}
	return nil
}
