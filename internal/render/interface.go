package render

import (
	"context"

	"github.com/dmmcquay/chessbook/internal/opening"
)

// RendererInterface is what the MCP tools need from the renderer.
// This allows for mocking in tests.
type RendererInterface interface {
	// RenderGame composes one or all games of a PGN text into a document.
	RenderGame(ctx context.Context, req GameRequest) (*Document, error)

	// RenderPosition draws a single diagram from a FEN.
	RenderPosition(ctx context.Context, req PositionRequest) (*Document, error)

	// Classify finds the opening of a game or bare move text. A nil record
	// means no classification.
	Classify(ctx context.Context, pgn, eco string) (*opening.Record, error)

	// ListGames summarises the games of a PGN text.
	ListGames(ctx context.Context, pgn string) ([]GameSummary, error)

	// Status reports configuration and cache state.
	Status() Status
}

var _ RendererInterface = (*Renderer)(nil)
