package render

import (
	"context"
	"sync"

	"github.com/dmmcquay/chessbook/internal/opening"
)

// MockRenderer is a mock implementation of RendererInterface for testing.
type MockRenderer struct {
	mu        sync.Mutex
	doc       *Document
	docErr    error
	record    *opening.Record
	recordErr error
	games     []GameSummary
	gamesErr  error
	status    Status

	gameRequests     []GameRequest
	positionRequests []PositionRequest
}

// NewMockRenderer creates a mock returning an empty text document.
func NewMockRenderer() *MockRenderer {
	return &MockRenderer{
		doc: &Document{Data: []byte{}, MIME: "text/plain; charset=utf-8", Ext: ".txt", Pages: 1},
	}
}

// SetDocument sets what RenderGame and RenderPosition return.
func (m *MockRenderer) SetDocument(doc *Document, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc, m.docErr = doc, err
}

// SetRecord sets what Classify returns.
func (m *MockRenderer) SetRecord(rec *opening.Record, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record, m.recordErr = rec, err
}

// SetGames sets what ListGames returns.
func (m *MockRenderer) SetGames(games []GameSummary, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games, m.gamesErr = games, err
}

// SetStatus sets what Status returns.
func (m *MockRenderer) SetStatus(s Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = s
}

// GameRequests returns every RenderGame request received.
func (m *MockRenderer) GameRequests() []GameRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]GameRequest(nil), m.gameRequests...)
}

// PositionRequests returns every RenderPosition request received.
func (m *MockRenderer) PositionRequests() []PositionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PositionRequest(nil), m.positionRequests...)
}

// RenderGame implements RendererInterface.
func (m *MockRenderer) RenderGame(ctx context.Context, req GameRequest) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gameRequests = append(m.gameRequests, req)
	return m.doc, m.docErr
}

// RenderPosition implements RendererInterface.
func (m *MockRenderer) RenderPosition(ctx context.Context, req PositionRequest) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positionRequests = append(m.positionRequests, req)
	return m.doc, m.docErr
}

// Classify implements RendererInterface.
func (m *MockRenderer) Classify(ctx context.Context, pgn, eco string) (*opening.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.record, m.recordErr
}

// ListGames implements RendererInterface.
func (m *MockRenderer) ListGames(ctx context.Context, pgn string) ([]GameSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.games, m.gamesErr
}

// Status implements RendererInterface.
func (m *MockRenderer) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

var _ RendererInterface = (*MockRenderer)(nil)
