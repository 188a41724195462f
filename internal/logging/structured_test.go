package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) LogEntry {
	t.Helper()
	var entry LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLoggerWithWriter(&buf, "chessbook-mcp", "1.0.0", "info")

	logger.Info("rendered game")

	entry := decodeEntry(t, &buf)
	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "chessbook-mcp", entry.Service)
	assert.Equal(t, "1.0.0", entry.Version)
	assert.Equal(t, "rendered game", entry.Message)
	assert.NotEmpty(t, entry.Timestamp)
}

func TestStructuredLoggerLevels(t *testing.T) {
	tests := []struct {
		name      string
		logLevel  string
		logFunc   func(*StructuredLogger)
		shouldLog bool
	}{
		{"debug level logs debug", "debug", func(l *StructuredLogger) { l.Debug("x") }, true},
		{"info level skips debug", "info", func(l *StructuredLogger) { l.Debug("x") }, false},
		{"warn level logs warn", "warn", func(l *StructuredLogger) { l.Warn("x") }, true},
		{"error level skips info", "error", func(l *StructuredLogger) { l.Info("x") }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(NewStructuredLoggerWithWriter(&buf, "test", "1.0", tt.logLevel))
			assert.Equal(t, tt.shouldLog, buf.Len() > 0)
		})
	}
}

func TestStructuredLoggerWithContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLoggerWithWriter(&buf, "chessbook-mcp", "1.0.0", "info")

	ctx := ContextWithCorrelationID(context.Background(), "corr-123")
	ctx = ContextWithRequestID(ctx, "req-456")
	ctx = ContextWithGame(ctx, GameRef{File: "lasker.pgn", Index: 4, Title: "Lasker vs. Steinitz"})

	logger.WithContext(ctx).Info("composing book")

	entry := decodeEntry(t, &buf)
	assert.Equal(t, "corr-123", entry.CorrelationID)
	assert.Equal(t, "req-456", entry.RequestID)
	assert.Equal(t, "lasker.pgn", entry.PGNFile)
	require.NotNil(t, entry.Game)
	assert.Equal(t, 4, *entry.Game)
	assert.Equal(t, "Lasker vs. Steinitz", entry.GameTitle)
	assert.Empty(t, entry.Fields)
}

func TestStructuredLoggerWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLoggerWithWriter(&buf, "chessbook-mcp", "1.0.0", "info")

	logger.WithFields(map[string]interface{}{
		"format": "html",
		"pages":  5,
	}).WithField("tool", "renderGame").Info("done")

	entry := decodeEntry(t, &buf)
	require.NotNil(t, entry.Fields)
	assert.Equal(t, "html", entry.Fields["format"])
	assert.Equal(t, float64(5), entry.Fields["pages"])
	assert.Equal(t, "renderGame", entry.Fields["tool"])
}

func TestStructuredLoggerFormatting(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLoggerWithWriter(&buf, "chessbook-mcp", "1.0.0", "info")

	logger.Info("parsed %d games from %s", 3, "wch.pgn")

	assert.Equal(t, "parsed 3 games from wch.pgn", decodeEntry(t, &buf).Message)
}

func TestStructuredLoggerKeyValueArgs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLoggerWithWriter(&buf, "chessbook-mcp", "1.0.0", "info")

	logger.Error("Tool request failed", "tool", "renderGame", "error", errors.New("bad move Ke3"), "game", "two")

	entry := decodeEntry(t, &buf)
	assert.Equal(t, "Tool request failed", entry.Message)
	assert.Equal(t, "renderGame", entry.Fields["tool"])
	assert.Equal(t, "bad move Ke3", entry.Fields["error"])
	// only integer game numbers are promoted
	assert.Nil(t, entry.Game)
	assert.Equal(t, "two", entry.Fields["game"])
}

func TestStructuredLoggerSharedLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLoggerWithWriter(&buf, "chessbook-mcp", "1.0.0", "info")
	child := logger.WithField("tool", "listGames")

	logger.SetLevel(DebugLevel)
	assert.Equal(t, DebugLevel, child.GetLevel())
	child.Debug("visible")
	assert.Equal(t, "visible", decodeEntry(t, &buf).Message)
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", DebugLevel.String())
	assert.Equal(t, "INFO", InfoLevel.String())
	assert.Equal(t, "WARN", WarnLevel.String())
	assert.Equal(t, "ERROR", ErrorLevel.String())
	assert.Equal(t, "FATAL", FatalLevel.String())
	assert.Equal(t, "UNKNOWN", Level(9).String())
}

func TestNewLoggerFromConfig(t *testing.T) {
	t.Run("json by default", func(t *testing.T) {
		t.Setenv(FormatEnv, "")
		var buf bytes.Buffer
		logger := NewLoggerFromConfig(&Config{Level: "info", Service: "chessbook-mcp", Output: &buf})
		logger.Info("hello")
		assert.Equal(t, "hello", decodeEntry(t, &buf).Message)
	})

	t.Run("text from env", func(t *testing.T) {
		t.Setenv(FormatEnv, "TEXT")
		var buf bytes.Buffer
		logger := NewLoggerFromConfig(&Config{Level: "info", Prefix: "[chessbook] ", Output: &buf})
		logger.Info("hello")
		assert.Contains(t, buf.String(), "[chessbook] ")
		assert.Contains(t, buf.String(), "[INFO] hello")
	})

	t.Run("configured format wins", func(t *testing.T) {
		t.Setenv(FormatEnv, "text")
		var buf bytes.Buffer
		logger := NewLoggerFromConfig(&Config{Format: FormatJSON, Level: "debug", Output: &buf})
		logger.Debug("hello")
		assert.Equal(t, "DEBUG", decodeEntry(t, &buf).Level)
	})
}
