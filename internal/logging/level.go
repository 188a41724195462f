// Package logging provides the two log formats of chessbook-mcp: plain
// prefixed lines for terminals and one JSON object per line for
// collectors. Both write to stderr by default because stdout carries the
// MCP protocol.
package logging

import (
	"context"
	"strings"
)

// Level orders log severities; a logger drops everything below its level.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

func (l Level) String() string {
	if l < DebugLevel || l > FatalLevel {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel converts a configured level name. Unknown names map to info.
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	case "fatal":
		return FatalLevel
	}
	return InfoLevel
}

// LoggerInterface is implemented by both log formats.
type LoggerInterface interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
	Fatal(format string, args ...interface{})

	SetLevel(level Level)
	GetLevel() Level
}

// ContextLogger is what the renderer, the batch converter and the MCP
// handlers log through. Derived loggers share output and level with
// their parent.
type ContextLogger interface {
	LoggerInterface
	WithContext(ctx context.Context) ContextLogger
	WithField(key string, value interface{}) ContextLogger
	WithFields(fields map[string]interface{}) ContextLogger
}

var (
	_ LoggerInterface = (*Logger)(nil)
	_ ContextLogger   = (*StructuredLogger)(nil)
	_ ContextLogger   = (*LoggerAdapter)(nil)
)
