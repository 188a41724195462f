package logging

import (
	"io"
	"os"
	"strings"
)

// LogFormat selects between the text and JSON loggers.
type LogFormat string

const (
	FormatText LogFormat = "text"
	FormatJSON LogFormat = "json"
)

// FormatEnv overrides an empty configured format.
const FormatEnv = "CHESSBOOK_LOG_FORMAT"

type Config struct {
	Level   string
	Format  LogFormat
	Service string
	Version string
	// Prefix is only used by the text format.
	Prefix string
	// Output defaults to stderr. Stdout carries the MCP protocol and
	// must not be used.
	Output io.Writer
}

// resolveFormat picks the configured format, then the environment, then
// JSON.
func (c *Config) resolveFormat() LogFormat {
	if c.Format != "" {
		return LogFormat(strings.ToLower(string(c.Format)))
	}
	if env := strings.TrimSpace(os.Getenv(FormatEnv)); env != "" {
		return LogFormat(strings.ToLower(env))
	}
	return FormatJSON
}

// NewLoggerFromConfig builds the logger described by cfg. Unknown formats
// fall back to JSON.
func NewLoggerFromConfig(cfg *Config) ContextLogger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.resolveFormat() == FormatText {
		return NewLoggerAdapter(NewLoggerWithWriter(out, cfg.Prefix, cfg.Level))
	}
	return NewStructuredLoggerWithWriter(out, cfg.Service, cfg.Version, cfg.Level)
}
