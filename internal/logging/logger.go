package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
)

const textFlags = log.LstdFlags | log.Lmicroseconds

// Logger writes "prefix date time [LEVEL] message" lines.
type Logger struct {
	out   *log.Logger
	w     io.Writer
	level *atomic.Int32
}

func NewLogger(prefix string, level string) *Logger {
	return NewLoggerWithWriter(os.Stderr, prefix, level)
}

// NewLoggerWithWriter logs to w instead of stderr. The MCP server owns
// stdout, so w must never be os.Stdout there.
func NewLoggerWithWriter(w io.Writer, prefix string, level string) *Logger {
	lv := new(atomic.Int32)
	lv.Store(int32(ParseLevel(level)))
	return &Logger{out: log.New(w, prefix, textFlags), w: w, level: lv}
}

func (l *Logger) SetLevel(level Level) { l.level.Store(int32(level)) }

func (l *Logger) GetLevel() Level { return Level(l.level.Load()) }

func (l *Logger) logf(level Level, format string, v []interface{}) {
	if level < l.GetLevel() {
		return
	}
	l.out.Printf("[%s] %s", level, fmt.Sprintf(format, v...))
}

func (l *Logger) Debug(format string, v ...interface{}) { l.logf(DebugLevel, format, v) }

func (l *Logger) Info(format string, v ...interface{}) { l.logf(InfoLevel, format, v) }

func (l *Logger) Warn(format string, v ...interface{}) { l.logf(WarnLevel, format, v) }

func (l *Logger) Error(format string, v ...interface{}) { l.logf(ErrorLevel, format, v) }

// Fatal logs regardless of level and exits.
func (l *Logger) Fatal(format string, v ...interface{}) {
	l.out.Printf("[%s] %s", FatalLevel, fmt.Sprintf(format, v...))
	os.Exit(1)
}

// WithRequestID returns a logger whose prefix carries reqID. The level is
// shared with l.
func (l *Logger) WithRequestID(reqID string) *Logger {
	prefix := fmt.Sprintf("%s[%s] ", l.out.Prefix(), reqID)
	return &Logger{out: log.New(l.w, prefix, textFlags), w: l.w, level: l.level}
}
