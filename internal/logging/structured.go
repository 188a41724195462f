package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// LogEntry is one JSON log line. The request IDs and the game being
// rendered are promoted to top-level keys so log queries can filter on
// them directly.
type LogEntry struct {
	Timestamp     string                 `json:"timestamp"`
	Level         string                 `json:"level"`
	Service       string                 `json:"service"`
	Version       string                 `json:"version,omitempty"`
	Message       string                 `json:"message"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
	RequestID     string                 `json:"request_id,omitempty"`
	PGNFile       string                 `json:"pgn_file,omitempty"`
	Game          *int                   `json:"game,omitempty"`
	GameTitle     string                 `json:"game_title,omitempty"`
	Fields        map[string]interface{} `json:"fields,omitempty"`
}

// jsonSink is shared by a logger and everything derived from it.
type jsonSink struct {
	mu      sync.Mutex
	enc     *json.Encoder
	level   atomic.Int32
	service string
	version string
}

// StructuredLogger writes one LogEntry per line.
type StructuredLogger struct {
	sink   *jsonSink
	fields Fields
}

func NewStructuredLogger(service, version, level string) *StructuredLogger {
	return NewStructuredLoggerWithWriter(os.Stderr, service, version, level)
}

func NewStructuredLoggerWithWriter(w io.Writer, service, version, level string) *StructuredLogger {
	sink := &jsonSink{enc: json.NewEncoder(w), service: service, version: version}
	sink.enc.SetEscapeHTML(false)
	sink.level.Store(int32(ParseLevel(level)))
	return &StructuredLogger{sink: sink}
}

func (l *StructuredLogger) WithContext(ctx context.Context) ContextLogger {
	return l.WithFields(fromContext(ctx))
}

func (l *StructuredLogger) WithField(key string, value interface{}) ContextLogger {
	return l.WithFields(map[string]interface{}{key: value})
}

func (l *StructuredLogger) WithFields(fields map[string]interface{}) ContextLogger {
	return &StructuredLogger{sink: l.sink, fields: l.fields.with(fields)}
}

func (l *StructuredLogger) SetLevel(level Level) { l.sink.level.Store(int32(level)) }

func (l *StructuredLogger) GetLevel() Level { return Level(l.sink.level.Load()) }

func (l *StructuredLogger) Debug(format string, args ...interface{}) {
	l.write(DebugLevel, format, args)
}

func (l *StructuredLogger) Info(format string, args ...interface{}) {
	l.write(InfoLevel, format, args)
}

func (l *StructuredLogger) Warn(format string, args ...interface{}) {
	l.write(WarnLevel, format, args)
}

func (l *StructuredLogger) Error(format string, args ...interface{}) {
	l.write(ErrorLevel, format, args)
}

// Fatal logs regardless of level and exits.
func (l *StructuredLogger) Fatal(format string, args ...interface{}) {
	l.write(FatalLevel, format, args)
	os.Exit(1)
}

func (l *StructuredLogger) write(level Level, format string, args []interface{}) {
	if level < l.GetLevel() {
		return
	}
	msg, extra := splitArgs(format, args)
	entry := l.sink.entry(level, msg, l.fields.with(extra))

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if err := l.sink.enc.Encode(entry); err != nil {
		fmt.Fprintf(os.Stderr, "log encode failed: %v: %s\n", err, msg)
	}
}

// entry lifts the well-known keys out of fields. Errors are stored as
// their message since they usually marshal to "{}".
func (s *jsonSink) entry(level Level, msg string, fields Fields) LogEntry {
	e := LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     level.String(),
		Service:   s.service,
		Version:   s.version,
		Message:   msg,
	}
	rest := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		switch k {
		case "correlation_id":
			e.CorrelationID = fmt.Sprint(v)
		case "request_id":
			e.RequestID = fmt.Sprint(v)
		case "pgn_file":
			e.PGNFile = fmt.Sprint(v)
		case "game_title":
			e.GameTitle = fmt.Sprint(v)
		case "game":
			if n, ok := v.(int); ok {
				e.Game = &n
				continue
			}
			rest[k] = v
		default:
			if err, ok := v.(error); ok {
				v = err.Error()
			}
			rest[k] = v
		}
	}
	if len(rest) > 0 {
		e.Fields = rest
	}
	return e
}
