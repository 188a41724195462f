package logging

import "context"

// LoggerAdapter gives the text Logger the ContextLogger methods. Fields
// are appended to the message as "[k=v ...]".
type LoggerAdapter struct {
	*Logger
	fields Fields
}

func NewLoggerAdapter(logger *Logger) *LoggerAdapter {
	return &LoggerAdapter{Logger: logger}
}

// WithContext moves the request ID into the line prefix and the game
// being rendered into the fields.
func (l *LoggerAdapter) WithContext(ctx context.Context) ContextLogger {
	fields := fromContext(ctx)
	base := l.Logger
	if id, ok := fields["request_id"].(string); ok {
		base = base.WithRequestID(id)
	}
	return &LoggerAdapter{Logger: base, fields: l.fields.with(fields)}
}

func (l *LoggerAdapter) WithField(key string, value interface{}) ContextLogger {
	return l.WithFields(map[string]interface{}{key: value})
}

func (l *LoggerAdapter) WithFields(fields map[string]interface{}) ContextLogger {
	return &LoggerAdapter{Logger: l.Logger, fields: l.fields.with(fields)}
}

func (l *LoggerAdapter) Debug(format string, args ...interface{}) {
	l.Logger.Debug("%s", l.line(format, args))
}

func (l *LoggerAdapter) Info(format string, args ...interface{}) {
	l.Logger.Info("%s", l.line(format, args))
}

func (l *LoggerAdapter) Warn(format string, args ...interface{}) {
	l.Logger.Warn("%s", l.line(format, args))
}

func (l *LoggerAdapter) Error(format string, args ...interface{}) {
	l.Logger.Error("%s", l.line(format, args))
}

func (l *LoggerAdapter) Fatal(format string, args ...interface{}) {
	l.Logger.Fatal("%s", l.line(format, args))
}

func (l *LoggerAdapter) line(format string, args []interface{}) string {
	msg, extra := splitArgs(format, args)
	fields := l.fields.with(extra)
	if len(fields) == 0 {
		return msg
	}
	return msg + " [" + fields.String() + "]"
}
