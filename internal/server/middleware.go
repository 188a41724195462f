package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmmcquay/chessbook/internal/logging"
	"github.com/dmmcquay/chessbook/internal/metrics"
)

// routes bounds the path label; anything else is recorded as "other".
var routes = []string{"/health", "/ready", "/metrics", "/stats"}

func routeLabel(path string) string {
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	for _, r := range routes {
		if path == r {
			return r
		}
	}
	return "other"
}

// statusRecorder remembers the first status written through it.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

func (s *statusRecorder) code() int {
	if s.status == 0 {
		return http.StatusOK
	}
	return s.status
}

// PrometheusMiddleware counts requests and observes their latency per
// route and status.
func PrometheusMiddleware(collector *metrics.PrometheusCollector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)
			collector.RecordHTTPRequest(r.Method, routeLabel(r.URL.Path), rec.code(), time.Since(start).Seconds())
		})
	}
}

// LoggingMiddleware logs every request at debug and failed readiness or
// unknown routes at warn.
func LoggingMiddleware(logger logging.ContextLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			l := logger.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.code(),
				"bytes":    rec.bytes,
				"duration": time.Since(start),
			})
			if rec.code() >= http.StatusBadRequest {
				l.Warn("HTTP request failed")
				return
			}
			l.Debug("HTTP request served")
		})
	}
}
