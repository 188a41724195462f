package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmmcquay/chessbook/internal/logging"
	"github.com/dmmcquay/chessbook/internal/metrics"
)

func TestRouteLabel(t *testing.T) {
	tests := map[string]string{
		"/health":  "/health",
		"/ready/":  "/ready",
		"/metrics": "/metrics",
		"/stats":   "/stats",
		"/":        "other",
		"/games/1": "other",
	}
	for path, want := range tests {
		assert.Equal(t, want, routeLabel(path), path)
	}
}

func TestPrometheusMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := metrics.NewPrometheusCollectorWithRegistry(reg)
	h := PrometheusMiddleware(collector)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ready" {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.WriteHeader(http.StatusOK)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))

	for _, path := range []string{"/ready", "/health", "/health", "/nope"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	// ready/503, health/200, other/200
	n, err := testutil.GatherAndCount(reg, "chessbook_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLoggerAdapter(logging.NewLoggerWithWriter(&buf, "", "info"))
	h := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ready" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Empty(t, buf.String(), "successful requests log at debug")

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ready", nil))
	out := buf.String()
	assert.Contains(t, out, "[WARN] HTTP request failed")
	assert.Contains(t, out, "status=503")
	assert.Contains(t, out, "path=/ready")
}
