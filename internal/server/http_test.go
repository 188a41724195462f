package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmmcquay/chessbook/internal/health"
	"github.com/dmmcquay/chessbook/internal/logging"
	"github.com/dmmcquay/chessbook/internal/metrics"
)

func testDeps() (logging.ContextLogger, *health.Checker) {
	logger := logging.NewLoggerAdapter(logging.NewLoggerWithWriter(&bytes.Buffer{}, "", "debug"))
	return logger, health.NewChecker(logger, "1.0.0", "abc123")
}

func TestHandlerEndpoints(t *testing.T) {
	logger, checker := testDeps()
	checker.RegisterCheck("openings", health.OpeningsCheck(nil))
	stats := func() map[string]interface{} { return map[string]interface{}{"games": 3} }

	srv := httptest.NewServer(NewHandler(logger, checker, stats,
		metrics.NewPrometheusCollectorWithRegistry(prometheus.NewRegistry())))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/ready")
	require.NoError(t, err)
	var ready health.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ready))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, health.StatusDegraded, ready.Status)

	resp, err = http.Get(srv.URL + "/stats")
	require.NoError(t, err)
	var got map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	resp.Body.Close()
	assert.Equal(t, float64(3), got["games"])

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReadyUnavailable(t *testing.T) {
	logger, checker := testDeps()
	checker.RegisterCheck("output", func(ctx context.Context) error { return errors.New("read-only") })

	rec := httptest.NewRecorder()
	NewHandler(logger, checker, nil, metrics.NewPrometheusCollectorWithRegistry(prometheus.NewRegistry())).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStatsOmittedWithoutFunc(t *testing.T) {
	logger, checker := testDeps()
	rec := httptest.NewRecorder()
	NewHandler(logger, checker, nil, metrics.NewPrometheusCollectorWithRegistry(prometheus.NewRegistry())).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHTTPServerStartStop(t *testing.T) {
	logger, checker := testDeps()
	server := NewHTTPServer("127.0.0.1:0", logger, checker, nil)
	require.NoError(t, server.Start())

	resp, err := http.Get("http://" + server.Addr() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	busy := NewHTTPServer(server.Addr(), logger, checker, nil)
	assert.Error(t, busy.Start(), "address already in use")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, server.Stop(ctx))
}
