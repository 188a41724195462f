package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmmcquay/chessbook/internal/health"
	"github.com/dmmcquay/chessbook/internal/logging"
	"github.com/dmmcquay/chessbook/internal/metrics"
)

// StatsFunc reports in-process counters for the /stats endpoint.
type StatsFunc func() map[string]interface{}

// HTTPServer is the side channel next to the stdio MCP transport. It
// serves liveness, readiness, Prometheus metrics and render stats.
type HTTPServer struct {
	srv    *http.Server
	logger logging.ContextLogger

	mu sync.Mutex
	ln net.Listener
}

// NewHTTPServer builds the side-channel server on addr. stats may be nil.
func NewHTTPServer(addr string, logger logging.ContextLogger, checker *health.Checker, stats StatsFunc) *HTTPServer {
	return &HTTPServer{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewHandler(logger, checker, stats, metrics.NewPrometheusCollector()),
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger: logger.WithField("component", "http"),
	}
}

// NewHandler routes the endpoints and wraps them with metrics and request
// logging.
func NewHandler(logger logging.ContextLogger, checker *health.Checker, stats StatsFunc, collector *metrics.PrometheusCollector) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", checker.LivenessHandler())
	mux.HandleFunc("/ready", checker.ReadinessHandler())
	mux.Handle("/metrics", promhttp.Handler())
	if stats != nil {
		mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(stats()); err != nil {
				logger.Error("Failed to encode stats", "error", err)
			}
		})
	}
	return PrometheusMiddleware(collector)(LoggingMiddleware(logger)(mux))
}

// Start binds the listen address and serves in the background. A port
// already in use is reported here rather than only logged.
func (s *HTTPServer) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.srv.Addr, err)
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	s.logger.Info("Serving health and metrics", "addr", ln.Addr().String())
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server stopped", "error", err)
		}
	}()
	return nil
}

// Addr is the bound address once started, else the configured one.
func (s *HTTPServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.srv.Addr
}

// Stop drains open requests until ctx ends.
func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server")
	return s.srv.Shutdown(ctx)
}
