package mcp

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/dmmcquay/chessbook/internal/config"
	"github.com/dmmcquay/chessbook/internal/logging"
	"github.com/dmmcquay/chessbook/internal/metrics"
	"github.com/dmmcquay/chessbook/internal/ratelimit"
)

func testLogger(buf *bytes.Buffer) logging.ContextLogger {
	return logging.NewLoggerFromConfig(&logging.Config{
		Level:   "debug",
		Format:  logging.FormatText,
		Service: "test",
		Version: "test",
		Prefix:  "[TEST] ",
		Output:  buf,
	})
}

func TestMiddleware(t *testing.T) {
	logger := testLogger(&bytes.Buffer{})

	t.Run("WrapTool", func(t *testing.T) {
		collector := metrics.NewCollector()
		middleware := NewMiddleware(logger, collector, nil)

		var called bool
		handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			called = true
			return mcp.NewToolResultText("success"), nil
		}

		wrapped := middleware.WrapTool("testTool", handler)
		result, err := wrapped(context.Background(), mcp.CallToolRequest{})
		if err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
		if !called {
			t.Error("Handler was not called")
		}
		if result == nil {
			t.Error("Expected result, got nil")
		}

		tools := collector.GetStats()["tools"].(map[string]interface{})
		stats, ok := tools["testTool"].(map[string]interface{})
		if !ok {
			t.Fatal("Expected testTool in collector stats")
		}
		if stats["calls"] != int64(1) {
			t.Errorf("Expected 1 call, got %v", stats["calls"])
		}
	})

	t.Run("RateLimiting", func(t *testing.T) {
		cfg := &config.RateLimitConfig{
			Enabled:        true,
			RequestsPerMin: 60,
			BurstSize:      2,
		}
		limiter := ratelimit.NewLimiter(cfg, logger)
		reg := prometheus.NewRegistry()
		prom := metrics.NewPrometheusCollectorWithRegistry(reg)
		middleware := NewMiddleware(logger, metrics.NewCollector(), limiter)
		middleware.SetPrometheus(prom)

		handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("success"), nil
		}
		wrapped := middleware.WrapTool("testTool", handler)

		for i := 0; i < 2; i++ {
			result, err := wrapped(context.Background(), mcp.CallToolRequest{})
			if err != nil {
				t.Errorf("Call %d: Expected no error, got %v", i+1, err)
			}
			if result == nil {
				t.Errorf("Call %d: Expected result, got nil", i+1)
			}
		}

		result, err := wrapped(context.Background(), mcp.CallToolRequest{})
		if err == nil {
			t.Fatal("Expected rate limit error, got nil")
		}
		if result != nil {
			t.Error("Expected nil result when rate limited")
		}
		if !errors.Is(err, ratelimit.ErrLimited) {
			t.Errorf("Expected ErrLimited, got: %v", err)
		}
		if !strings.Contains(err.Error(), "rate limit exceeded") {
			t.Errorf("Expected rate limit error, got: %v", err)
		}
		// one series for the successful calls, one for the limited call
		n, err := testutil.GatherAndCount(reg, "chessbook_mcp_tool_calls_total")
		if err != nil {
			t.Fatalf("Unexpected gather error: %v", err)
		}
		if n != 2 {
			t.Errorf("Expected 2 tool call series, got %d", n)
		}
	})

	t.Run("ErrorHandling", func(t *testing.T) {
		middleware := NewMiddleware(logger, metrics.NewCollector(), nil)

		expectedErr := errors.New("test error")
		handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return nil, expectedErr
		}

		wrapped := middleware.WrapTool("testTool", handler)
		result, err := wrapped(context.Background(), mcp.CallToolRequest{})
		if err != expectedErr {
			t.Errorf("Expected %v, got %v", expectedErr, err)
		}
		if result != nil {
			t.Error("Expected nil result on error")
		}
	})

	t.Run("ToolErrorResult", func(t *testing.T) {
		collector := metrics.NewCollector()
		middleware := NewMiddleware(logger, collector, nil)

		handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultError("bad square"), nil
		}
		result, err := middleware.WrapTool("testTool", handler)(context.Background(), mcp.CallToolRequest{})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("Expected error result to pass through")
		}
		tools := collector.GetStats()["tools"].(map[string]interface{})
		if errs := tools["testTool"].(map[string]interface{})["errors"]; errs != int64(0) {
			t.Errorf("Rejected calls should not count as errors, got %v", errs)
		}
	})
}

func TestExtractClientID(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		args interface{}
		want string
	}{
		{"context", ContextWithClientID(context.Background(), "ctx-client"), map[string]interface{}{"clientID": "arg-client"}, "ctx-client"},
		{"arguments", context.Background(), map[string]interface{}{"clientID": "arg-client"}, "arg-client"},
		{"empty argument", context.Background(), map[string]interface{}{"clientID": ""}, "anonymous"},
		{"no arguments", context.Background(), nil, "anonymous"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := mcp.CallToolRequest{}
			req.Params.Arguments = tt.args
			if got := extractClientID(tt.ctx, req); got != tt.want {
				t.Errorf("extractClientID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorType(t *testing.T) {
	if got := errorType(context.Canceled); got != "cancelled" {
		t.Errorf("errorType(Canceled) = %q", got)
	}
	if got := errorType(errors.New("boom")); got != "internal" {
		t.Errorf("errorType(boom) = %q", got)
	}
}
