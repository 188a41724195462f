package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dmmcquay/chessbook/internal/logging"
	"github.com/dmmcquay/chessbook/internal/metrics"
	"github.com/dmmcquay/chessbook/internal/ratelimit"
)

// Middleware wraps MCP tool handlers with rate limiting, metrics and
// logging.
type Middleware struct {
	logger      logging.ContextLogger
	metrics     *metrics.Collector
	prom        *metrics.PrometheusCollector
	rateLimiter *ratelimit.Limiter
}

// NewMiddleware creates a new middleware instance. rateLimiter may be nil.
func NewMiddleware(logger logging.ContextLogger, metrics *metrics.Collector, rateLimiter *ratelimit.Limiter) *Middleware {
	return &Middleware{
		logger:      logger,
		metrics:     metrics,
		rateLimiter: rateLimiter,
	}
}

// SetPrometheus attaches the prometheus collector.
func (m *Middleware) SetPrometheus(p *metrics.PrometheusCollector) {
	m.prom = p
}

// ToolHandler is the function signature for MCP tool handlers.
type ToolHandler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// WrapTool wraps a tool handler with middleware functionality.
func (m *Middleware) WrapTool(toolName string, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		clientID := extractClientID(ctx, request)

		m.logger.Info("Tool request received", "tool", toolName, "client", clientID)

		if m.rateLimiter != nil {
			err := m.rateLimiter.Allow(clientID, toolName)
			if m.prom != nil {
				m.prom.RecordRateLimit(clientID, toolName, err != nil)
			}
			if err != nil {
				m.logger.Warn("Rate limit exceeded", "tool", toolName, "client", clientID, "error", err)
				m.record(toolName, "rate_limited", time.Since(start))
				return nil, fmt.Errorf("rate limit exceeded for tool %s: %w", toolName, err)
			}
		}

		result, err := handler(ctx, request)

		status := "success"
		switch {
		case err != nil:
			status = "error"
			m.logger.Error("Tool request failed",
				"tool", toolName,
				"client", clientID,
				"error", err,
				"duration", time.Since(start),
			)
			if m.prom != nil {
				m.prom.RecordToolError(toolName, errorType(err))
			}
		case result != nil && result.IsError:
			status = "rejected"
			m.logger.Info("Tool request rejected", "tool", toolName, "client", clientID)
		default:
			m.logger.Info("Tool request completed",
				"tool", toolName,
				"client", clientID,
				"duration", time.Since(start),
			)
		}
		m.record(toolName, status, time.Since(start))

		return result, err
	}
}

func (m *Middleware) record(tool, status string, d time.Duration) {
	if m.metrics != nil {
		m.metrics.RecordToolCall(tool, status, d)
	}
	if m.prom != nil {
		m.prom.RecordToolCall(tool, status, d.Seconds())
	}
}

func errorType(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.Is(err, ratelimit.ErrLimited):
		return "rate_limited"
	}
	return "internal"
}

type clientIDKey struct{}

// ContextWithClientID tags ctx with the caller identity used for rate
// limiting.
func ContextWithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, clientIDKey{}, clientID)
}

// extractClientID attempts to extract a client identifier from the context or request.
func extractClientID(ctx context.Context, request mcp.CallToolRequest) string {
	if clientID, ok := ctx.Value(clientIDKey{}).(string); ok && clientID != "" {
		return clientID
	}

	if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
		if clientID, ok := args["clientID"].(string); ok && clientID != "" {
			return clientID
		}
	}

	return "anonymous"
}
