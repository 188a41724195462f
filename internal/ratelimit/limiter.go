package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/dmmcquay/chessbook/internal/config"
	"github.com/dmmcquay/chessbook/internal/logging"
)

// ErrLimited is the cause of every LimitError.
var ErrLimited = errors.New("rate limit exceeded")

// LimitError reports which limit rejected a tool call.
type LimitError struct {
	Scope      string // "global", "tool", "client" or "client tool"
	Tool       string
	RetryAfter time.Duration
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s rate limit exceeded for %s, retry in %s", e.Scope, e.Tool, e.RetryAfter.Round(time.Millisecond))
}

func (e *LimitError) Unwrap() error { return ErrLimited }

const staleClientAfter = 30 * time.Minute

// Limiter applies global, per-tool and per-client token buckets to MCP
// tool calls. A nil *Limiter allows everything.
type Limiter struct {
	logger  logging.ContextLogger
	cfg     config.RateLimitConfig
	now     func() time.Time
	global  *TokenBucket
	tools   map[string]*TokenBucket
	mu      sync.Mutex
	clients map[string]*client
}

type client struct {
	global   *TokenBucket
	tools    map[string]*TokenBucket
	lastSeen time.Time
}

// NewLimiter returns nil when rate limiting is disabled.
func NewLimiter(cfg *config.RateLimitConfig, logger logging.ContextLogger) *Limiter {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	return newLimiter(*cfg, logger, time.Now)
}

func newLimiter(cfg config.RateLimitConfig, logger logging.ContextLogger, now func() time.Time) *Limiter {
	l := &Limiter{
		logger:  logger,
		cfg:     cfg,
		now:     now,
		global:  newBucket(cfg.BurstSize, perSecond(cfg.RequestsPerMin), now),
		tools:   make(map[string]*TokenBucket),
		clients: make(map[string]*client),
	}
	for tool, limit := range cfg.PerToolLimits {
		l.tools[tool] = l.toolBucket(limit)
	}
	return l
}

func perSecond(perMin int) float64 {
	return float64(perMin) / 60.0
}

// toolBucket scales the burst by the tool's share of the global rate.
func (l *Limiter) toolBucket(limit int) *TokenBucket {
	burst := 1
	if l.cfg.RequestsPerMin > 0 {
		burst = l.cfg.BurstSize * limit / l.cfg.RequestsPerMin
	}
	if burst < 1 {
		burst = 1
	}
	return newBucket(burst, perSecond(limit), l.now)
}

// Allow takes one token from every applicable bucket or none at all.
func (l *Limiter) Allow(clientID, tool string) error {
	if l == nil {
		return nil
	}

	taken := make([]*TokenBucket, 0, 4)
	reject := func(scope string, b *TokenBucket) error {
		for _, t := range taken {
			t.Refund(1)
		}
		err := &LimitError{Scope: scope, Tool: tool, RetryAfter: b.Wait(1)}
		l.logger.Warn("Rate limit exceeded", "scope", scope, "client", clientID, "tool", tool)
		return err
	}

	if !l.global.Allow(1) {
		return reject("global", l.global)
	}
	taken = append(taken, l.global)

	if b, ok := l.tools[tool]; ok {
		if !b.Allow(1) {
			return reject("tool", b)
		}
		taken = append(taken, b)
	}

	if clientID == "" {
		return nil
	}
	c := l.client(clientID)
	if !c.global.Allow(1) {
		return reject("client", c.global)
	}
	taken = append(taken, c.global)

	if b, ok := c.tools[tool]; ok && !b.Allow(1) {
		return reject("client tool", b)
	}
	return nil
}

func (l *Limiter) client(id string) *client {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clients[id]
	if !ok {
		c = &client{
			global: newBucket(l.cfg.BurstSize, perSecond(l.cfg.RequestsPerMin), l.now),
			tools:  make(map[string]*TokenBucket, len(l.cfg.PerToolLimits)),
		}
		for tool, limit := range l.cfg.PerToolLimits {
			c.tools[tool] = l.toolBucket(limit)
		}
		l.clients[id] = c
	}
	c.lastSeen = l.now()
	return c
}

// Reset refills every bucket.
func (l *Limiter) Reset() {
	if l == nil {
		return
	}
	l.global.Reset()
	for _, b := range l.tools {
		b.Reset()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, c := range l.clients {
		c.global.Reset()
		for _, b := range c.tools {
			b.Reset()
		}
	}
}

// PruneClients drops clients idle for longer than the stale timeout and
// returns how many were removed.
func (l *Limiter) PruneClients() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	now := l.now()
	for id, c := range l.clients {
		if now.Sub(c.lastSeen) > staleClientAfter {
			delete(l.clients, id)
			n++
		}
	}
	if n > 0 {
		l.logger.Debug("Removed stale client rate limits", "count", n)
	}
	return n
}

// Run prunes stale clients every interval until ctx is done.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) {
	if l == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.PruneClients()
		}
	}
}

// GetStatus returns the limiter state for the health tool.
func (l *Limiter) GetStatus() map[string]interface{} {
	if l == nil {
		return map[string]interface{}{"enabled": false}
	}

	tools := make(map[string]interface{}, len(l.tools))
	for tool, b := range l.tools {
		tools[tool] = map[string]interface{}{
			"limit":  l.cfg.PerToolLimits[tool],
			"tokens": b.Tokens(),
		}
	}

	l.mu.Lock()
	active := len(l.clients)
	l.mu.Unlock()

	return map[string]interface{}{
		"enabled":        true,
		"requestsPerMin": l.cfg.RequestsPerMin,
		"burstSize":      l.cfg.BurstSize,
		"globalTokens":   l.global.Tokens(),
		"activeClients":  active,
		"toolLimits":     tools,
	}
}
