// Package health runs the readiness checks of the side-channel HTTP
// server: opening table, output directory and diagram font.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/dmmcquay/chessbook/internal/logging"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// worse returns the more severe of a and b.
func worse(a, b Status) Status {
	rank := map[Status]int{StatusHealthy: 0, StatusDegraded: 1, StatusUnhealthy: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}

// Check probes one component. An error wrapped by Degraded marks the
// component degraded instead of unhealthy.
type Check func(ctx context.Context) error

// CheckTimeout bounds each individual check.
const CheckTimeout = 5 * time.Second

type degradedError struct{ err error }

func (e degradedError) Error() string { return e.err.Error() }
func (e degradedError) Unwrap() error { return e.err }

// Degraded marks err as a problem the server can live with, such as
// drawing PNG diagrams with the fallback face.
func Degraded(err error) error {
	if err == nil {
		return nil
	}
	return degradedError{err: err}
}

func IsDegraded(err error) bool {
	var d degradedError
	return errors.As(err, &d)
}

type Component struct {
	Name        string    `json:"name"`
	Status      Status    `json:"status"`
	Message     string    `json:"message,omitempty"`
	LastChecked time.Time `json:"last_checked"`
	DurationMS  float64   `json:"duration_ms"`
}

type Response struct {
	Status     Status      `json:"status"`
	Timestamp  time.Time   `json:"timestamp"`
	Components []Component `json:"components,omitempty"`
	Version    string      `json:"version,omitempty"`
	GitCommit  string      `json:"git_commit,omitempty"`
}

// Checker holds the registered checks. Checks run concurrently on every
// CheckHealth call; nothing is cached between calls.
type Checker struct {
	logger    logging.ContextLogger
	version   string
	gitCommit string

	mu     sync.RWMutex
	checks map[string]Check
}

func NewChecker(logger logging.ContextLogger, version, gitCommit string) *Checker {
	return &Checker{
		logger:    logger,
		version:   version,
		gitCommit: gitCommit,
		checks:    make(map[string]Check),
	}
}

// RegisterCheck adds or replaces the check for name.
func (c *Checker) RegisterCheck(name string, check Check) {
	c.mu.Lock()
	c.checks[name] = check
	c.mu.Unlock()
}

func (c *Checker) response(status Status) Response {
	return Response{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Version:   c.version,
		GitCommit: c.gitCommit,
	}
}

// CheckHealth runs every check and reports the worst status. Components
// are sorted by name.
func (c *Checker) CheckHealth(ctx context.Context) Response {
	c.mu.RLock()
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	checks := make([]Check, len(names))
	for i, name := range names {
		checks[i] = c.checks[name]
	}
	c.mu.RUnlock()

	resp := c.response(StatusHealthy)
	resp.Components = make([]Component, len(names))

	var wg sync.WaitGroup
	for i := range names {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp.Components[i] = c.run(ctx, names[i], checks[i])
		}(i)
	}
	wg.Wait()

	for _, comp := range resp.Components {
		resp.Status = worse(resp.Status, comp.Status)
	}
	return resp
}

func (c *Checker) run(ctx context.Context, name string, check Check) Component {
	ctx, cancel := context.WithTimeout(ctx, CheckTimeout)
	defer cancel()

	start := time.Now()
	err := check(ctx)
	comp := Component{
		Name:        name,
		Status:      StatusHealthy,
		LastChecked: start.UTC(),
		DurationMS:  float64(time.Since(start).Microseconds()) / 1000,
	}
	if err == nil {
		return comp
	}

	comp.Message = err.Error()
	logger := c.logger.WithField("component", name)
	if IsDegraded(err) {
		comp.Status = StatusDegraded
		logger.Warn("Health check degraded", "error", err)
	} else {
		comp.Status = StatusUnhealthy
		logger.Error("Health check failed", "error", err)
	}
	return comp
}

// LivenessHandler answers healthy as long as the process serves HTTP.
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c.write(w, c.logger, http.StatusOK, c.response(StatusHealthy))
	}
}

// ReadinessHandler runs all checks. Only an unhealthy component makes the
// server unready; degraded output is still served.
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.ContextWithCorrelationID(r.Context(), logging.GenerateCorrelationID())
		logger := c.logger.WithContext(ctx)
		logger.Debug("Performing readiness check")

		resp := c.CheckHealth(ctx)
		code := http.StatusOK
		if resp.Status == StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		c.write(w, logger, code, resp)
	}
}

func (c *Checker) write(w http.ResponseWriter, logger logging.ContextLogger, code int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error("Failed to encode health response", "error", err)
	}
}
