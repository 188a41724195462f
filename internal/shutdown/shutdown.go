package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/dmmcquay/chessbook/internal/logging"
)

// DefaultTimeout bounds a signal-triggered shutdown.
const DefaultTimeout = 30 * time.Second

type component struct {
	name string
	fn   func(context.Context) error
}

// Manager coordinates graceful shutdown. Work started under Context is
// cancelled first, then components stop in reverse registration order.
type Manager struct {
	logger     logging.ContextLogger
	components []component
	mu         sync.Mutex
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
	once       sync.Once
	err        error
}

func NewManager(logger logging.ContextLogger) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Context is cancelled as soon as shutdown begins. Batch conversions run
// under it so a signal stops them between games.
func (m *Manager) Context() context.Context {
	return m.ctx
}

// Register adds a component to stop during shutdown.
func (m *Manager) Register(name string, fn func(context.Context) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components = append(m.components, component{name: name, fn: fn})
}

// HandleSignals starts shutdown on SIGINT or SIGTERM.
func (m *Manager) HandleSignals() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigCh:
			m.logger.Info("Received shutdown signal", "signal", sig.String())
			m.Shutdown(DefaultTimeout)
		case <-m.done:
		}
		signal.Stop(sigCh)
	}()
}

// Shutdown stops every registered component once, newest first, and
// returns the combined error. Later calls return the first result.
func (m *Manager) Shutdown(timeout time.Duration) error {
	m.once.Do(func() {
		m.logger.Info("Starting graceful shutdown", "timeout", timeout.String())
		m.cancel()

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		m.mu.Lock()
		components := append([]component(nil), m.components...)
		m.mu.Unlock()

		var result *multierror.Error
		for i := len(components) - 1; i >= 0; i-- {
			c := components[i]
			if ctx.Err() != nil {
				m.logger.Error("Graceful shutdown timed out", "skipped", c.name)
				result = multierror.Append(result, ctx.Err())
				break
			}
			start := time.Now()
			if err := c.fn(ctx); err != nil {
				m.logger.Error("Failed to shutdown component", "component", c.name, "error", err)
				result = multierror.Append(result, err)
				continue
			}
			m.logger.Info("Component shutdown complete", "component", c.name, "elapsed", time.Since(start).String())
		}

		m.err = result.ErrorOrNil()
		if m.err != nil {
			m.logger.Error("Graceful shutdown completed with errors", "error", m.err)
		} else {
			m.logger.Info("Graceful shutdown completed successfully")
		}
		close(m.done)
	})
	<-m.done
	return m.err
}

// Done is closed when shutdown is complete.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// WaitForShutdown blocks until shutdown is complete.
func (m *Manager) WaitForShutdown() {
	<-m.done
}
