// Package shutdown turns SIGINT and SIGTERM into context cancellation and
// releases resources in a fixed order when the run ends.
package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"pdftokens/logging"
)

// DefaultCloseTimeout bounds the time given to registered CloseFuncs.
const DefaultCloseTimeout = 10 * time.Second

// Manager owns the run context. The first signal cancels it, so directory
// processing stops before the next file; a second signal calls the force
// handler.
//
// Usage:
//
//	m := shutdown.NewManager(ctx, logger, shutdown.WithForceExit(os.Exit))
//	m.Start()
//	defer m.Close()
//	m.Register("history-db", 10, func(ctx context.Context) error { return db.Close() })
//	batch, err := processor.ProcessDirectory(m.Context(), dir)
type Manager struct {
	logger   *logging.Logger
	timeout  time.Duration
	forceFn  func(code int)
	registry *Registry
	signals  *SignalCounter

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	started bool
	closed  bool
	sigChan chan os.Signal
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithCloseTimeout sets the time budget for Close.
func WithCloseTimeout(timeout time.Duration) ManagerOption {
	return func(m *Manager) {
		m.timeout = timeout
	}
}

// WithForceExit sets the function called on the second signal. It receives
// the SIGINT exit code. Defaults to os.Exit.
func WithForceExit(fn func(code int)) ManagerOption {
	return func(m *Manager) {
		m.forceFn = fn
	}
}

// NewManager creates a Manager whose context derives from parent.
func NewManager(parent context.Context, logger *logging.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	ctx, cancel := context.WithCancel(parent)

	m := &Manager{
		logger:   logger.Named("shutdown"),
		timeout:  DefaultCloseTimeout,
		forceFn:  os.Exit,
		registry: NewRegistry(),
		ctx:      ctx,
		cancel:   cancel,
		sigChan:  make(chan os.Signal, 2),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.signals = NewSignalCounter(2, func() {
		m.logger.Warn("received second signal, exiting immediately")
		m.forceFn(exitCodeInterrupted)
	})

	return m
}

// exitCodeInterrupted is 128 + SIGINT.
const exitCodeInterrupted = 130

// Context returns the run context.
func (m *Manager) Context() context.Context {
	return m.ctx
}

// Register adds a CloseFunc. Lower priority values run first.
func (m *Manager) Register(name string, priority int, fn CloseFunc) {
	m.registry.Register(name, priority, fn)
	m.logger.Debug("registered close handler",
		zap.String("name", name),
		zap.Int("priority", priority),
	)
}

// Start listens for SIGINT and SIGTERM. Calling Start again is a no-op.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return
	}
	m.started = true

	signal.Notify(m.sigChan, os.Interrupt, syscall.SIGTERM)
	go m.listen()
}

func (m *Manager) listen() {
	for sig := range m.sigChan {
		m.handleSignal(sig)
	}
}

// handleSignal cancels the run on the first signal.
func (m *Manager) handleSignal(sig os.Signal) {
	if m.signals.Increment() == 1 {
		m.logger.Warn("received signal, stopping after the current file",
			zap.String("signal", sig.String()),
		)
		m.cancel()
	}
}

// Interrupted reports whether a signal has been received.
func (m *Manager) Interrupted() bool {
	return m.signals.Count() > 0
}

// Close stops signal handling, cancels the context and runs the registered
// CloseFuncs. It is idempotent.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	if m.started {
		signal.Stop(m.sigChan)
		close(m.sigChan)
	}
	m.mu.Unlock()

	m.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	m.logger.Debug("running close handlers", zap.Strings("handlers", m.registry.Names()))
	errs := m.registry.Close(ctx)
	for _, err := range errs {
		m.logger.Error("close handler failed", zap.Error(err))
	}
	return errors.Join(errs...)
}
