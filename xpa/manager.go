package xpa

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lsst/display-ds9/telemetry"
)

// openMode is the access mode used for the lazily created connection.
const openMode = "w"

// Manager owns the process-wide XPA connection. At most one connection
// exists at a time; it is created lazily on first use and destroyed only
// on an explicit Reset. Callers borrow the connection for the duration of
// a call and never own it.
//
// All methods are safe for concurrent use.
type Manager struct {
	open      OpenFunc
	logger    zerolog.Logger
	collector telemetry.Collector

	mu   sync.Mutex
	conn Conn
}

// Option customises a Manager.
type Option func(*Manager)

// WithLogger attaches a logger to the manager.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithCollector attaches a telemetry collector to the manager.
func WithCollector(collector telemetry.Collector) Option {
	return func(m *Manager) {
		if collector != nil {
			m.collector = collector
		}
	}
}

// NewManager creates a manager that opens connections through the given
// factory. A nil factory selects the command driver with default
// settings.
func NewManager(open OpenFunc, opts ...Option) *Manager {
	if open == nil {
		open = NewCommandOpener(Settings{})
	}
	m := &Manager{
		open:      open,
		logger:    zerolog.Nop(),
		collector: telemetry.Noop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Acquire returns the current connection, creating one in write mode if
// none exists. When reset is true any existing connection is closed and
// dropped first, so the returned connection is freshly opened.
func (m *Manager) Acquire(reset bool) (Conn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if reset && m.conn != nil {
		m.closeLocked()
	}
	if m.conn == nil {
		conn, err := m.open(openMode)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrOpen, err)
		}
		m.conn = conn
		m.logger.Debug().Msg("opened xpa connection")
	}
	return m.conn, nil
}

// Reset closes and drops the current connection, if any. The next
// request reopens one lazily. Resetting when no connection exists is a
// no-op.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn == nil {
		return
	}
	m.closeLocked()
	m.collector.IncReset()
}

func (m *Manager) closeLocked() {
	if err := m.conn.Close(); err != nil {
		m.logger.Warn().Err(err).Msg("close xpa connection")
	}
	m.conn = nil
}
