// Package xpa is a thin client binding for the XPA point-to-point
// messaging system used to talk to the DS9 image display.
//
// The binding keeps a single lazily opened connection to the external
// XPA client and translates requests into calls against it. Failures
// fall into two camps with deliberately different treatment: resource
// and transfer failures (no connection, zero servers completed, missing
// payload) are returned as Go errors, while error text reported by the
// remote server comes back as the ordinary string result so callers can
// inspect it programmatically. Upstream callers depend on this
// asymmetry; do not unify the two paths.
package xpa

import (
	"bytes"
	"fmt"
	"os"
)

// Get issues a get request against exactly one server matching the
// template and returns the received payload. A nil conn borrows the
// manager's shared connection, opening it if needed.
//
// Error text reported by the remote server is returned as the result
// with a nil error.
func (m *Manager) Get(conn Conn, template, params, mode string) (string, error) {
	if conn == nil {
		c, err := m.Acquire(false)
		if err != nil {
			return "", err
		}
		conn = c
	}
	m.collector.IncRequest("get")
	n, buf, errMsg, err := conn.Get(template, params, mode)
	if err != nil {
		m.collector.IncRequestError("get", "transport")
		return "", fmt.Errorf("xpa get %q: %w", template, err)
	}
	if n == 0 {
		m.collector.IncRequestError("get", "no_servers")
		return "", fmt.Errorf("xpa get %q: %w", template, ErrNoServers)
	}
	if errMsg != "" {
		return errMsg, nil
	}
	if buf == nil {
		m.collector.IncRequestError("get", "null_buffer")
		return "", fmt.Errorf("xpa get %q: %w", template, ErrNullBuffer)
	}
	return string(buf), nil
}

// Set sends data to exactly one server matching the template and
// returns the empty string on success. A negative length computes the
// length from the data's NUL-terminated prefix, matching the C client's
// strlen behaviour; otherwise the first length bytes are sent.
//
// As with Get, remote error text is returned as the result.
func (m *Manager) Set(conn Conn, template, params, mode string, data []byte, length int) (string, error) {
	if length < 0 {
		length = terminatedLength(data)
	}
	if length > len(data) {
		length = len(data)
	}
	if conn == nil {
		c, err := m.Acquire(false)
		if err != nil {
			return "", err
		}
		conn = c
	}
	m.collector.IncRequest("set")
	n, errMsg, err := conn.Set(template, params, mode, data[:length])
	if err != nil {
		m.collector.IncRequestError("set", "transport")
		return "", fmt.Errorf("xpa set %q: %w", template, err)
	}
	if n == 0 {
		m.collector.IncRequestError("set", "no_servers")
		return "", fmt.Errorf("xpa set %q: %w", template, ErrNoServers)
	}
	if errMsg != "" {
		return errMsg, nil
	}
	return "", nil
}

// SetFd behaves like Set but streams the payload from an open file
// instead of an in-memory buffer.
func (m *Manager) SetFd(conn Conn, template, params, mode string, f *os.File) (string, error) {
	if conn == nil {
		c, err := m.Acquire(false)
		if err != nil {
			return "", err
		}
		conn = c
	}
	m.collector.IncRequest("setfd")
	n, errMsg, err := conn.SetFd(template, params, mode, f)
	if err != nil {
		m.collector.IncRequestError("setfd", "transport")
		return "", fmt.Errorf("xpa setfd %q: %w", template, err)
	}
	if n == 0 {
		m.collector.IncRequestError("setfd", "no_servers")
		return "", fmt.Errorf("xpa setfd %q: %w", template, ErrNoServers)
	}
	if errMsg != "" {
		return errMsg, nil
	}
	return "", nil
}

// terminatedLength returns the length of the NUL-terminated prefix of
// data, or the full length when no terminator is present.
func terminatedLength(data []byte) int {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		return i
	}
	return len(data)
}

var defaultManager = NewManager(nil)

// Default returns the process-wide manager used by the package-level
// functions.
func Default() *Manager { return defaultManager }

// Get calls Manager.Get on the process-wide manager.
func Get(conn Conn, template, params, mode string) (string, error) {
	return defaultManager.Get(conn, template, params, mode)
}

// Set calls Manager.Set on the process-wide manager.
func Set(conn Conn, template, params, mode string, data []byte, length int) (string, error) {
	return defaultManager.Set(conn, template, params, mode, data, length)
}

// SetFd calls Manager.SetFd on the process-wide manager.
func SetFd(conn Conn, template, params, mode string, f *os.File) (string, error) {
	return defaultManager.SetFd(conn, template, params, mode, f)
}

// Reset drops the process-wide connection; the next request reopens it.
func Reset() { defaultManager.Reset() }
