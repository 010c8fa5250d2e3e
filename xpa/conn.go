package xpa

import "os"

// Conn is a single open session with the external XPA messaging client.
//
// The methods mirror the fixed call surface of the XPA client library.
// Each request reports the number of servers that completed the transfer,
// and, separately, any error text the remote side produced. Remote error
// text is not folded into the error return: the caller decides how to
// surface it (see Manager.Get).
type Conn interface {
	// Get issues a get request against exactly one server matching the
	// addressing template.
	Get(template, params, mode string) (n int, buf []byte, errMsg string, err error)

	// Set sends data to exactly one server matching the template.
	Set(template, params, mode string, data []byte) (n int, errMsg string, err error)

	// SetFd streams data from an open file to exactly one server.
	SetFd(template, params, mode string, f *os.File) (n int, errMsg string, err error)

	// Close releases the session. The connection must not be used
	// afterwards.
	Close() error
}

// OpenFunc opens a connection to the XPA client in the given access mode.
// Factories allow alternative transports to be wired into a Manager
// without coupling it to a concrete implementation.
type OpenFunc func(mode string) (Conn, error)
