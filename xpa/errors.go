package xpa

import "errors"

var (
	// ErrOpen indicates that the external XPA client could not be opened.
	ErrOpen = errors.New("unable to open xpa connection")
	// ErrNoServers indicates that a request was completed by zero servers.
	ErrNoServers = errors.New("request returned 0")
	// ErrNullBuffer indicates a get that succeeded without an error message
	// but delivered no payload.
	ErrNullBuffer = errors.New("request returned a null buffer")
)
