package ipc

import (
	"errors"
	"fmt"

	"github.com/rbright/overlayctl/internal/discovery"
	"github.com/rbright/overlayctl/internal/protocol"
)

// ErrBroken marks a connection whose earlier write failed.
var ErrBroken = errors.New("connection broken by earlier write failure")

// ConnectionError reports an endpoint that could not be connected to.
// Callers may fall back to the next candidate.
type ConnectionError struct {
	Endpoint discovery.Endpoint
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect %s: %v", e.Endpoint.Path, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Stale reports whether nothing is listening behind the endpoint anymore.
func (e *ConnectionError) Stale() bool {
	return isSocketMissing(e.Err) || isConnectionRefused(e.Err)
}

// SendError reports a failed write. Commands written before it are not
// rolled back.
type SendError struct {
	Endpoint   discovery.Endpoint
	Action     protocol.Action
	Identifier string
	Err        error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send %s to %s: %v", e.Action, e.Endpoint.Path, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}
