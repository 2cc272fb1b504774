package ipc

import "errors"

// ErrPeerCredentialsUnsupported is returned where the platform cannot report
// the process behind a unix socket.
var ErrPeerCredentialsUnsupported = errors.New("peer credentials unsupported on this platform")

// Peer identifies the process that owns the daemon end of a connection.
type Peer struct {
	PID int
	UID int
	GID int
}

// PeerCredentials reports the daemon process behind the connection.
func PeerCredentials(c *Conn) (Peer, error) {
	return peerCredentials(c.conn)
}
