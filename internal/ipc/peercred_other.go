//go:build !linux

package ipc

import "net"

// peerCredentials is only implemented with SO_PEERCRED on Linux.
func peerCredentials(net.Conn) (Peer, error) {
	return Peer{}, ErrPeerCredentialsUnsupported
}
