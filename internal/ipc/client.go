// Package ipc owns the unix-socket connection to an overlay daemon and writes
// protocol commands to it in order.
//
// The daemon never acknowledges a command. A nil error from Send means the
// bytes were handed to the transport, not that the daemon applied them.
package ipc

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rbright/overlayctl/internal/discovery"
	"github.com/rbright/overlayctl/internal/protocol"
)

const (
	DefaultDialTimeout  = time.Second
	DefaultWriteTimeout = time.Second
)

// Options bounds how long Dial and Send may block.
type Options struct {
	DialTimeout  time.Duration
	WriteTimeout time.Duration
	// Logger receives candidate fallbacks from DialFirst. Optional.
	Logger *slog.Logger
}

func (o Options) dialTimeout() time.Duration {
	if o.DialTimeout > 0 {
		return o.DialTimeout
	}
	return DefaultDialTimeout
}

func (o Options) writeTimeout() time.Duration {
	if o.WriteTimeout > 0 {
		return o.WriteTimeout
	}
	return DefaultWriteTimeout
}

// Conn is an exclusively owned stream to one daemon endpoint. Send may be
// called from several goroutines; writes are serialized so lines never
// interleave.
type Conn struct {
	endpoint discovery.Endpoint
	conn     net.Conn
	opts     Options

	mu     sync.Mutex
	sent   int
	broken error

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Dial connects to the endpoint. It never retries.
func Dial(ctx context.Context, endpoint discovery.Endpoint, opts Options) (*Conn, error) {
	dialer := net.Dialer{Timeout: opts.dialTimeout()}
	conn, err := dialer.DialContext(ctx, "unix", endpoint.Path)
	if err != nil {
		return nil, &ConnectionError{Endpoint: endpoint, Err: err}
	}
	return &Conn{endpoint: endpoint, conn: conn, opts: opts}, nil
}

// DialFirst tries candidates in order and returns the first live connection.
// An empty sequence yields discovery.ErrNoEndpoint; otherwise every
// ConnectionError is joined into the result.
func DialFirst(ctx context.Context, candidates iter.Seq[discovery.Endpoint], opts Options) (*Conn, error) {
	var errs []error
	for endpoint := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		conn, err := Dial(ctx, endpoint, opts)
		if err == nil {
			return conn, nil
		}
		if opts.Logger != nil {
			opts.Logger.Warn("endpoint unreachable", "endpoint", endpoint.Path, "error", err.Error())
		}
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return nil, discovery.ErrNoEndpoint
	}
	return nil, errors.Join(errs...)
}

// Endpoint returns the endpoint the connection was opened to.
func (c *Conn) Endpoint() discovery.Endpoint {
	return c.endpoint
}

// Sent returns how many commands were written successfully.
func (c *Conn) Sent() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sent
}

// Send encodes cmd and writes it as one line with a single write call.
//
// An encoding failure is returned as *protocol.EncodingError and leaves the
// connection usable. A write failure is returned as *SendError and breaks the
// connection: every later Send fails with ErrBroken. Cancelling ctx aborts a
// blocked write.
func (c *Conn) Send(ctx context.Context, cmd protocol.Command) error {
	line, err := protocol.Encode(cmd)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return c.sendError(cmd, net.ErrClosed)
	}
	if c.broken != nil {
		return c.sendError(cmd, c.broken)
	}
	if err := ctx.Err(); err != nil {
		return c.sendError(cmd, err)
	}

	deadline := time.Now().Add(c.opts.writeTimeout())
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		c.broken = fmt.Errorf("%w: %w", ErrBroken, err)
		return c.sendError(cmd, err)
	}

	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetWriteDeadline(time.Unix(1, 0))
	})
	_, err = c.conn.Write(line)
	stop()

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		c.broken = fmt.Errorf("%w: %w", ErrBroken, err)
		return c.sendError(cmd, err)
	}

	c.sent++
	return nil
}

func (c *Conn) sendError(cmd protocol.Command, err error) error {
	return &SendError{
		Endpoint:   c.endpoint,
		Action:     cmd.Action,
		Identifier: cmd.Identifier,
		Err:        err,
	}
}

// Close releases the connection. It is idempotent and safe after a failed Send.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

// Probe checks whether a daemon currently accepts connections on endpoint.
func Probe(ctx context.Context, endpoint discovery.Endpoint, timeout time.Duration) (bool, error) {
	conn, err := Dial(ctx, endpoint, Options{DialTimeout: timeout})
	if err == nil {
		_ = conn.Close()
		return true, nil
	}
	if isSocketMissing(err) || isConnectionRefused(err) {
		return false, nil
	}
	return false, fmt.Errorf("probe socket: %w", err)
}

// isSocketMissing reports absent-socket failures.
func isSocketMissing(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, os.ErrNotExist)
}

// isConnectionRefused reports no-listener failures.
func isConnectionRefused(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}
