package ipc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/rbright/overlayctl/internal/protocol"
)

const maxLineBytes = 1 << 20

// Request is one framed line read by Serve.
type Request struct {
	// Conn numbers accepted connections from 1 in accept order.
	Conn    int
	Line    []byte
	Command protocol.Command
	// Err is set when the line did not decode, or when reading the connection
	// failed (Line is then nil). Command is zero in both cases.
	Err error
}

// Handler receives lines in the order they arrived on each connection.
// Lines from different connections may be handled concurrently.
type Handler interface {
	Handle(context.Context, Request)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(context.Context, Request)

func (f HandlerFunc) Handle(ctx context.Context, req Request) {
	f(ctx, req)
}

// Serve reads newline-delimited commands the way the overlay daemon does, until
// context cancellation or listener close. It is the daemon side of the protocol
// and exists for stubs and diagnostics.
func Serve(ctx context.Context, listener net.Listener, handler Handler) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	stopClose := context.AfterFunc(ctx, func() { _ = listener.Close() })
	defer stopClose()

	accepted := 0
	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept overlay connection: %w", err)
		}
		accepted++

		wg.Add(1)
		go func(c net.Conn, id int) {
			defer wg.Done()
			defer c.Close()
			stop := context.AfterFunc(ctx, func() { _ = c.Close() })
			defer stop()

			scanner := bufio.NewScanner(c)
			scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)
			for scanner.Scan() {
				line := append([]byte(nil), scanner.Bytes()...)
				cmd, decodeErr := protocol.Decode(line)
				handler.Handle(ctx, Request{Conn: id, Line: line, Command: cmd, Err: decodeErr})
			}
			if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) && ctx.Err() == nil {
				handler.Handle(ctx, Request{Conn: id, Err: fmt.Errorf("read overlay connection: %w", err)})
			}
		}(conn, accepted)
	}
}
