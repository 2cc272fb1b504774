package app

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/rbright/overlayctl/internal/cli"
	"github.com/rbright/overlayctl/internal/config"
	"github.com/rbright/overlayctl/internal/discovery"
	"github.com/rbright/overlayctl/internal/images"
	"github.com/rbright/overlayctl/internal/ipc"
	"github.com/rbright/overlayctl/internal/protocol"
)

// session carries one command invocation's resolved inputs.
type session struct {
	Runner
	parsed cli.Parsed
	cfg    config.Config
	logger *slog.Logger
}

func (s session) options() ipc.Options {
	opts := ipc.Options{
		DialTimeout:  s.cfg.Timeouts.Connect(),
		WriteTimeout: s.cfg.Timeouts.Write(),
		Logger:       s.logger,
	}
	if s.parsed.Timeout > 0 {
		opts.DialTimeout = s.parsed.Timeout
		opts.WriteTimeout = s.parsed.Timeout
	}
	return opts
}

// candidates yields --socket alone when given, otherwise every discovered endpoint.
func (s session) candidates() iter.Seq[discovery.Endpoint] {
	if s.parsed.Socket != "" {
		return discovery.Single(s.parsed.Socket)
	}
	return discovery.Scan(s.cfg.Discovery.Dir, s.cfg.Discovery.Prefix)
}

func (s session) identifier() string {
	if s.parsed.Identifier != "" {
		return s.parsed.Identifier
	}
	return s.cfg.Overlay.Identifier
}

func (s session) geometry() protocol.Geometry {
	return s.parsed.Geometry.Apply(s.cfg.Overlay.Geometry())
}

func (s session) connect(ctx context.Context) (*ipc.Conn, bool) {
	conn, err := ipc.DialFirst(ctx, s.candidates(), s.options())
	if err == nil {
		s.logger.Info("connected", "endpoint", conn.Endpoint().Path)
		return conn, true
	}

	if errors.Is(err, discovery.ErrNoEndpoint) {
		fmt.Fprintf(s.Stderr, "error: no overlay daemon found (%s in %s)\n",
			discovery.Pattern(s.cfg.Discovery.Prefix), s.cfg.Discovery.Dir)
	} else {
		fmt.Fprintf(s.Stderr, "error: %v\n", err)
	}
	s.logger.Error("connect failed", "error", err.Error())
	return nil, false
}

func (s session) closeConn(conn *ipc.Conn) {
	if err := conn.Close(); err != nil {
		s.logger.Warn("close connection", "endpoint", conn.Endpoint().Path, "error", err.Error())
	}
}

// preview sends one add command per image, all under the same identifier.
func (s session) preview(ctx context.Context) int {
	dir := s.cfg.Images.Dir
	if len(s.parsed.Args) > 0 {
		dir = s.parsed.Args[0]
	}

	paths, err := images.List(dir, s.cfg.Images.Extensions)
	if err != nil {
		fmt.Fprintf(s.Stderr, "error: %v\n", err)
		s.logger.Error("list images failed", "dir", dir, "error", err.Error())
		return 1
	}
	if len(paths) == 0 {
		fmt.Fprintf(s.Stderr, "warning: no images found in %s\n", dir)
		return 0
	}

	conn, ok := s.connect(ctx)
	if !ok {
		return 1
	}
	defer s.closeConn(conn)

	identifier := s.identifier()
	geometry := s.geometry()
	skipped := 0
	for _, path := range paths {
		err := conn.Send(ctx, protocol.Add(identifier, path, geometry))
		if err == nil {
			s.logger.Debug("add sent", "identifier", identifier, "path", path)
			continue
		}

		var encErr *protocol.EncodingError
		if errors.As(err, &encErr) {
			skipped++
			fmt.Fprintf(s.Stderr, "warning: skipping %q: %v\n", path, err)
			s.logger.Warn("add skipped", "path", path, "error", err.Error())
			continue
		}

		fmt.Fprintf(s.Stderr, "error: %v (%d of %d sent)\n", err, conn.Sent(), len(paths))
		s.logger.Error("preview aborted", "sent", conn.Sent(), "total", len(paths), "error", err.Error())
		return 1
	}

	s.logger.Info("preview complete",
		"endpoint", conn.Endpoint().Path,
		"identifier", identifier,
		"sent", conn.Sent(),
		"skipped", skipped,
	)
	fmt.Fprintf(s.Stdout, "sent %d image(s) to %s\n", conn.Sent(), conn.Endpoint().Path)
	return 0
}

// add places a single overlay, generating an identifier on request.
func (s session) add(ctx context.Context) int {
	path, err := filepath.Abs(s.parsed.Args[0])
	if err != nil {
		fmt.Fprintf(s.Stderr, "error: resolve path: %v\n", err)
		return 1
	}
	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(s.Stderr, "error: %v\n", err)
		return 1
	}
	if !info.Mode().IsRegular() {
		fmt.Fprintf(s.Stderr, "error: %s is not a regular file\n", path)
		return 1
	}

	identifier := s.identifier()
	generated := identifier == cli.AutoIdentifier
	if generated {
		identifier = "overlay-" + uuid.NewString()
	}

	conn, ok := s.connect(ctx)
	if !ok {
		return 1
	}
	defer s.closeConn(conn)

	if err := conn.Send(ctx, protocol.Add(identifier, path, s.geometry())); err != nil {
		fmt.Fprintf(s.Stderr, "error: %v\n", err)
		s.logger.Error("add failed", "path", path, "error", err.Error())
		return 1
	}
	s.logger.Info("add sent", "endpoint", conn.Endpoint().Path, "identifier", identifier, "path", path)

	if generated {
		fmt.Fprintln(s.Stdout, identifier)
	}
	return 0
}

func (s session) remove(ctx context.Context) int {
	identifier := s.identifier()
	if len(s.parsed.Args) > 0 {
		identifier = s.parsed.Args[0]
	}
	if identifier == cli.AutoIdentifier {
		fmt.Fprintf(s.Stderr, "error: remove needs the identifier printed by add, not %q\n", cli.AutoIdentifier)
		return 2
	}
	return s.sendOne(ctx, protocol.Remove(identifier))
}

// admin forwards flush and exit, which carry no payload.
func (s session) admin(ctx context.Context) int {
	cmd := protocol.Flush()
	if s.parsed.Command == cli.CommandExit {
		cmd = protocol.Exit()
	}
	return s.sendOne(ctx, cmd)
}

func (s session) sendOne(ctx context.Context, cmd protocol.Command) int {
	if err := cmd.Validate(); err != nil {
		fmt.Fprintf(s.Stderr, "error: %v\n", err)
		return 2
	}

	conn, ok := s.connect(ctx)
	if !ok {
		return 1
	}
	defer s.closeConn(conn)

	if err := conn.Send(ctx, cmd); err != nil {
		fmt.Fprintf(s.Stderr, "error: %v\n", err)
		s.logger.Error("send failed", "action", cmd.Action, "error", err.Error())
		return 1
	}
	s.logger.Info("command sent", "endpoint", conn.Endpoint().Path, "action", cmd.Action, "identifier", cmd.Identifier)
	return 0
}
