// Package app wires parsed commands to discovery, the daemon connection, and output.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/rbright/overlayctl/internal/cli"
	"github.com/rbright/overlayctl/internal/config"
	"github.com/rbright/overlayctl/internal/doctor"
	"github.com/rbright/overlayctl/internal/logging"
	"github.com/rbright/overlayctl/internal/version"
)

const binaryName = "overlayctl"

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText(binaryName))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText(binaryName))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	logRuntime, err := logging.New(cfgLoaded.Config.Log.Level)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	for _, w := range cfgLoaded.Warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	s := session{
		Runner: r,
		parsed: parsed,
		cfg:    cfgLoaded.Config,
		logger: logger,
	}

	switch parsed.Command {
	case cli.CommandPreview:
		return s.preview(ctx)
	case cli.CommandAdd:
		return s.add(ctx)
	case cli.CommandRemove:
		return s.remove(ctx)
	case cli.CommandFlush, cli.CommandExit:
		return s.admin(ctx)
	case cli.CommandEndpoints:
		return s.endpoints(ctx)
	case cli.CommandDoctor:
		report := doctor.Run(ctx, cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}
