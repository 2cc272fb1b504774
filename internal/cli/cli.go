// Package cli parses overlayctl's argv into a command and its overrides.
package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/rbright/overlayctl/internal/protocol"
)

type Command string

const (
	CommandPreview   Command = "preview"
	CommandAdd       Command = "add"
	CommandRemove    Command = "remove"
	CommandFlush     Command = "flush"
	CommandExit      Command = "exit"
	CommandEndpoints Command = "endpoints"
	CommandDoctor    Command = "doctor"
	CommandVersion   Command = "version"
	CommandHelp      Command = "help"
)

// positional holds the min/max positional arguments each command accepts.
var positional = map[Command][2]int{
	CommandPreview:   {0, 1},
	CommandAdd:       {1, 1},
	CommandRemove:    {0, 1},
	CommandFlush:     {0, 0},
	CommandExit:      {0, 0},
	CommandEndpoints: {0, 0},
	CommandDoctor:    {0, 0},
	CommandVersion:   {0, 0},
	CommandHelp:      {0, 0},
}

// AutoIdentifier asks add to generate a fresh identifier.
const AutoIdentifier = "auto"

// GeometryOverrides carries the geometry flags that were set explicitly.
type GeometryOverrides struct {
	X         *int
	Y         *int
	MaxWidth  *int
	MaxHeight *int
	Scaler    *string
}

// Apply replaces fields of g that were overridden on the command line.
func (o GeometryOverrides) Apply(g protocol.Geometry) protocol.Geometry {
	if o.X != nil {
		g.X = *o.X
	}
	if o.Y != nil {
		g.Y = *o.Y
	}
	if o.MaxWidth != nil {
		g.MaxWidth = *o.MaxWidth
	}
	if o.MaxHeight != nil {
		g.MaxHeight = *o.MaxHeight
	}
	if o.Scaler != nil {
		g.Scaler = *o.Scaler
	}
	return g
}

type Parsed struct {
	Command    Command
	Args       []string
	ConfigPath string
	ShowHelp   bool
	// Socket bypasses discovery when set.
	Socket     string
	Identifier string
	Geometry   GeometryOverrides
	// Timeout overrides both connect and write timeouts when non-zero.
	Timeout time.Duration
}

func Parse(args []string) (Parsed, error) {
	var (
		parsed  Parsed
		help    bool
		version bool
	)

	fs := pflag.NewFlagSet("overlayctl", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false

	fs.BoolVarP(&help, "help", "h", false, "show help")
	fs.BoolVar(&version, "version", false, "show version")
	fs.StringVar(&parsed.ConfigPath, "config", "", "config file path")
	fs.StringVar(&parsed.Socket, "socket", "", "daemon socket path")
	identifier := fs.String("identifier", "", "overlay identifier")
	x := fs.Int("x", 0, "overlay column")
	y := fs.Int("y", 0, "overlay row")
	maxWidth := fs.Int("max-width", 0, "bounding box width in cells")
	maxHeight := fs.Int("max-height", 0, "bounding box height in cells")
	scaler := fs.String("scaler", "", "image scaler")
	fs.DurationVar(&parsed.Timeout, "timeout", 0, "connect and write timeout")

	if err := fs.Parse(args); err != nil {
		return Parsed{}, err
	}

	if help {
		parsed.Command = CommandHelp
		parsed.ShowHelp = true
		return parsed, nil
	}

	rest := fs.Args()
	switch {
	case len(rest) > 0:
		parsed.Command = Command(rest[0])
		parsed.Args = rest[1:]
	case version:
		parsed.Command = CommandVersion
	default:
		parsed.Command = CommandHelp
	}

	limits, ok := positional[parsed.Command]
	if !ok {
		return Parsed{}, fmt.Errorf("unknown command: %s", parsed.Command)
	}
	if version && parsed.Command != CommandVersion {
		return Parsed{}, fmt.Errorf("--version cannot be combined with command %q", parsed.Command)
	}
	if n := len(parsed.Args); n < limits[0] {
		return Parsed{}, fmt.Errorf("command %q requires an argument", parsed.Command)
	} else if n > limits[1] {
		return Parsed{}, fmt.Errorf("unexpected arguments after command %q", parsed.Command)
	}
	parsed.ShowHelp = parsed.Command == CommandHelp

	if fs.Changed("identifier") {
		if strings.TrimSpace(*identifier) == "" {
			return Parsed{}, errors.New("--identifier must not be empty")
		}
		parsed.Identifier = *identifier
	}

	bounded := []struct {
		name  string
		value *int
		dst   **int
		floor int
	}{
		{"x", x, &parsed.Geometry.X, 0},
		{"y", y, &parsed.Geometry.Y, 0},
		{"max-width", maxWidth, &parsed.Geometry.MaxWidth, 1},
		{"max-height", maxHeight, &parsed.Geometry.MaxHeight, 1},
	}
	for _, flag := range bounded {
		if !fs.Changed(flag.name) {
			continue
		}
		if *flag.value < flag.floor {
			return Parsed{}, fmt.Errorf("--%s must be >= %d", flag.name, flag.floor)
		}
		*flag.dst = flag.value
	}

	if fs.Changed("scaler") {
		if !protocol.IsKnownScaler(*scaler) {
			return Parsed{}, fmt.Errorf("--scaler %q is not a known scaler", *scaler)
		}
		parsed.Geometry.Scaler = scaler
	}

	if fs.Changed("timeout") && parsed.Timeout <= 0 {
		return Parsed{}, errors.New("--timeout must be positive")
	}
	if fs.Changed("socket") && strings.TrimSpace(parsed.Socket) == "" {
		return Parsed{}, errors.New("--socket requires a path")
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [flags] <command> [args]

Commands:
  preview [DIR]        Place every image in DIR (default images.dir) as an overlay
  add PATH             Place one image as an overlay
  remove [IDENTIFIER]  Clear overlays grouped under IDENTIFIER
  flush                Ask the daemon to flush pending overlays
  exit                 Ask the daemon to exit
  endpoints            List discovered daemon endpoints
  doctor               Run configuration and environment checks
  version              Print version information
  help                 Show this help

Flags:
  --config PATH        Config file path (default: $XDG_CONFIG_HOME/overlayctl/config.jsonc)
  --socket PATH        Daemon socket path; skips discovery
  --identifier ID      Overlay identifier ("auto" generates one for add)
  --x N, --y N         Top-left cell of the overlay
  --max-width N        Bounding box width in cells
  --max-height N       Bounding box height in cells
  --scaler NAME        contain, fit_contain, crop, distort, cover, forced_cover
  --timeout DURATION   Connect and write timeout (e.g. 500ms)
  -h, --help           Show help
  --version            Show version

Commands are fire-and-forget: success means the daemon socket accepted the
bytes, not that the daemon applied them.
`, binaryName)
}
