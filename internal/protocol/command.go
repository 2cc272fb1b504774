// Package protocol defines the overlay daemon's control commands and their
// newline-delimited JSON wire form.
package protocol

// Action names one daemon operation.
type Action string

const (
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
	ActionFlush  Action = "flush"
	ActionExit   Action = "exit"
)

// Geometry places an overlay in terminal cells.
type Geometry struct {
	X         int
	Y         int
	MaxWidth  int
	MaxHeight int
	// Scaler is optional; the daemon falls back to "contain" when it is empty.
	Scaler string
}

// Command is one self-contained control instruction. Build it with Add, Remove,
// Flush, Exit or Raw so the wire field set matches the action.
type Command struct {
	Action     Action
	Identifier string
	Path       string
	Geometry   Geometry
}

// Add places the image at path inside the geometry's bounding box.
func Add(identifier, path string, geometry Geometry) Command {
	return Command{
		Action:     ActionAdd,
		Identifier: identifier,
		Path:       path,
		Geometry:   geometry,
	}
}

// Remove clears every overlay grouped under identifier.
func Remove(identifier string) Command {
	return Command{Action: ActionRemove, Identifier: identifier}
}

func Flush() Command {
	return Command{Action: ActionFlush}
}

func Exit() Command {
	return Command{Action: ActionExit}
}

// Raw builds a command for an action the client does not model. Only action and
// an optional identifier are sent.
func Raw(action, identifier string) Command {
	return Command{Action: Action(action), Identifier: identifier}
}

var knownScalers = map[string]struct{}{
	"contain":      {},
	"fit_contain":  {},
	"crop":         {},
	"distort":      {},
	"cover":        {},
	"forced_cover": {},
}

// IsKnownScaler reports whether name is a scaler the daemon understands.
// The empty name is accepted and means "daemon default".
func IsKnownScaler(name string) bool {
	if name == "" {
		return true
	}
	_, ok := knownScalers[name]
	return ok
}

type addWire struct {
	Action     Action `json:"action"`
	Identifier string `json:"identifier"`
	Path       string `json:"path"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	MaxWidth   int    `json:"max_width"`
	MaxHeight  int    `json:"max_height"`
	Scaler     string `json:"scaler,omitempty"`
}

type identifiedWire struct {
	Action     Action `json:"action"`
	Identifier string `json:"identifier,omitempty"`
}

type actionWire struct {
	Action Action `json:"action"`
}

// wire selects the fixed schema for the command's action.
func (c Command) wire() any {
	switch c.Action {
	case ActionAdd:
		return addWire{
			Action:     c.Action,
			Identifier: c.Identifier,
			Path:       c.Path,
			X:          c.Geometry.X,
			Y:          c.Geometry.Y,
			MaxWidth:   c.Geometry.MaxWidth,
			MaxHeight:  c.Geometry.MaxHeight,
			Scaler:     c.Geometry.Scaler,
		}
	case ActionFlush, ActionExit:
		return actionWire{Action: c.Action}
	default:
		return identifiedWire{Action: c.Action, Identifier: c.Identifier}
	}
}
