package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// EncodingError reports a command that cannot be put on the wire. Callers
// sending a batch skip the command and continue.
type EncodingError struct {
	Action Action
	Field  string
	Reason string
	Err    error
}

func (e *EncodingError) Error() string {
	action := string(e.Action)
	if action == "" {
		action = "unnamed"
	}
	if e.Err != nil {
		return fmt.Sprintf("encode %s command: %v", action, e.Err)
	}
	return fmt.Sprintf("encode %s command: %s %s", action, e.Field, e.Reason)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

func invalid(c Command, field, reason string) error {
	return &EncodingError{Action: c.Action, Field: field, Reason: reason}
}

// Validate checks the command against the schema of its action.
func (c Command) Validate() error {
	if strings.TrimSpace(string(c.Action)) == "" {
		return invalid(c, "action", "must not be empty")
	}

	// The JSON encoder would silently replace invalid bytes with U+FFFD and
	// hand the daemon a different path.
	for _, field := range []struct{ name, value string }{
		{"action", string(c.Action)},
		{"identifier", c.Identifier},
		{"path", c.Path},
		{"scaler", c.Geometry.Scaler},
	} {
		if !utf8.ValidString(field.value) {
			return invalid(c, field.name, "is not valid UTF-8")
		}
	}

	switch c.Action {
	case ActionAdd:
		if c.Identifier == "" {
			return invalid(c, "identifier", "must not be empty")
		}
		if c.Path == "" {
			return invalid(c, "path", "must not be empty")
		}
		if c.Geometry.X < 0 {
			return invalid(c, "x", "must be >= 0")
		}
		if c.Geometry.Y < 0 {
			return invalid(c, "y", "must be >= 0")
		}
		if c.Geometry.MaxWidth <= 0 {
			return invalid(c, "max_width", "must be > 0")
		}
		if c.Geometry.MaxHeight <= 0 {
			return invalid(c, "max_height", "must be > 0")
		}
		if !IsKnownScaler(c.Geometry.Scaler) {
			return invalid(c, "scaler", fmt.Sprintf("%q is not a known scaler", c.Geometry.Scaler))
		}
	case ActionRemove:
		if c.Identifier == "" {
			return invalid(c, "identifier", "must not be empty")
		}
	}

	return nil
}

// Encode renders the command as one JSON object followed by a single '\n'.
//
// Raw newlines inside string fields are escaped by the JSON encoder, so the
// returned line always holds exactly one newline byte: the terminator.
func Encode(c Command) ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(c.wire()); err != nil {
		return nil, &EncodingError{Action: c.Action, Err: err}
	}
	return buf.Bytes(), nil
}

// MarshalJSON emits the same object Encode writes, without the terminator.
func (c Command) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.wire())
}
