package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

type inboundWire struct {
	Action     Action `json:"action"`
	Identifier string `json:"identifier"`
	Path       string `json:"path"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	MaxWidth   *int   `json:"max_width"`
	MaxHeight  *int   `json:"max_height"`
	Width      *int   `json:"width"`
	Height     *int   `json:"height"`
	Scaler     string `json:"scaler"`
}

// Decode parses one wire line the way the daemon reads it. The trailing
// newline is optional. width/height are accepted as aliases for
// max_width/max_height.
func Decode(line []byte) (Command, error) {
	line = bytes.TrimRight(line, "\r\n")
	if len(bytes.TrimSpace(line)) == 0 {
		return Command{}, errors.New("decode command: empty line")
	}

	var in inboundWire
	if err := json.Unmarshal(line, &in); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}
	if in.Action == "" {
		return Command{}, errors.New("decode command: missing action")
	}

	cmd := Command{
		Action:     in.Action,
		Identifier: in.Identifier,
		Path:       in.Path,
		Geometry: Geometry{
			X:      in.X,
			Y:      in.Y,
			Scaler: in.Scaler,
		},
	}
	cmd.Geometry.MaxWidth = firstSet(in.Width, in.MaxWidth)
	cmd.Geometry.MaxHeight = firstSet(in.Height, in.MaxHeight)
	return cmd, nil
}

func firstSet(values ...*int) int {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}
