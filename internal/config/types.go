// Package config resolves, parses, validates, and defaults overlayctl configuration.
package config

import (
	"time"

	"github.com/rbright/overlayctl/internal/protocol"
)

// Config is the fully materialized runtime configuration used by overlayctl.
type Config struct {
	Discovery DiscoveryConfig
	Images    ImagesConfig
	Overlay   OverlayConfig
	Timeouts  TimeoutsConfig
	Log       LogConfig
}

// DiscoveryConfig names the shared directory and socket prefix scanned for daemons.
type DiscoveryConfig struct {
	Dir    string
	Prefix string
}

// ImagesConfig selects the picture directory fed to the preview command.
type ImagesConfig struct {
	Dir        string
	Extensions []string
}

// OverlayConfig holds the defaults for add commands.
type OverlayConfig struct {
	Identifier string
	X          int
	Y          int
	MaxWidth   int
	MaxHeight  int
	Scaler     string
}

// Geometry converts the overlay defaults into a protocol geometry.
func (o OverlayConfig) Geometry() protocol.Geometry {
	return protocol.Geometry{
		X:         o.X,
		Y:         o.Y,
		MaxWidth:  o.MaxWidth,
		MaxHeight: o.MaxHeight,
		Scaler:    o.Scaler,
	}
}

// TimeoutsConfig bounds blocking socket operations.
type TimeoutsConfig struct {
	ConnectMS int
	WriteMS   int
}

func (t TimeoutsConfig) Connect() time.Duration {
	return time.Duration(t.ConnectMS) * time.Millisecond
}

func (t TimeoutsConfig) Write() time.Duration {
	return time.Duration(t.WriteMS) * time.Millisecond
}

// LogConfig controls the JSONL log level.
type LogConfig struct {
	Level string
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
