package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateDefaults(t *testing.T) {
	warnings, err := Validate(Default())
	require.NoError(t, err)
	require.Empty(t, warnings)
}

func TestValidateRejectsInvalidCoreFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "empty prefix", mutate: func(c *Config) { c.Discovery.Prefix = " " }, wantErr: "discovery.prefix"},
		{name: "glob prefix", mutate: func(c *Config) { c.Discovery.Prefix = "ueberzug*" }, wantErr: "glob characters"},
		{name: "path prefix", mutate: func(c *Config) { c.Discovery.Prefix = "tmp/ueberzugpp" }, wantErr: "path separators"},
		{name: "no extensions", mutate: func(c *Config) { c.Images.Extensions = nil }, wantErr: "images.extensions"},
		{name: "extension without dot", mutate: func(c *Config) { c.Images.Extensions = []string{"png"} }, wantErr: "must start with"},
		{name: "empty identifier", mutate: func(c *Config) { c.Overlay.Identifier = "" }, wantErr: "overlay.identifier"},
		{name: "negative x", mutate: func(c *Config) { c.Overlay.X = -1 }, wantErr: "overlay.x"},
		{name: "negative y", mutate: func(c *Config) { c.Overlay.Y = -2 }, wantErr: "overlay.y"},
		{name: "zero width", mutate: func(c *Config) { c.Overlay.MaxWidth = 0 }, wantErr: "overlay.max_width"},
		{name: "zero height", mutate: func(c *Config) { c.Overlay.MaxHeight = 0 }, wantErr: "overlay.max_height"},
		{name: "unknown scaler", mutate: func(c *Config) { c.Overlay.Scaler = "stretch" }, wantErr: "overlay.scaler"},
		{name: "zero connect timeout", mutate: func(c *Config) { c.Timeouts.ConnectMS = 0 }, wantErr: "timeouts.connect_ms"},
		{name: "negative write timeout", mutate: func(c *Config) { c.Timeouts.WriteMS = -5 }, wantErr: "timeouts.write_ms"},
		{name: "unknown log level", mutate: func(c *Config) { c.Log.Level = "trace" }, wantErr: "log.level"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)

			_, err := Validate(cfg)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidateWarnsOnRelativeDiscoveryDir(t *testing.T) {
	cfg := Default()
	cfg.Discovery.Dir = "sockets"

	warnings, err := Validate(cfg)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0].Message, "relative")
}

func TestOverlayGeometry(t *testing.T) {
	overlay := OverlayConfig{X: 1, Y: 2, MaxWidth: 3, MaxHeight: 4, Scaler: "crop"}
	geometry := overlay.Geometry()
	require.Equal(t, 1, geometry.X)
	require.Equal(t, 2, geometry.Y)
	require.Equal(t, 3, geometry.MaxWidth)
	require.Equal(t, 4, geometry.MaxHeight)
	require.Equal(t, "crop", geometry.Scaler)
}
