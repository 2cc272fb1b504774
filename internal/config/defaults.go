package config

import (
	"github.com/rbright/overlayctl/internal/discovery"
	"github.com/rbright/overlayctl/internal/images"
)

// Default returns the canonical runtime configuration used when no file is present.
// Directory fields stay empty until Resolve fills them from the environment.
func Default() Config {
	return Config{
		Discovery: DiscoveryConfig{
			Prefix: discovery.DefaultPrefix,
		},
		Images: ImagesConfig{
			Extensions: append([]string(nil), images.DefaultExtensions...),
		},
		Overlay: OverlayConfig{
			Identifier: "preview",
			X:          0,
			Y:          0,
			MaxWidth:   50,
			MaxHeight:  50,
		},
		Timeouts: TimeoutsConfig{
			ConnectMS: 1000,
			WriteMS:   1000,
		},
		Log: LogConfig{Level: "info"},
	}
}
