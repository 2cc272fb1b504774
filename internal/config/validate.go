package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rbright/overlayctl/internal/protocol"
)

var logLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	prefix := cfg.Discovery.Prefix
	if strings.TrimSpace(prefix) == "" {
		return nil, fmt.Errorf("discovery.prefix must not be empty")
	}
	if strings.ContainsAny(prefix, "/*?[]\\") {
		return nil, fmt.Errorf("discovery.prefix must not contain path separators or glob characters")
	}
	if cfg.Discovery.Dir != "" && !filepath.IsAbs(cfg.Discovery.Dir) && !strings.HasPrefix(cfg.Discovery.Dir, "~") {
		warnings = append(warnings, Warning{Message: fmt.Sprintf("discovery.dir %q is relative to the working directory", cfg.Discovery.Dir)})
	}

	if len(cfg.Images.Extensions) == 0 {
		return nil, fmt.Errorf("images.extensions must not be empty")
	}
	for _, ext := range cfg.Images.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return nil, fmt.Errorf("images.extensions entry %q must start with '.'", ext)
		}
	}

	if strings.TrimSpace(cfg.Overlay.Identifier) == "" {
		return nil, fmt.Errorf("overlay.identifier must not be empty")
	}
	if cfg.Overlay.X < 0 {
		return nil, fmt.Errorf("overlay.x must be >= 0")
	}
	if cfg.Overlay.Y < 0 {
		return nil, fmt.Errorf("overlay.y must be >= 0")
	}
	if cfg.Overlay.MaxWidth <= 0 {
		return nil, fmt.Errorf("overlay.max_width must be > 0")
	}
	if cfg.Overlay.MaxHeight <= 0 {
		return nil, fmt.Errorf("overlay.max_height must be > 0")
	}
	if !protocol.IsKnownScaler(cfg.Overlay.Scaler) {
		return nil, fmt.Errorf("overlay.scaler %q is not a known scaler", cfg.Overlay.Scaler)
	}

	if cfg.Timeouts.ConnectMS <= 0 {
		return nil, fmt.Errorf("timeouts.connect_ms must be > 0")
	}
	if cfg.Timeouts.WriteMS <= 0 {
		return nil, fmt.Errorf("timeouts.write_ms must be > 0")
	}

	if _, ok := logLevels[cfg.Log.Level]; !ok {
		return nil, fmt.Errorf("log.level must be one of: debug, info, warn, error")
	}

	return warnings, nil
}
