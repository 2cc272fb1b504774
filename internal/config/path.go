package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolvePath applies CLI/XDG/home fallback rules for config.jsonc location.
func ResolvePath(explicit string) (string, error) {
	if strings.TrimSpace(explicit) != "" {
		return explicit, nil
	}

	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "overlayctl", "config.jsonc"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("unable to resolve user home for config fallback")
	}

	return filepath.Join(home, ".config", "overlayctl", "config.jsonc"), nil
}

// Resolve fills environment-dependent directories: an empty discovery.dir
// becomes the platform temp dir and an empty images.dir becomes ~/Pictures.
// A leading "~/" in either is expanded.
func Resolve(cfg Config) (Config, []Warning) {
	var warnings []Warning
	home, homeErr := os.UserHomeDir()

	expand := func(key, dir string) string {
		if dir != "~" && !strings.HasPrefix(dir, "~/") {
			return dir
		}
		if homeErr != nil {
			warnings = append(warnings, Warning{Message: fmt.Sprintf("%s: cannot expand %q without a home directory", key, dir)})
			return dir
		}
		return filepath.Join(home, strings.TrimPrefix(dir, "~"))
	}

	cfg.Discovery.Dir = expand("discovery.dir", cfg.Discovery.Dir)
	if cfg.Discovery.Dir == "" {
		cfg.Discovery.Dir = os.TempDir()
	}

	cfg.Images.Dir = expand("images.dir", cfg.Images.Dir)
	if cfg.Images.Dir == "" {
		if homeErr != nil {
			warnings = append(warnings, Warning{Message: "images.dir is unset and no home directory is available"})
		} else {
			cfg.Images.Dir = filepath.Join(home, "Pictures")
		}
	}

	return cfg, warnings
}
