package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePathPrecedence(t *testing.T) {
	explicit := "/tmp/custom.jsonc"
	resolved, err := ResolvePath(explicit)
	require.NoError(t, err)
	require.Equal(t, explicit, resolved)

	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	resolved, err = ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(xdg, "overlayctl", "config.jsonc"), resolved)

	t.Setenv("XDG_CONFIG_HOME", "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	resolved, err = ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config", "overlayctl", "config.jsonc"), resolved)
}

func TestResolveFillsDirectories(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, warnings := Resolve(Default())
	require.Empty(t, warnings)
	require.Equal(t, os.TempDir(), cfg.Discovery.Dir)
	require.Equal(t, filepath.Join(home, "Pictures"), cfg.Images.Dir)
}

func TestResolveExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	base := Default()
	base.Discovery.Dir = "~/run"
	base.Images.Dir = "~/wallpapers"
	cfg, _ := Resolve(base)
	require.Equal(t, filepath.Join(home, "run"), cfg.Discovery.Dir)
	require.Equal(t, filepath.Join(home, "wallpapers"), cfg.Images.Dir)
}

func TestResolveKeepsExplicitDirectories(t *testing.T) {
	base := Default()
	base.Discovery.Dir = "/var/run/overlay"
	base.Images.Dir = "/srv/images"

	cfg, warnings := Resolve(base)
	require.Empty(t, warnings)
	require.Equal(t, "/var/run/overlay", cfg.Discovery.Dir)
	require.Equal(t, "/srv/images", cfg.Images.Dir)
}

func TestLoadMissingConfigUsesDefaultsWithWarning(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "missing.jsonc")

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, path, loaded.Path)
	require.False(t, loaded.Exists)

	want, _ := Resolve(Default())
	require.Equal(t, want, loaded.Config)
	require.NotEmpty(t, loaded.Warnings)
	require.Contains(t, loaded.Warnings[0].Message, "not found")
}

func TestLoadExistingJSONCParsesAndValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.jsonc")
	socketDir := t.TempDir()
	contents := `
{
  "discovery": {"dir": "` + socketDir + `"},
  "images": {"dir": "/srv/images", "extensions": [".png", ".jpg"]},
  "overlay": {"identifier": "gallery", "max_width": 30},
}
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.True(t, loaded.Exists)
	require.Equal(t, path, loaded.Path)
	require.Equal(t, socketDir, loaded.Config.Discovery.Dir)
	require.Equal(t, "/srv/images", loaded.Config.Images.Dir)
	require.Equal(t, "gallery", loaded.Config.Overlay.Identifier)
	require.Equal(t, 30, loaded.Config.Overlay.MaxWidth)
	require.Equal(t, 50, loaded.Config.Overlay.MaxHeight)
	require.Equal(t, "ueberzugpp", loaded.Config.Discovery.Prefix)
}

func TestLoadParseErrorIncludesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.jsonc")
	require.NoError(t, os.WriteFile(path, []byte("{ not-json }"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse config")
	require.Contains(t, err.Error(), path)
}
