package images

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListFiltersByExtensionInOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.png", "notes.txt", "C.PNG", "d.jpg"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("img"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.png"), 0o700))

	paths, err := List(dir, DefaultExtensions)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "C.PNG"),
		filepath.Join(dir, "a.png"),
		filepath.Join(dir, "b.png"),
	}, paths)
}

func TestListMultipleExtensions(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.png", "b.jpg", "c.gif"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}

	paths, err := List(dir, []string{".png", ".jpg"})
	require.NoError(t, err)
	require.Len(t, paths, 2)
}

func TestListReturnsAbsolutePaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), nil, 0o600))
	t.Chdir(dir)

	paths, err := List(".", DefaultExtensions)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	require.True(t, filepath.IsAbs(paths[0]))
}

func TestListMissingDirectory(t *testing.T) {
	_, err := List(filepath.Join(t.TempDir(), "missing"), DefaultExtensions)
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestListFollowsSymlinksToRegularFiles(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dir := filepath.Join(root, "pictures")
	require.NoError(t, os.Mkdir(src, 0o700))
	require.NoError(t, os.Mkdir(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(src, "real.png"), []byte("img"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(src, "album.png"), 0o700))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), []byte("img"), 0o600))
	require.NoError(t, os.Symlink(filepath.Join("..", "src", "real.png"), filepath.Join(dir, "b.png")))
	require.NoError(t, os.Symlink(filepath.Join(src, "missing.png"), filepath.Join(dir, "c.png")))
	require.NoError(t, os.Symlink(filepath.Join(src, "album.png"), filepath.Join(dir, "d.png")))

	paths, err := List(dir, DefaultExtensions)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "a.png"),
		filepath.Join(dir, "b.png"),
	}, paths)
}
