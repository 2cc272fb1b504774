package discovery

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}
}

func TestScanEmptyDirectoryYieldsNothing(t *testing.T) {
	require.Empty(t, slices.Collect(Scan(t.TempDir(), "foo")))
}

func TestScanMissingDirectoryYieldsNothing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	require.Empty(t, slices.Collect(Scan(missing, "foo")))
}

func TestScanMatchesPrefixAndExactSuffix(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "foo-1.socket", "foo-2.txt", "bar-3.socket")

	got := slices.Collect(Scan(dir, "foo"))
	require.Equal(t, []Endpoint{{Path: filepath.Join(dir, "foo-1.socket"), Token: "1"}}, got)
}

func TestScanSkipsLookalikes(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir,
		"foo.socket",
		"foobar-1.socket",
		"foo-1.socket.bak",
		"xfoo-1.socket",
	)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "foo-dir.socket"), 0o700))

	require.Empty(t, slices.Collect(Scan(dir, "foo")))
}

func TestScanStopsWhenConsumerBreaks(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "foo-1.socket", "foo-2.socket", "foo-3.socket")

	seen := 0
	for range Scan(dir, "foo") {
		seen++
		break
	}
	require.Equal(t, 1, seen)
}

func TestScanReadsAcrossBatches(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < scanBatch*2+3; i++ {
		touch(t, dir, "foo-"+string(rune('a'+i%26))+string(rune('a'+i/26))+".socket")
	}

	require.Len(t, slices.Collect(Scan(dir, "foo")), scanBatch*2+3)
}

func TestFindReturnsErrNoEndpoint(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "other-1.socket")

	_, err := Find(dir, DefaultPrefix)
	require.True(t, errors.Is(err, ErrNoEndpoint))
	require.Contains(t, err.Error(), "ueberzugpp-*.socket")
}

func TestFindCollectsAll(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "ueberzugpp-100.socket", "ueberzugpp-200.socket")

	endpoints, err := Find(dir, DefaultPrefix)
	require.NoError(t, err)
	tokens := []string{endpoints[0].Token, endpoints[1].Token}
	require.ElementsMatch(t, []string{"100", "200"}, tokens)
}

func TestMatch(t *testing.T) {
	token, ok := Match("ueberzugpp-4242.socket", "ueberzugpp")
	require.True(t, ok)
	require.Equal(t, "4242", token)

	token, ok = Match("foo-.socket", "foo")
	require.True(t, ok)
	require.Empty(t, token)

	_, ok = Match("foo-1.sock", "foo")
	require.False(t, ok)
}

func TestSingleYieldsExplicitPath(t *testing.T) {
	got := slices.Collect(Single("/run/custom.socket"))
	require.Equal(t, []Endpoint{{Path: "/run/custom.socket"}}, got)
}

func TestPattern(t *testing.T) {
	require.Equal(t, "foo-*.socket", Pattern("foo"))
}
