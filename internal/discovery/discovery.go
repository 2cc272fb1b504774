// Package discovery locates overlay daemon endpoints by their naming convention
// in a shared temporary directory. Endpoints are candidates only: connecting is
// the sole proof a daemon is alive behind one.
package discovery

import (
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultPrefix is the name prefix the overlay daemon uses for its sockets.
const DefaultPrefix = "ueberzugpp"

const (
	socketSuffix = ".socket"
	scanBatch    = 64
)

// ErrNoEndpoint reports that no candidate endpoint was found.
var ErrNoEndpoint = errors.New("no overlay daemon found")

// Endpoint is one candidate rendezvous point.
type Endpoint struct {
	Path string
	// Token is the daemon-chosen part of the name. It is never interpreted.
	Token string
}

func (e Endpoint) String() string {
	return e.Path
}

// Pattern returns the glob form of the naming convention for prefix.
func Pattern(prefix string) string {
	return prefix + "-*" + socketSuffix
}

// Match reports whether name is "<prefix>-<token>.socket" and returns the token.
func Match(name, prefix string) (string, bool) {
	head := prefix + "-"
	if !strings.HasPrefix(name, head) || !strings.HasSuffix(name, socketSuffix) {
		return "", false
	}
	if len(name) < len(head)+len(socketSuffix) {
		return "", false
	}
	return name[len(head) : len(name)-len(socketSuffix)], true
}

// Scan lazily yields endpoints in dir whose names match prefix, in filesystem
// enumeration order. A missing or unreadable dir yields nothing. Every range
// over the returned sequence rescans the directory.
func Scan(dir, prefix string) iter.Seq[Endpoint] {
	return func(yield func(Endpoint) bool) {
		f, err := os.Open(dir)
		if err != nil {
			return
		}
		defer f.Close()

		for {
			entries, err := f.ReadDir(scanBatch)
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				token, ok := Match(entry.Name(), prefix)
				if !ok {
					continue
				}
				if !yield(Endpoint{Path: filepath.Join(dir, entry.Name()), Token: token}) {
					return
				}
			}
			// io.EOF and read failures both end the sequence.
			if err != nil {
				return
			}
		}
	}
}

// Find collects every candidate in dir. It returns ErrNoEndpoint when none match.
func Find(dir, prefix string) ([]Endpoint, error) {
	endpoints := slices.Collect(Scan(dir, prefix))
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("%w: no %s in %s", ErrNoEndpoint, Pattern(prefix), dir)
	}
	return endpoints, nil
}

// Single wraps an explicitly chosen socket path as a one-element sequence.
func Single(path string) iter.Seq[Endpoint] {
	return func(yield func(Endpoint) bool) {
		yield(Endpoint{Path: path})
	}
}
