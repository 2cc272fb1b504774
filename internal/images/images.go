// Package images enumerates picture files handed to the daemon as add commands.
package images

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultExtensions selects PNG files only.
var DefaultExtensions = []string{".png"}

// List returns absolute paths of regular files (or symlinks to them) in dir whose extension is in
// extensions, in directory-enumeration order. Extensions compare
// case-insensitively and must include the leading dot.
func List(dir string, extensions []string) ([]string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve image dir %q: %w", dir, err)
	}

	entries, err := os.ReadDir(absDir)
	if err != nil {
		return nil, fmt.Errorf("read image dir: %w", err)
	}

	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = struct{}{}
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if _, ok := allowed[strings.ToLower(filepath.Ext(entry.Name()))]; !ok {
			continue
		}
		path := filepath.Join(absDir, entry.Name())
		if !isRegular(path, entry) {
			continue
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// isRegular follows symlinks; dangling links are dropped.
func isRegular(path string, entry os.DirEntry) bool {
	if entry.Type()&os.ModeSymlink == 0 {
		return entry.Type().IsRegular()
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
