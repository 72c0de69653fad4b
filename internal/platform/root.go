package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrNoRoot is returned when no vault marker exists above the start directory.
var ErrNoRoot = errors.New("not inside a vault")

// RootMarkers identify a vault root. The yaml markers double as its
// config file; a bare .notemode directory marks a vault without one.
var RootMarkers = []string{"notemode.yaml", ".notemode.yaml", ".notemode"}

// FindRoot walks from startDir towards the filesystem root and returns the
// first directory holding one of RootMarkers.
func FindRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for ; ; dir = filepath.Dir(dir) {
		if marker(dir) != "" {
			return dir, nil
		}
		if filepath.Dir(dir) == dir {
			return "", ErrNoRoot
		}
	}
}

// ConfigFile returns the config file of the vault at root, or "" when the
// vault is only marked by a directory.
func ConfigFile(root string) string {
	m := marker(root)
	if m == "" {
		return ""
	}
	path := filepath.Join(root, m)
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return ""
	}
	return path
}

func marker(dir string) string {
	for _, name := range RootMarkers {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return name
		}
	}
	return ""
}
