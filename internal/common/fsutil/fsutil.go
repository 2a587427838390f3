package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands $VAR / ${VAR} references and a leading '~' so that
// config files can point at "~/.local/share/bookmarkd/bookmarks.db".
func ExpandPath(path string) (string, error) {
	if path == "" {
		return path, nil
	}
	path = os.ExpandEnv(path)
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	if !strings.HasPrefix(path, "~/") {
		// ~user forms are not supported
		return "", fmt.Errorf("cannot expand %q", path)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

// EnsureParentDir creates the directory that will hold path.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}

// PathExists checks if the given path exists.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}
