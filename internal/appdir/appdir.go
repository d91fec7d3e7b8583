// Package appdir resolves the per-user directories domainintel reads its
// configuration from and writes its spreadsheets to.
package appdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "domainintel"

// ConfigDir returns the OS-specific config directory for domainintel.
// Linux: $XDG_CONFIG_HOME/domainintel  macOS: ~/Library/Application Support/domainintel
// Windows: %AppData%/domainintel
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("getting user config dir: %w", err)
	}
	return filepath.Join(base, appName), nil
}

// DataDir returns the directory the store spreadsheets live in by default.
// $XDG_DATA_HOME is honoured when set; otherwise ~/.local/share/domainintel.
func DataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting user home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", appName), nil
}

// EnsureFile creates path and its parent directories if they do not exist.
// The file is created with 0600 permissions. A no-op if the file already exists.
func EnsureFile(path string) error {
	if err := EnsureParent(path); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return fmt.Errorf("creating file: %w", err)
	}
	return f.Close()
}

// EnsureParent creates the parent directory of path with 0700 permissions.
func EnsureParent(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	return nil
}
