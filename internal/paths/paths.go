// Package paths resolves the per-user data directory the catalog, journal,
// and ignore set live under, per the platform conventions named in the
// external interfaces design (~/Library/Application Support on macOS,
// %APPDATA% on Windows, $XDG_CACHE_HOME or ~/.cache elsewhere).
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "pluginary"

// DataDir returns the directory the catalog, journal, and ignore files are
// stored under, creating it if it does not yet exist.
func DataDir() (string, error) {
	dir, err := dataDirFor(runtime.GOOS)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func dataDirFor(goos string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	switch goos {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName), nil
		}
		return filepath.Join(home, "AppData", "Roaming", appName), nil
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", appName), nil
	default:
		if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		return filepath.Join(home, ".cache", appName), nil
	}
}

// CatalogPath returns the catalog database's path within dir.
func CatalogPath(dir string) string { return filepath.Join(dir, "plugins.db") }

// JournalPath returns the scan journal database's path within dir.
func JournalPath(dir string) string { return filepath.Join(dir, "scan_journal.db") }

// IgnorePath returns the ignore-set file's path within dir.
func IgnorePath(dir string) string { return filepath.Join(dir, "ignores.json") }
