package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Environment overrides for directory resolution. Tests set these to keep
// runs fully isolated from the user's real cache.
const (
	EnvCacheDir = "REGISTRY_CACHE_DIR"
	EnvStateDir = "REGISTRY_STATE_DIR"
)

// CacheDir returns the directory for downloaded release assets, keyed
// per template and version so concurrent downloads never collide.
// Binaries are deleted again once extraction completes.
func CacheDir() string {
	if dir := os.Getenv(EnvCacheDir); dir != "" {
		return dir
	}
	return filepath.Join(xdg.CacheHome, "presto-registry", "downloads")
}

// StateDir returns the directory for publish journals.
func StateDir() string {
	if dir := os.Getenv(EnvStateDir); dir != "" {
		return dir
	}
	return filepath.Join(xdg.StateHome, "presto-registry")
}
