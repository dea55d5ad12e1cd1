// Package testutil provides utilities for testing the registry builder
// in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SetupTestEnv creates isolated directories for each test so runs never
// touch the user's real cache or publish state. Cleanup is handled by
// t.TempDir().
func SetupTestEnv(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()

	t.Setenv("REGISTRY_CACHE_DIR", filepath.Join(tmpDir, "cache"))
	t.Setenv("REGISTRY_STATE_DIR", filepath.Join(tmpDir, "state"))

	dirs := []string{
		filepath.Join(tmpDir, "cache"),
		filepath.Join(tmpDir, "state"),
		filepath.Join(tmpDir, "output"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}

	return tmpDir
}
