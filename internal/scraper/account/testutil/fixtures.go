package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// FixturePath returns the path of an HTML fixture captured for the given portal.
func FixturePath(portal, name string) string {
	// Get path relative to this file
	_, filename, _, _ := runtime.Caller(0)
	baseDir := filepath.Dir(filepath.Dir(filename)) // up to account/

	return filepath.Join(baseDir, portal, "testdata", "fixtures", name+".html")
}

// LoadFixture reads an HTML fixture file for the given portal
func LoadFixture(t *testing.T, portal, name string) string {
	t.Helper()

	data, err := os.ReadFile(FixturePath(portal, name))
	if err != nil {
		t.Fatalf("Failed to load fixture %s/%s: %v", portal, name, err)
	}

	return string(data)
}
