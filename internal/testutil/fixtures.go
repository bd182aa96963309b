package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Fixture loads a schema fixture from testdata/schemas at the project root.
//
// Example:
//
//	src := testutil.Fixture(t, "blog.uddl")
func Fixture(t *testing.T, name string) string {
	t.Helper()

	content, err := readFile(FixturePath(t, name))
	if err != nil {
		t.Fatalf("Failed to load fixture %s: %v", name, err)
	}

	return content
}

// FixturePath returns the absolute path of a schema fixture.
func FixturePath(t *testing.T, name string) string {
	t.Helper()

	return filepath.Join(findProjectRoot(t), "testdata", "schemas", name)
}

// findProjectRoot walks up the directory tree to find the go.mod location.
func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("Could not find project root (go.mod)")
		}
		dir = parent
	}
}

func readFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	return string(b), err
}
