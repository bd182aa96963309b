package testutil

import (
	"flag"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/hlop3z/uddl/internal/alerr"
)

// updateGolden is a flag to update golden files.
// Use -update-golden to update golden files during test runs.
var updateGolden = flag.Bool("update-golden", false, "update golden files")

var whitespace = regexp.MustCompile(`\s+`)

// -----------------------------------------------------------------------------
// DDL Assertions
// -----------------------------------------------------------------------------

// NormalizeSQL collapses whitespace runs into one space, trims the result
// and lowercases it.
func NormalizeSQL(sql string) string {
	return strings.ToLower(strings.TrimSpace(whitespace.ReplaceAllString(sql, " ")))
}

// AssertSQLContains checks if a SQL string contains a substring.
// Both strings are normalized before comparison.
func AssertSQLContains(t *testing.T, sql, substr string) {
	t.Helper()

	if !strings.Contains(NormalizeSQL(sql), NormalizeSQL(substr)) {
		t.Errorf("SQL does not contain expected substring:\nsubstr: %s\n\nsql:\n%s", substr, sql)
	}
}

// AssertDDL compares generated DDL byte for byte. Layout matters for DDL
// output (blank lines, indentation, comment placement), so on mismatch the
// first differing line is reported.
func AssertDDL(t *testing.T, got, want string) {
	t.Helper()

	if got == want {
		return
	}

	gotLines := strings.Split(got, "\n")
	wantLines := strings.Split(want, "\n")
	for i := 0; i < max(len(gotLines), len(wantLines)); i++ {
		var g, w string
		if i < len(gotLines) {
			g = gotLines[i]
		}
		if i < len(wantLines) {
			w = wantLines[i]
		}
		if g != w {
			t.Errorf("DDL mismatch at line %d:\ngot:  %q\nwant: %q\n\ngot:\n%s\n\nwant:\n%s", i+1, g, w, got, want)
			return
		}
	}
}

// -----------------------------------------------------------------------------
// Error Assertions
// -----------------------------------------------------------------------------

// AssertError checks that an error has the expected error code.
// If err is nil or doesn't have the expected code, the test fails.
func AssertError(t *testing.T, err error, code alerr.Code) {
	t.Helper()

	if err == nil {
		t.Errorf("expected error with code %s, got nil", code)
		return
	}

	gotCode := alerr.GetErrorCode(err)
	if gotCode != code {
		t.Errorf("expected error code %s, got %s\nerror: %v", code, gotCode, err)
	}
}

// AssertNoError checks that an error is nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Errorf("expected no error, got: %v", err)
	}
}

// AssertErrorContains checks that an error message contains a substring.
// If err is nil, the test fails.
func AssertErrorContains(t *testing.T, err error, substr string) {
	t.Helper()

	if err == nil {
		t.Errorf("expected error containing %q, got nil", substr)
		return
	}

	if !strings.Contains(err.Error(), substr) {
		t.Errorf("error message does not contain %q\ngot: %v", substr, err)
	}
}

// -----------------------------------------------------------------------------
// Golden File Testing
// -----------------------------------------------------------------------------

func goldenPath(t *testing.T, name string) string {
	t.Helper()

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	return filepath.Join(wd, "testdata", name+".golden")
}

// Golden compares a string against testdata/<name>.golden.
// If -update-golden flag is passed, updates the golden file instead.
func Golden(t *testing.T, name string, got string) {
	t.Helper()

	path := goldenPath(t, name)

	if *updateGolden {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create golden directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(got), 0644); err != nil {
			t.Fatalf("failed to write golden file: %v", err)
		}
		return
	}

	want, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("golden file does not exist: %s\nrun with -update-golden to create it\n\ngot:\n%s",
				path, got)
		}
		t.Fatalf("failed to read golden file: %v", err)
	}

	if got != string(want) {
		t.Errorf("golden file mismatch: %s\n\ngot:\n%s\n\nwant:\n%s\n\nrun with -update-golden to update",
			path, got, string(want))
	}
}

// -----------------------------------------------------------------------------
// Test Helpers
// -----------------------------------------------------------------------------

// WriteFile writes content to a file, creating parent directories as needed.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create parent directories: %v", err)
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
}

// AssertEqual is a generic equality check for testing.
func AssertEqual[T comparable](t *testing.T, got, want T) {
	t.Helper()

	if got != want {
		t.Errorf("values not equal:\ngot:  %v\nwant: %v", got, want)
	}
}

// AssertTrue checks that a condition is true.
func AssertTrue(t *testing.T, condition bool, msg string) {
	t.Helper()

	if !condition {
		t.Errorf("expected true: %s", msg)
	}
}

// AssertFalse checks that a condition is false.
func AssertFalse(t *testing.T, condition bool, msg string) {
	t.Helper()

	if condition {
		t.Errorf("expected false: %s", msg)
	}
}
