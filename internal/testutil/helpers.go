package testutil

import (
	"database/sql"
	"testing"
	"time"
)

// RetryWithTimeout retries fn until it succeeds or the timeout expires.
// Used to wait for a database container to accept connections.
func RetryWithTimeout(t *testing.T, timeout time.Duration, fn func() error) error {
	t.Helper()

	deadline := time.Now().Add(timeout)
	var lastErr error

	for time.Now().Before(deadline) {
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}

	return lastErr
}

// SkipIfShort skips the test if running in short mode.
func SkipIfShort(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}
}

// MustValue takes the result of a (value, error) call and returns a
// function that fails the test immediately on error, or returns the value.
// The call must be the only argument, so the test comes second.
//
// Example:
//
//	tree := testutil.MustValue(parser.Parse(src))(t)
func MustValue[T any](value T, err error) func(t *testing.T) T {
	return func(t *testing.T) T {
		t.Helper()

		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		return value
	}
}

// ExecScript executes a multi-statement DDL script and fails the test on
// error. Both the SQLite and the PostgreSQL drivers accept several
// statements in one Exec call when no arguments are bound.
func ExecScript(t *testing.T, db *sql.DB, script string) {
	t.Helper()

	if _, err := db.Exec(script); err != nil {
		t.Fatalf("failed to execute DDL:\n%s\nerror: %v", script, err)
	}
}
