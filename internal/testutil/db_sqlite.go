//go:build sqlite

package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// SetupSQLite creates an in-memory SQLite database with foreign keys
// enforced. The connection is closed when the test completes.
// Skipped in short mode.
func SetupSQLite(t *testing.T) *sql.DB {
	t.Helper()
	SkipIfShort(t)

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite connection: %v", err)
	}

	// One connection: every new connection to :memory: is a new database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		t.Fatalf("failed to ping sqlite: %v", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// AssertTableExists checks that a table exists in the SQLite database.
func AssertTableExists(t *testing.T, db *sql.DB, table string) {
	t.Helper()

	var name string
	err := db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name = ?
	`, table).Scan(&name)
	if err == sql.ErrNoRows {
		t.Errorf("expected table %q to exist, but it does not", table)
		return
	}
	if err != nil {
		t.Fatalf("failed to check if table exists: %v", err)
	}
}

// AssertColumnType checks that a column exists with the declared type.
func AssertColumnType(t *testing.T, db *sql.DB, table, column, want string) {
	t.Helper()

	rows, err := db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		t.Fatalf("failed to get table info: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid          int
			name, ctype  string
			notNull, pk  int
			defaultValue any
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &defaultValue, &pk); err != nil {
			t.Fatalf("failed to scan column info: %v", err)
		}
		if name == column {
			if ctype != want {
				t.Errorf("column %s.%s has type %q, want %q", table, column, ctype, want)
			}
			return
		}
	}

	t.Errorf("expected column %q to exist in table %q, but it does not", column, table)
}

// AssertIndexExists checks that an index exists on a SQLite table.
func AssertIndexExists(t *testing.T, db *sql.DB, table, index string) {
	t.Helper()

	var name string
	err := db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type = 'index' AND tbl_name = ? AND name = ?
	`, table, index).Scan(&name)
	if err == sql.ErrNoRows {
		t.Errorf("expected index %q to exist on table %q, but it does not", index, table)
		return
	}
	if err != nil {
		t.Fatalf("failed to check if index exists: %v", err)
	}
}

// ForeignKeyTargets returns the tables referenced by the foreign keys of table.
func ForeignKeyTargets(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("SELECT DISTINCT \"table\" FROM pragma_foreign_key_list(?)", table)
	if err != nil {
		t.Fatalf("failed to list foreign keys of %s: %v", table, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			t.Fatalf("failed to scan foreign key: %v", err)
		}
		out = append(out, ref)
	}
	return out
}
