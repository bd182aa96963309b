package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hlop3z/uddl/internal/cli"
	"github.com/hlop3z/uddl/internal/testutil"
)

func init() {
	cli.SetDefault(&cli.Config{Mode: cli.ModePlain})
}

// runCLI executes the CLI with a config file that does not exist in the
// working directory, so only defaults, env and flags apply.
func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	clearEnv(t)
	t.Chdir(t.TempDir())

	var out, errOut bytes.Buffer
	code = execute(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func writeSchema(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	testutil.WriteFile(t, path, content)
	return path
}

// -----------------------------------------------------------------------------
// generate
// -----------------------------------------------------------------------------

func TestGenerate(t *testing.T) {
	outDir := t.TempDir()
	blog := testutil.FixturePath(t, "blog.uddl")

	code, stdout, stderr := runCLI(t, "generate", blog, "-d", "postgresql,sqlite,universal", "-o", outDir)
	if code != 0 {
		t.Fatalf("exit code %d\nstderr:\n%s", code, stderr)
	}

	for _, name := range []string{"blog.postgresql.sql", "blog.sqlite.sql", "blog.universal.uddl"} {
		path := filepath.Join(outDir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
		testutil.AssertSQLContains(t, string(data), "create table users")
		if !strings.Contains(stdout, path) {
			t.Errorf("summary should list %s:\n%s", path, stdout)
		}
	}
}

func TestGenerateRefusesOverwrite(t *testing.T) {
	outDir := t.TempDir()
	blog := testutil.FixturePath(t, "blog.uddl")
	existing := filepath.Join(outDir, "blog.postgresql.sql")
	testutil.WriteFile(t, existing, "keep me")

	code, _, stderr := runCLI(t, "generate", blog, "-o", outDir)
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr, "E6004") || !strings.Contains(stderr, "--force") {
		t.Errorf("unexpected stderr:\n%s", stderr)
	}
	data, _ := os.ReadFile(existing)
	testutil.AssertEqual(t, string(data), "keep me")

	code, _, stderr = runCLI(t, "generate", blog, "-o", outDir, "--force")
	if code != 0 {
		t.Fatalf("--force: exit code %d\n%s", code, stderr)
	}
	data, _ = os.ReadFile(existing)
	testutil.AssertSQLContains(t, string(data), "create table users")
}

func TestGenerateWritesNothingOnFailure(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	good := writeSchema(t, dir, "good.uddl", "create table t1 (a integer);")

	tests := []struct {
		name string
		src  string
		code string
	}{
		{"syntax", "create table t2 (a integer;", "E1001"},
		{"consistency", "create table t2 (a integer, a text);", "E2001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := writeSchema(t, dir, tt.name+".uddl", tt.src)

			code, _, stderr := runCLI(t, "generate", good, bad, "-o", outDir)
			if code != 1 {
				t.Fatalf("expected exit code 1, got %d", code)
			}
			if !strings.Contains(stderr, tt.code) {
				t.Errorf("stderr should mention %s:\n%s", tt.code, stderr)
			}
			if _, err := os.Stat(outDir); !os.IsNotExist(err) {
				t.Errorf("no output should be written, stat: %v", err)
			}
		})
	}
}

func TestGenerateAutofix(t *testing.T) {
	outDir := t.TempDir()
	cycle := testutil.FixturePath(t, "cycle.uddl")

	code, _, stderr := runCLI(t, "generate", cycle, "-o", outDir, "-d", "universal")
	if code != 1 || !strings.Contains(stderr, "invalid referenced table") {
		t.Fatalf("forward reference should fail without autofix, got %d\n%s", code, stderr)
	}

	code, _, stderr = runCLI(t, "generate", cycle, "-o", outDir, "-d", "universal", "--autofix")
	if code != 0 {
		t.Fatalf("exit code %d\n%s", code, stderr)
	}
	data, _ := os.ReadFile(filepath.Join(outDir, "cycle.universal.uddl"))
	testutil.AssertSQLContains(t, string(data), "alter table teams")
}

func TestGenerateDropAndConfig(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "build")
	config := writeSchema(t, dir, "custom.yaml", "dialects: [mariadb]\ngenerate_drop: true\noutput_dir: "+outDir+"\n")
	blog := testutil.FixturePath(t, "blog.uddl")

	code, _, stderr := runCLI(t, "-c", config, "generate", blog)
	if code != 0 {
		t.Fatalf("exit code %d\n%s", code, stderr)
	}
	data, err := os.ReadFile(filepath.Join(outDir, "blog.mariadb.sql"))
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertSQLContains(t, string(data), "drop table")
}

func TestGenerateUnknownDialect(t *testing.T) {
	code, _, stderr := runCLI(t, "generate", testutil.FixturePath(t, "blog.uddl"), "-d", "postgress")
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr, "postgresql") {
		t.Errorf("expected a suggestion in:\n%s", stderr)
	}
}

func TestGeneratorWatchStopsOnCancel(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	schema := writeSchema(t, dir, "w.uddl", "create table t1 (a integer);")

	g := &generator{cfg: defaultConfig(), out: &bytes.Buffer{}}
	g.cfg.OutputDir = filepath.Join(dir, "out")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- g.watch(ctx, []string{schema}, &bytes.Buffer{}) }()

	target := filepath.Join(g.cfg.OutputDir, "w.postgresql.sql")
	waitFor(t, func() bool {
		_, err := os.Stat(target)
		return err == nil
	})

	testutil.WriteFile(t, schema, "create table t1 (a integer, b text);")
	waitFor(t, func() bool {
		data, _ := os.ReadFile(target)
		return strings.Contains(string(data), "b text")
	})

	cancel()
	select {
	case err := <-done:
		testutil.AssertNoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestGeneratorWatchOverwritesAfterFirstRun(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	schema := writeSchema(t, dir, "w.uddl", "create table t1 (a integer);")

	g := &generator{cfg: defaultConfig(), out: &bytes.Buffer{}}
	g.cfg.OutputDir = filepath.Join(dir, "out")
	target := filepath.Join(g.cfg.OutputDir, "w.postgresql.sql")
	testutil.WriteFile(t, target, "stale")

	ctx, cancel := context.WithCancel(context.Background())
	var stderr bytes.Buffer
	done := make(chan error, 1)
	go func() { done <- g.watch(ctx, []string{schema}, &stderr) }()

	// The first run keeps the existing file; an edit replaces it.
	time.Sleep(300 * time.Millisecond)
	testutil.WriteFile(t, schema, "create table t1 (a integer, b text);")
	waitFor(t, func() bool {
		data, _ := os.ReadFile(target)
		return strings.Contains(string(data), "b text")
	})

	cancel()
	select {
	case err := <-done:
		testutil.AssertNoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
	if !strings.Contains(stderr.String(), "E6004") {
		t.Errorf("first run should refuse to overwrite:\n%s", stderr.String())
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

// -----------------------------------------------------------------------------
// check
// -----------------------------------------------------------------------------

func TestCheck(t *testing.T) {
	code, stdout, _ := runCLI(t, "check", testutil.FixturePath(t, "blog.uddl"))
	if code != 0 {
		t.Fatalf("exit code %d", code)
	}
	if !strings.Contains(stdout, "is consistent") {
		t.Errorf("unexpected output:\n%s", stdout)
	}
}

func TestCheckInvalid(t *testing.T) {
	bad := writeSchema(t, t.TempDir(), "bad.uddl", "create table t1 (a integer, unique (b));")

	code, _, stderr := runCLI(t, "check", bad)
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr, `In table "t1", unknown column "b"`) {
		t.Errorf("unexpected stderr:\n%s", stderr)
	}
}

func TestCheckJSON(t *testing.T) {
	dir := t.TempDir()
	bad := writeSchema(t, dir, "bad.uddl", "create table t1 (a integer, unique (b));")
	broken := writeSchema(t, dir, "broken.uddl", "create tabel t1 (a integer);")

	code, stdout, _ := runCLI(t, "check", bad, "--json")
	testutil.AssertEqual(t, code, 1)

	var result cli.CheckResult
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("invalid JSON %q: %v", stdout, err)
	}
	testutil.AssertFalse(t, result.Valid, "valid")
	testutil.AssertEqual(t, len(result.Diagnostics), 1)
	testutil.AssertEqual(t, result.Diagnostics[0].Code, "E2001")

	code, stdout, _ = runCLI(t, "check", broken, "--json")
	testutil.AssertEqual(t, code, 1)
	result = cli.CheckResult{}
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("invalid JSON %q: %v", stdout, err)
	}
	testutil.AssertEqual(t, result.Diagnostics[0].Code, "E1001")
	testutil.AssertEqual(t, result.Diagnostics[0].Line, 1)
}

func TestCheckSyntaxError(t *testing.T) {
	broken := writeSchema(t, t.TempDir(), "broken.uddl", "create table t1 (\n  a integer;\n")

	code, _, stderr := runCLI(t, "check", broken)
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	for _, want := range []string{"error[E1001]", "broken.uddl:2:", "2 |   a integer;", "^"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr missing %q:\n%s", want, stderr)
		}
	}
}

// -----------------------------------------------------------------------------
// import / diff
// -----------------------------------------------------------------------------

func TestImport(t *testing.T) {
	dir := t.TempDir()
	sqlFile := writeSchema(t, dir, "dump.sql", `
CREATE TABLE users (id serial PRIMARY KEY, email varchar(255) NOT NULL);
CREATE EXTENSION IF NOT EXISTS pgcrypto;
`)

	code, stdout, stderr := runCLI(t, "import", sqlFile)
	if code != 0 {
		t.Fatalf("exit code %d\n%s", code, stderr)
	}
	testutil.AssertSQLContains(t, stdout, "create table users")
	testutil.AssertSQLContains(t, stdout, "autoincrement")

	out := filepath.Join(dir, "schema.uddl")
	code, _, stderr = runCLI(t, "import", sqlFile, "-o", out)
	if code != 0 {
		t.Fatalf("exit code %d\n%s", code, stderr)
	}
	code, _, _ = runCLI(t, "import", sqlFile, "-o", out)
	testutil.AssertEqual(t, code, 1)

	// The written file parses back.
	code, _, stderr = runCLI(t, "check", out)
	if code != 0 {
		t.Errorf("imported schema should check clean:\n%s", stderr)
	}
}

func TestImportUnsupported(t *testing.T) {
	sqlFile := writeSchema(t, t.TempDir(), "dump.sql", "CREATE TABLE t (a jsonb);")

	code, _, stderr := runCLI(t, "import", sqlFile)
	testutil.AssertEqual(t, code, 1)
	if !strings.Contains(stderr, "E5002") {
		t.Errorf("unexpected stderr:\n%s", stderr)
	}
}

func TestDiff(t *testing.T) {
	dir := t.TempDir()
	oldFile := writeSchema(t, dir, "old.uddl", "create table a (x integer);\ncreate table b (x integer);")
	newFile := writeSchema(t, dir, "new.uddl", "create table b (x text);\ncreate table c (x integer);")

	code, stdout, _ := runCLI(t, "diff", oldFile, newFile)
	testutil.AssertEqual(t, code, 0)
	for _, want := range []string{"Schemas differ", "+ c", "- a", "~ x"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}

	code, _, _ = runCLI(t, "diff", oldFile, newFile, "--exit-code")
	testutil.AssertEqual(t, code, 1)

	code, stdout, _ = runCLI(t, "diff", oldFile, oldFile, "--exit-code")
	testutil.AssertEqual(t, code, 0)
	if !strings.HasPrefix(stdout, "Schemas are identical") {
		t.Errorf("unexpected output: %q", stdout)
	}
}

func TestUnknownCommand(t *testing.T) {
	code, _, stderr := runCLI(t, "migrate")
	testutil.AssertEqual(t, code, 1)
	if !strings.Contains(stderr, "unknown command") {
		t.Errorf("unexpected stderr:\n%s", stderr)
	}
}
