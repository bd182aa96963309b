package drift

import (
	"slices"
	"strings"
	"testing"

	"github.com/hlop3z/uddl/internal/ast"
	"github.com/hlop3z/uddl/internal/parser"
	"github.com/hlop3z/uddl/internal/testutil"
)

func fingerprint(t *testing.T, src string) *SchemaHash {
	t.Helper()
	tree := testutil.MustValue(parser.Parse(src))(t)
	return testutil.MustValue(Fingerprint(tree))(t)
}

func diff(t *testing.T, oldSrc, newSrc string) *Comparison {
	t.Helper()
	return Compare(fingerprint(t, oldSrc), fingerprint(t, newSrc))
}

// -----------------------------------------------------------------------------
// Fingerprint
// -----------------------------------------------------------------------------

func TestFingerprintEmpty(t *testing.T) {
	hash := testutil.MustValue(Fingerprint(&ast.Ast{}))(t)

	if hash.Root == "" {
		t.Error("expected non-empty root hash for empty schema")
	}
	if len(hash.Tables) != 0 {
		t.Errorf("expected 0 tables, got %d", len(hash.Tables))
	}
}

func TestFingerprintBlog(t *testing.T) {
	hash := fingerprint(t, testutil.Fixture(t, "blog.uddl"))

	if len(hash.Tables) != 5 {
		t.Fatalf("expected 5 tables, got %d", len(hash.Tables))
	}

	users := hash.Tables["users"]
	if users == nil {
		t.Fatal("expected users table hash")
	}
	if len(users.Columns) != 4 {
		t.Errorf("users: expected 4 column hashes, got %d", len(users.Columns))
	}
	for _, key := range []string{"primary key", "unique (email)"} {
		if _, ok := users.Keys[key]; !ok {
			t.Errorf("users: missing key %q in %v", key, users.Keys)
		}
	}

	comments := hash.Tables["comments"]
	for _, fk := range []string{"comments_post_fk", "comments_author_id_fk_users"} {
		if _, ok := comments.FKs[fk]; !ok {
			t.Errorf("comments: missing foreign key %q in %v", fk, comments.FKs)
		}
	}
	if _, ok := comments.Indexes["comments_post_idx"]; !ok {
		t.Errorf("comments: missing index in %v", comments.Indexes)
	}

	postTags := hash.Tables["post_tags"]
	if len(postTags.FKs) != 2 {
		t.Errorf("post_tags: expected 2 foreign keys, got %v", postTags.FKs)
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	src := testutil.Fixture(t, "blog.uddl")

	first := fingerprint(t, src)
	for i := 0; i < 5; i++ {
		if got := fingerprint(t, src); got.Root != first.Root {
			t.Fatalf("run %d: root changed from %s to %s", i, first.Root, got.Root)
		}
	}
}

func TestFingerprintIgnoresCommentsAndOrder(t *testing.T) {
	a := `
create table a (x int not null, y text);
create table b (id int primary key);
`
	b := `
-- tables
create table b (
  id int primary key -- identifier
);
create table a (
  y text, -- free text
  x int not null
);
`
	if ha, hb := fingerprint(t, a), fingerprint(t, b); ha.Root != hb.Root {
		t.Errorf("expected equal roots, got %s and %s", ha.Root, hb.Root)
	}
}

func TestFingerprintSensitivity(t *testing.T) {
	base := "create table t (id int primary key, name varchar(10) not null default 'x');"

	tests := []struct {
		name string
		src  string
	}{
		{"type", "create table t (id int primary key, name text not null default 'x');"},
		{"type args", "create table t (id int primary key, name varchar(20) not null default 'x');"},
		{"nullability", "create table t (id int primary key, name varchar(10) default 'x');"},
		{"default", "create table t (id int primary key, name varchar(10) not null default 'y');"},
		{"unique", "create table t (id int primary key, name varchar(10) not null unique default 'x');"},
		{"primary key", "create table t (id int, name varchar(10) not null default 'x', primary key (id, name));"},
		{"table name", "create table u (id int primary key, name varchar(10) not null default 'x');"},
	}

	baseRoot := fingerprint(t, base).Root
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fingerprint(t, tt.src).Root; got == baseRoot {
				t.Errorf("expected root to change")
			}
		})
	}
}

func TestFingerprintInvalidSchema(t *testing.T) {
	tree := testutil.MustValue(parser.Parse("create table a (x int references missing (id));"))(t)

	if _, err := Fingerprint(tree); err == nil {
		t.Fatal("expected error for an unknown referenced table")
	}
}

// -----------------------------------------------------------------------------
// Compare
// -----------------------------------------------------------------------------

func TestCompareIdentical(t *testing.T) {
	src := testutil.Fixture(t, "blog.uddl")
	c := diff(t, src, src)

	if !c.Match {
		t.Fatal("expected schemas to match")
	}
	if c.OldRoot != c.NewRoot {
		t.Errorf("expected equal roots")
	}
	if len(c.TableDiffs) != 0 || len(c.AddedTables) != 0 || len(c.RemovedTables) != 0 {
		t.Errorf("expected no differences, got %+v", c)
	}
}

func TestCompareTables(t *testing.T) {
	c := diff(t,
		"create table a (x int); create table b (x int);",
		"create table b (x int); create table c (x int); create table d (x int);",
	)

	if c.Match {
		t.Fatal("expected schemas to differ")
	}
	if !slices.Equal(c.AddedTables, []string{"c", "d"}) {
		t.Errorf("AddedTables = %v", c.AddedTables)
	}
	if !slices.Equal(c.RemovedTables, []string{"a"}) {
		t.Errorf("RemovedTables = %v", c.RemovedTables)
	}
	if len(c.TableDiffs) != 0 {
		t.Errorf("expected no changed tables, got %v", c.ChangedTables())
	}
}

func TestCompareColumns(t *testing.T) {
	c := diff(t,
		"create table t (a int, b int, c int);",
		"create table t (a int, b bigint, d int);",
	)

	td := c.TableDiffs["t"]
	if td == nil {
		t.Fatalf("expected a diff for t, got %v", c.ChangedTables())
	}
	if !td.HasDifferences() {
		t.Error("expected HasDifferences")
	}
	testutil.AssertEqual(t, strings.Join(td.Columns.Added, ","), "d")
	testutil.AssertEqual(t, strings.Join(td.Columns.Removed, ","), "c")
	testutil.AssertEqual(t, strings.Join(td.Columns.Modified, ","), "b")
	testutil.AssertTrue(t, td.Keys.Empty(), "keys should not change")
}

func TestCompareConstraints(t *testing.T) {
	oldSrc := `
create table p (id int primary key);
create table t (
  id int primary key,
  p_id int references p (id) on delete cascade
);
`
	newSrc := `
create table p (id int primary key);
create table t (
  id int primary key,
  p_id int references p (id) on delete set null,
  code int unique
);
create index t_p_idx on t (p_id);
`
	td := diff(t, oldSrc, newSrc).TableDiffs["t"]
	if td == nil {
		t.Fatal("expected a diff for t")
	}

	testutil.AssertEqual(t, strings.Join(td.ForeignKeys.Modified, ","), "t_p_id_fk_p")
	testutil.AssertEqual(t, strings.Join(td.Keys.Added, ","), "unique (code)")
	testutil.AssertEqual(t, strings.Join(td.Indexes.Added, ","), "t_p_idx")
	testutil.AssertEqual(t, strings.Join(td.Columns.Added, ","), "code")
}

func TestSummarize(t *testing.T) {
	c := diff(t,
		"create table a (x int); create table b (x int);",
		"create table b (x text); create table c (x int);",
	)

	s := Summarize(c)
	testutil.AssertEqual(t, s, Summary{Added: 1, Removed: 1, Modified: 1})
	testutil.AssertEqual(t, FormatSummary(s), "1 added, 1 removed, 1 changed")
	testutil.AssertEqual(t, FormatSummary(Summarize(nil)), "no table changes")
}

// -----------------------------------------------------------------------------
// Messages
// -----------------------------------------------------------------------------

func TestFormatComparison(t *testing.T) {
	c := diff(t,
		"create table a (x int); create table b (x int, y int);",
		"create table b (x text, z int); create table c (x int);",
	)

	out := FormatComparison(c)
	for _, want := range []string{
		"Schemas differ",
		"+ c",
		"- a",
		"b:",
		"Columns:",
		"+ z",
		"- y",
		"~ x",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatComparisonIdentical(t *testing.T) {
	c := diff(t, "create table a (x int);", "create table a (x int);")

	out := FormatComparison(c)
	if !strings.HasPrefix(out, "Schemas are identical (") {
		t.Errorf("unexpected output: %q", out)
	}
	if !strings.Contains(out, c.OldRoot[:12]) {
		t.Errorf("expected truncated hash in %q", out)
	}
}

func TestTruncateHash(t *testing.T) {
	testutil.AssertEqual(t, truncateHash("abc"), "abc")
	testutil.AssertEqual(t, truncateHash("0123456789abcdef"), "0123456789ab")
}
