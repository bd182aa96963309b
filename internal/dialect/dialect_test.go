package dialect

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/hlop3z/uddl/internal/alerr"
	"github.com/hlop3z/uddl/internal/ast"
	"github.com/hlop3z/uddl/internal/parser"
	"github.com/hlop3z/uddl/internal/testutil"
)

func generate(t *testing.T, src, dialect string, opts ...Option) string {
	t.Helper()
	tree := testutil.MustValue(parser.Parse(src))(t)
	return testutil.MustValue(Generate(tree, dialect, opts...))(t)
}

// -----------------------------------------------------------------------------
// Universal round trip
// -----------------------------------------------------------------------------

var roundTrips = []string{
	"create table t1 (\n  a integer\n);",

	"create table t1 (\n  a integer\n);\n\ncreate table t2 (\n  a integer\n);",

	"alter table t1 add constraint u1 unique (a);",
	"alter table t1 add unique (a);",
	"alter table t1 add unique (a); -- inline com",
	"-- block com\nalter table t1 add unique (a); -- inline com",
	"alter table t1 add unique (a); -- inline com\n\n-- block com",

	"create table t1 (\n  a bigint not null primary key autoincrement\n);",
	"create table t1 (\n  a bigint not null primary key references t2 (a)\n);",
	"create table t1 (\n  a bigint not null primary key references t2\n);",
	"create table t1 (\n  primary key (a)\n);",
	"create table t1 (\n  foreign key (a) references t2 (a)\n);",
	"create table t1 (\n  foreign key (a) references t2\n);",

	`-- A
-- B

-- C
-- D

create table t1 (
  -- E
  -- F

  a varchar(20),

  -- G
  -- H

  b varchar(20)

  -- I
  -- J
);

-- K
-- L

-- M
-- N`,

	"create table t1 ( -- first\n  a integer, -- col a\n  b decimal(8,2) default 1.5\n); -- last",
	"create table t1 (\n  a integer constraint a_pk primary key,\n  b varchar(10) not null constraint b_u unique default 'it''s'\n);",
	"create table t1 (\n  a timestamp default current_timestamp,\n  b integer references t2 (id) on delete cascade on update set null\n);",
	"create unique index idx1 on t1 (a, b); -- idx",
	"create index on t1 (a);",
	"-- one\n--\n-- two\ncreate table t1 (\n  -- about a\n  a integer\n);",
	"alter table t1 add\n  -- about b\n  b integer,\n  constraint u1 unique (b);",
}

func TestUniversalRoundTrip(t *testing.T) {
	for i, src := range roundTrips {
		t.Run(fmt.Sprintf("input #%d", i), func(t *testing.T) {
			testutil.AssertDDL(t, generate(t, src, Universal), src)
		})
	}
}

func TestUniversalRoundTripFixtures(t *testing.T) {
	for _, name := range []string{"blog.uddl", "cycle.uddl"} {
		t.Run(name, func(t *testing.T) {
			src := strings.TrimRight(testutil.Fixture(t, name), "\n")
			testutil.AssertDDL(t, generate(t, src, Universal), src)
		})
	}
}

func TestGenerateBlogGolden(t *testing.T) {
	tree := testutil.MustValue(parser.Parse(testutil.Fixture(t, "blog.uddl")))(t)

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			got := testutil.MustValue(Generate(tree, name))(t)
			testutil.Golden(t, "blog_"+name, got)
		})
	}
}

func TestUniversalAliases(t *testing.T) {
	src := "create table t1 (\n  a integer\n);"
	for _, name := range []string{"universal", "universalddl", "UniversalDDL"} {
		t.Run(name, func(t *testing.T) {
			testutil.AssertDDL(t, generate(t, src, name), src)
		})
	}
}

func TestIndentOption(t *testing.T) {
	got := generate(t, "create table t1 (a integer);", Universal, WithIndent("\t"))
	testutil.AssertDDL(t, got, "create table t1 (\n\ta integer\n);")
}

// -----------------------------------------------------------------------------
// PostgreSQL
// -----------------------------------------------------------------------------

func TestPostgresql(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			"serial",
			"create table t1 (a integer not null autoincrement);",
			"create table t1 (\n  a serial\n);",
		},
		{
			"bigserial keeps other constraints",
			"create table t1 (a bigint not null primary key autoincrement);",
			"create table t1 (\n  a bigserial primary key\n);",
		},
		{
			"tinyint",
			"create table t1 (a tinyint);",
			"create table t1 (\n  a smallint\n);",
		},
		{
			"string literal",
			"create table t1 (a text default 'it''s');",
			"create table t1 (\n  a text default 'it''s'\n);",
		},
		{
			"backslash literal",
			`create table t1 (a text default 'a\b');`,
			"create table t1 (\n  a text default E'a\\\\b'\n);",
		},
		{
			"column foreign key kept inline",
			"create table t1 (a integer references t2 (b));",
			"create table t1 (\n  a integer references t2 (b)\n);",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertDDL(t, generate(t, tt.src, "postgresql"), tt.want)
		})
	}
}

func TestPostgresqlAutoincrementErrors(t *testing.T) {
	tests := []struct {
		src string
		msg string
	}{
		{"create table t1 (a integer autoincrement);", "Constraint 'not null' is required with 'autoincrement' for Postgresql"},
		{"create table t1 (a smallint not null autoincrement);", "Constraint 'autoincrement' must be used with 'not null' and 'integer' or 'bigint' for Postgresql"},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			tree := testutil.MustValue(parser.Parse(tt.src))(t)
			_, err := Generate(tree, "postgres")
			testutil.AssertError(t, err, alerr.ErrGeneration)
			testutil.AssertErrorContains(t, err, tt.msg)
		})
	}
}

// -----------------------------------------------------------------------------
// SQLite
// -----------------------------------------------------------------------------

func TestSQLite(t *testing.T) {
	got := generate(t, "create table t1 (a bigint not null autoincrement);", "sqlite")
	testutil.AssertDDL(t, got, "create table t1 (\n  a integer not null autoincrement\n);")

	got = generate(t, "create table t1 (a integer not null autoincrement);", "sqlite3")
	testutil.AssertDDL(t, got, "create table t1 (\n  a integer not null autoincrement\n);")
}

func TestSQLiteAutoincrementOnText(t *testing.T) {
	tree := testutil.MustValue(parser.Parse("create table t1 (a varchar(20) autoincrement);"))(t)
	_, err := Generate(tree, "sqlite")
	testutil.AssertError(t, err, alerr.ErrGeneration)
	testutil.AssertErrorContains(t, err,
		"Constraint 'autoincrement' on column 'a' should be used with an 'integer' data type (current: 'varchar') with SQLite")
}

// -----------------------------------------------------------------------------
// MariaDB
// -----------------------------------------------------------------------------

func TestMariaDB(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			"auto_increment",
			"create table t1 (a integer not null primary key autoincrement);",
			"create table t1 (\n  a integer not null primary key auto_increment\n);",
		},
		{
			"foreign key moved",
			"create table t1 (a integer references t2 (b));",
			"create table t1 (\n  a integer,\n  foreign key (a) references t2 (b)\n);",
		},
		{
			"foreign key moved with not null",
			"create table t1 (a integer not null references t2 (b) on delete cascade);",
			"create table t1 (\n  a integer not null,\n  foreign key (a) references t2 (b) on delete cascade\n);",
		},
		{
			"foreign key without referenced column",
			"create table t1 (a integer references t2);",
			"create table t1 (\n  a integer,\n  foreign key (a) references t2 (a)\n);",
		},
		{
			"named foreign key",
			"create table t1 (a integer constraint a_fk references t2, b text);",
			"create table t1 (\n  a integer,\n  b text,\n  constraint a_fk foreign key (a) references t2 (a)\n);",
		},
		{
			"table foreign key without referenced columns",
			"create table t1 (a integer, b integer, foreign key (a, b) references t2);",
			"create table t1 (\n  a integer,\n  b integer,\n  foreign key (a, b) references t2 (a, b)\n);",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertDDL(t, generate(t, tt.src, "mysql"), tt.want)
		})
	}
}

// -----------------------------------------------------------------------------
// Drop statements and dispatch
// -----------------------------------------------------------------------------

func TestDropStatements(t *testing.T) {
	src := "create table t1 (a integer);\ncreate table t2 (a integer);"
	body := "create table t1 (\n  a integer\n);\n\ncreate table t2 (\n  a integer\n);"

	tests := []struct {
		dialect string
		drop    string
	}{
		{"postgresql", "drop table if exists t2 cascade;\ndrop table if exists t1 cascade;\n\n"},
		{"mariadb", "drop table if exists t2 cascade;\ndrop table if exists t1 cascade;\n\n"},
		{"sqlite", "drop table if exists t2;\ndrop table if exists t1;\n\n"},
		{"universal", ""},
	}

	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			testutil.AssertDDL(t, generate(t, src, tt.dialect, WithDrop(true)), tt.drop+body)
		})
	}
}

func TestUnknownDialect(t *testing.T) {
	_, err := Generate(&ast.Ast{}, "postgre")
	testutil.AssertError(t, err, alerr.ErrUnknownDialect)
	testutil.AssertErrorContains(t, err, "Unknown dialect: postgre")

	d, err := Get("postgre")
	testutil.AssertTrue(t, d == nil, "no dialect expected")
	e := err.(*alerr.Error)
	if helps := e.Helps(); len(helps) != 1 || helps[0] != "did you mean 'postgresql'?" {
		t.Errorf("helps = %v", helps)
	}
}

func TestIncompleteDialect(t *testing.T) {
	s := universalSections()
	s.ColumnConstraints.Unique = nil
	d := &Dialect{Name: "partial", Sections: s}

	tree := testutil.MustValue(parser.Parse("create table t1 (a integer unique);"))(t)
	_, err := d.Generate(tree)
	testutil.AssertError(t, err, alerr.ErrContract)
	testutil.AssertErrorContains(t, err, "unique")
}

func TestGenerateDoesNotModifyTree(t *testing.T) {
	tree := testutil.MustValue(parser.Parse("create table t1 (a tinyint references t2 (b));"))(t)
	before := ast.Clone(tree)

	for _, name := range Names() {
		testutil.MustValue(Generate(tree, name))(t)
	}
	col := ast.Columns(tree.Orders[0].(*ast.CreateTable).Entries)[0]
	testutil.AssertEqual(t, col.Type, ast.TypeTinyint)
	testutil.AssertTrue(t, col.HasConstraint(ast.KindColumnForeignKey), "foreign key must stay on the column")
	testutil.AssertEqual(t, len(tree.Orders), len(before.Orders))
}

func TestGenerateAll(t *testing.T) {
	tree := testutil.MustValue(parser.Parse("create table t1 (a tinyint not null);"))(t)

	out := testutil.MustValue(GenerateAll(context.Background(), tree, []string{"universal", "postgres", "sqlite"}))(t)
	testutil.AssertEqual(t, len(out), 3)
	testutil.AssertDDL(t, out["universal"], "create table t1 (\n  a tinyint not null\n);")
	testutil.AssertDDL(t, out["postgres"], "create table t1 (\n  a smallint not null\n);")
	testutil.AssertDDL(t, out["sqlite"], "create table t1 (\n  a tinyint not null\n);")

	_, err := GenerateAll(context.Background(), tree, []string{"sqlite", "oracle"})
	testutil.AssertError(t, err, alerr.ErrUnknownDialect)

	bad := testutil.MustValue(parser.Parse("create table t1 (a integer autoincrement);"))(t)
	_, err = GenerateAll(context.Background(), bad, []string{"universal", "postgresql"})
	testutil.AssertError(t, err, alerr.ErrGeneration)
}
