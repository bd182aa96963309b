package parser

import (
	"errors"
	"slices"
	"testing"

	"github.com/hlop3z/uddl/internal/alerr"
	"github.com/hlop3z/uddl/internal/ast"
	"github.com/hlop3z/uddl/internal/testutil"
)

func mustParse(t *testing.T, src string) *ast.Ast {
	t.Helper()
	return testutil.MustValue(Parse(src))(t)
}

// -----------------------------------------------------------------------------
// Statements
// -----------------------------------------------------------------------------

func TestParseCreateTable(t *testing.T) {
	tree := mustParse(t, `create table t1 (
  id bigint not null primary key autoincrement,
  name varchar(50) unique,
  price decimal(8,2) default 1.5,
  t2_id integer references t2 (id) on delete cascade on update set null
);`)

	testutil.AssertEqual(t, len(tree.Orders), 1)
	ct := tree.Orders[0].(*ast.CreateTable)
	testutil.AssertEqual(t, ct.Name, "t1")
	cols := ast.Columns(ct.Entries)
	testutil.AssertEqual(t, len(cols), 4)

	id := cols[0]
	testutil.AssertEqual(t, id.Type, ast.TypeBigint)
	testutil.AssertEqual(t, len(id.Constraints), 1)
	kinds := make([]ast.Kind, 0)
	for _, c := range id.ColumnConstraints() {
		kinds = append(kinds, c.Kind())
	}
	if !slices.Equal(kinds, []ast.Kind{ast.KindNotNull, ast.KindPrimaryKey, ast.KindAutoincrement}) {
		t.Errorf("id constraints = %v", kinds)
	}

	testutil.AssertEqual(t, cols[1].SQLType(), "varchar(50)")
	testutil.AssertTrue(t, cols[1].HasConstraint(ast.KindUnique), "name should be unique")

	testutil.AssertEqual(t, cols[2].SQLType(), "decimal(8,2)")
	def := cols[2].FindConstraint(ast.KindDefault).(*ast.Default)
	testutil.AssertEqual(t, def.Value, ast.FloatValue(1.5))

	fk := cols[3].FindConstraint(ast.KindColumnForeignKey).(*ast.ColumnForeignKey)
	testutil.AssertEqual(t, *fk, ast.ColumnForeignKey{
		ReferencedTable:  "t2",
		ReferencedColumn: "id",
		OnDelete:         ast.ActionCascade,
		OnUpdate:         ast.ActionSetNull,
	})
}

func TestParseTableConstraints(t *testing.T) {
	tree := mustParse(t, `create table t1 (
  a integer,
  b integer,
  primary key (a),
  constraint u1 unique (a, b),
  constraint fk1 foreign key (a, b) references t2 (c, d) on delete no action on update restrict,
  foreign key (b) references t3 on delete set default
);`)

	entries := tree.Orders[0].(*ast.CreateTable).Entries
	testutil.AssertEqual(t, len(entries), 6)

	pk := entries[2].(*ast.TableConstraintComposition)
	testutil.AssertEqual(t, pk.Name, "")
	if cols := pk.Constraints[0].(*ast.PrimaryKeyConstraint).Columns; !slices.Equal(cols, []string{"a"}) {
		t.Errorf("pk columns = %v", cols)
	}

	u := entries[3].(*ast.TableConstraintComposition)
	testutil.AssertEqual(t, u.Name, "u1")
	if cols := u.Constraints[0].(*ast.UniqueConstraint).Columns; !slices.Equal(cols, []string{"a", "b"}) {
		t.Errorf("unique columns = %v", cols)
	}

	fk1 := entries[4].(*ast.TableConstraintComposition)
	testutil.AssertEqual(t, fk1.Name, "fk1")
	fk := fk1.Constraints[0].(*ast.ForeignKeyConstraint)
	testutil.AssertEqual(t, fk.ReferencedTable, "t2")
	testutil.AssertEqual(t, fk.OnDelete, ast.ActionNoAction)
	testutil.AssertEqual(t, fk.OnUpdate, ast.ActionRestrict)
	if !slices.Equal(fk.ReferencedColumns, []string{"c", "d"}) {
		t.Errorf("referenced columns = %v", fk.ReferencedColumns)
	}

	fk2 := entries[5].(*ast.TableConstraintComposition).Constraints[0].(*ast.ForeignKeyConstraint)
	testutil.AssertTrue(t, fk2.ReferencedColumns == nil, "omitted referenced columns must stay nil")
	testutil.AssertEqual(t, fk2.OnDelete, ast.ActionSetDefault)
}

func TestParseColumnConstraintCompositions(t *testing.T) {
	tree := mustParse(t, "create table t1 (a integer not null constraint c1 unique default 1);")
	col := ast.Columns(tree.Orders[0].(*ast.CreateTable).Entries)[0]

	testutil.AssertEqual(t, len(col.Constraints), 2)
	testutil.AssertEqual(t, col.Constraints[0].Name, "")
	testutil.AssertEqual(t, len(col.Constraints[0].Constraints), 1)
	testutil.AssertEqual(t, col.Constraints[1].Name, "c1")
	testutil.AssertEqual(t, len(col.Constraints[1].Constraints), 2)
}

func TestParseDefaultValues(t *testing.T) {
	tests := []struct {
		src  string
		want ast.Value
	}{
		{"12", ast.IntValue(12)},
		{"-3", ast.IntValue(-3)},
		{"0.25", ast.FloatValue(0.25)},
		{"'it''s'", ast.StringValue("it's")},
		{"CURRENT_TIMESTAMP", ast.SQLExpr("current_timestamp")},
		{"current_date", ast.SQLExpr("current_date")},
		{"null", ast.SQLExpr("null")},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			tree := mustParse(t, "create table t (a text default "+tt.src+");")
			col := ast.Columns(tree.Orders[0].(*ast.CreateTable).Entries)[0]
			testutil.AssertEqual(t, col.FindConstraint(ast.KindDefault).(*ast.Default).Value, tt.want)
		})
	}
}

func TestParseAlterTable(t *testing.T) {
	tree := mustParse(t, "alter table t1 add constraint u1 unique (a);")
	at := tree.Orders[0].(*ast.AlterTable)
	testutil.AssertEqual(t, at.Table, "t1")
	testutil.AssertEqual(t, len(at.Add), 1)
	testutil.AssertEqual(t, at.Add[0].(*ast.TableConstraintComposition).Name, "u1")

	tree = mustParse(t, "alter table t1 add b integer, add_c text;")
	at = tree.Orders[0].(*ast.AlterTable)
	testutil.AssertEqual(t, len(ast.Columns(at.Add)), 2)
}

func TestParseCreateIndex(t *testing.T) {
	tests := []struct {
		src    string
		name   string
		unique bool
		cols   []string
	}{
		{"create index on t1 (a);", "", false, []string{"a"}},
		{"create index idx1 on t1 (a, b);", "idx1", false, []string{"a", "b"}},
		{"create unique index u_idx on t1 (b);", "u_idx", true, []string{"b"}},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			ci := mustParse(t, tt.src).Orders[0].(*ast.CreateIndex)
			testutil.AssertEqual(t, ci.Table, "t1")
			testutil.AssertEqual(t, ci.Name, tt.name)
			testutil.AssertEqual(t, ci.Index.Unique, tt.unique)
			if !slices.Equal(ci.Index.Columns, tt.cols) {
				t.Errorf("columns = %v, want %v", ci.Index.Columns, tt.cols)
			}
		})
	}
}

func TestParseKeywordsIgnoreCase(t *testing.T) {
	tree := mustParse(t, "CREATE TABLE Users (Id INTEGER NOT NULL PRIMARY KEY);\nAlter Table Users Add Unique (Id);")
	ct := tree.Orders[0].(*ast.CreateTable)
	testutil.AssertEqual(t, ct.Name, "Users")
	col := ast.Columns(ct.Entries)[0]
	testutil.AssertEqual(t, col.Name, "Id")
	testutil.AssertEqual(t, col.Type, ast.TypeInteger)
	testutil.AssertEqual(t, tree.Orders[1].Kind(), ast.KindAlterTable)
}

// -----------------------------------------------------------------------------
// Comments
// -----------------------------------------------------------------------------

func TestParseStandaloneComments(t *testing.T) {
	tree := mustParse(t, "-- a\n-- b\n\n-- c\n")
	testutil.AssertEqual(t, len(tree.Orders), 2)
	testutil.AssertEqual(t, tree.Orders[0].(*ast.StandaloneComment).Text, "a\nb")
	testutil.AssertEqual(t, tree.Orders[1].(*ast.StandaloneComment).Text, "c")
}

func TestParseEmptyCommentLine(t *testing.T) {
	tree := mustParse(t, "-- a\n--\n-- b")
	testutil.AssertEqual(t, len(tree.Orders), 1)
	testutil.AssertEqual(t, tree.Orders[0].(*ast.StandaloneComment).Text, "a\n\nb")
}

func TestParseMalformedComment(t *testing.T) {
	_, err := Parse("--wrong\ncreate table t (a integer);")
	testutil.AssertError(t, err, alerr.ErrSyntaxComment)
}

func TestParseTableInlineComments(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "after open and semicolon",
			src:  "create table t1 ( -- comment I #1\n  a integer\n); -- comment I #2",
			want: []string{"comment I #1", "comment I #2"},
		},
		{
			name: "close and semicolon on separate lines",
			src:  "create table t1 ( -- c1\n  a integer\n) -- c2\n; -- c3",
			want: []string{"c1", "c2", "c3"},
		},
		{
			name: "only after semicolon",
			src:  "create table t1 (\n  a integer\n); -- end",
			want: []string{"", "end"},
		},
		{
			name: "none",
			src:  "create table t1 (\n  a integer\n);",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct := mustParse(t, tt.src).Orders[0].(*ast.CreateTable)
			if !slices.Equal(ct.InlineComment, tt.want) {
				t.Errorf("inline = %q, want %q", ct.InlineComment, tt.want)
			}
			col := ast.Columns(ct.Entries)[0]
			testutil.AssertEqual(t, len(col.InlineComment), 0)
		})
	}
}

func TestParseColumnInlineComments(t *testing.T) {
	tree := mustParse(t, "create table t1 (\n  a -- c1\n  integer, -- c2\n  b integer -- c3\n);")
	cols := ast.Columns(tree.Orders[0].(*ast.CreateTable).Entries)
	if !slices.Equal(cols[0].InlineComment, []string{"c1", "c2"}) {
		t.Errorf("a inline = %q", cols[0].InlineComment)
	}
	if !slices.Equal(cols[1].InlineComment, []string{"c3"}) {
		t.Errorf("b inline = %q", cols[1].InlineComment)
	}
}

func TestParseCommentsBetweenTables(t *testing.T) {
	tree := mustParse(t, `create table t1 (
  a integer
);

-- comment I

-- comment II #1
-- comment II #2

-- comment III
create table t2 (
  b integer
);`)

	testutil.AssertEqual(t, len(tree.Orders), 4)
	testutil.AssertEqual(t, tree.Orders[0].Kind(), ast.KindCreateTable)
	testutil.AssertEqual(t, tree.Orders[1].(*ast.StandaloneComment).Text, "comment I")
	testutil.AssertEqual(t, tree.Orders[2].(*ast.StandaloneComment).Text, "comment II #1\ncomment II #2")
	t2 := tree.Orders[3].(*ast.CreateTable)
	testutil.AssertEqual(t, t2.Name, "t2")
	testutil.AssertEqual(t, t2.BlockComment, "comment III")
}

func TestParseCommentsInsideTable(t *testing.T) {
	tree := mustParse(t, `create table t1 (
  -- standalone

  -- block a
  a integer,
  b integer
  -- closing note
);`)

	entries := tree.Orders[0].(*ast.CreateTable).Entries
	testutil.AssertEqual(t, len(entries), 4)
	testutil.AssertEqual(t, entries[0].(*ast.StandaloneTableComment).Text, "standalone")
	testutil.AssertEqual(t, entries[1].(*ast.Column).BlockComment, "block a")
	testutil.AssertEqual(t, entries[2].(*ast.Column).BlockComment, "")
	testutil.AssertEqual(t, entries[3].(*ast.StandaloneTableComment).Text, "closing note")
}

func TestParseAlterComments(t *testing.T) {
	tree := mustParse(t, "-- block com\nalter table t1 add unique (a); -- inline com\n\n-- trailing")
	testutil.AssertEqual(t, len(tree.Orders), 2)
	at := tree.Orders[0].(*ast.AlterTable)
	testutil.AssertEqual(t, at.BlockComment, "block com")
	if !slices.Equal(at.InlineComment, []string{"inline com"}) {
		t.Errorf("inline = %q", at.InlineComment)
	}
	testutil.AssertEqual(t, tree.Orders[1].(*ast.StandaloneComment).Text, "trailing")
}

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

func TestParseSyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"unknown type", "create table t1 (a integr);", `unknown data type "integr"`},
		{"missing semicolon", "create table t1 (a integer)", "unexpected end of input"},
		{"unknown statement", "drop table t1;", `unexpected "drop"`},
		{"unterminated string", "create table t1 (a text default 'x);", "unterminated string literal"},
		{"malformed number", "create table t1 (a integer default 1x);", "malformed number"},
		{"stray character", "create table t1 (a integer @);", "unexpected character"},
		{"negative type argument", "create table t1 (a varchar(-1));", "expected type argument"},
		{"empty table", "create table t1 ();", "expected column name"},
		{"bad action", "create table t1 (a integer references t2 on delete nothing);", "expected referential action"},
		{"missing default value", "create table t1 (a integer default);", "expected default value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			testutil.AssertError(t, err, alerr.ErrSyntax)
			testutil.AssertErrorContains(t, err, tt.msg)
		})
	}
}

func TestParseErrorLocation(t *testing.T) {
	_, err := ParseFile("schema.uddl", "create table t1 (\n  a integr\n);")

	var e *alerr.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *alerr.Error, got %T", err)
	}
	file, line, col, ok := e.Location()
	testutil.AssertTrue(t, ok, "location should be set")
	testutil.AssertEqual(t, file, "schema.uddl")
	testutil.AssertEqual(t, line, 2)
	testutil.AssertEqual(t, col, 5)
	testutil.AssertEqual(t, e.GetContext()["source"], any("  a integr"))
	if helps := e.Helps(); len(helps) != 1 || helps[0] != "did you mean 'integer'?" {
		t.Errorf("helps = %v", helps)
	}
}
