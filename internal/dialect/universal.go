package dialect

import (
	"strconv"
	"strings"

	"github.com/hlop3z/uddl/internal/alerr"
	"github.com/hlop3z/uddl/internal/ast"
	"github.com/hlop3z/uddl/internal/strutil"
)

// universalSections renders the neutral dialect. Parsing its output gives
// back the same tree, comments included.
func universalSections() Sections {
	return Sections{
		Ast: AstSection{Ast: renderAst},
		Orders: OrderSection{
			CreateTable: renderCreateTable,
			AlterTable:  renderAlterTable,
			CreateIndex: renderCreateIndex,
			Comment: func(_ *Context, n *ast.StandaloneComment) (Piece, error) {
				return standaloneComment(n.Text), nil
			},
		},
		TableEntries: TableEntrySection{
			Column: func(cx *Context, n *ast.Column) (Piece, error) {
				return cx.ColumnPiece(n, ast.FormatType(n.Type, n.TypeArgs), n.Constraints)
			},
			Constraint: renderTableConstraintComposition,
			Comment: func(_ *Context, n *ast.StandaloneTableComment) (Piece, error) {
				return standaloneComment(n.Text), nil
			},
		},
		ColumnChildren: ColumnChildrenSection{Constraints: renderColumnConstraints},
		TableConstraints: TableConstraintSection{
			PrimaryKey: func(_ *Context, n *ast.PrimaryKeyConstraint) (string, error) {
				return "primary key (" + strutil.JoinColumns(n.Columns) + ")", nil
			},
			Unique: func(_ *Context, n *ast.UniqueConstraint) (string, error) {
				return "unique (" + strutil.JoinColumns(n.Columns) + ")", nil
			},
			ForeignKey: func(_ *Context, n *ast.ForeignKeyConstraint) (string, error) {
				var refs string
				if n.ReferencedColumns != nil {
					refs = " (" + strutil.JoinColumns(n.ReferencedColumns) + ")"
				}
				return "foreign key (" + strutil.JoinColumns(n.Columns) + ") references " +
					n.ReferencedTable + refs + actions(n.OnDelete, n.OnUpdate), nil
			},
		},
		ColumnConstraints: ColumnConstraintSection{
			NotNull:       keyword[*ast.NotNull]("not null"),
			Null:          keyword[*ast.Null]("null"),
			PrimaryKey:    keyword[*ast.PrimaryKey]("primary key"),
			Unique:        keyword[*ast.Unique]("unique"),
			Autoincrement: keyword[*ast.Autoincrement]("autoincrement"),
			Default: func(cx *Context, n *ast.Default) (string, error) {
				v, err := cx.Value(n.Value)
				if err != nil {
					return "", err
				}
				return "default " + v, nil
			},
			ForeignKey: func(_ *Context, n *ast.ColumnForeignKey) (string, error) {
				var ref string
				if n.ReferencedColumn != "" {
					ref = " (" + n.ReferencedColumn + ")"
				}
				return "references " + n.ReferencedTable + ref + actions(n.OnDelete, n.OnUpdate), nil
			},
			Value: func(_ *Context, v ast.Value) (string, error) {
				return renderValue(v, strutil.QuoteLiteral)
			},
		},
	}
}

func keyword[N any](word string) func(*Context, N) (string, error) {
	return func(*Context, N) (string, error) { return word, nil }
}

func actions(onDelete, onUpdate ast.FKAction) string {
	var b strings.Builder
	if onDelete != "" {
		b.WriteString(" on delete " + string(onDelete))
	}
	if onUpdate != "" {
		b.WriteString(" on update " + string(onUpdate))
	}
	return b.String()
}

// renderValue renders a literal, quoting strings with quote.
func renderValue(v ast.Value, quote func(string) string) (string, error) {
	switch v.Kind {
	case ast.ValueInt:
		return strconv.FormatInt(v.Int, 10), nil
	case ast.ValueFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64), nil
	case ast.ValueString:
		return quote(v.Text), nil
	case ast.ValueSQLExpr:
		return v.Text, nil
	}
	return "", alerr.Contract("unexpected value kind %d", v.Kind)
}

// -----------------------------------------------------------------------------
// Orders
// -----------------------------------------------------------------------------

func renderAst(cx *Context, n *ast.Ast) (Piece, error) {
	lines := make([]Piece, 0, len(n.Orders))
	for _, o := range n.Orders {
		p, err := cx.Order(o)
		if err != nil {
			return nil, err
		}
		lines = append(lines, p)
	}
	return &Block{Lines: lines}, nil
}

func renderCreateTable(cx *Context, n *ast.CreateTable) (Piece, error) {
	entries, err := cx.Entries(n.Entries)
	if err != nil {
		return nil, err
	}
	appendSuffix(entries, ",", "")

	var first, last string
	if len(n.InlineComment) > 0 {
		first = strings.TrimSpace(n.InlineComment[0])
		last = strutil.JoinInlineComments(n.InlineComment[1:])
	}
	return &Block{Lines: []Piece{
		blockComment(n.BlockComment),
		&Inline{Code: "create table " + n.Name + " (", Comment: first},
		&Block{Indent: 1, Lines: entries},
		&Inline{Code: ");", Comment: last},
	}}, nil
}

func renderAlterTable(cx *Context, n *ast.AlterTable) (Piece, error) {
	entries, err := cx.Entries(n.Add)
	if err != nil {
		return nil, err
	}
	comment := strutil.JoinInlineComments(n.InlineComment)
	code := "alter table " + n.Table + " add"

	if line := tryInline(entries, comment); line != nil && line.Code != "" {
		line.Code = code + " " + line.Code + ";"
		return &Block{Lines: []Piece{blockComment(n.BlockComment), line}}, nil
	}
	appendSuffix(entries, ",", ";")
	return &Block{Lines: []Piece{
		blockComment(n.BlockComment),
		&Inline{Code: code, Comment: comment},
		&Block{Indent: 1, Lines: entries},
	}}, nil
}

func renderCreateIndex(_ *Context, n *ast.CreateIndex) (Piece, error) {
	if n.Index == nil {
		return nil, alerr.Contract("create index on %q without columns", n.Table)
	}
	var b strings.Builder
	b.WriteString("create")
	if n.Index.Unique {
		b.WriteString(" unique")
	}
	b.WriteString(" index")
	if n.Name != "" {
		b.WriteString(" " + n.Name)
	}
	b.WriteString(" on " + n.Table + " (" + strutil.JoinColumns(n.Index.Columns) + ");")
	return &Block{Lines: []Piece{
		blockComment(n.BlockComment),
		&Inline{Code: b.String(), Comment: strutil.JoinInlineComments(n.InlineComment)},
	}}, nil
}

// -----------------------------------------------------------------------------
// Constraints
// -----------------------------------------------------------------------------

func renderTableConstraintComposition(cx *Context, n *ast.TableConstraintComposition) (Piece, error) {
	parts := make([]string, 0, len(n.Constraints)+1)
	if n.Name != "" {
		parts = append(parts, "constraint "+n.Name)
	}
	for _, c := range n.Constraints {
		code, err := cx.TableConstraint(c)
		if err != nil {
			return nil, err
		}
		parts = append(parts, code)
	}
	return &Block{Lines: []Piece{
		blockComment(n.BlockComment),
		&Inline{Code: strings.Join(parts, " "), Comment: strutil.JoinInlineComments(n.InlineComment)},
	}}, nil
}

func renderColumnConstraints(cx *Context, compos []*ast.ColumnConstraintComposition) (string, error) {
	var parts []string
	for _, compo := range compos {
		if compo.Name != "" {
			parts = append(parts, "constraint "+compo.Name)
		}
		for _, c := range compo.Constraints {
			code, err := cx.ColumnConstraint(c)
			if err != nil {
				return "", err
			}
			if code != "" {
				parts = append(parts, code)
			}
		}
	}
	return strings.Join(parts, " "), nil
}
