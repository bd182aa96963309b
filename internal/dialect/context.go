package dialect

import (
	"github.com/hlop3z/uddl/internal/alerr"
	"github.com/hlop3z/uddl/internal/ast"
	"github.com/hlop3z/uddl/internal/strutil"
)

// Sections holds the render functions of a dialect, one per node variant.
// Dialects start from a copy of the universal sections and replace the
// entries where their syntax differs.
type Sections struct {
	Ast               AstSection
	Orders            OrderSection
	TableEntries      TableEntrySection
	ColumnChildren    ColumnChildrenSection
	TableConstraints  TableConstraintSection
	ColumnConstraints ColumnConstraintSection
}

type AstSection struct {
	Ast func(cx *Context, n *ast.Ast) (Piece, error)
}

type OrderSection struct {
	CreateTable func(cx *Context, n *ast.CreateTable) (Piece, error)
	AlterTable  func(cx *Context, n *ast.AlterTable) (Piece, error)
	CreateIndex func(cx *Context, n *ast.CreateIndex) (Piece, error)
	Comment     func(cx *Context, n *ast.StandaloneComment) (Piece, error)
}

type TableEntrySection struct {
	Column     func(cx *Context, n *ast.Column) (Piece, error)
	Constraint func(cx *Context, n *ast.TableConstraintComposition) (Piece, error)
	Comment    func(cx *Context, n *ast.StandaloneTableComment) (Piece, error)
}

// ColumnChildrenSection renders everything after the column type.
type ColumnChildrenSection struct {
	Constraints func(cx *Context, compos []*ast.ColumnConstraintComposition) (string, error)
}

type TableConstraintSection struct {
	PrimaryKey func(cx *Context, n *ast.PrimaryKeyConstraint) (string, error)
	Unique     func(cx *Context, n *ast.UniqueConstraint) (string, error)
	ForeignKey func(cx *Context, n *ast.ForeignKeyConstraint) (string, error)
}

type ColumnConstraintSection struct {
	NotNull       func(cx *Context, n *ast.NotNull) (string, error)
	Null          func(cx *Context, n *ast.Null) (string, error)
	Default       func(cx *Context, n *ast.Default) (string, error)
	PrimaryKey    func(cx *Context, n *ast.PrimaryKey) (string, error)
	Unique        func(cx *Context, n *ast.Unique) (string, error)
	Autoincrement func(cx *Context, n *ast.Autoincrement) (string, error)
	ForeignKey    func(cx *Context, n *ast.ColumnForeignKey) (string, error)
	Value         func(cx *Context, v ast.Value) (string, error)
}

// Context carries the sections and options of one generation.
type Context struct {
	Dialect  string
	Sections *Sections
	Options  Options
}

func (cx *Context) missing(section string, kind any) error {
	return alerr.Contract("dialect %s: no renderer for %v in section %s", cx.Dialect, kind, section)
}

// Ast renders the whole tree.
func (cx *Context) Ast(n *ast.Ast) (Piece, error) {
	if cx.Sections.Ast.Ast == nil {
		return nil, cx.missing("ast", ast.KindAst)
	}
	return cx.Sections.Ast.Ast(cx, n)
}

// Order renders one top-level order.
func (cx *Context) Order(o ast.Order) (Piece, error) {
	s := &cx.Sections.Orders
	switch n := o.(type) {
	case *ast.CreateTable:
		if s.CreateTable != nil {
			return s.CreateTable(cx, n)
		}
	case *ast.AlterTable:
		if s.AlterTable != nil {
			return s.AlterTable(cx, n)
		}
	case *ast.CreateIndex:
		if s.CreateIndex != nil {
			return s.CreateIndex(cx, n)
		}
	case *ast.StandaloneComment:
		if s.Comment != nil {
			return s.Comment(cx, n)
		}
	default:
		return nil, alerr.Contract("unknown order %T", o)
	}
	return nil, cx.missing("orders", o.Kind())
}

// Entry renders one table entry.
func (cx *Context) Entry(e ast.TableEntry) (Piece, error) {
	s := &cx.Sections.TableEntries
	switch n := e.(type) {
	case *ast.Column:
		if s.Column != nil {
			return s.Column(cx, n)
		}
	case *ast.TableConstraintComposition:
		if s.Constraint != nil {
			return s.Constraint(cx, n)
		}
	case *ast.StandaloneTableComment:
		if s.Comment != nil {
			return s.Comment(cx, n)
		}
	default:
		return nil, alerr.Contract("unknown table entry %T", e)
	}
	return nil, cx.missing("tableEntries", e.Kind())
}

// Entries renders a list of table entries.
func (cx *Context) Entries(entries []ast.TableEntry) ([]Piece, error) {
	pieces := make([]Piece, 0, len(entries))
	for _, e := range entries {
		p, err := cx.Entry(e)
		if err != nil {
			return nil, err
		}
		pieces = append(pieces, p)
	}
	return pieces, nil
}

// ColumnConstraints renders the constraint compositions of a column.
func (cx *Context) ColumnConstraints(compos []*ast.ColumnConstraintComposition) (string, error) {
	if cx.Sections.ColumnChildren.Constraints == nil {
		return "", cx.missing("columnChildren", "constraints")
	}
	return cx.Sections.ColumnChildren.Constraints(cx, compos)
}

// TableConstraint renders a table constraint without its name.
func (cx *Context) TableConstraint(c ast.TableConstraint) (string, error) {
	s := &cx.Sections.TableConstraints
	switch n := c.(type) {
	case *ast.PrimaryKeyConstraint:
		if s.PrimaryKey != nil {
			return s.PrimaryKey(cx, n)
		}
	case *ast.UniqueConstraint:
		if s.Unique != nil {
			return s.Unique(cx, n)
		}
	case *ast.ForeignKeyConstraint:
		if s.ForeignKey != nil {
			return s.ForeignKey(cx, n)
		}
	default:
		return "", alerr.Contract("unknown table constraint %T", c)
	}
	return "", cx.missing("tableConstraints", c.Kind())
}

// ColumnConstraint renders a column constraint without its name.
func (cx *Context) ColumnConstraint(c ast.ColumnConstraint) (string, error) {
	s := &cx.Sections.ColumnConstraints
	switch n := c.(type) {
	case *ast.NotNull:
		if s.NotNull != nil {
			return s.NotNull(cx, n)
		}
	case *ast.Null:
		if s.Null != nil {
			return s.Null(cx, n)
		}
	case *ast.Default:
		if s.Default != nil {
			return s.Default(cx, n)
		}
	case *ast.PrimaryKey:
		if s.PrimaryKey != nil {
			return s.PrimaryKey(cx, n)
		}
	case *ast.Unique:
		if s.Unique != nil {
			return s.Unique(cx, n)
		}
	case *ast.Autoincrement:
		if s.Autoincrement != nil {
			return s.Autoincrement(cx, n)
		}
	case *ast.ColumnForeignKey:
		if s.ForeignKey != nil {
			return s.ForeignKey(cx, n)
		}
	default:
		return "", alerr.Contract("unknown column constraint %T", c)
	}
	return "", cx.missing("columnConstraints", c.Kind())
}

// Value renders a literal.
func (cx *Context) Value(v ast.Value) (string, error) {
	if cx.Sections.ColumnConstraints.Value == nil {
		return "", cx.missing("columnConstraints", "value")
	}
	return cx.Sections.ColumnConstraints.Value(cx, v)
}

// ColumnPiece renders a column line with the given type text. Dialects
// overriding the column renderer call it with their own type and
// constraints.
func (cx *Context) ColumnPiece(n *ast.Column, typ string, compos []*ast.ColumnConstraintComposition) (Piece, error) {
	constraints, err := cx.ColumnConstraints(compos)
	if err != nil {
		return nil, err
	}
	code := n.Name + " " + typ
	if constraints != "" {
		code += " " + constraints
	}
	return &Block{Lines: []Piece{
		blockComment(n.BlockComment),
		&Inline{Code: code, Comment: strutil.JoinInlineComments(n.InlineComment)},
	}}, nil
}

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

// generationError reports a node the dialect cannot express.
func (cx *Context) generationError(format string, args ...any) *alerr.Error {
	return alerr.Newf(alerr.ErrGeneration, format, args...).WithDialect(cx.Dialect)
}
