package ast

// Kind names a node variant. It is also the hook name under which the
// modifier finds rules and the tag the generator dispatches on.
type Kind string

const (
	KindAst Kind = "ast"

	// Orders
	KindCreateTable       Kind = "createTable"
	KindAlterTable        Kind = "alterTable"
	KindCreateIndex       Kind = "createIndex"
	KindStandaloneComment Kind = "comment"
	KindIndex             Kind = "index"

	// Table entries
	KindColumn                     Kind = "column"
	KindTableConstraintComposition Kind = "constraintComposition"
	KindStandaloneTableComment     Kind = "tableComment"

	// Table constraints
	KindPrimaryKeyConstraint Kind = "primaryKeyConstraint"
	KindUniqueConstraint     Kind = "uniqueConstraint"
	KindForeignKeyConstraint Kind = "foreignKeyConstraint"

	// Column constraints
	KindColumnConstraintComposition Kind = "columnConstraintComposition"
	KindNotNull                     Kind = "notNull"
	KindNull                        Kind = "null"
	KindDefault                     Kind = "default"
	KindPrimaryKey                  Kind = "primaryKey"
	KindUnique                      Kind = "unique"
	KindAutoincrement               Kind = "autoincrement"
	KindColumnForeignKey            Kind = "foreignKey"
)

// Node is implemented by every AST node.
type Node interface {
	Kind() Kind
}

// Comments holds the comments attached to a node. BlockComment is the
// comment block directly above the node, one line per "\n". Each
// InlineComment element is a trailing comment on one of the node's lines.
type Comments struct {
	BlockComment  string
	InlineComment []string
}

// Annotations returns the node's comments.
func (c *Comments) Annotations() *Comments { return c }

// Commentable is implemented by nodes that carry comments.
type Commentable interface {
	Node
	Annotations() *Comments
}

// -----------------------------------------------------------------------------
// Root and orders
// -----------------------------------------------------------------------------

// Ast is the root of a schema.
type Ast struct {
	Orders []Order
}

func (*Ast) Kind() Kind { return KindAst }

// Order is a top-level statement: *CreateTable, *AlterTable, *CreateIndex
// or *StandaloneComment.
type Order interface {
	Node
	order()
}

// CreateTable declares a table.
type CreateTable struct {
	Comments
	Name    string
	Entries []TableEntry
}

// AlterTable adds entries to a previously declared table.
type AlterTable struct {
	Comments
	Table string
	Add   []TableEntry
}

// CreateIndex declares a plain or unique index.
type CreateIndex struct {
	Comments
	Table string
	Name  string
	Index *Index
}

// Index is the indexed column list. A unique index is the
// unique-constraint variant of the same shape.
type Index struct {
	Unique  bool
	Columns []string
}

// StandaloneComment is a comment group not attached to any order.
type StandaloneComment struct {
	Text string
}

func (*CreateTable) Kind() Kind       { return KindCreateTable }
func (*AlterTable) Kind() Kind        { return KindAlterTable }
func (*CreateIndex) Kind() Kind       { return KindCreateIndex }
func (*StandaloneComment) Kind() Kind { return KindStandaloneComment }
func (*Index) Kind() Kind             { return KindIndex }

func (*CreateTable) order()       {}
func (*AlterTable) order()        {}
func (*CreateIndex) order()       {}
func (*StandaloneComment) order() {}

// -----------------------------------------------------------------------------
// Table entries
// -----------------------------------------------------------------------------

// TableEntry is an item of a table body: *Column,
// *TableConstraintComposition or *StandaloneTableComment.
type TableEntry interface {
	Node
	tableEntry()
}

// Column declares a column. TypeArgs is nil when the type has no arguments.
type Column struct {
	Comments
	Name        string
	Type        DataType
	TypeArgs    []int
	Constraints []*ColumnConstraintComposition
}

// TableConstraintComposition groups table constraints under an optional name.
type TableConstraintComposition struct {
	Comments
	Name        string
	Constraints []TableConstraint
}

// StandaloneTableComment is a comment group inside a table body.
type StandaloneTableComment struct {
	Text string
}

func (*Column) Kind() Kind                     { return KindColumn }
func (*TableConstraintComposition) Kind() Kind { return KindTableConstraintComposition }
func (*StandaloneTableComment) Kind() Kind     { return KindStandaloneTableComment }

func (*Column) tableEntry()                     {}
func (*TableConstraintComposition) tableEntry() {}
func (*StandaloneTableComment) tableEntry()     {}

// -----------------------------------------------------------------------------
// Table constraints
// -----------------------------------------------------------------------------

// TableConstraint is *PrimaryKeyConstraint, *UniqueConstraint or
// *ForeignKeyConstraint.
type TableConstraint interface {
	Node
	tableConstraint()
}

// PrimaryKeyConstraint is "primary key (a, b)".
type PrimaryKeyConstraint struct {
	Comments
	Columns []string
}

// UniqueConstraint is "unique (a, b)".
type UniqueConstraint struct {
	Comments
	Columns []string
}

// ForeignKeyConstraint is "foreign key (a) references t (b)".
// ReferencedColumns is nil when omitted.
type ForeignKeyConstraint struct {
	Comments
	Columns           []string
	ReferencedTable   string
	ReferencedColumns []string
	OnDelete          FKAction
	OnUpdate          FKAction
}

func (*PrimaryKeyConstraint) Kind() Kind { return KindPrimaryKeyConstraint }
func (*UniqueConstraint) Kind() Kind     { return KindUniqueConstraint }
func (*ForeignKeyConstraint) Kind() Kind { return KindForeignKeyConstraint }

func (*PrimaryKeyConstraint) tableConstraint() {}
func (*UniqueConstraint) tableConstraint()     {}
func (*ForeignKeyConstraint) tableConstraint() {}

// -----------------------------------------------------------------------------
// Column constraints
// -----------------------------------------------------------------------------

// ColumnConstraintComposition groups column constraints under an optional
// name ("constraint NAME not null default 1").
type ColumnConstraintComposition struct {
	Name        string
	Constraints []ColumnConstraint
}

func (*ColumnConstraintComposition) Kind() Kind { return KindColumnConstraintComposition }

// ColumnConstraint is one of *NotNull, *Null, *Default, *PrimaryKey,
// *Unique, *Autoincrement or *ColumnForeignKey.
type ColumnConstraint interface {
	Node
	columnConstraint()
}

type (
	NotNull       struct{}
	Null          struct{}
	PrimaryKey    struct{}
	Unique        struct{}
	Autoincrement struct{}
)

// Default is "default <value>".
type Default struct {
	Value Value
}

// ColumnForeignKey is "references t (c)". ReferencedColumn is empty when omitted.
type ColumnForeignKey struct {
	ReferencedTable  string
	ReferencedColumn string
	OnDelete         FKAction
	OnUpdate         FKAction
}

func (*NotNull) Kind() Kind          { return KindNotNull }
func (*Null) Kind() Kind             { return KindNull }
func (*Default) Kind() Kind          { return KindDefault }
func (*PrimaryKey) Kind() Kind       { return KindPrimaryKey }
func (*Unique) Kind() Kind           { return KindUnique }
func (*Autoincrement) Kind() Kind    { return KindAutoincrement }
func (*ColumnForeignKey) Kind() Kind { return KindColumnForeignKey }

func (*NotNull) columnConstraint()          {}
func (*Null) columnConstraint()             {}
func (*Default) columnConstraint()          {}
func (*PrimaryKey) columnConstraint()       {}
func (*Unique) columnConstraint()           {}
func (*Autoincrement) columnConstraint()    {}
func (*ColumnForeignKey) columnConstraint() {}
