// Package rds builds a linked relational model from a schema AST.
//
// Where the AST is a list of statements, the model is a graph: tables hold
// their columns and constraints, constraints point at *Table and *Column
// values, and every table or column knows the foreign keys that reference
// it. Alter table and create index orders are merged into the tables they
// target.
package rds

import (
	"log/slog"
	"strings"

	"github.com/hlop3z/uddl/internal/alerr"
	"github.com/hlop3z/uddl/internal/ast"
)

// Rds is the relational model of a schema.
type Rds struct {
	// TableNames lists the tables in declaration order.
	TableNames []string
	Tables     map[string]*Table
}

// Commented holds the comments of a model element. InlineComment joins
// the node's inline comments with a space.
type Commented struct {
	BlockComment  string
	InlineComment string
}

// Table is a table with everything attached to it.
type Table struct {
	Commented
	Name        string
	ColumnNames []string
	Columns     map[string]*Column
	PrimaryKey  *PrimaryKey
	Uniques     []*Unique
	ForeignKeys []*ForeignKey
	Indexes     []*Index

	// ReferencedBy lists the foreign keys of any table pointing here.
	ReferencedBy []*ForeignKey
}

// Column is a table column.
type Column struct {
	Commented
	Table       *Table
	Name        string
	Type        ast.DataType
	TypeArgs    []int
	Constraints ColumnConstraints

	// ReferencedBy lists the foreign keys whose referenced columns
	// include this one.
	ReferencedBy []*ForeignKey
}

// ColumnConstraints are the constraints that concern one column alone,
// whether written on the column or as a single-column table constraint.
type ColumnConstraints struct {
	NotNull       bool
	PrimaryKey    bool
	Autoincrement bool
	Unique        bool
	References    []*ForeignKey
	Default       *ast.Value
}

// PrimaryKey is the primary key of a table.
type PrimaryKey struct {
	Commented
	Name    string
	Table   *Table
	Columns []*Column
}

// Unique is a unique constraint or a unique index.
type Unique struct {
	Commented
	Name    string
	Table   *Table
	Columns []*Column
}

// ForeignKey links columns of Table to columns of ReferencedTable.
type ForeignKey struct {
	Commented
	Name              string
	Table             *Table
	Columns           []*Column
	ReferencedTable   *Table
	ReferencedColumns []*Column
	OnDelete          ast.FKAction
	OnUpdate          ast.FKAction
}

// Index is a create index order.
type Index struct {
	Commented
	Name    string
	Table   *Table
	Unique  bool
	Columns []*Column
}

// Table returns the named table or nil.
func (r *Rds) Table(name string) *Table {
	return r.Tables[name]
}

// Column returns the named column or nil.
func (t *Table) Column(name string) *Column {
	return t.Columns[name]
}

// Build creates the model of tree. It expects a consistent tree; an
// unknown table or column, or a second primary key, is reported as an
// ErrContract error.
func Build(tree *ast.Ast) (*Rds, error) {
	b := &builder{rds: &Rds{Tables: make(map[string]*Table)}}
	if tree == nil {
		return b.rds, nil
	}

	// Columns first, so that constraints may reference any column of any
	// table regardless of order.
	for _, o := range tree.Orders {
		var err error
		switch o := o.(type) {
		case *ast.CreateTable:
			err = b.createTable(o)
		case *ast.AlterTable:
			err = b.addColumns(o.Table, o.Add)
		}
		if err != nil {
			return nil, err
		}
	}

	for _, o := range tree.Orders {
		var err error
		switch o := o.(type) {
		case *ast.CreateTable:
			err = b.fillConstraints(o.Name, o.Entries)
		case *ast.AlterTable:
			err = b.fillConstraints(o.Table, o.Add)
		case *ast.CreateIndex:
			err = b.createIndex(o)
		}
		if err != nil {
			return nil, err
		}
	}

	slog.Debug("relational model built", "tables", len(b.rds.TableNames))
	return b.rds, nil
}

type builder struct {
	rds *Rds
}

func commented(c ast.Comments) Commented {
	return Commented{
		BlockComment:  c.BlockComment,
		InlineComment: strings.Join(c.InlineComment, " "),
	}
}

func (b *builder) table(name string) (*Table, error) {
	t, ok := b.rds.Tables[name]
	if !ok {
		return nil, alerr.Contract("unknown table %q", name)
	}
	return t, nil
}

func (b *builder) column(t *Table, name string) (*Column, error) {
	c, ok := t.Columns[name]
	if !ok {
		return nil, alerr.Contract("unknown column %q in table %q", name, t.Name).WithTable(t.Name).WithColumn(name)
	}
	return c, nil
}

func (b *builder) columns(t *Table, names []string) ([]*Column, error) {
	out := make([]*Column, len(names))
	for i, name := range names {
		c, err := b.column(t, name)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// Tables and columns
// -----------------------------------------------------------------------------

func (b *builder) createTable(o *ast.CreateTable) error {
	if _, dup := b.rds.Tables[o.Name]; dup {
		return alerr.Contract("duplicated table %q", o.Name)
	}
	t := &Table{
		Commented: commented(o.Comments),
		Name:      o.Name,
		Columns:   make(map[string]*Column),
	}
	b.rds.Tables[o.Name] = t
	b.rds.TableNames = append(b.rds.TableNames, o.Name)
	return b.addColumns(o.Name, o.Entries)
}

func (b *builder) addColumns(table string, entries []ast.TableEntry) error {
	t, err := b.table(table)
	if err != nil {
		return err
	}
	for _, col := range ast.Columns(entries) {
		if _, dup := t.Columns[col.Name]; dup {
			return alerr.Contract("duplicated column %q in table %q", col.Name, t.Name)
		}
		t.Columns[col.Name] = &Column{
			Commented: commented(col.Comments),
			Table:     t,
			Name:      col.Name,
			Type:      col.Type,
			TypeArgs:  append([]int(nil), col.TypeArgs...),
		}
		t.ColumnNames = append(t.ColumnNames, col.Name)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Constraints
// -----------------------------------------------------------------------------

func (b *builder) fillConstraints(table string, entries []ast.TableEntry) error {
	t, err := b.table(table)
	if err != nil {
		return err
	}
	for _, e := range entries {
		switch e := e.(type) {
		case *ast.Column:
			err = b.fillColumn(t, e)
		case *ast.TableConstraintComposition:
			for _, tc := range e.Constraints {
				if err = b.fillTableConstraint(t, e.Name, tc); err != nil {
					break
				}
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) fillColumn(t *Table, node *ast.Column) error {
	col := t.Columns[node.Name]
	for _, compo := range node.Constraints {
		for _, cc := range compo.Constraints {
			var err error
			switch cc := cc.(type) {
			case *ast.NotNull:
				col.Constraints.NotNull = true
			case *ast.Null:
			case *ast.PrimaryKey:
				err = b.setPrimaryKey(t, &PrimaryKey{Name: compo.Name, Table: t, Columns: []*Column{col}})
			case *ast.Unique:
				b.addUnique(t, &Unique{Name: compo.Name, Table: t, Columns: []*Column{col}})
			case *ast.Autoincrement:
				col.Constraints.Autoincrement = true
			case *ast.Default:
				v := cc.Value
				col.Constraints.Default = &v
			case *ast.ColumnForeignKey:
				var refs []string
				if cc.ReferencedColumn != "" {
					refs = []string{cc.ReferencedColumn}
				}
				err = b.addForeignKey(t, &ForeignKey{
					Name:     compo.Name,
					Columns:  []*Column{col},
					OnDelete: cc.OnDelete,
					OnUpdate: cc.OnUpdate,
				}, cc.ReferencedTable, refs)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *builder) fillTableConstraint(t *Table, name string, tc ast.TableConstraint) error {
	switch tc := tc.(type) {
	case *ast.PrimaryKeyConstraint:
		cols, err := b.columns(t, tc.Columns)
		if err != nil {
			return err
		}
		return b.setPrimaryKey(t, &PrimaryKey{Commented: commented(tc.Comments), Name: name, Table: t, Columns: cols})
	case *ast.UniqueConstraint:
		cols, err := b.columns(t, tc.Columns)
		if err != nil {
			return err
		}
		b.addUnique(t, &Unique{Commented: commented(tc.Comments), Name: name, Table: t, Columns: cols})
	case *ast.ForeignKeyConstraint:
		cols, err := b.columns(t, tc.Columns)
		if err != nil {
			return err
		}
		return b.addForeignKey(t, &ForeignKey{
			Commented: commented(tc.Comments),
			Name:      name,
			Columns:   cols,
			OnDelete:  tc.OnDelete,
			OnUpdate:  tc.OnUpdate,
		}, tc.ReferencedTable, tc.ReferencedColumns)
	}
	return nil
}

func (b *builder) setPrimaryKey(t *Table, pk *PrimaryKey) error {
	if t.PrimaryKey != nil {
		return alerr.Contract("table %q cannot have several primary keys", t.Name).WithTable(t.Name)
	}
	t.PrimaryKey = pk
	if len(pk.Columns) == 1 {
		pk.Columns[0].Constraints.PrimaryKey = true
	}
	return nil
}

func (b *builder) addUnique(t *Table, u *Unique) {
	t.Uniques = append(t.Uniques, u)
	if len(u.Columns) == 1 {
		u.Columns[0].Constraints.Unique = true
	}
}

// addForeignKey resolves the referenced side of fk and links it
// everywhere. Without refNames the referencing column names are used.
func (b *builder) addForeignKey(t *Table, fk *ForeignKey, refTable string, refNames []string) error {
	ref, err := b.table(refTable)
	if err != nil {
		return err
	}
	if len(refNames) == 0 {
		refNames = make([]string, len(fk.Columns))
		for i, c := range fk.Columns {
			refNames[i] = c.Name
		}
	}
	refCols, err := b.columns(ref, refNames)
	if err != nil {
		return err
	}
	if len(refCols) != len(fk.Columns) {
		return alerr.Contract("foreign key of table %q has %d column(s) but references %d",
			t.Name, len(fk.Columns), len(refCols)).WithTable(t.Name)
	}

	fk.Table = t
	fk.ReferencedTable = ref
	fk.ReferencedColumns = refCols

	t.ForeignKeys = append(t.ForeignKeys, fk)
	ref.ReferencedBy = append(ref.ReferencedBy, fk)
	for _, c := range refCols {
		c.ReferencedBy = append(c.ReferencedBy, fk)
	}
	if len(fk.Columns) == 1 {
		col := fk.Columns[0]
		col.Constraints.References = append(col.Constraints.References, fk)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Indexes
// -----------------------------------------------------------------------------

func (b *builder) createIndex(o *ast.CreateIndex) error {
	t, err := b.table(o.Table)
	if err != nil {
		return err
	}
	if o.Index == nil {
		return nil
	}
	cols, err := b.columns(t, o.Index.Columns)
	if err != nil {
		return err
	}
	idx := &Index{
		Commented: commented(o.Comments),
		Name:      o.Name,
		Table:     t,
		Unique:    o.Index.Unique,
		Columns:   cols,
	}
	t.Indexes = append(t.Indexes, idx)
	if idx.Unique {
		b.addUnique(t, &Unique{Commented: idx.Commented, Name: idx.Name, Table: t, Columns: cols})
	}
	return nil
}
