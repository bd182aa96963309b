package ast

import "slices"

// HasConstraint reports whether any composition of the column holds a
// constraint of the given kind.
func (c *Column) HasConstraint(kind Kind) bool {
	return c.FindConstraint(kind) != nil
}

// FindConstraint returns the first column constraint of the given kind.
func (c *Column) FindConstraint(kind Kind) ColumnConstraint {
	for _, compo := range c.Constraints {
		for _, cc := range compo.Constraints {
			if cc.Kind() == kind {
				return cc
			}
		}
	}
	return nil
}

// ColumnConstraints returns every column constraint in declaration order,
// flattened across compositions.
func (c *Column) ColumnConstraints() []ColumnConstraint {
	var out []ColumnConstraint
	for _, compo := range c.Constraints {
		out = append(out, compo.Constraints...)
	}
	return out
}

// SQLType renders the column type, e.g. "varchar(20)".
func (c *Column) SQLType() string {
	return FormatType(c.Type, c.TypeArgs)
}

// Tables returns the CreateTable orders in declaration order.
func (a *Ast) Tables() []*CreateTable {
	var out []*CreateTable
	for _, o := range a.Orders {
		if ct, ok := o.(*CreateTable); ok {
			out = append(out, ct)
		}
	}
	return out
}

// Table returns the first CreateTable with the given name.
func (a *Ast) Table(name string) *CreateTable {
	for _, ct := range a.Tables() {
		if ct.Name == name {
			return ct
		}
	}
	return nil
}

// Columns returns the columns of a table body.
func Columns(entries []TableEntry) []*Column {
	var out []*Column
	for _, e := range entries {
		if col, ok := e.(*Column); ok {
			out = append(out, col)
		}
	}
	return out
}

// TableConstraints returns the constraints of every composition of a table
// body, flattened in order.
func TableConstraints(entries []TableEntry) []TableConstraint {
	var out []TableConstraint
	for _, e := range entries {
		if compo, ok := e.(*TableConstraintComposition); ok {
			out = append(out, compo.Constraints...)
		}
	}
	return out
}

// -----------------------------------------------------------------------------
// Deep copy
// -----------------------------------------------------------------------------

// Clone returns a deep copy of the tree that shares nothing with a.
func Clone(a *Ast) *Ast {
	if a == nil {
		return nil
	}
	out := &Ast{}
	for _, o := range a.Orders {
		out.Orders = append(out.Orders, CloneOrder(o))
	}
	return out
}

// CloneOrder deep-copies one order.
func CloneOrder(o Order) Order {
	switch o := o.(type) {
	case *CreateTable:
		return &CreateTable{Comments: cloneComments(o.Comments), Name: o.Name, Entries: cloneEntries(o.Entries)}
	case *AlterTable:
		return &AlterTable{Comments: cloneComments(o.Comments), Table: o.Table, Add: cloneEntries(o.Add)}
	case *CreateIndex:
		ci := &CreateIndex{Comments: cloneComments(o.Comments), Table: o.Table, Name: o.Name}
		if o.Index != nil {
			ci.Index = &Index{Unique: o.Index.Unique, Columns: slices.Clone(o.Index.Columns)}
		}
		return ci
	case *StandaloneComment:
		return &StandaloneComment{Text: o.Text}
	}
	return o
}

func cloneEntries(entries []TableEntry) []TableEntry {
	if entries == nil {
		return nil
	}
	out := make([]TableEntry, len(entries))
	for i, e := range entries {
		switch e := e.(type) {
		case *Column:
			col := &Column{
				Comments: cloneComments(e.Comments),
				Name:     e.Name,
				Type:     e.Type,
				TypeArgs: slices.Clone(e.TypeArgs),
			}
			for _, compo := range e.Constraints {
				col.Constraints = append(col.Constraints, cloneColumnComposition(compo))
			}
			out[i] = col
		case *TableConstraintComposition:
			tc := &TableConstraintComposition{Comments: cloneComments(e.Comments), Name: e.Name}
			for _, c := range e.Constraints {
				tc.Constraints = append(tc.Constraints, cloneTableConstraint(c))
			}
			out[i] = tc
		case *StandaloneTableComment:
			out[i] = &StandaloneTableComment{Text: e.Text}
		default:
			out[i] = e
		}
	}
	return out
}

func cloneColumnComposition(c *ColumnConstraintComposition) *ColumnConstraintComposition {
	out := &ColumnConstraintComposition{Name: c.Name}
	for _, cc := range c.Constraints {
		var copied ColumnConstraint
		switch cc := cc.(type) {
		case *NotNull:
			copied = &NotNull{}
		case *Null:
			copied = &Null{}
		case *PrimaryKey:
			copied = &PrimaryKey{}
		case *Unique:
			copied = &Unique{}
		case *Autoincrement:
			copied = &Autoincrement{}
		case *Default:
			copied = &Default{Value: cc.Value}
		case *ColumnForeignKey:
			fk := *cc
			copied = &fk
		default:
			copied = cc
		}
		out.Constraints = append(out.Constraints, copied)
	}
	return out
}

func cloneTableConstraint(c TableConstraint) TableConstraint {
	switch c := c.(type) {
	case *PrimaryKeyConstraint:
		return &PrimaryKeyConstraint{Comments: cloneComments(c.Comments), Columns: slices.Clone(c.Columns)}
	case *UniqueConstraint:
		return &UniqueConstraint{Comments: cloneComments(c.Comments), Columns: slices.Clone(c.Columns)}
	case *ForeignKeyConstraint:
		return &ForeignKeyConstraint{
			Comments:          cloneComments(c.Comments),
			Columns:           slices.Clone(c.Columns),
			ReferencedTable:   c.ReferencedTable,
			ReferencedColumns: slices.Clone(c.ReferencedColumns),
			OnDelete:          c.OnDelete,
			OnUpdate:          c.OnUpdate,
		}
	}
	return c
}

func cloneComments(c Comments) Comments {
	return Comments{BlockComment: c.BlockComment, InlineComment: slices.Clone(c.InlineComment)}
}
