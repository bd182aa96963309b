// Package consistency checks a schema for relational consistency: unknown
// or duplicated tables and columns, duplicated primary keys or constraint
// kinds, foreign keys whose target is missing or whose types disagree, and
// default values that do not fit their column type.
//
// The checker only reports. Messages are plain English sentences meant for
// end users; a schema producing many problems is cut off after maxErrors.
package consistency

import (
	"fmt"
	"strings"

	"github.com/hlop3z/uddl/internal/alerr"
	"github.com/hlop3z/uddl/internal/ast"
)

// maxErrors bounds the report. The problem that pushes the list past this
// number is still recorded, then checking stops.
const maxErrors = 10

// Report is the outcome of Check.
type Report struct {
	Valid  bool
	Errors []string
}

// Err returns nil for a valid report, or an ErrConsistency error listing
// every message.
func (r Report) Err() error {
	if r.Valid {
		return nil
	}
	return alerr.New(alerr.ErrConsistency, strings.Join(r.Errors, "\n")).
		With("errors", len(r.Errors))
}

// Check validates tree and returns the report. The same tree always yields
// the same report.
func Check(tree *ast.Ast) Report {
	c := &checker{tables: make(map[string]*table)}
	if tree != nil {
		c.checkOrders(tree.Orders)
	}
	if len(c.errors) == 0 {
		return Report{Valid: true}
	}
	return Report{Errors: c.errors}
}

type table struct {
	name       string
	columns    map[string]*column
	primaryKey []*column
}

type column struct {
	name     string
	typ      ast.DataType
	typeArgs []int
	kinds    map[ast.Kind]bool
}

func (c *column) sqlType() string { return ast.FormatType(c.typ, c.typeArgs) }

type checker struct {
	tables map[string]*table
	errors []string
}

// addError records a problem and reports whether checking must stop.
func (c *checker) addError(format string, args ...any) (stop bool) {
	c.errors = append(c.errors, fmt.Sprintf(format, args...))
	return len(c.errors) > maxErrors
}

func (c *checker) checkOrders(orders []ast.Order) {
	for _, o := range orders {
		var stop bool
		switch o := o.(type) {
		case *ast.CreateTable:
			stop = c.checkCreateTable(o)
		case *ast.AlterTable:
			stop = c.checkAlterTable(o)
		case *ast.CreateIndex:
			stop = c.checkCreateIndex(o)
		}
		if stop {
			return
		}
	}
}

func (c *checker) checkCreateTable(o *ast.CreateTable) bool {
	if _, dup := c.tables[o.Name]; dup {
		if c.addError("Duplicated table: %s", o.Name) {
			return true
		}
	}
	t := &table{name: o.Name, columns: make(map[string]*column)}
	c.tables[o.Name] = t
	return c.fillTable(o.Entries, t) || c.checkEntries(o.Entries, t)
}

func (c *checker) checkAlterTable(o *ast.AlterTable) bool {
	t, ok := c.tables[o.Table]
	if !ok {
		return c.addError("Cannot alter table %q: unknown table", o.Table)
	}
	return c.fillTable(o.Add, t) || c.checkEntries(o.Add, t)
}

func (c *checker) checkCreateIndex(o *ast.CreateIndex) bool {
	t, ok := c.tables[o.Table]
	if !ok {
		return c.addError("Cannot create index on table %q: unknown table", o.Table)
	}
	if o.Index == nil {
		return false
	}
	_, stop := c.findColumns(o.Index.Columns, t)
	return stop
}

// fillTable registers the columns of entries, then the table-level
// primary keys, so that constraints can refer to any column of the body.
func (c *checker) fillTable(entries []ast.TableEntry, t *table) bool {
	for _, col := range ast.Columns(entries) {
		if _, dup := t.columns[col.Name]; dup {
			if c.addError("In table %q, duplicated column %q", t.name, col.Name) {
				return true
			}
			continue
		}
		cc := &column{name: col.Name, typ: col.Type, typeArgs: col.TypeArgs, kinds: make(map[ast.Kind]bool)}
		t.columns[col.Name] = cc
		if col.HasConstraint(ast.KindPrimaryKey) && c.setPrimaryKey(t, []*column{cc}) {
			return true
		}
	}

	for _, e := range entries {
		compo, ok := e.(*ast.TableConstraintComposition)
		if !ok {
			continue
		}
		for _, tc := range compo.Constraints {
			pk, ok := tc.(*ast.PrimaryKeyConstraint)
			if !ok {
				continue
			}
			cols, stop := c.findColumns(pk.Columns, t)
			if stop {
				return true
			}
			if cols != nil && c.setPrimaryKey(t, cols) {
				return true
			}
		}
	}
	return false
}

func (c *checker) setPrimaryKey(t *table, cols []*column) bool {
	if t.primaryKey != nil {
		return c.addError("In table %q, duplicated primary key", t.name)
	}
	t.primaryKey = cols
	return false
}

func (c *checker) checkEntries(entries []ast.TableEntry, t *table) bool {
	for _, e := range entries {
		var stop bool
		switch e := e.(type) {
		case *ast.Column:
			stop = c.checkColumn(e, t)
		case *ast.TableConstraintComposition:
			for _, tc := range e.Constraints {
				if stop = c.checkTableConstraint(tc, t); stop {
					break
				}
			}
		}
		if stop {
			return true
		}
	}
	return false
}

func (c *checker) checkColumn(node *ast.Column, t *table) bool {
	col, ok := t.columns[node.Name]
	if !ok {
		return false
	}
	for _, cc := range node.ColumnConstraints() {
		if c.checkColumnConstraint(cc, col, t) {
			return true
		}
	}
	return false
}

func (c *checker) checkColumnConstraint(cc ast.ColumnConstraint, col *column, t *table) bool {
	switch cc := cc.(type) {
	case *ast.ColumnForeignKey:
		var refs []string
		if cc.ReferencedColumn != "" {
			refs = []string{cc.ReferencedColumn}
		}
		return c.checkForeignKey(t, []*column{col}, cc.ReferencedTable, refs)
	}

	kind := cc.Kind()
	if col.kinds[kind] {
		if c.addError("In table %q, column %q, duplicated constraint %q", t.name, col.name, kind) {
			return true
		}
	} else {
		col.kinds[kind] = true
	}

	if def, ok := cc.(*ast.Default); ok && !compatible(def.Value, col.typ) {
		return c.addError("In table %q, column %q, default value \"%s\" is incompatible with type \"%s\"",
			t.name, col.name, def.Value.Raw(), string(col.typ))
	}
	return false
}

func (c *checker) checkTableConstraint(tc ast.TableConstraint, t *table) bool {
	switch tc := tc.(type) {
	case *ast.PrimaryKeyConstraint:
		_, stop := c.findColumns(tc.Columns, t)
		return stop
	case *ast.UniqueConstraint:
		_, stop := c.findColumns(tc.Columns, t)
		return stop
	case *ast.ForeignKeyConstraint:
		cols, stop := c.findColumns(tc.Columns, t)
		if stop || cols == nil {
			return stop
		}
		return c.checkForeignKey(t, cols, tc.ReferencedTable, tc.ReferencedColumns)
	}
	return false
}

// checkForeignKey validates one foreign key. refNames defaults to the
// names of the referencing columns.
func (c *checker) checkForeignKey(t *table, cols []*column, refTable string, refNames []string) bool {
	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = col.name
	}
	label := strings.Join(names, `", "`)

	ref, ok := c.tables[refTable]
	if !ok {
		return c.addError("In table %q, foreign key \"%s\": invalid referenced table %q", t.name, label, refTable)
	}
	if refNames == nil {
		refNames = names
	}
	refCols, stop := c.findColumns(refNames, ref)
	if stop || refCols == nil {
		return stop
	}
	if len(cols) != len(refCols) {
		return c.addError("In table %q, foreign key \"%s\": referenced column(s) don't match: \"%s\"",
			t.name, label, strings.Join(refNames, `", "`))
	}
	for i := range cols {
		if cols[i].typ == refCols[i].typ && ast.SameTypeArgs(cols[i].typeArgs, refCols[i].typeArgs) {
			continue
		}
		if c.addError("In table %q, foreign key \"%s\": the type of column %q (%s) doesn't match with the type of referenced column %q (%s)",
			t.name, label, names[i], cols[i].sqlType(), refNames[i], refCols[i].sqlType()) {
			return true
		}
	}
	return false
}

// findColumns resolves names in t, recording one error per unknown name.
// cols is nil when any name is unknown.
func (c *checker) findColumns(names []string, t *table) (cols []*column, stop bool) {
	out := make([]*column, 0, len(names))
	missing := false
	for _, name := range names {
		col, ok := t.columns[name]
		if !ok {
			missing = true
			if c.addError("In table %q, unknown column %q", t.name, name) {
				return nil, true
			}
			continue
		}
		out = append(out, col)
	}
	if missing {
		return nil, false
	}
	return out, false
}
