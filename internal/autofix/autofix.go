// Package autofix repairs schemas the consistency checker would reject
// but that have an obvious fix.
//
// The only repair today concerns foreign keys that reference a table
// created later in the document (or never created by a create table
// order, such as in a cycle). Each such foreign key is removed from its
// table and re-added by an "alter table ... add constraint" order emitted
// right after the referenced table is created.
package autofix

import (
	"log/slog"
	"strings"

	"github.com/hlop3z/uddl/internal/alerr"
	"github.com/hlop3z/uddl/internal/ast"
	"github.com/hlop3z/uddl/internal/modifier"
	"github.com/hlop3z/uddl/internal/strutil"
)

// Options select the repairs to run.
type Options struct {
	ForeignKeys bool
}

// Option configures Apply.
type Option func(*Options)

// WithForeignKeys enables or disables the foreign key repair. It is
// enabled by default.
func WithForeignKeys(enabled bool) Option {
	return func(o *Options) {
		o.ForeignKeys = enabled
	}
}

// Apply returns a repaired copy of tree. The input tree is not modified.
func Apply(tree *ast.Ast, opts ...Option) (*ast.Ast, error) {
	o := Options{ForeignKeys: true}
	for _, opt := range opts {
		opt(&o)
	}

	var (
		rules  []modifier.Rule
		checks []func() error
	)
	if o.ForeignKeys {
		fk := newForeignKeyFix()
		rules = append(rules, fk.rules()...)
		checks = append(checks, fk.finish)
	}

	out, err := modifier.Modify(tree, rules...)
	if err != nil {
		return nil, err
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// Forward-referencing foreign keys
// -----------------------------------------------------------------------------

type foreignKeyFix struct {
	known   map[string]bool
	current string

	// deferred alter orders keyed by referenced table, keys in first-seen
	// order.
	deferred map[string][]*ast.AlterTable
	pending  []string
}

func newForeignKeyFix() *foreignKeyFix {
	return &foreignKeyFix{
		known:    make(map[string]bool),
		deferred: make(map[string][]*ast.AlterTable),
	}
}

func (f *foreignKeyFix) rules() []modifier.Rule {
	return []modifier.Rule{
		modifier.Listen(modifier.HookCreateTable, func(ct *ast.CreateTable) {
			f.known[ct.Name] = true
			f.current = ct.Name
		}),
		modifier.Listen(modifier.HookAlterTable, func(at *ast.AlterTable) {
			f.current = at.Table
		}),
		modifier.Replace(modifier.HookTableConstraintComposition, f.fixComposition),
		modifier.Replace(modifier.HookColumn, f.fixColumn),
		modifier.InsertAfter(modifier.HookOrders, f.emit),
	}
}

func (f *foreignKeyFix) unknown(table string) bool {
	return !f.known[table]
}

func (f *foreignKeyFix) fixComposition(compo *ast.TableConstraintComposition) (*ast.TableConstraintComposition, bool) {
	var (
		kept  []ast.TableConstraint
		moved bool
	)
	for _, c := range compo.Constraints {
		fk, ok := c.(*ast.ForeignKeyConstraint)
		if !ok || !f.unknown(fk.ReferencedTable) {
			kept = append(kept, c)
			continue
		}
		f.postpone(fk)
		moved = true
	}
	if !moved {
		return compo, true
	}
	if len(kept) == 0 {
		return nil, false
	}
	cp := *compo
	cp.Constraints = kept
	return &cp, true
}

func (f *foreignKeyFix) fixColumn(col *ast.Column) (*ast.Column, bool) {
	out, removed := modifier.StripColumnForeignKeys(col, func(fk *ast.ColumnForeignKey) bool {
		return f.unknown(fk.ReferencedTable)
	})
	for _, tc := range removed {
		for _, c := range tc.Constraints {
			f.postpone(c.(*ast.ForeignKeyConstraint))
		}
	}
	return out, true
}

func (f *foreignKeyFix) postpone(fk *ast.ForeignKeyConstraint) {
	ref := fk.ReferencedTable
	if _, ok := f.deferred[ref]; !ok {
		f.pending = append(f.pending, ref)
	}
	name := strutil.ForeignKeyName(f.current, fk.Columns, ref)
	f.deferred[ref] = append(f.deferred[ref], &ast.AlterTable{
		Table: f.current,
		Add: []ast.TableEntry{&ast.TableConstraintComposition{
			Name:        name,
			Constraints: []ast.TableConstraint{fk},
		}},
	})
	slog.Debug("foreign key deferred", "table", f.current, "references", ref, "constraint", name)
}

func (f *foreignKeyFix) emit(order ast.Order, _ int) []ast.Order {
	ct, ok := order.(*ast.CreateTable)
	if !ok {
		return nil
	}
	alters, ok := f.deferred[ct.Name]
	if !ok {
		return nil
	}
	delete(f.deferred, ct.Name)

	out := make([]ast.Order, len(alters))
	for i, at := range alters {
		out[i] = at
	}
	return out
}

func (f *foreignKeyFix) finish() error {
	var missing []string
	for _, name := range f.pending {
		if _, ok := f.deferred[name]; ok {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return alerr.Newf(alerr.ErrAutofix, "Missing referenced table(s): %s", strings.Join(missing, ", ")).
		WithHelp("create the referenced tables or remove the foreign keys")
}
