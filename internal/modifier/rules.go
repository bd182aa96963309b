package modifier

import (
	"slices"

	"github.com/hlop3z/uddl/internal/ast"
)

// ColumnTypeRule replaces column types according to mapping,
// e.g. tinyint -> smallint for dialects without tinyint.
func ColumnTypeRule(mapping map[ast.DataType]ast.DataType) Rule {
	return Replace(HookColumn, func(col *ast.Column) (*ast.Column, bool) {
		to, ok := mapping[col.Type]
		if !ok || to == col.Type {
			return col, true
		}
		cp := *col
		cp.Type = to
		return &cp, true
	})
}

// ForeignKeyColumnToTableRule moves every column-level foreign key into a
// table-level constraint appended after the other entries of the table.
// A composition left empty is dropped; a composition holding only the
// foreign key gives its name to the new table constraint.
func ForeignKeyColumnToTableRule() Rule {
	return Replace(HookTableEntries, func(entries []ast.TableEntry) ([]ast.TableEntry, bool) {
		var moved []ast.TableEntry
		updated := make([]ast.TableEntry, 0, len(entries))
		for _, entry := range entries {
			col, ok := entry.(*ast.Column)
			if !ok || !col.HasConstraint(ast.KindColumnForeignKey) {
				updated = append(updated, entry)
				continue
			}
			stripped, fks := StripColumnForeignKeys(col, func(*ast.ColumnForeignKey) bool { return true })
			updated = append(updated, stripped)
			for _, fk := range fks {
				moved = append(moved, fk)
			}
		}
		if len(moved) == 0 {
			return entries, true
		}
		return append(updated, moved...), true
	})
}

// ForeignKeyReferencedColumnsRules fill omitted referenced columns of
// foreign keys with the referencing column names, so every foreign key
// names both sides explicitly.
func ForeignKeyReferencedColumnsRules() []Rule {
	var currentColumn string
	return []Rule{
		Replace(HookForeignKeyConstraint, func(fk *ast.ForeignKeyConstraint) (*ast.ForeignKeyConstraint, bool) {
			if fk.ReferencedColumns != nil {
				return fk, true
			}
			cp := *fk
			cp.ReferencedColumns = slices.Clone(fk.Columns)
			return &cp, true
		}),
		Listen(HookColumn, func(col *ast.Column) {
			currentColumn = col.Name
		}),
		Replace(HookColumnForeignKey, func(fk *ast.ColumnForeignKey) (*ast.ColumnForeignKey, bool) {
			if fk.ReferencedColumn != "" {
				return fk, true
			}
			cp := *fk
			cp.ReferencedColumn = currentColumn
			return &cp, true
		}),
	}
}

// StripColumnForeignKeys returns a copy of col without the column foreign
// keys selected by match, and one table-level composition per removed key.
// Compositions left empty are dropped. col itself is never modified.
func StripColumnForeignKeys(col *ast.Column, match func(*ast.ColumnForeignKey) bool) (*ast.Column, []*ast.TableConstraintComposition) {
	var (
		removed []*ast.TableConstraintComposition
		compos  []*ast.ColumnConstraintComposition
	)
	for _, compo := range col.Constraints {
		var kept []ast.ColumnConstraint
		for _, cc := range compo.Constraints {
			fk, ok := cc.(*ast.ColumnForeignKey)
			if !ok || !match(fk) {
				kept = append(kept, cc)
				continue
			}
			tc := &ast.TableConstraintComposition{
				Constraints: []ast.TableConstraint{ToTableForeignKey(fk, col.Name)},
			}
			if len(compo.Constraints) == 1 {
				tc.Name = compo.Name
			}
			removed = append(removed, tc)
		}
		switch {
		case len(kept) == len(compo.Constraints):
			compos = append(compos, compo)
		case len(kept) > 0:
			compos = append(compos, &ast.ColumnConstraintComposition{Name: compo.Name, Constraints: kept})
		}
	}
	if len(removed) == 0 {
		return col, nil
	}
	cp := *col
	cp.Constraints = compos
	return &cp, removed
}

// ToTableForeignKey converts a column foreign key on column into the
// equivalent table constraint.
func ToTableForeignKey(fk *ast.ColumnForeignKey, column string) *ast.ForeignKeyConstraint {
	out := &ast.ForeignKeyConstraint{
		Columns:         []string{column},
		ReferencedTable: fk.ReferencedTable,
		OnDelete:        fk.OnDelete,
		OnUpdate:        fk.OnUpdate,
	}
	if fk.ReferencedColumn != "" {
		out.ReferencedColumns = []string{fk.ReferencedColumn}
	}
	return out
}
