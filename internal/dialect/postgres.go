package dialect

import (
	"strings"

	"github.com/lib/pq"

	"github.com/hlop3z/uddl/internal/ast"
	"github.com/hlop3z/uddl/internal/modifier"
)

// postgresql renders PostgreSQL DDL. Autoincrement integer columns become
// serial/bigserial, tinyint becomes smallint.
func postgresql() *Dialect {
	s := universalSections()
	parentColumn := s.TableEntries.Column

	s.TableEntries.Column = func(cx *Context, n *ast.Column) (Piece, error) {
		serial := serialType(n.Type)
		if serial == "" || !n.HasConstraint(ast.KindAutoincrement) {
			return parentColumn(cx, n)
		}
		if !n.HasConstraint(ast.KindNotNull) {
			return nil, cx.generationError("Constraint 'not null' is required with 'autoincrement' for Postgresql").
				WithColumn(n.Name)
		}
		return cx.ColumnPiece(n, serial, withoutConstraints(n.Constraints, ast.KindAutoincrement, ast.KindNotNull))
	}
	s.ColumnConstraints.Autoincrement = func(cx *Context, _ *ast.Autoincrement) (string, error) {
		return "", cx.generationError("Constraint 'autoincrement' must be used with 'not null' and 'integer' or 'bigint' for Postgresql")
	}
	s.ColumnConstraints.Value = func(_ *Context, v ast.Value) (string, error) {
		return renderValue(v, quotePostgres)
	}

	return &Dialect{
		Name:     "postgresql",
		Aliases:  []string{"postgres", "pg"},
		Sections: s,
		Rules: func() []modifier.Rule {
			return []modifier.Rule{
				modifier.ColumnTypeRule(map[ast.DataType]ast.DataType{ast.TypeTinyint: ast.TypeSmallint}),
			}
		},
		DropTable: func(table string) string {
			return "drop table if exists " + table + " cascade;"
		},
	}
}

func serialType(t ast.DataType) string {
	switch t {
	case ast.TypeInt, ast.TypeInteger:
		return "serial"
	case ast.TypeBigint:
		return "bigserial"
	}
	return ""
}

// quotePostgres quotes a string literal. Literals holding a backslash use
// the E'' escape form.
func quotePostgres(s string) string {
	return strings.TrimLeft(pq.QuoteLiteral(s), " ")
}

// withoutConstraints returns compos without the constraints of the given
// kinds. Emptied compositions are dropped. The input is not modified.
func withoutConstraints(compos []*ast.ColumnConstraintComposition, kinds ...ast.Kind) []*ast.ColumnConstraintComposition {
	drop := make(map[ast.Kind]bool, len(kinds))
	for _, k := range kinds {
		drop[k] = true
	}
	out := make([]*ast.ColumnConstraintComposition, 0, len(compos))
	for _, compo := range compos {
		kept := make([]ast.ColumnConstraint, 0, len(compo.Constraints))
		for _, c := range compo.Constraints {
			if !drop[c.Kind()] {
				kept = append(kept, c)
			}
		}
		switch {
		case len(kept) == len(compo.Constraints):
			out = append(out, compo)
		case len(kept) > 0:
			out = append(out, &ast.ColumnConstraintComposition{Name: compo.Name, Constraints: kept})
		}
	}
	return out
}
