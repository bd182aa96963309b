package dialect

import (
	"github.com/hlop3z/uddl/internal/ast"
)

// sqlite renders SQLite DDL. SQLite only accepts autoincrement on an
// "integer" column, so integer family columns are coerced.
func sqlite() *Dialect {
	s := universalSections()
	parentColumn := s.TableEntries.Column

	s.TableEntries.Column = func(cx *Context, n *ast.Column) (Piece, error) {
		if !n.HasConstraint(ast.KindAutoincrement) || n.Type == ast.TypeInteger {
			return parentColumn(cx, n)
		}
		if !n.Type.IsInteger() {
			return nil, cx.generationError(
				"Constraint 'autoincrement' on column '%s' should be used with an 'integer' data type (current: '%s') with SQLite",
				n.Name, n.Type,
			).WithColumn(n.Name)
		}
		return cx.ColumnPiece(n, string(ast.TypeInteger), n.Constraints)
	}

	return &Dialect{
		Name:     "sqlite",
		Aliases:  []string{"sqlite3"},
		Sections: s,
		DropTable: func(table string) string {
			return "drop table if exists " + table + ";"
		},
	}
}
