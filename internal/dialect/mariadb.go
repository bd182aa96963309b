package dialect

import (
	"github.com/hlop3z/uddl/internal/ast"
	"github.com/hlop3z/uddl/internal/modifier"
)

// mariadb renders MariaDB/MySQL DDL. Column level "references" is parsed
// but ignored by MariaDB, so foreign keys are moved to table constraints
// before rendering. MariaDB also requires the referenced column list; an
// omitted one is filled with the referencing column names.
func mariadb() *Dialect {
	s := universalSections()
	s.ColumnConstraints.Autoincrement = keyword[*ast.Autoincrement]("auto_increment")

	return &Dialect{
		Name:     "mariadb",
		Aliases:  []string{"mysql"},
		Sections: s,
		Rules: func() []modifier.Rule {
			return append(
				[]modifier.Rule{modifier.ForeignKeyColumnToTableRule()},
				modifier.ForeignKeyReferencedColumnsRules()...,
			)
		},
		DropTable: func(table string) string {
			return "drop table if exists " + table + " cascade;"
		},
	}
}
