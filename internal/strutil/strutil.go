// Package strutil provides the small string helpers shared by the DDL
// generator, the autofix rules and the importers.
package strutil

import "strings"

// -----------------------------------------------------------------------------
// SQL Naming
// -----------------------------------------------------------------------------

// ForeignKeyName builds the name of a deferred foreign key constraint.
// Example: ForeignKeyName("a", []string{"b", "c"}, "t") -> a_b_c_fk_t
func ForeignKeyName(table string, columns []string, referencedTable string) string {
	parts := make([]string, 0, len(columns)+3)
	parts = append(parts, table)
	parts = append(parts, columns...)
	parts = append(parts, "fk", referencedTable)
	return strings.Join(parts, "_")
}

// JoinColumns renders a column list as used inside parentheses: "a, b".
func JoinColumns(columns []string) string {
	return strings.Join(columns, ", ")
}

// QuoteLiteral quotes a SQL string literal, doubling embedded quotes.
func QuoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// -----------------------------------------------------------------------------
// Comments and Formatting
// -----------------------------------------------------------------------------

// JoinInlineComments trims each comment and joins the non-empty ones with a
// single space. It returns "" when nothing is left.
func JoinInlineComments(comments []string) string {
	parts := make([]string, 0, len(comments))
	for _, c := range comments {
		if c = strings.TrimSpace(c); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " ")
}

// Indent returns the indentation for a nesting level.
func Indent(unit string, level int) string {
	if level <= 0 {
		return ""
	}
	return strings.Repeat(unit, level)
}
