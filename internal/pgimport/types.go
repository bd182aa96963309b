package pgimport

import (
	"slices"
	"strings"

	"github.com/hlop3z/uddl/internal/ast"
)

// pgTypes maps PostgreSQL internal type names to universal types.
var pgTypes = map[string]ast.DataType{
	"int2":        ast.TypeSmallint,
	"int4":        ast.TypeInteger,
	"int8":        ast.TypeBigint,
	"float4":      ast.TypeReal,
	"float8":      ast.TypeFloat,
	"numeric":     ast.TypeNumeric,
	"bpchar":      ast.TypeChar,
	"varchar":     ast.TypeVarchar,
	"text":        ast.TypeText,
	"date":        ast.TypeDate,
	"time":        ast.TypeTime,
	"timetz":      ast.TypeTime,
	"timestamp":   ast.TypeTimestamp,
	"timestamptz": ast.TypeTimestamp,
}

// serialTypes are pseudo-types standing for an integer column with an
// implicit sequence.
var serialTypes = map[string]ast.DataType{
	"smallserial": ast.TypeSmallint,
	"serial2":     ast.TypeSmallint,
	"serial":      ast.TypeInteger,
	"serial4":     ast.TypeInteger,
	"bigserial":   ast.TypeBigint,
	"serial8":     ast.TypeBigint,
}

// typesWithArgs keep their modifiers, e.g. varchar(255) or numeric(8,2).
var typesWithArgs = map[ast.DataType]bool{
	ast.TypeChar:    true,
	ast.TypeVarchar: true,
	ast.TypeNumeric: true,
}

// typeKey returns the last component of a qualified type name, which is
// what identifies the type once the pg_catalog prefix is dropped.
func typeKey(tn typeName) string {
	if len(tn.Names) == 0 {
		return ""
	}
	return strings.ToLower(tn.Names[len(tn.Names)-1].value())
}

// knownTypeNames lists the PostgreSQL spellings the importer accepts, for
// suggestions.
func knownTypeNames() []string {
	names := make([]string, 0, len(pgTypes)+len(serialTypes))
	for name := range pgTypes {
		names = append(names, name)
	}
	for name := range serialTypes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
