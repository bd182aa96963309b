package consistency

import (
	"strings"
	"time"

	"github.com/hlop3z/uddl/internal/ast"
)

// dateLayouts are the string forms accepted as a default of a date or
// time column.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	time.RFC3339,
	time.RFC3339Nano,
	"15:04:05",
	"15:04",
}

// compatible reports whether a default value fits the column type.
func compatible(v ast.Value, typ ast.DataType) bool {
	switch v.Kind {
	case ast.ValueSQLExpr:
		switch strings.ToLower(v.Text) {
		case "current_timestamp", "current_time", "current_date":
			return typ.IsDateOrTime()
		}
		return true
	case ast.ValueInt:
		return typ.IsInteger()
	case ast.ValueFloat:
		return typ.IsNumber()
	case ast.ValueString:
		if typ.IsDateOrTime() {
			return isDate(v.Text)
		}
		return typ.IsString()
	}
	return false
}

func isDate(s string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
