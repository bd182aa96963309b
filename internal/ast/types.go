// Package ast defines the abstract syntax tree of a universal DDL schema.
// A schema is an ordered list of orders (create table, alter table,
// create index, standalone comment). Nodes are treated as immutable once
// built: transformations produce new trees that share unchanged subtrees.
package ast

import (
	"strconv"
	"strings"
)

// -----------------------------------------------------------------------------
// Data types
// -----------------------------------------------------------------------------

// DataType is a SQL scalar type of the universal dialect.
type DataType string

const (
	TypeInt       DataType = "int"
	TypeInteger   DataType = "integer"
	TypeBigint    DataType = "bigint"
	TypeSmallint  DataType = "smallint"
	TypeTinyint   DataType = "tinyint"
	TypeReal      DataType = "real"
	TypeDecimal   DataType = "decimal"
	TypeNumeric   DataType = "numeric"
	TypeFloat     DataType = "float"
	TypeDate      DataType = "date"
	TypeTime      DataType = "time"
	TypeDatetime  DataType = "datetime"
	TypeTimestamp DataType = "timestamp"
	TypeText      DataType = "text"
	TypeChar      DataType = "char"
	TypeVarchar   DataType = "varchar"
)

// DataTypes lists every supported data type in declaration order.
var DataTypes = []DataType{
	TypeInt, TypeInteger, TypeBigint, TypeSmallint, TypeTinyint,
	TypeReal, TypeDecimal, TypeNumeric, TypeFloat,
	TypeDate, TypeTime, TypeDatetime, TypeTimestamp,
	TypeText, TypeChar, TypeVarchar,
}

// ParseDataType resolves a type name, ignoring case.
func ParseDataType(name string) (DataType, bool) {
	name = strings.ToLower(name)
	for _, t := range DataTypes {
		if string(t) == name {
			return t, true
		}
	}
	return "", false
}

// IsInteger reports whether t belongs to the integer family.
func (t DataType) IsInteger() bool {
	switch t {
	case TypeInt, TypeInteger, TypeBigint, TypeSmallint, TypeTinyint:
		return true
	}
	return false
}

// IsNumber reports whether t is numeric. Integers are numbers.
func (t DataType) IsNumber() bool {
	switch t {
	case TypeFloat, TypeReal, TypeDecimal, TypeNumeric:
		return true
	}
	return t.IsInteger()
}

// IsString reports whether t belongs to the character family.
func (t DataType) IsString() bool {
	switch t {
	case TypeChar, TypeVarchar, TypeText:
		return true
	}
	return false
}

// IsDateOrTime reports whether t belongs to the date/time family.
func (t DataType) IsDateOrTime() bool {
	switch t {
	case TypeDate, TypeTime, TypeTimestamp, TypeDatetime:
		return true
	}
	return false
}

// FormatType renders a type with its arguments, e.g. "decimal(4,2)".
func FormatType(t DataType, args []int) string {
	if args == nil {
		return string(t)
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = strconv.Itoa(a)
	}
	return string(t) + "(" + strings.Join(parts, ",") + ")"
}

// SameTypeArgs compares two typeArgs lists. Both must be absent or equal.
func SameTypeArgs(a, b []int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// -----------------------------------------------------------------------------
// Foreign key actions
// -----------------------------------------------------------------------------

// FKAction is a referential action for "on delete" / "on update".
// The empty value means no action was declared.
type FKAction string

const (
	ActionCascade    FKAction = "cascade"
	ActionRestrict   FKAction = "restrict"
	ActionNoAction   FKAction = "no action"
	ActionSetNull    FKAction = "set null"
	ActionSetDefault FKAction = "set default"
)

// -----------------------------------------------------------------------------
// Values
// -----------------------------------------------------------------------------

// ValueKind tags a Value.
type ValueKind int

const (
	ValueInt ValueKind = iota
	ValueFloat
	ValueString
	ValueSQLExpr
)

// Value is a literal used by default constraints.
type Value struct {
	Kind  ValueKind
	Int   int64
	Float float64
	Text  string // string literal (unescaped) or raw SQL expression
}

// IntValue returns an integer literal.
func IntValue(i int64) Value { return Value{Kind: ValueInt, Int: i} }

// FloatValue returns a float literal.
func FloatValue(f float64) Value { return Value{Kind: ValueFloat, Float: f} }

// StringValue returns a string literal.
func StringValue(s string) Value { return Value{Kind: ValueString, Text: s} }

// SQLExpr returns a verbatim SQL expression such as current_timestamp.
func SQLExpr(expr string) Value { return Value{Kind: ValueSQLExpr, Text: expr} }

// Raw returns the value without SQL quoting. It is used in messages.
func (v Value) Raw() string {
	switch v.Kind {
	case ValueInt:
		return strconv.FormatInt(v.Int, 10)
	case ValueFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	default:
		return v.Text
	}
}
