package modifier

import (
	"reflect"

	"github.com/hlop3z/uddl/internal/ast"
)

// Hook names a position of the tree shape. Rules are registered against
// hooks. Object hooks reuse the node kind; array hooks have their own names.
type Hook string

const (
	HookAst                          = Hook(ast.KindAst)
	HookOrders                  Hook = "orders"
	HookCreateTable                  = Hook(ast.KindCreateTable)
	HookAlterTable                   = Hook(ast.KindAlterTable)
	HookCreateIndex                  = Hook(ast.KindCreateIndex)
	HookStandaloneComment            = Hook(ast.KindStandaloneComment)
	HookIndex                        = Hook(ast.KindIndex)
	HookTableEntries            Hook = "tableEntries"
	HookColumn                       = Hook(ast.KindColumn)
	HookTableConstraintComposition   = Hook(ast.KindTableConstraintComposition)
	HookStandaloneTableComment       = Hook(ast.KindStandaloneTableComment)
	HookTableConstraints        Hook = "tableConstraints"
	HookPrimaryKeyConstraint         = Hook(ast.KindPrimaryKeyConstraint)
	HookUniqueConstraint             = Hook(ast.KindUniqueConstraint)
	HookForeignKeyConstraint         = Hook(ast.KindForeignKeyConstraint)
	HookColumnCompositions      Hook = "columnConstraintCompositions"
	HookColumnComposition            = Hook(ast.KindColumnConstraintComposition)
	HookColumnConstraints       Hook = "columnConstraints"
	HookNotNull                      = Hook(ast.KindNotNull)
	HookNull                         = Hook(ast.KindNull)
	HookDefault                      = Hook(ast.KindDefault)
	HookPrimaryKey                   = Hook(ast.KindPrimaryKey)
	HookUnique                       = Hook(ast.KindUnique)
	HookAutoincrement                = Hook(ast.KindAutoincrement)
	HookColumnForeignKey             = Hook(ast.KindColumnForeignKey)
)

// Shape describes one position of the tree: *ObjectShape, *ArrayShape or
// *DynamicShape.
type Shape interface {
	nodeType() reflect.Type
}

// Field is a named child position of an object.
type Field struct {
	Name  string
	Get   func(node any) any
	Set   func(node any, value any) // applied to a shallow copy only
	Shape Shape
}

// ObjectShape is a single node with named children.
type ObjectShape struct {
	Hook   Hook
	Fields []Field
	Copy   func(node any) any
	// Empty, when set, reports a node that no longer means anything once
	// rules removed its children. Such a node is deleted from its parent.
	Empty func(node any) bool
	typ   reflect.Type
}

// ArrayShape is an ordered collection whose elements share one shape.
type ArrayShape struct {
	Hook   Hook
	Elem   Shape
	unpack func(any) []any
	pack   func([]any) any
	typ    reflect.Type
}

// DynamicShape picks the shape of a node from its kind. A node whose kind
// has no variant is passed through unmodified.
type DynamicShape struct {
	Variants map[ast.Kind]Shape
	typ      reflect.Type
}

func (s *ObjectShape) nodeType() reflect.Type  { return s.typ }
func (s *ArrayShape) nodeType() reflect.Type   { return s.typ }
func (s *DynamicShape) nodeType() reflect.Type { return s.typ }

// Resolve returns the shape for node, or nil.
func (s *DynamicShape) Resolve(node any) Shape {
	n, ok := node.(ast.Node)
	if !ok {
		return nil
	}
	return s.Variants[n.Kind()]
}

func object[N any](hook Hook, fields ...Field) *ObjectShape {
	return &ObjectShape{
		Hook:   hook,
		Fields: fields,
		Copy: func(node any) any {
			c := *(node.(*N))
			return &c
		},
		typ: reflect.TypeFor[*N](),
	}
}

func droppedWhenEmpty[N any](s *ObjectShape, empty func(*N) bool) *ObjectShape {
	s.Empty = func(node any) bool { return empty(node.(*N)) }
	return s
}

func field[N, V any](name string, get func(*N) V, set func(*N, V), shape Shape) Field {
	return Field{
		Name:  name,
		Shape: shape,
		Get:   func(node any) any { return get(node.(*N)) },
		Set: func(node, value any) {
			v, _ := value.(V)
			set(node.(*N), v)
		},
	}
}

func arrayOf[T any](hook Hook, elem Shape) *ArrayShape {
	return &ArrayShape{
		Hook: hook,
		Elem: elem,
		unpack: func(v any) []any {
			items, _ := v.([]T)
			out := make([]any, len(items))
			for i, item := range items {
				out[i] = item
			}
			return out
		},
		pack: func(items []any) any {
			if len(items) == 0 {
				return []T(nil)
			}
			out := make([]T, len(items))
			for i, item := range items {
				out[i], _ = item.(T)
			}
			return out
		},
		typ: reflect.TypeFor[[]T](),
	}
}

func dynamic[T any](variants ...Shape) *DynamicShape {
	d := &DynamicShape{Variants: make(map[ast.Kind]Shape, len(variants)), typ: reflect.TypeFor[T]()}
	for _, v := range variants {
		obj := v.(*ObjectShape)
		d.Variants[ast.Kind(obj.Hook)] = v
	}
	return d
}

// -----------------------------------------------------------------------------
// The tree shape of an *ast.Ast
// -----------------------------------------------------------------------------

var (
	columnConstraintShape = dynamic[ast.ColumnConstraint](
		object[ast.NotNull](HookNotNull),
		object[ast.Null](HookNull),
		object[ast.Default](HookDefault),
		object[ast.PrimaryKey](HookPrimaryKey),
		object[ast.Unique](HookUnique),
		object[ast.Autoincrement](HookAutoincrement),
		object[ast.ColumnForeignKey](HookColumnForeignKey),
	)

	columnCompositionShape = droppedWhenEmpty(object[ast.ColumnConstraintComposition](HookColumnComposition,
		field("constraints",
			func(n *ast.ColumnConstraintComposition) []ast.ColumnConstraint { return n.Constraints },
			func(n *ast.ColumnConstraintComposition, v []ast.ColumnConstraint) { n.Constraints = v },
			arrayOf[ast.ColumnConstraint](HookColumnConstraints, columnConstraintShape)),
	), func(n *ast.ColumnConstraintComposition) bool { return len(n.Constraints) == 0 })

	tableConstraintShape = dynamic[ast.TableConstraint](
		object[ast.PrimaryKeyConstraint](HookPrimaryKeyConstraint),
		object[ast.UniqueConstraint](HookUniqueConstraint),
		object[ast.ForeignKeyConstraint](HookForeignKeyConstraint),
	)

	tableEntryShape = dynamic[ast.TableEntry](
		object[ast.Column](HookColumn,
			field("constraints",
				func(n *ast.Column) []*ast.ColumnConstraintComposition { return n.Constraints },
				func(n *ast.Column, v []*ast.ColumnConstraintComposition) { n.Constraints = v },
				arrayOf[*ast.ColumnConstraintComposition](HookColumnCompositions, columnCompositionShape)),
		),
		droppedWhenEmpty(object[ast.TableConstraintComposition](HookTableConstraintComposition,
			field("constraints",
				func(n *ast.TableConstraintComposition) []ast.TableConstraint { return n.Constraints },
				func(n *ast.TableConstraintComposition, v []ast.TableConstraint) { n.Constraints = v },
				arrayOf[ast.TableConstraint](HookTableConstraints, tableConstraintShape)),
		), func(n *ast.TableConstraintComposition) bool { return len(n.Constraints) == 0 }),
		object[ast.StandaloneTableComment](HookStandaloneTableComment),
	)

	tableEntriesShape = arrayOf[ast.TableEntry](HookTableEntries, tableEntryShape)

	orderShape = dynamic[ast.Order](
		object[ast.CreateTable](HookCreateTable,
			field("entries",
				func(n *ast.CreateTable) []ast.TableEntry { return n.Entries },
				func(n *ast.CreateTable, v []ast.TableEntry) { n.Entries = v },
				tableEntriesShape),
		),
		object[ast.AlterTable](HookAlterTable,
			field("add",
				func(n *ast.AlterTable) []ast.TableEntry { return n.Add },
				func(n *ast.AlterTable, v []ast.TableEntry) { n.Add = v },
				tableEntriesShape),
		),
		object[ast.CreateIndex](HookCreateIndex,
			field("index",
				func(n *ast.CreateIndex) *ast.Index { return n.Index },
				func(n *ast.CreateIndex, v *ast.Index) { n.Index = v },
				object[ast.Index](HookIndex)),
		),
		object[ast.StandaloneComment](HookStandaloneComment),
	)

	// AstShape is the descriptor of the whole tree, shared by every Modify call.
	AstShape = object[ast.Ast](HookAst,
		field("orders",
			func(n *ast.Ast) []ast.Order { return n.Orders },
			func(n *ast.Ast, v []ast.Order) { n.Orders = v },
			arrayOf[ast.Order](HookOrders, orderShape)),
	)
)

// hookTypes maps every hook of AstShape to the Go type of its nodes.
var hookTypes = collectHooks(AstShape, map[Hook]reflect.Type{})

func collectHooks(s Shape, into map[Hook]reflect.Type) map[Hook]reflect.Type {
	switch s := s.(type) {
	case *ObjectShape:
		if _, seen := into[s.Hook]; seen {
			return into
		}
		into[s.Hook] = s.typ
		for _, f := range s.Fields {
			collectHooks(f.Shape, into)
		}
	case *ArrayShape:
		if _, seen := into[s.Hook]; seen {
			return into
		}
		into[s.Hook] = s.typ
		if s.Elem != nil {
			collectHooks(s.Elem, into)
		}
	case *DynamicShape:
		for _, v := range s.Variants {
			collectHooks(v, into)
		}
	}
	return into
}

// Hooks returns every hook name known to the tree shape.
func Hooks() []Hook {
	out := make([]Hook, 0, len(hookTypes))
	for h := range hookTypes {
		out = append(out, h)
	}
	return out
}
