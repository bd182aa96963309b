package modifier

import "reflect"

type ruleKind int

const (
	replacerRule ruleKind = iota
	listenerRule
	inserterRule
)

func (k ruleKind) String() string {
	switch k {
	case replacerRule:
		return "replacer"
	case listenerRule:
		return "listener"
	default:
		return "inserter"
	}
}

// Rule is one replacer, listener or inserter bound to a hook.
// Build rules with Replace, Listen and InsertAfter.
type Rule struct {
	hook     Hook
	kind     ruleKind
	nodeType reflect.Type
	replace  func(any) (any, bool)
	listen   func(any)
	insert   func(any, int) []any
}

// Hook returns the hook the rule is registered on.
func (r Rule) Hook() Hook { return r.hook }

// Replace registers a replacer. fn returns the replacement node (or the
// node itself) and false to delete the node from its parent collection.
// T must be the node type of the hook, e.g. *ast.Column for HookColumn or
// []ast.TableEntry for HookTableEntries.
func Replace[T any](hook Hook, fn func(node T) (T, bool)) Rule {
	return Rule{
		hook:     hook,
		kind:     replacerRule,
		nodeType: reflect.TypeFor[T](),
		replace: func(node any) (any, bool) {
			return fn(node.(T))
		},
	}
}

// Listen registers an observer called before the node's replacers and
// children, in document order.
func Listen[T any](hook Hook, fn func(node T)) Rule {
	return Rule{
		hook:     hook,
		kind:     listenerRule,
		nodeType: reflect.TypeFor[T](),
		listen: func(node any) {
			fn(node.(T))
		},
	}
}

// InsertAfter registers an inserter on an array hook. fn is called with
// each surviving element once the whole array was walked; the returned
// elements are spliced in right after it. T is the element type.
func InsertAfter[T any](hook Hook, fn func(elem T, index int) []T) Rule {
	return Rule{
		hook:     hook,
		kind:     inserterRule,
		nodeType: reflect.TypeFor[T](),
		insert: func(elem any, index int) []any {
			extra := fn(elem.(T), index)
			out := make([]any, len(extra))
			for i, e := range extra {
				out[i] = e
			}
			return out
		},
	}
}
