// Package modifier rewrites an AST with hook-keyed rules.
//
// A rule only says which node kind it targets and what to do with it; the
// walk itself is driven by the tree shape (AstShape). Every Modify call is a
// single depth-first pass: listeners and replacers run pre-order, inserters
// run once their array has been walked. A constraint composition whose
// constraints were all deleted is deleted too. Subtrees no rule touched
// are returned as-is, so callers can compare pointers to detect a no-op.
package modifier

import (
	"log/slog"
	"reflect"

	"github.com/hlop3z/uddl/internal/alerr"
	"github.com/hlop3z/uddl/internal/ast"
)

// Modify applies rules to tree and returns the resulting tree. With no
// rules the input is returned unchanged. A nil tree yields an empty Ast.
func Modify(tree *ast.Ast, rules ...Rule) (*ast.Ast, error) {
	if tree == nil {
		return &ast.Ast{}, nil
	}
	if len(rules) == 0 {
		return tree, nil
	}

	e, err := newEngine(rules)
	if err != nil {
		return nil, err
	}

	out, deleted := e.walk(tree, AstShape)
	if deleted {
		return nil, alerr.Contract("a rule deleted the root of the tree")
	}
	slog.Debug("ast modified", "rules", len(rules), "changed", out != any(tree))
	return out.(*ast.Ast), nil
}

type engine struct {
	replacers map[Hook][]func(any) (any, bool)
	listeners map[Hook][]func(any)
	inserters map[Hook][]func(any, int) []any
}

func newEngine(rules []Rule) (*engine, error) {
	e := &engine{
		replacers: make(map[Hook][]func(any) (any, bool)),
		listeners: make(map[Hook][]func(any)),
		inserters: make(map[Hook][]func(any, int) []any),
	}
	for _, r := range rules {
		if err := checkRule(r); err != nil {
			return nil, err
		}
		switch r.kind {
		case replacerRule:
			e.replacers[r.hook] = append(e.replacers[r.hook], r.replace)
		case listenerRule:
			e.listeners[r.hook] = append(e.listeners[r.hook], r.listen)
		case inserterRule:
			e.inserters[r.hook] = append(e.inserters[r.hook], r.insert)
		}
	}
	return e, nil
}

func checkRule(r Rule) error {
	want, ok := hookTypes[r.hook]
	if !ok {
		return alerr.Contract("unknown hook %q", r.hook).With("rule", r.kind.String())
	}
	if r.kind == inserterRule {
		if want.Kind() != reflect.Slice {
			return alerr.Contract("inserter registered on non-array hook %q", r.hook)
		}
		want = want.Elem()
	}
	if r.nodeType != want {
		return alerr.Contract("%s on hook %q expects %s, got %s", r.kind, r.hook, want, r.nodeType)
	}
	return nil
}

func (e *engine) walk(node any, s Shape) (any, bool) {
	switch s := s.(type) {
	case *ObjectShape:
		return e.walkObject(node, s)
	case *ArrayShape:
		return e.walkArray(node, s)
	case *DynamicShape:
		resolved := s.Resolve(node)
		if resolved == nil {
			return node, false
		}
		return e.walk(node, resolved)
	}
	return node, false
}

func (e *engine) walkObject(node any, s *ObjectShape) (any, bool) {
	if isNil(node) {
		return node, false
	}
	for _, listen := range e.listeners[s.Hook] {
		listen(node)
	}
	cur := node
	for _, replace := range e.replacers[s.Hook] {
		next, keep := replace(cur)
		if !keep {
			return nil, true
		}
		cur = next
	}
	if isNil(cur) {
		return cur, false
	}

	var copied any
	for _, f := range s.Fields {
		child := f.Get(cur)
		updated, deleted := e.walk(child, f.Shape)
		if deleted {
			updated = nil
		} else if identical(updated, child) {
			continue
		}
		if copied == nil {
			copied = s.Copy(cur)
		}
		f.Set(copied, updated)
	}
	if copied != nil {
		if s.Empty != nil && s.Empty(copied) {
			return nil, true
		}
		return copied, false
	}
	return cur, false
}

func (e *engine) walkArray(node any, s *ArrayShape) (any, bool) {
	if isNil(node) {
		return node, false
	}
	for _, listen := range e.listeners[s.Hook] {
		listen(node)
	}
	cur := node
	for _, replace := range e.replacers[s.Hook] {
		next, keep := replace(cur)
		if !keep {
			return nil, true
		}
		cur = next
	}

	inserters := e.inserters[s.Hook]
	if s.Elem == nil && len(inserters) == 0 {
		return cur, false
	}

	items := s.unpack(cur)
	changed := false
	if s.Elem != nil {
		kept := make([]any, 0, len(items))
		for _, item := range items {
			updated, deleted := e.walk(item, s.Elem)
			if deleted {
				changed = true
				continue
			}
			if !identical(updated, item) {
				changed = true
			}
			kept = append(kept, updated)
		}
		items = kept
	}

	if len(inserters) > 0 {
		spliced := make([]any, 0, len(items))
		for i, item := range items {
			spliced = append(spliced, item)
			for _, insert := range inserters {
				if extra := insert(item, i); len(extra) > 0 {
					spliced = append(spliced, extra...)
					changed = true
				}
			}
		}
		items = spliced
	}

	if !changed {
		return cur, false
	}
	return s.pack(items), false
}

// identical reports reference identity: same pointer, or same backing
// array and length for slices.
func identical(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !va.IsValid() || !vb.IsValid() {
		return va.IsValid() == vb.IsValid()
	}
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Slice:
		return va.Len() == vb.Len() && va.Pointer() == vb.Pointer()
	case reflect.Pointer, reflect.Map, reflect.Func:
		return va.Pointer() == vb.Pointer()
	}
	if !va.Type().Comparable() {
		return false
	}
	return va.Interface() == vb.Interface()
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
