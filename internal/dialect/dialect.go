// Package dialect renders a schema AST as DDL text for a target database.
//
// Rendering goes through an intermediate tree of Pieces (lines and
// indented blocks) built by per-node render functions, then flattened to
// text. A dialect is the universal set of render functions with a few
// entries replaced, plus an optional modifier pre-pass that reshapes the
// tree into a form the dialect can express.
package dialect

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hlop3z/uddl/internal/alerr"
	"github.com/hlop3z/uddl/internal/ast"
	"github.com/hlop3z/uddl/internal/modifier"
)

// Dialect describes one target.
type Dialect struct {
	Name     string
	Aliases  []string
	Sections Sections

	// Rules returns the modifier rules applied to the tree before
	// rendering. Nil for none.
	Rules func() []modifier.Rule

	// DropTable renders the drop statement of a table. Nil when the
	// dialect has no drop syntax.
	DropTable func(table string) string
}

// Universal is the name of the neutral dialect.
const Universal = "universal"

func universal() *Dialect {
	return &Dialect{
		Name:     Universal,
		Aliases:  []string{"universalddl"},
		Sections: universalSections(),
	}
}

var registry = func() map[string]*Dialect {
	m := make(map[string]*Dialect)
	for _, d := range []*Dialect{universal(), postgresql(), sqlite(), mariadb()} {
		m[d.Name] = d
		for _, alias := range d.Aliases {
			m[alias] = d
		}
	}
	return m
}()

// Get returns the dialect registered under name or one of its aliases,
// ignoring case.
func Get(name string) (*Dialect, error) {
	if d, ok := registry[strings.ToLower(name)]; ok {
		return d, nil
	}
	options := make([]string, 0, len(registry))
	for key := range registry {
		options = append(options, key)
	}
	slices.Sort(options)
	return nil, alerr.Newf(alerr.ErrUnknownDialect, "Unknown dialect: %s", name).
		WithHelp(alerr.SuggestSimilar(name, Names())).
		WithNote("accepted names: " + strings.Join(options, ", "))
}

// Names returns the canonical dialect names.
func Names() []string {
	return []string{Universal, "postgresql", "sqlite", "mariadb"}
}

// -----------------------------------------------------------------------------
// Options
// -----------------------------------------------------------------------------

// Options control the text layout.
type Options struct {
	// IndentUnit is the indentation of one nesting level.
	IndentUnit string
	// GenerateDrop prefixes the output with drop statements.
	GenerateDrop bool
}

// Option configures a generation.
type Option func(*Options)

// WithIndent sets the indentation unit. The default is two spaces.
func WithIndent(unit string) Option {
	return func(o *Options) {
		o.IndentUnit = unit
	}
}

// WithDrop requests drop statements before the schema.
func WithDrop(drop bool) Option {
	return func(o *Options) {
		o.GenerateDrop = drop
	}
}

func newOptions(opts []Option) Options {
	o := Options{IndentUnit: "  "}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// -----------------------------------------------------------------------------
// Generation
// -----------------------------------------------------------------------------

// Generate renders tree in the named dialect. The tree is not modified.
func Generate(tree *ast.Ast, name string, opts ...Option) (string, error) {
	d, err := Get(name)
	if err != nil {
		return "", err
	}
	return d.Generate(tree, opts...)
}

// Generate renders tree in this dialect.
func (d *Dialect) Generate(tree *ast.Ast, opts ...Option) (string, error) {
	if tree == nil {
		tree = &ast.Ast{}
	}
	o := newOptions(opts)

	if d.Rules != nil {
		modified, err := modifier.Modify(tree, d.Rules()...)
		if err != nil {
			return "", err
		}
		tree = modified
	}

	sections := d.Sections
	cx := &Context{Dialect: d.Name, Sections: &sections, Options: o}
	piece, err := cx.Ast(tree)
	if err != nil {
		return "", err
	}

	var drop string
	if o.GenerateDrop && d.DropTable != nil {
		drop = dropStatements(tree, d.DropTable)
	}
	out := drop + Flatten(piece, o.IndentUnit)
	slog.Debug("ddl generated", "dialect", d.Name, "orders", len(tree.Orders), "bytes", len(out))
	return out, nil
}

// GenerateAll renders tree in several dialects concurrently. The result is
// keyed by the names as given. The first failure cancels the others.
func GenerateAll(ctx context.Context, tree *ast.Ast, names []string, opts ...Option) (map[string]string, error) {
	dialects := make([]*Dialect, len(names))
	for i, name := range names {
		d, err := Get(name)
		if err != nil {
			return nil, err
		}
		dialects[i] = d
	}

	outputs := make([]string, len(names))
	g, ctx := errgroup.WithContext(ctx)
	for i, d := range dialects {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := d.Generate(tree, opts...)
			if err != nil {
				return err
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make(map[string]string, len(names))
	for i, name := range names {
		result[name] = outputs[i]
	}
	return result, nil
}

// dropStatements drops every created table, last created first.
func dropStatements(tree *ast.Ast, drop func(string) string) string {
	var lines []string
	for _, o := range slices.Backward(tree.Orders) {
		if ct, ok := o.(*ast.CreateTable); ok {
			lines = append(lines, drop(ct.Name))
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n\n"
}
