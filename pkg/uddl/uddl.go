package uddl

import (
	"context"
	"log/slog"
	"os"

	"github.com/hlop3z/uddl/internal/alerr"
	"github.com/hlop3z/uddl/internal/ast"
	"github.com/hlop3z/uddl/internal/autofix"
	"github.com/hlop3z/uddl/internal/consistency"
	"github.com/hlop3z/uddl/internal/dialect"
	"github.com/hlop3z/uddl/internal/drift"
	"github.com/hlop3z/uddl/internal/parser"
	"github.com/hlop3z/uddl/internal/pgimport"
	"github.com/hlop3z/uddl/internal/rds"
)

type (
	// Ast is a parsed schema. Values are never modified by this package;
	// every transformation returns a new tree.
	Ast = ast.Ast

	// Report is the result of a consistency check.
	Report = consistency.Report

	// Rds is the cross-linked relational model of a schema.
	Rds = rds.Rds

	// SchemaHash is the fingerprint of a schema.
	SchemaHash = drift.SchemaHash

	// Comparison lists the differences between two schemas.
	Comparison = drift.Comparison
)

// Dialects returns the names of the supported target dialects.
func Dialects() []string {
	return dialect.Names()
}

// Parse parses universal DDL source.
//
// Example:
//
//	schema, err := uddl.Parse(src, uddl.WithAutofix(), uddl.WithConsistencyCheck())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sql, err := uddl.Generate(schema, "postgresql")
func Parse(source string, opts ...Option) (*Ast, error) {
	cfg := newConfig(Config{}, opts)

	tree, err := parser.ParseFile(cfg.Filename, source)
	if err != nil {
		return nil, err
	}
	if cfg.Autofix {
		if tree, err = autofix.Apply(tree); err != nil {
			return nil, err
		}
	}
	if cfg.CheckConsistency {
		if err := validate(tree); err != nil {
			return nil, err
		}
	}
	slog.Debug("schema parsed", "file", cfg.Filename, "orders", len(tree.Orders))
	return tree, nil
}

// ParseFile reads and parses a universal DDL file. The path is used as the
// file name in error locations.
func ParseFile(path string, opts ...Option) (*Ast, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrFileRead, err, "cannot read schema file").With("file", path)
	}
	return Parse(string(data), append([]Option{WithFilename(path)}, opts...)...)
}

// CheckConsistency validates a schema. It never fails; problems are
// listed in the report.
func CheckConsistency(a *Ast) Report {
	return consistency.Check(a)
}

func validate(tree *Ast) error {
	report := consistency.Check(tree)
	if report.Valid {
		return nil
	}
	return &ValidationError{Errors: report.Errors}
}

// Autofix moves foreign keys that reference a table declared later into
// alter table statements placed after that table.
func Autofix(a *Ast, opts ...AutofixOption) (*Ast, error) {
	cfg := AutofixConfig{ForeignKeys: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	return autofix.Apply(a, autofix.WithForeignKeys(cfg.ForeignKeys))
}

func dialectOptions(opts []GenerateOption) []dialect.Option {
	cfg := GenerateConfig{IndentUnit: "  "}
	for _, opt := range opts {
		opt(&cfg)
	}
	return []dialect.Option{dialect.WithIndent(cfg.IndentUnit), dialect.WithDrop(cfg.GenerateDrop)}
}

// Generate renders a schema in one dialect: universal, postgresql, sqlite
// or mariadb (aliases such as postgres or mysql are accepted).
func Generate(a *Ast, dialectName string, opts ...GenerateOption) (string, error) {
	return dialect.Generate(a, dialectName, dialectOptions(opts)...)
}

// GenerateAll renders a schema in several dialects concurrently. The
// result is keyed by the names as given; one failing dialect fails the
// call.
func GenerateAll(ctx context.Context, a *Ast, dialects []string, opts ...GenerateOption) (map[string]string, error) {
	return dialect.GenerateAll(ctx, a, dialects, dialectOptions(opts)...)
}

// ToRelationalModel builds the cross-linked relational model of a schema.
// The schema is checked first; an inconsistent one is a contract
// violation. WithoutConsistencyCheck skips the check.
func ToRelationalModel(a *Ast, opts ...Option) (*Rds, error) {
	cfg := newConfig(Config{CheckConsistency: true}, opts)
	if cfg.CheckConsistency {
		if err := validate(a); err != nil {
			return nil, alerr.Wrap(alerr.ErrContract, err, "relational model of an inconsistent schema")
		}
	}
	return rds.Build(a)
}

// ImportPostgres converts PostgreSQL DDL into a universal DDL schema.
// Statements other than create table, alter table and create index are
// skipped with a warning.
func ImportPostgres(sql string) (*Ast, error) {
	return pgimport.Import(sql)
}

// Fingerprint hashes the structure of a schema. Comments and declaration
// order do not change the fingerprint.
func Fingerprint(a *Ast) (*SchemaHash, error) {
	return drift.Fingerprint(a)
}

// Compare reports the tables added, removed and changed from a to b.
func Compare(a, b *Ast) (*Comparison, error) {
	return drift.Diff(a, b)
}
