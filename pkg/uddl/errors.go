// Package uddl is the public API of the universal DDL toolkit: parse a
// schema written in the dialect-neutral DDL, check it for relational
// consistency, repair forward-referencing foreign keys, and render it
// for PostgreSQL, SQLite or MariaDB.
package uddl

import (
	"strings"

	"github.com/hlop3z/uddl/internal/alerr"
)

// Sentinel errors for the error families of the toolkit. They match any
// error of the same family with errors.Is:
//
//	if errors.Is(err, uddl.ErrSyntax) { ... }
var (
	// ErrSyntax is returned for malformed DDL input.
	ErrSyntax error = alerr.New(alerr.ErrSyntax, "uddl: syntax error")

	// ErrValidation is returned when a schema fails the consistency check.
	ErrValidation error = alerr.New(alerr.ErrConsistency, "uddl: schema is inconsistent")

	// ErrAutofix is returned when a foreign key references a table that
	// is never declared.
	ErrAutofix error = alerr.New(alerr.ErrAutofix, "uddl: autofix failed")

	// ErrGeneration is returned when a dialect cannot express a schema.
	ErrGeneration error = alerr.New(alerr.ErrGeneration, "uddl: generation failed")

	// ErrUnknownDialect is returned for a dialect name that is not supported.
	ErrUnknownDialect error = alerr.New(alerr.ErrUnknownDialect, "uddl: unknown dialect")

	// ErrImport is returned when PostgreSQL DDL cannot be parsed.
	ErrImport error = alerr.New(alerr.ErrImport, "uddl: import failed")

	// ErrImportUnsupported is returned for PostgreSQL constructs that have
	// no universal DDL equivalent.
	ErrImportUnsupported error = alerr.New(alerr.ErrImportUnsupported, "uddl: unsupported construct")

	// ErrContract is returned when the API is misused, for instance when
	// the relational model of an inconsistent schema is requested.
	ErrContract error = alerr.New(alerr.ErrContract, "uddl: contract violation")
)

// ValidationError aggregates the consistency messages of a schema.
type ValidationError struct {
	// Errors are the messages of the consistency check, in order.
	Errors []string
}

// Error returns the messages joined by newlines.
func (e *ValidationError) Error() string {
	return strings.Join(e.Errors, "\n")
}

// Is reports whether this error matches the target error.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
