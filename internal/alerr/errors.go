// Package alerr provides the coded errors used across uddl.
// Every error carries a stable code, a message and structured context.
package alerr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Code represents a stable, machine-readable error code.
// Format: E{category}{number}.
type Code string

// Error codes organized by category.
const (
	// Syntax errors (E1xxx) - malformed DDL input
	ErrSyntax        Code = "E1001" // Input DDL does not match the grammar
	ErrSyntaxComment Code = "E1002" // Comment line is not "-- " prefixed

	// Consistency errors (E2xxx) - semantic problems found by the checker
	ErrConsistency Code = "E2001" // One or more consistency rules failed

	// Autofix errors (E3xxx)
	ErrAutofix Code = "E3001" // Forward reference to a table that is never declared

	// Generation errors (E4xxx) - a dialect cannot render the AST
	ErrGeneration     Code = "E4001" // Node cannot be expressed in the dialect
	ErrUnknownDialect Code = "E4002" // Dialect name is not registered

	// Import errors (E5xxx) - PostgreSQL import front end
	ErrImport            Code = "E5001" // Statement could not be converted
	ErrImportUnsupported Code = "E5002" // Type or construct has no AST equivalent

	// Config errors (E6xxx) - CLI configuration and file handling
	ErrConfig     Code = "E6001" // Config file is malformed
	ErrFileRead   Code = "E6002" // Input file could not be read
	ErrFileWrite  Code = "E6003" // Output file could not be written
	ErrFileExists Code = "E6004" // Output file exists and --force was not given

	// Contract errors (E9xxx) - programming errors in the calling code
	ErrContract Code = "E9001" // Precondition violated (bug, not user data)
)

// Error is the standard error type for uddl.
type Error struct {
	code    Code
	message string
	context map[string]any
	cause   error
}

// Error returns the formatted error string.
// Format:
//
//	[E1001] expected ";"
//	  line: 3
//	  column: 7
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.code, e.message))

	if len(e.context) > 0 {
		keys := make([]string, 0, len(e.context))
		for k := range e.context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			if k == "source" || k == "span_start" || k == "span_end" {
				continue
			}
			b.WriteString(fmt.Sprintf("\n  %s: %v", k, e.context[k]))
		}
	}

	if e.cause != nil {
		b.WriteString(fmt.Sprintf("\n  cause: %v", e.cause))
	}

	return b.String()
}

// Unwrap returns the underlying cause error for errors.Unwrap compatibility.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}

	var targetErr *Error
	if errors.As(target, &targetErr) {
		return e.code == targetErr.code
	}

	return false
}

// GetCode returns the error code.
func (e *Error) GetCode() Code {
	return e.code
}

// GetMessage returns the error message.
func (e *Error) GetMessage() string {
	return e.message
}

// GetContext returns the error context map.
func (e *Error) GetContext() map[string]any {
	return e.context
}

// GetCause returns the underlying cause error.
func (e *Error) GetCause() error {
	return e.cause
}

// With adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *Error) With(key string, value any) *Error {
	if e.context == nil {
		e.context = make(map[string]any)
	}
	e.context[key] = value
	return e
}

// WithTable adds table context to the error.
func (e *Error) WithTable(table string) *Error {
	return e.With("table", table)
}

// WithColumn adds column context to the error.
func (e *Error) WithColumn(name string) *Error {
	return e.With("column_name", name)
}

// WithDialect adds dialect context to the error.
func (e *Error) WithDialect(name string) *Error {
	return e.With("dialect", name)
}

// WithLocation adds complete source location context (file, line, column).
func (e *Error) WithLocation(file string, line, col int) *Error {
	if file != "" {
		e.With("file", file)
	}
	if line > 0 {
		e.With("line", line)
	}
	if col > 0 {
		e.With("column", col)
	}
	return e
}

// WithSource adds the source code line for display in error messages.
func (e *Error) WithSource(source string) *Error {
	return e.With("source", source)
}

// WithSpan adds the span (start, end columns) for highlighting in error messages.
func (e *Error) WithSpan(start, end int) *Error {
	e.With("span_start", start)
	e.With("span_end", end)
	return e
}

// WithNote adds a note to the error (displayed as "note: ...").
func (e *Error) WithNote(note string) *Error {
	notes, _ := e.context["notes"].([]string)
	notes = append(notes, note)
	return e.With("notes", notes)
}

// WithHelp adds a help suggestion to the error (displayed as "help: ...").
func (e *Error) WithHelp(help string) *Error {
	if help == "" {
		return e
	}
	helps, _ := e.context["helps"].([]string)
	helps = append(helps, help)
	return e.With("helps", helps)
}

// Location returns the file location if set.
func (e *Error) Location() (file string, line, col int, ok bool) {
	file, _ = e.context["file"].(string)
	line, _ = e.context["line"].(int)
	col, _ = e.context["column"].(int)
	ok = line > 0
	return
}

// Notes returns all notes attached to this error.
func (e *Error) Notes() []string {
	notes, _ := e.context["notes"].([]string)
	return notes
}

// Helps returns all help suggestions attached to this error.
func (e *Error) Helps() []string {
	helps, _ := e.context["helps"].([]string)
	return helps
}

// New creates a new Error with the given code and message.
func New(code Code, msg string) *Error {
	return &Error{
		code:    code,
		message: msg,
		context: make(map[string]any),
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates a new Error that wraps an existing error.
func Wrap(code Code, err error, msg string) *Error {
	e := New(code, msg)
	e.cause = err
	return e
}

// Wrapf creates a new Error that wraps an existing error with a formatted message.
func Wrapf(code Code, err error, format string, args ...any) *Error {
	return Wrap(code, err, fmt.Sprintf(format, args...))
}

// GetErrorCode extracts the error code from an error chain.
// Returns empty string if no code is found.
func GetErrorCode(err error) Code {
	if err == nil {
		return ""
	}

	var alerr *Error
	if errors.As(err, &alerr) {
		return alerr.code
	}

	return ""
}

// Is checks if an error has the specified code.
func Is(err error, code Code) bool {
	return GetErrorCode(err) == code
}

// Contract reports a violated precondition. These errors point at a bug in
// the caller or in a dialect definition, never at user input.
func Contract(format string, args ...any) *Error {
	return Newf(ErrContract, format, args...)
}
