package alerr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// -----------------------------------------------------------------------------
// Constructor Tests
// -----------------------------------------------------------------------------

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    Code
		message string
	}{
		{"syntax error", ErrSyntax, `expected ";"`},
		{"consistency error", ErrConsistency, "schema is inconsistent"},
		{"autofix error", ErrAutofix, "Missing referenced table(s): B"},
		{"generation error", ErrGeneration, "cannot render"},
		{"contract error", ErrContract, "unknown table"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message)
			if err.GetCode() != tt.code {
				t.Errorf("code = %v, want %v", err.GetCode(), tt.code)
			}
			if err.GetMessage() != tt.message {
				t.Errorf("message = %v, want %v", err.GetMessage(), tt.message)
			}
			if err.GetCause() != nil {
				t.Error("expected nil cause for New()")
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(ErrUnknownDialect, "Unknown dialect: %s", "oracle")
	if err.GetMessage() != "Unknown dialect: oracle" {
		t.Errorf("message = %q", err.GetMessage())
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(ErrFileWrite, cause, "cannot write output")

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
	if !strings.Contains(err.Error(), "cause: disk full") {
		t.Errorf("Error() should include the cause, got %q", err.Error())
	}
}

// -----------------------------------------------------------------------------
// Context Tests
// -----------------------------------------------------------------------------

func TestErrorFormatting(t *testing.T) {
	err := New(ErrSyntax, `expected ";"`).
		WithLocation("schema.sql", 3, 7).
		WithSource("create table t1 (").
		WithSpan(7, 8)

	got := err.Error()
	want := "[E1001] expected \";\"\n  column: 7\n  file: schema.sql\n  line: 3"
	if got != want {
		t.Errorf("Error() =\n%s\nwant:\n%s", got, want)
	}
}

func TestLocation(t *testing.T) {
	err := New(ErrSyntax, "boom").WithLocation("", 4, 2)
	file, line, col, ok := err.Location()
	if file != "" || line != 4 || col != 2 || !ok {
		t.Errorf("Location() = %q, %d, %d, %v", file, line, col, ok)
	}

	_, _, _, ok = New(ErrSyntax, "boom").Location()
	if ok {
		t.Error("Location() should report false without a line")
	}
}

func TestNotesAndHelps(t *testing.T) {
	err := New(ErrUnknownDialect, "Unknown dialect: postgre").
		WithNote("known dialects: universal, postgresql, sqlite, mariadb").
		WithHelp("did you mean 'postgresql'?").
		WithHelp("")

	if len(err.Notes()) != 1 {
		t.Errorf("Notes() = %v", err.Notes())
	}
	if len(err.Helps()) != 1 {
		t.Errorf("empty help should be ignored, Helps() = %v", err.Helps())
	}
}

// -----------------------------------------------------------------------------
// Code Matching Tests
// -----------------------------------------------------------------------------

func TestIs(t *testing.T) {
	err := New(ErrGeneration, "cannot render").WithDialect("postgresql")
	wrapped := fmt.Errorf("generate: %w", err)

	if !Is(wrapped, ErrGeneration) {
		t.Error("Is should see through fmt wrapping")
	}
	if Is(wrapped, ErrSyntax) {
		t.Error("Is should not match a different code")
	}
	if !errors.Is(wrapped, New(ErrGeneration, "other message")) {
		t.Error("errors.Is should match on code")
	}
	if GetErrorCode(errors.New("plain")) != "" {
		t.Error("plain errors have no code")
	}
	if GetErrorCode(nil) != "" {
		t.Error("nil has no code")
	}
}

func TestContract(t *testing.T) {
	err := Contract("unknown table %q", "t9")
	if err.GetCode() != ErrContract {
		t.Errorf("code = %v", err.GetCode())
	}
	if err.GetMessage() != `unknown table "t9"` {
		t.Errorf("message = %q", err.GetMessage())
	}
}
