package cli

import (
	"errors"
	"strings"

	"github.com/hlop3z/uddl/internal/alerr"
	"github.com/hlop3z/uddl/internal/consistency"
)

// Diagnostic is the JSON form of one error.
type Diagnostic struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	File    string   `json:"file,omitempty"`
	Line    int      `json:"line,omitempty"`
	Column  int      `json:"column,omitempty"`
	Help    []string `json:"help,omitempty"`
}

// CheckResult is the JSON document printed by "uddl check --json".
type CheckResult struct {
	File        string       `json:"file"`
	Valid       bool         `json:"valid"`
	Diagnostics []Diagnostic `json:"errors"`
}

// NewDiagnostic converts err. Errors without a code get an empty one.
func NewDiagnostic(err error) Diagnostic {
	var ae *alerr.Error
	if !errors.As(err, &ae) {
		return Diagnostic{Message: err.Error()}
	}
	file, line, col, _ := ae.Location()
	return Diagnostic{
		Code:    string(ae.GetCode()),
		Message: ae.GetMessage(),
		File:    file,
		Line:    line,
		Column:  col,
		Help:    ae.Helps(),
	}
}

// NewCheckResult builds the JSON result of a consistency check.
func NewCheckResult(file string, report consistency.Report) CheckResult {
	result := CheckResult{File: file, Valid: report.Valid, Diagnostics: []Diagnostic{}}
	for _, msg := range report.Errors {
		result.Diagnostics = append(result.Diagnostics, Diagnostic{
			Code:    string(alerr.ErrConsistency),
			Message: msg,
			File:    file,
		})
	}
	return result
}

// FormatReport renders a consistency report, one diagnostic per
// inconsistency followed by a summary line.
func FormatReport(file string, report consistency.Report) string {
	if report.Valid {
		return FormatSuccess(file + " is consistent")
	}

	var b strings.Builder
	for _, msg := range report.Errors {
		b.WriteString(Error("error"))
		b.WriteString("[" + Code(string(alerr.ErrConsistency)) + "]: ")
		b.WriteString(msg + "\n")
		if file != "" {
			b.WriteString(RenderFileHeader(file, 0, 0))
		}
		b.WriteString("\n")
	}
	b.WriteString(Error("error") + ": ")
	b.WriteString(FormatCount(len(report.Errors), "inconsistency", "inconsistencies"))
	if file != "" {
		b.WriteString(" in " + FilePath(file))
	}
	b.WriteString("\n")
	return b.String()
}
