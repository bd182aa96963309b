package cli

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hlop3z/uddl/internal/alerr"
)

// Context keys rendered by dedicated sections rather than as details.
var shownKeys = map[string]bool{
	"file": true, "line": true, "column": true,
	"source": true, "span_start": true, "span_end": true,
	"notes": true, "helps": true, "label": true,
}

// FormatError formats an error for CLI display. An *alerr.Error anywhere
// in the chain gets the full diagnostic layout:
//
//	error[E1001]: expected ")"
//	  --> schema.uddl:3:14
//	  |
//	3 | create table t (a int;
//	  |                      ^
//	  |
//	help: ...
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	var ae *alerr.Error
	if errors.As(err, &ae) {
		return formatDiagnosticError(ae)
	}
	return Error("error") + ": " + err.Error() + "\n"
}

func formatDiagnosticError(err *alerr.Error) string {
	var b strings.Builder
	ctx := err.GetContext()

	b.WriteString(Error("error"))
	b.WriteString("[")
	b.WriteString(Code(string(err.GetCode())))
	b.WriteString("]: ")
	b.WriteString(err.GetMessage())
	b.WriteString("\n")

	file, line, col, _ := err.Location()
	if file != "" {
		b.WriteString(RenderFileHeader(file, line, col))
	}

	gutter := "   "
	source, hasSource := ctx["source"].(string)
	if hasSource && line > 0 {
		b.WriteString(formatSourceContext(line, source, col, ctx))
		gutter = strings.Repeat(" ", len(strconv.Itoa(line))) + " "
	}

	details := contextDetails(ctx)
	if len(details) > 0 && !hasSource {
		b.WriteString(gutter + Pipe() + "\n")
		for _, d := range details {
			b.WriteString(gutter + Pipe() + " " + d + "\n")
		}
	}

	for _, note := range err.Notes() {
		b.WriteString(gutter + Pipe() + "\n")
		b.WriteString(Note("note") + ": " + note + "\n")
	}
	for _, help := range err.Helps() {
		b.WriteString(Help("help") + ": " + help + "\n")
	}

	if cause := err.GetCause(); cause != nil {
		b.WriteString(gutter + Pipe() + "\n")
		b.WriteString(Note("cause") + ": " + cause.Error() + "\n")
	}

	return b.String()
}

// contextDetails returns the remaining context entries as sorted
// "key: value" lines.
func contextDetails(ctx map[string]any) []string {
	var details []string
	for k, v := range ctx {
		if shownKeys[k] {
			continue
		}
		details = append(details, fmt.Sprintf("%s: %v", k, v))
	}
	sort.Strings(details)
	return details
}

// formatSourceContext renders one source line with its number and a caret
// span. Spans are 1-indexed and inclusive.
func formatSourceContext(line int, source string, col int, ctx map[string]any) string {
	var b strings.Builder

	lineStr := strconv.Itoa(line)
	padding := strings.Repeat(" ", len(lineStr))

	b.WriteString(padding + " " + Pipe() + "\n")
	b.WriteString(LineNum(lineStr) + " " + Pipe() + " " + source + "\n")

	spanStart, _ := ctx["span_start"].(int)
	spanEnd, _ := ctx["span_end"].(int)
	label, _ := ctx["label"].(string)

	if spanStart > 0 || spanEnd > 0 || col > 0 {
		start := spanStart
		if start == 0 {
			start = col
		}
		end := spanEnd
		if end < start {
			end = start
		}

		b.WriteString(padding + " " + Pipe() + " ")
		if start > 1 {
			b.WriteString(strings.Repeat(" ", start-1))
		}
		b.WriteString(Pointer(strings.Repeat("^", end-start+1)))
		if label != "" {
			b.WriteString(" " + label)
		}
		b.WriteString("\n")
		b.WriteString(padding + " " + Pipe() + "\n")
	}

	return b.String()
}

// RenderFileHeader renders the location line, e.g. "  --> blog.uddl:15:3".
func RenderFileHeader(file string, line, col int) string {
	loc := file
	if line > 0 {
		loc = fmt.Sprintf("%s:%d", file, line)
		if col > 0 {
			loc = fmt.Sprintf("%s:%d:%d", file, line, col)
		}
	}
	return "  " + Arrow() + " " + FilePath(loc) + "\n"
}

// FormatWarning formats a warning message.
func FormatWarning(msg string) string {
	return Warning("warning") + ": " + msg + "\n"
}

// FormatNote formats a note message.
func FormatNote(msg string) string {
	return Note("note") + ": " + msg + "\n"
}

// FormatHelp formats a help message.
func FormatHelp(msg string) string {
	return Help("help") + ": " + msg + "\n"
}

// FormatSuccess formats a success message.
func FormatSuccess(msg string) string {
	return Success("success") + ": " + msg + "\n"
}
