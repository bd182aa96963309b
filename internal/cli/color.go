package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ANSI 256 colors for broad terminal compatibility.
var (
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	styleWarning = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	styleNote    = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	styleHelp    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)

	styleCode = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	styleLineNum  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	stylePipe     = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	stylePointer  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	styleFilePath = lipgloss.NewStyle().Bold(true)

	styleHeader = lipgloss.NewStyle().Bold(true)
	styleDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	styleAdded    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleRemoved  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleModified = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

func render(style lipgloss.Style, s string) string {
	if !EnableColors() {
		return s
	}
	return style.Render(s)
}

// Error returns text styled as an error label.
func Error(s string) string { return render(styleError, s) }

// Warning returns text styled as a warning label.
func Warning(s string) string { return render(styleWarning, s) }

// Note returns text styled as a note label.
func Note(s string) string { return render(styleNote, s) }

// Help returns text styled as a help label.
func Help(s string) string { return render(styleHelp, s) }

// Success returns text styled as a success message.
func Success(s string) string { return render(styleSuccess, s) }

// Code returns text styled as an error code.
func Code(s string) string { return render(styleCode, s) }

// LineNum returns text styled as a line number.
func LineNum(s string) string { return render(styleLineNum, s) }

// Pipe returns the gutter character of source displays.
func Pipe() string { return render(stylePipe, "|") }

// Arrow returns the "-->" that precedes a file location.
func Arrow() string { return render(stylePipe, "-->") }

// Pointer returns text styled as a caret span (^^^^).
func Pointer(s string) string { return render(stylePointer, s) }

// FilePath returns text styled as a file path.
func FilePath(s string) string { return render(styleFilePath, s) }

// Header returns text styled as a table header.
func Header(s string) string { return render(styleHeader, s) }

// Dim returns muted text.
func Dim(s string) string { return render(styleDim, s) }

// DiffLine colors a line of a schema comparison by its marker.
func DiffLine(line string) string {
	trimmed := strings.TrimLeft(line, " ")
	switch {
	case strings.HasPrefix(trimmed, "+ "):
		return render(styleAdded, line)
	case strings.HasPrefix(trimmed, "- "):
		return render(styleRemoved, line)
	case strings.HasPrefix(trimmed, "~ "):
		return render(styleModified, line)
	}
	return line
}
