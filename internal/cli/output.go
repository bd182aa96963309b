package cli

import (
	"fmt"
	"strings"
)

// Table provides aligned column output.
type Table struct {
	headers []string
	rows    [][]string
	widths  []int
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	return &Table{
		headers: headers,
		widths:  widths,
	}
}

// AddRow adds a row to the table. Missing cells are left empty and extra
// cells are dropped.
func (t *Table) AddRow(cells ...string) {
	for len(cells) < len(t.headers) {
		cells = append(cells, "")
	}
	cells = cells[:len(t.headers)]
	for i, cell := range cells {
		if len(cell) > t.widths[i] {
			t.widths[i] = len(cell)
		}
	}
	t.rows = append(t.rows, cells)
}

// String renders the table as a string.
func (t *Table) String() string {
	if len(t.headers) == 0 {
		return ""
	}

	var b strings.Builder
	writeRow := func(cells []string, style func(string) string) {
		for i, cell := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			if i == len(cells)-1 {
				b.WriteString(style(cell))
			} else {
				b.WriteString(style(padRight(cell, t.widths[i])))
			}
		}
		b.WriteString("\n")
	}

	writeRow(t.headers, Header)
	for i, w := range t.widths {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(Dim(strings.Repeat("-", w)))
	}
	b.WriteString("\n")
	for _, row := range t.rows {
		writeRow(row, func(s string) string { return s })
	}
	return b.String()
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// ColorDiff colors every line of a formatted schema comparison.
func ColorDiff(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = DiffLine(line)
	}
	return strings.Join(lines, "\n")
}

// FormatCount formats a count with singular/plural form.
func FormatCount(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}
