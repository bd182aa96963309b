package drift

import (
	"fmt"
	"strings"
)

// FormatComparison formats a comparison for CLI output.
func FormatComparison(c *Comparison) string {
	if c == nil {
		return "No comparison available."
	}
	if c.Match {
		return fmt.Sprintf("Schemas are identical (%s)\n", truncateHash(c.OldRoot))
	}

	var b strings.Builder
	b.WriteString("Schemas differ\n\n")
	fmt.Fprintf(&b, "  Old hash: %s\n", truncateHash(c.OldRoot))
	fmt.Fprintf(&b, "  New hash: %s\n", truncateHash(c.NewRoot))

	if len(c.AddedTables) > 0 {
		b.WriteString("\n  Added tables:\n")
		for _, name := range c.AddedTables {
			fmt.Fprintf(&b, "    + %s\n", name)
		}
	}
	if len(c.RemovedTables) > 0 {
		b.WriteString("\n  Removed tables:\n")
		for _, name := range c.RemovedTables {
			fmt.Fprintf(&b, "    - %s\n", name)
		}
	}
	if len(c.TableDiffs) > 0 {
		b.WriteString("\n  Changed tables:\n")
		for _, name := range c.ChangedTables() {
			fmt.Fprintf(&b, "\n    %s:\n", name)
			formatTableDiff(&b, c.TableDiffs[name], "      ")
		}
	}
	return b.String()
}

// formatTableDiff formats differences for a single table.
func formatTableDiff(b *strings.Builder, diff *TableDiff, indent string) {
	formatElements(b, "Columns", diff.Columns, indent)
	formatElements(b, "Keys", diff.Keys, indent)
	formatElements(b, "Foreign keys", diff.ForeignKeys, indent)
	formatElements(b, "Indexes", diff.Indexes, indent)
}

func formatElements(b *strings.Builder, label string, d ElementDiff, indent string) {
	if d.Empty() {
		return
	}
	fmt.Fprintf(b, "%s%s:\n", indent, label)
	for _, name := range d.Added {
		fmt.Fprintf(b, "%s  + %s\n", indent, name)
	}
	for _, name := range d.Removed {
		fmt.Fprintf(b, "%s  - %s\n", indent, name)
	}
	for _, name := range d.Modified {
		fmt.Fprintf(b, "%s  ~ %s\n", indent, name)
	}
}

// FormatSummary formats a one-line summary, as logged by watch mode.
func FormatSummary(s Summary) string {
	var parts []string
	if s.Added > 0 {
		parts = append(parts, fmt.Sprintf("%d added", s.Added))
	}
	if s.Removed > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", s.Removed))
	}
	if s.Modified > 0 {
		parts = append(parts, fmt.Sprintf("%d changed", s.Modified))
	}
	if len(parts) == 0 {
		return "no table changes"
	}
	return strings.Join(parts, ", ")
}

// truncateHash returns the first 12 characters of a hash for display.
func truncateHash(hash string) string {
	if len(hash) <= 12 {
		return hash
	}
	return hash[:12]
}
