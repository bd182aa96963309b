package drift

import (
	"log/slog"
	"sort"

	"github.com/hlop3z/uddl/internal/ast"
	"github.com/hlop3z/uddl/internal/rds"
)

// Fingerprint computes the hash of a schema. The tree must be consistent
// enough to build its relational model.
func Fingerprint(tree *ast.Ast) (*SchemaHash, error) {
	model, err := rds.Build(tree)
	if err != nil {
		return nil, err
	}
	return ComputeSchemaHash(model)
}

// Diff fingerprints two versions of a schema and compares them.
func Diff(oldTree, newTree *ast.Ast) (*Comparison, error) {
	oldHash, err := Fingerprint(oldTree)
	if err != nil {
		return nil, err
	}
	newHash, err := Fingerprint(newTree)
	if err != nil {
		return nil, err
	}
	c := Compare(oldHash, newHash)
	slog.Debug("schemas compared",
		"match", c.Match,
		"added", len(c.AddedTables),
		"removed", len(c.RemovedTables),
		"changed", len(c.TableDiffs))
	return c, nil
}

// Comparison is the difference between an old and a new schema.
type Comparison struct {
	Match         bool                  // True if schemas are identical
	OldRoot       string                // Root hash of the old schema
	NewRoot       string                // Root hash of the new schema
	AddedTables   []string              // Tables only in the new schema
	RemovedTables []string              // Tables only in the old schema
	TableDiffs    map[string]*TableDiff // Tables present in both that changed
}

// ChangedTables returns the names of the changed tables, sorted.
func (c *Comparison) ChangedTables() []string {
	names := make([]string, 0, len(c.TableDiffs))
	for name := range c.TableDiffs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ElementDiff lists added, removed and modified elements of one kind.
type ElementDiff struct {
	Added    []string
	Removed  []string
	Modified []string
}

// Empty reports whether nothing changed.
func (d ElementDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Modified) == 0
}

// TableDiff represents differences within a table.
type TableDiff struct {
	Name        string
	Columns     ElementDiff
	Keys        ElementDiff
	ForeignKeys ElementDiff
	Indexes     ElementDiff
}

// HasDifferences returns true if the table has any differences.
func (d *TableDiff) HasDifferences() bool {
	return !d.Columns.Empty() || !d.Keys.Empty() || !d.ForeignKeys.Empty() || !d.Indexes.Empty()
}

// Compare compares two schema fingerprints.
func Compare(oldHash, newHash *SchemaHash) *Comparison {
	result := &Comparison{
		Match:      oldHash.Root == newHash.Root,
		OldRoot:    oldHash.Root,
		NewRoot:    newHash.Root,
		TableDiffs: make(map[string]*TableDiff),
	}
	if result.Match {
		return result
	}

	for name := range newHash.Tables {
		if _, exists := oldHash.Tables[name]; !exists {
			result.AddedTables = append(result.AddedTables, name)
		}
	}
	sort.Strings(result.AddedTables)

	for name, oldTable := range oldHash.Tables {
		newTable, exists := newHash.Tables[name]
		if !exists {
			result.RemovedTables = append(result.RemovedTables, name)
			continue
		}
		if oldTable.Hash != newTable.Hash {
			result.TableDiffs[name] = compareTableHashes(oldTable, newTable)
		}
	}
	sort.Strings(result.RemovedTables)

	return result
}

func compareTableHashes(oldTable, newTable *TableHash) *TableDiff {
	return &TableDiff{
		Name:        oldTable.Name,
		Columns:     compareElements(oldTable.Columns, newTable.Columns),
		Keys:        compareElements(oldTable.Keys, newTable.Keys),
		ForeignKeys: compareElements(oldTable.FKs, newTable.FKs),
		Indexes:     compareElements(oldTable.Indexes, newTable.Indexes),
	}
}

func compareElements(oldHashes, newHashes map[string]string) ElementDiff {
	var d ElementDiff
	for name, h := range oldHashes {
		newH, exists := newHashes[name]
		switch {
		case !exists:
			d.Removed = append(d.Removed, name)
		case h != newH:
			d.Modified = append(d.Modified, name)
		}
	}
	for name := range newHashes {
		if _, exists := oldHashes[name]; !exists {
			d.Added = append(d.Added, name)
		}
	}
	sort.Strings(d.Added)
	sort.Strings(d.Removed)
	sort.Strings(d.Modified)
	return d
}

// Summary counts the changes of a comparison.
type Summary struct {
	Added    int
	Removed  int
	Modified int
}

// Summarize counts added, removed and modified tables.
func Summarize(c *Comparison) Summary {
	if c == nil {
		return Summary{}
	}
	return Summary{
		Added:    len(c.AddedTables),
		Removed:  len(c.RemovedTables),
		Modified: len(c.TableDiffs),
	}
}
