// Package drift fingerprints schemas and compares two versions of one.
//
// Each table gets a hash over its columns, keys, foreign keys and
// indexes in a canonical order, and the tables are combined in a merkle
// tree whose root identifies the whole schema. Two schemas with the same
// root are structurally identical; otherwise the per-element hashes tell
// which tables and elements changed. Comments and declaration order do
// not take part in the hash.
package drift

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/cbergoon/merkletree"
	"github.com/zeebo/xxh3"

	"github.com/hlop3z/uddl/internal/alerr"
	"github.com/hlop3z/uddl/internal/ast"
	"github.com/hlop3z/uddl/internal/rds"
	"github.com/hlop3z/uddl/internal/strutil"
)

// SchemaHash is the fingerprint of a schema.
type SchemaHash struct {
	Root   string                // Merkle root over all tables
	Tables map[string]*TableHash // Per-table hashes for drill-down
}

// TableHash is the fingerprint of one table.
type TableHash struct {
	Name    string
	Hash    string            // Hash of the whole table structure
	Columns map[string]string // Column name -> hash
	Keys    map[string]string // Primary key and unique constraints -> hash
	FKs     map[string]string // Foreign key name -> hash
	Indexes map[string]string // Index name -> hash
}

// tableContent implements merkletree.Content for table-level hashing.
type tableContent struct {
	name string
	hash string
}

func (t tableContent) CalculateHash() ([]byte, error) {
	return hex.DecodeString(t.hash)
}

func (t tableContent) Equals(other merkletree.Content) (bool, error) {
	o, ok := other.(tableContent)
	if !ok {
		return false, nil
	}
	return t.name == o.name && t.hash == o.hash, nil
}

// ComputeSchemaHash fingerprints a relational model.
func ComputeSchemaHash(model *rds.Rds) (*SchemaHash, error) {
	result := &SchemaHash{Tables: make(map[string]*TableHash)}
	if model == nil || len(model.Tables) == 0 {
		result.Root = emptyHash()
		return result, nil
	}

	names := make([]string, 0, len(model.Tables))
	for name := range model.Tables {
		names = append(names, name)
	}
	sort.Strings(names)

	contents := make([]merkletree.Content, 0, len(names))
	for _, name := range names {
		th := computeTableHash(model.Tables[name])
		result.Tables[name] = th
		contents = append(contents, tableContent{name: name, hash: th.Hash})
	}

	tree, err := merkletree.NewTree(contents)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrContract, err, "failed to build merkle tree")
	}
	result.Root = hex.EncodeToString(tree.MerkleRoot())
	return result, nil
}

func computeTableHash(t *rds.Table) *TableHash {
	result := &TableHash{
		Name:    t.Name,
		Columns: make(map[string]string),
		Keys:    make(map[string]string),
		FKs:     make(map[string]string),
		Indexes: make(map[string]string),
	}

	for _, col := range t.Columns {
		result.Columns[col.Name] = computeColumnHash(col)
	}
	if t.PrimaryKey != nil {
		result.Keys["primary key"] = hashString("pk:" + columnList(t.PrimaryKey.Columns))
	}
	for _, u := range t.Uniques {
		result.Keys[uniqueName(u)] = hashString("unique:" + columnList(u.Columns))
	}
	for _, fk := range t.ForeignKeys {
		result.FKs[foreignKeyName(fk)] = computeFKHash(fk)
	}
	for _, idx := range t.Indexes {
		result.Indexes[indexName(idx)] = computeIndexHash(idx)
	}

	data := fmt.Sprintf("table:%s|columns:[%s]|keys:[%s]|fks:[%s]|indexes:[%s]",
		t.Name,
		joinSorted(result.Columns),
		joinSorted(result.Keys),
		joinSorted(result.FKs),
		joinSorted(result.Indexes),
	)
	result.Hash = hashString(data)
	return result
}

func computeColumnHash(col *rds.Column) string {
	c := col.Constraints
	data := fmt.Sprintf("name:%s|type:%s|not_null:%v|pk:%v|unique:%v|autoincrement:%v",
		col.Name,
		ast.FormatType(col.Type, col.TypeArgs),
		c.NotNull,
		c.PrimaryKey,
		c.Unique,
		c.Autoincrement,
	)
	if c.Default != nil {
		data += fmt.Sprintf("|default:%d:%s", c.Default.Kind, c.Default.Raw())
	}
	return hashString(data)
}

func computeFKHash(fk *rds.ForeignKey) string {
	return hashString(fmt.Sprintf("columns:[%s]|ref_table:%s|ref_columns:[%s]|on_delete:%s|on_update:%s",
		columnList(fk.Columns),
		fk.ReferencedTable.Name,
		columnList(fk.ReferencedColumns),
		fk.OnDelete,
		fk.OnUpdate,
	))
}

func computeIndexHash(idx *rds.Index) string {
	return hashString(fmt.Sprintf("columns:[%s]|unique:%v", columnList(idx.Columns), idx.Unique))
}

// Unnamed elements are keyed by a name derived from their content, so
// that the same element in two versions lines up.

func uniqueName(u *rds.Unique) string {
	if u.Name != "" {
		return u.Name
	}
	return "unique (" + columnList(u.Columns) + ")"
}

func foreignKeyName(fk *rds.ForeignKey) string {
	if fk.Name != "" {
		return fk.Name
	}
	return strutil.ForeignKeyName(fk.Table.Name, columnNames(fk.Columns), fk.ReferencedTable.Name)
}

func indexName(idx *rds.Index) string {
	if idx.Name != "" {
		return idx.Name
	}
	return "index (" + columnList(idx.Columns) + ")"
}

func columnNames(cols []*rds.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}

func columnList(cols []*rds.Column) string {
	return strutil.JoinColumns(columnNames(cols))
}

func joinSorted(hashes map[string]string) string {
	parts := make([]string, 0, len(hashes))
	for name, h := range hashes {
		parts = append(parts, name+":"+h)
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

// hashString returns the 128-bit xxh3 hash of s, hex encoded.
func hashString(s string) string {
	h := xxh3.HashString128(s)
	return fmt.Sprintf("%016x%016x", h.Hi, h.Lo)
}

// emptyHash returns a consistent hash for empty schemas.
func emptyHash() string {
	return hashString("empty_schema")
}
