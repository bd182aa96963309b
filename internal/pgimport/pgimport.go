// Package pgimport converts PostgreSQL DDL into a universal DDL AST.
//
// The SQL is parsed by the real PostgreSQL parser (libpg_query). The
// importer understands create table, alter table ... add (columns and
// constraints) and create index; other statements are skipped with a
// warning. Comments are not preserved.
package pgimport

import (
	"encoding/json"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	pgquery "github.com/pganalyze/pg_query_go/v6"

	"github.com/hlop3z/uddl/internal/alerr"
	"github.com/hlop3z/uddl/internal/ast"
)

// Import parses PostgreSQL DDL and returns the equivalent AST.
func Import(sql string) (*ast.Ast, error) {
	out, err := pgquery.ParseToJSON(sql)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrImport, err, "cannot parse PostgreSQL DDL")
	}

	var pr parseResult
	if err := json.Unmarshal([]byte(out), &pr); err != nil {
		return nil, alerr.Wrap(alerr.ErrImport, err, "cannot decode the PostgreSQL parse tree")
	}

	im := &importer{src: sql}
	tree := &ast.Ast{}
	for _, st := range pr.Stmts {
		orders, err := im.statement(st)
		if err != nil {
			return nil, err
		}
		tree.Orders = append(tree.Orders, orders...)
	}
	slog.Debug("postgresql ddl imported", "statements", len(pr.Stmts), "orders", len(tree.Orders))
	return tree, nil
}

type importer struct {
	src  string
	line int // line of the statement being converted
}

func (im *importer) lineOf(offset int) int {
	offset = min(max(offset, 0), len(im.src))
	return strings.Count(im.src[:offset], "\n") + 1
}

// unsupported reports a construct without universal equivalent.
func (im *importer) unsupported(format string, args ...any) *alerr.Error {
	return alerr.Newf(alerr.ErrImportUnsupported, format, args...).With("line", im.line)
}

func (im *importer) statement(st rawStmt) ([]ast.Order, error) {
	// Leading blanks belong to the statement's location; skip them so the
	// line points at the keyword.
	start := st.Location
	for start < len(im.src) && strings.ContainsRune(" \t\r\n", rune(im.src[start])) {
		start++
	}
	im.line = im.lineOf(start)

	for kind, payload := range st.Stmt {
		var (
			order ast.Order
			err   error
		)
		switch kind {
		case "CreateStmt":
			order, err = im.createTable(payload)
		case "AlterTableStmt":
			order, err = im.alterTable(payload)
		case "IndexStmt":
			order, err = im.createIndex(payload)
		default:
			slog.Warn("statement skipped", "kind", kind, "line", im.line)
			continue
		}
		if err != nil {
			return nil, err
		}
		if order == nil {
			continue
		}
		return []ast.Order{order}, nil
	}
	return nil, nil
}

func decode[T any](payload json.RawMessage, kind string) (*T, error) {
	var node T
	if err := json.Unmarshal(payload, &node); err != nil {
		return nil, alerr.Wrapf(alerr.ErrImport, err, "cannot decode %s", kind)
	}
	return &node, nil
}

// -----------------------------------------------------------------------------
// Statements
// -----------------------------------------------------------------------------

func (im *importer) createTable(payload json.RawMessage) (ast.Order, error) {
	stmt, err := decode[createStmt](payload, "CreateStmt")
	if err != nil {
		return nil, err
	}
	entries, err := im.entries(stmt.Relation.Relname, stmt.TableElts)
	if err != nil {
		return nil, err
	}
	return &ast.CreateTable{Name: stmt.Relation.Relname, Entries: entries}, nil
}

func (im *importer) alterTable(payload json.RawMessage) (ast.Order, error) {
	stmt, err := decode[alterTableStmt](payload, "AlterTableStmt")
	if err != nil {
		return nil, err
	}
	table := stmt.Relation.Relname

	var elts []tableElt
	for _, c := range stmt.Cmds {
		cmd := c.AlterTableCmd
		if cmd == nil {
			continue
		}
		switch cmd.Subtype {
		case "AT_AddColumn", "AT_AddConstraint":
			if cmd.Def != nil {
				elts = append(elts, *cmd.Def)
			}
		default:
			slog.Warn("alter table command skipped", "table", table, "command", cmd.Subtype, "line", im.line)
		}
	}
	if len(elts) == 0 {
		return nil, nil
	}

	entries, err := im.entries(table, elts)
	if err != nil {
		return nil, err
	}
	return &ast.AlterTable{Table: table, Add: entries}, nil
}

func (im *importer) createIndex(payload json.RawMessage) (ast.Order, error) {
	stmt, err := decode[indexStmt](payload, "IndexStmt")
	if err != nil {
		return nil, err
	}
	idx := &ast.Index{Unique: stmt.Unique}
	for _, p := range stmt.IndexParams {
		if p.IndexElem == nil || p.IndexElem.Name == "" {
			return nil, im.unsupported("index %q on table %q: only plain column indexes are supported",
				stmt.Idxname, stmt.Relation.Relname)
		}
		idx.Columns = append(idx.Columns, p.IndexElem.Name)
	}
	return &ast.CreateIndex{Name: stmt.Idxname, Table: stmt.Relation.Relname, Index: idx}, nil
}

// -----------------------------------------------------------------------------
// Table entries
// -----------------------------------------------------------------------------

func (im *importer) entries(table string, elts []tableElt) ([]ast.TableEntry, error) {
	var entries []ast.TableEntry
	for _, elt := range elts {
		switch {
		case elt.ColumnDef != nil:
			col, err := im.column(table, elt.ColumnDef)
			if err != nil {
				return nil, err
			}
			entries = append(entries, col)
		case elt.Constraint != nil:
			tc, err := im.tableConstraint(table, elt.Constraint)
			if err != nil {
				return nil, err
			}
			entries = append(entries, &ast.TableConstraintComposition{
				Name:        elt.Constraint.Conname,
				Constraints: []ast.TableConstraint{tc},
			})
		}
	}
	return entries, nil
}

func (im *importer) column(table string, def *columnDef) (*ast.Column, error) {
	col := &ast.Column{Name: def.Colname}

	key := typeKey(def.TypeName)
	serial, isSerial := serialTypes[key]
	switch {
	case len(def.TypeName.ArrayBounds) > 0:
		return nil, im.unsupported("column %q of table %q: array types are not supported", def.Colname, table)
	case isSerial:
		col.Type = serial
	default:
		t, ok := pgTypes[key]
		if !ok {
			return nil, im.unsupported("column %q of table %q: unsupported type %q", def.Colname, table, key).
				WithTable(table).
				WithColumn(def.Colname).
				WithHelp(alerr.SuggestSimilar(key, knownTypeNames()))
		}
		col.Type = t
		if typesWithArgs[t] {
			args, err := im.typeArgs(def)
			if err != nil {
				return nil, err
			}
			col.TypeArgs = args
		}
	}

	b := &compositions{}
	for _, elt := range def.Constraints {
		if elt.Constraint == nil {
			continue
		}
		cc, err := im.columnConstraint(table, def.Colname, elt.Constraint)
		if err != nil {
			return nil, err
		}
		if cc != nil {
			b.add(elt.Constraint.Conname, cc)
		}
	}
	if def.RawDefault != nil {
		v, err := im.value(table, def.Colname, def.RawDefault)
		if err != nil {
			return nil, err
		}
		b.add("", &ast.Default{Value: v})
	}
	if isSerial {
		if !b.has(ast.KindNotNull) {
			b.add("", &ast.NotNull{})
		}
		b.add("", &ast.Autoincrement{})
	}
	col.Constraints = b.list
	return col, nil
}

func (im *importer) typeArgs(def *columnDef) ([]int, error) {
	var args []int
	for _, m := range def.TypeName.Typmods {
		if m.AConst == nil || m.AConst.Ival == nil {
			return nil, im.unsupported("column %q: type modifiers must be integers", def.Colname)
		}
		args = append(args, int(m.AConst.Ival.Ival))
	}
	return args, nil
}

// compositions groups column constraints the way the universal DDL does:
// a named constraint opens its own composition, unnamed ones share the
// current unnamed composition.
type compositions struct {
	list []*ast.ColumnConstraintComposition
}

func (c *compositions) add(name string, cc ast.ColumnConstraint) {
	if name == "" && len(c.list) > 0 && c.list[len(c.list)-1].Name == "" {
		last := c.list[len(c.list)-1]
		last.Constraints = append(last.Constraints, cc)
		return
	}
	c.list = append(c.list, &ast.ColumnConstraintComposition{Name: name, Constraints: []ast.ColumnConstraint{cc}})
}

func (c *compositions) has(kind ast.Kind) bool {
	for _, compo := range c.list {
		for _, cc := range compo.Constraints {
			if cc.Kind() == kind {
				return true
			}
		}
	}
	return false
}

func (im *importer) columnConstraint(table, column string, con *constraint) (ast.ColumnConstraint, error) {
	switch con.Contype {
	case "CONSTR_NOTNULL":
		return &ast.NotNull{}, nil
	case "CONSTR_NULL":
		return &ast.Null{}, nil
	case "CONSTR_PRIMARY":
		return &ast.PrimaryKey{}, nil
	case "CONSTR_UNIQUE":
		return &ast.Unique{}, nil
	case "CONSTR_DEFAULT":
		if con.RawExpr == nil {
			return nil, nil
		}
		v, err := im.value(table, column, con.RawExpr)
		if err != nil {
			return nil, err
		}
		return &ast.Default{Value: v}, nil
	case "CONSTR_FOREIGN":
		if con.Pktable == nil {
			return nil, im.unsupported("column %q of table %q: foreign key without referenced table", column, table)
		}
		fk := &ast.ColumnForeignKey{
			ReferencedTable: con.Pktable.Relname,
			OnDelete:        action(con.FkDelAction),
			OnUpdate:        action(con.FkUpdAction),
		}
		if refs := stringValues(con.PkAttrs); len(refs) > 0 {
			fk.ReferencedColumn = refs[0]
		}
		return fk, nil
	}
	slog.Warn("column constraint skipped", "table", table, "column", column, "constraint", con.Contype, "line", im.line)
	return nil, nil
}

func (im *importer) tableConstraint(table string, con *constraint) (ast.TableConstraint, error) {
	switch con.Contype {
	case "CONSTR_PRIMARY":
		return &ast.PrimaryKeyConstraint{Columns: stringValues(con.Keys)}, nil
	case "CONSTR_UNIQUE":
		return &ast.UniqueConstraint{Columns: stringValues(con.Keys)}, nil
	case "CONSTR_FOREIGN":
		if con.Pktable == nil {
			return nil, im.unsupported("table %q: foreign key without referenced table", table)
		}
		return &ast.ForeignKeyConstraint{
			Columns:           stringValues(con.FkAttrs),
			ReferencedTable:   con.Pktable.Relname,
			ReferencedColumns: stringValues(con.PkAttrs),
			OnDelete:          action(con.FkDelAction),
			OnUpdate:          action(con.FkUpdAction),
		}, nil
	}
	return nil, im.unsupported("table %q: %s constraints are not supported", table, constraintLabel(con.Contype))
}

func constraintLabel(contype string) string {
	return strings.ToLower(strings.TrimPrefix(contype, "CONSTR_"))
}

// action maps libpg_query's one-letter referential actions. "a" (no
// action) is also the value of an omitted clause, so it maps to none.
func action(code string) ast.FKAction {
	switch code {
	case "r":
		return ast.ActionRestrict
	case "c":
		return ast.ActionCascade
	case "n":
		return ast.ActionSetNull
	case "d":
		return ast.ActionSetDefault
	}
	return ""
}

// -----------------------------------------------------------------------------
// Default values
// -----------------------------------------------------------------------------

var sqlValueFunctions = map[string]string{
	"SVFOP_CURRENT_DATE":      "current_date",
	"SVFOP_CURRENT_TIME":      "current_time",
	"SVFOP_CURRENT_TIMESTAMP": "current_timestamp",
	"SVFOP_LOCALTIMESTAMP":    "current_timestamp",
}

// timestampFunctions are function calls equivalent to current_timestamp.
var timestampFunctions = []string{"now", "transaction_timestamp"}

func (im *importer) value(table, column string, e *exprNode) (ast.Value, error) {
	switch {
	case e.TypeCast != nil && e.TypeCast.Arg != nil:
		return im.value(table, column, e.TypeCast.Arg)

	case e.AConst != nil:
		c := e.AConst
		switch {
		case c.Isnull:
			return ast.SQLExpr("null"), nil
		case c.Ival != nil:
			return ast.IntValue(c.Ival.Ival), nil
		case c.Fval != nil:
			f, err := strconv.ParseFloat(c.Fval.Fval, 64)
			if err != nil {
				return ast.Value{}, alerr.Wrapf(alerr.ErrImport, err, "column %q of table %q: invalid number %q", column, table, c.Fval.Fval)
			}
			return ast.FloatValue(f), nil
		case c.Sval != nil:
			return ast.StringValue(c.Sval.Sval), nil
		case c.Boolval != nil:
			return ast.Value{}, im.unsupported("column %q of table %q: boolean defaults are not supported", column, table)
		}
		// An integer zero carries no value key at all.
		return ast.IntValue(0), nil

	case e.SQLValueFunction != nil:
		if expr, ok := sqlValueFunctions[e.SQLValueFunction.Op]; ok {
			return ast.SQLExpr(expr), nil
		}
		return ast.Value{}, im.unsupported("column %q of table %q: default %s is not supported",
			column, table, strings.ToLower(strings.TrimPrefix(e.SQLValueFunction.Op, "SVFOP_")))

	case e.FuncCall != nil:
		var name string
		if n := len(e.FuncCall.Funcname); n > 0 {
			name = strings.ToLower(e.FuncCall.Funcname[n-1].value())
		}
		if slices.Contains(timestampFunctions, name) && len(e.FuncCall.Args) == 0 {
			return ast.SQLExpr("current_timestamp"), nil
		}
		return ast.Value{}, im.unsupported("column %q of table %q: default %s() is not supported", column, table, name)
	}
	return ast.Value{}, im.unsupported("column %q of table %q: default expression is not supported", column, table)
}
