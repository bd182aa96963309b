// Package parser reads universal DDL text into an AST.
//
// The grammar covers create table, alter table ... add and create
// [unique] index, with column and table constraints. Keywords are case
// insensitive. Comments are "-- " line comments; they are attached to the
// nodes they annotate (see comments.go) so that the universal generator can
// print the schema back unchanged.
package parser

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/hlop3z/uddl/internal/alerr"
	"github.com/hlop3z/uddl/internal/ast"
)

// Parse parses src. Errors are alerr errors with code ErrSyntax or
// ErrSyntaxComment carrying the location and the offending source line.
func Parse(src string) (*ast.Ast, error) {
	return ParseFile("", src)
}

// ParseFile is Parse with a file name reported in error locations.
func ParseFile(file, src string) (*ast.Ast, error) {
	toks, comments, err := lex(file, src)
	if err != nil {
		return nil, err
	}
	p := &parser{file: file, src: src, toks: toks, comments: comments}
	tree, err := p.parseAst()
	if err != nil {
		return nil, err
	}
	slog.Debug("ddl parsed", "file", file, "orders", len(tree.Orders), "comments", len(comments))
	return tree, nil
}

type parser struct {
	file     string
	src      string
	toks     []token
	comments []*comment
	pos      int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) peekAt(n int) token {
	if p.pos+n < len(p.toks) {
		return p.toks[p.pos+n]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) advance() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

// accept consumes the next token if it is word.
func (p *parser) accept(word string) (token, bool) {
	if tok := p.peek(); tok.is(word) {
		return p.advance(), true
	}
	return token{}, false
}

// expect consumes the given sequence of keywords or punctuation.
func (p *parser) expect(words ...string) (token, error) {
	var last token
	for _, w := range words {
		tok := p.peek()
		if !tok.is(w) {
			return token{}, p.unexpected(tok, strconv.Quote(w))
		}
		last = p.advance()
	}
	return last, nil
}

func (p *parser) ident(what string) (string, error) {
	tok := p.peek()
	if tok.kind != tokIdent {
		return "", p.unexpected(tok, what)
	}
	p.advance()
	return tok.text, nil
}

// -----------------------------------------------------------------------------
// Orders
// -----------------------------------------------------------------------------

func (p *parser) parseAst() (*ast.Ast, error) {
	tree := &ast.Ast{}
	for p.peek().kind != tokEOF {
		start := p.peek()
		standalone, block := p.leading(start)
		for _, text := range standalone {
			tree.Orders = append(tree.Orders, &ast.StandaloneComment{Text: text})
		}

		var (
			order ast.Order
			err   error
		)
		switch {
		case start.is("create") && (p.peekAt(1).is("index") || p.peekAt(1).is("unique")):
			order, err = p.parseCreateIndex(block)
		case start.is("create"):
			order, err = p.parseCreateTable(block)
		case start.is("alter"):
			order, err = p.parseAlterTable(block)
		default:
			err = p.unexpected(start, `"create" or "alter"`)
		}
		if err != nil {
			return nil, err
		}
		tree.Orders = append(tree.Orders, order)
	}
	for _, text := range p.rest(len(p.src) + 1) {
		tree.Orders = append(tree.Orders, &ast.StandaloneComment{Text: text})
	}
	return tree, nil
}

func (p *parser) parseCreateTable(block string) (*ast.CreateTable, error) {
	start := p.peek()
	if _, err := p.expect("create", "table"); err != nil {
		return nil, err
	}
	name, err := p.ident("table name")
	if err != nil {
		return nil, err
	}
	open, err := p.expect("(")
	if err != nil {
		return nil, err
	}
	first := strings.Join(append(p.inside(start.pos, open.pos), p.trailing(open)...), " ")

	entries, err := p.parseEntries()
	if err != nil {
		return nil, err
	}
	closing, err := p.expect(")")
	if err != nil {
		return nil, err
	}
	semi, err := p.expect(";")
	if err != nil {
		return nil, err
	}
	last := append(p.inside(closing.pos-1, semi.pos), p.trailing(semi)...)

	ct := &ast.CreateTable{Name: name, Entries: entries}
	ct.BlockComment = block
	if first != "" || len(last) > 0 {
		ct.InlineComment = append([]string{first}, last...)
	}
	return ct, nil
}

func (p *parser) parseAlterTable(block string) (*ast.AlterTable, error) {
	start := p.peek()
	if _, err := p.expect("alter", "table"); err != nil {
		return nil, err
	}
	name, err := p.ident("table name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("add"); err != nil {
		return nil, err
	}
	entries, err := p.parseEntries()
	if err != nil {
		return nil, err
	}
	semi, err := p.expect(";")
	if err != nil {
		return nil, err
	}
	at := &ast.AlterTable{Table: name, Add: entries}
	at.BlockComment = block
	if inline := append(p.inside(start.pos, semi.pos), p.trailing(semi)...); len(inline) > 0 {
		at.InlineComment = inline
	}
	return at, nil
}

func (p *parser) parseCreateIndex(block string) (*ast.CreateIndex, error) {
	start := p.advance() // create
	_, unique := p.accept("unique")
	if _, err := p.expect("index"); err != nil {
		return nil, err
	}
	ci := &ast.CreateIndex{Index: &ast.Index{Unique: unique}}
	if !p.peek().is("on") {
		name, err := p.ident("index name")
		if err != nil {
			return nil, err
		}
		ci.Name = name
	}
	if _, err := p.expect("on"); err != nil {
		return nil, err
	}
	table, err := p.ident("table name")
	if err != nil {
		return nil, err
	}
	ci.Table = table
	if ci.Index.Columns, err = p.columnList(); err != nil {
		return nil, err
	}
	semi, err := p.expect(";")
	if err != nil {
		return nil, err
	}
	ci.BlockComment = block
	if inline := append(p.inside(start.pos, semi.pos), p.trailing(semi)...); len(inline) > 0 {
		ci.InlineComment = inline
	}
	return ci, nil
}

// -----------------------------------------------------------------------------
// Table entries
// -----------------------------------------------------------------------------

// parseEntries parses a comma separated list of table entries, with the
// standalone comments found in front of them and after the last one.
func (p *parser) parseEntries() ([]ast.TableEntry, error) {
	var entries []ast.TableEntry
	for {
		start := p.peek()
		standalone, block := p.leading(start)
		for _, text := range standalone {
			entries = append(entries, &ast.StandaloneTableComment{Text: text})
		}

		entry, comments, err := p.parseEntry()
		if err != nil {
			return nil, err
		}
		comments.BlockComment = block

		end := p.toks[p.pos-1]
		if comma, ok := p.accept(","); ok {
			end = comma
		}
		inline := append(p.inside(start.pos, end.pos), p.trailing(end)...)
		if len(inline) > 0 {
			comments.InlineComment = inline
		}
		entries = append(entries, entry)

		if !end.is(",") {
			break
		}
	}
	for _, text := range p.rest(p.peek().pos) {
		entries = append(entries, &ast.StandaloneTableComment{Text: text})
	}
	return entries, nil
}

func (p *parser) parseEntry() (ast.TableEntry, *ast.Comments, error) {
	tok := p.peek()
	if tok.is("constraint") || tok.is("primary") || tok.is("unique") || tok.is("foreign") {
		compo, err := p.parseTableConstraint()
		if err != nil {
			return nil, nil, err
		}
		return compo, &compo.Comments, nil
	}
	col, err := p.parseColumn()
	if err != nil {
		return nil, nil, err
	}
	return col, &col.Comments, nil
}

func (p *parser) parseColumn() (*ast.Column, error) {
	name, err := p.ident("column name or table constraint")
	if err != nil {
		return nil, err
	}
	typeTok := p.peek()
	if typeTok.kind != tokIdent {
		return nil, p.unexpected(typeTok, "data type")
	}
	typ, ok := ast.ParseDataType(typeTok.text)
	if !ok {
		names := make([]string, len(ast.DataTypes))
		for i, t := range ast.DataTypes {
			names[i] = string(t)
		}
		return nil, p.errorAt(typeTok, "unknown data type %q", typeTok.text).
			WithHelp(alerr.SuggestSimilar(typeTok.text, names))
	}
	p.advance()

	col := &ast.Column{Name: name, Type: typ}
	if p.peek().is("(") {
		if col.TypeArgs, err = p.typeArgs(); err != nil {
			return nil, err
		}
	}
	if col.Constraints, err = p.parseColumnConstraints(); err != nil {
		return nil, err
	}
	return col, nil
}

func (p *parser) typeArgs() ([]int, error) {
	p.advance() // (
	var args []int
	for {
		tok := p.peek()
		if tok.kind != tokInt || strings.HasPrefix(tok.text, "-") {
			return nil, p.unexpected(tok, "type argument")
		}
		n, err := strconv.Atoi(tok.text)
		if err != nil {
			return nil, p.errorAt(tok, "invalid type argument %q", tok.text)
		}
		p.advance()
		args = append(args, n)
		if _, ok := p.accept(","); !ok {
			break
		}
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}
	return args, nil
}

// parseColumnConstraints reads the constraints following a column type.
// "constraint NAME" opens a named composition holding the constraints
// that follow it.
func (p *parser) parseColumnConstraints() ([]*ast.ColumnConstraintComposition, error) {
	var (
		compos []*ast.ColumnConstraintComposition
		cur    *ast.ColumnConstraintComposition
	)
	for {
		if _, ok := p.accept("constraint"); ok {
			name, err := p.ident("constraint name")
			if err != nil {
				return nil, err
			}
			cur = &ast.ColumnConstraintComposition{Name: name}
			compos = append(compos, cur)
			cc, err := p.parseColumnConstraint()
			if err != nil {
				return nil, err
			}
			if cc == nil {
				return nil, p.unexpected(p.peek(), "column constraint")
			}
			cur.Constraints = append(cur.Constraints, cc)
			continue
		}
		cc, err := p.parseColumnConstraint()
		if err != nil {
			return nil, err
		}
		if cc == nil {
			return compos, nil
		}
		if cur == nil {
			cur = &ast.ColumnConstraintComposition{}
			compos = append(compos, cur)
		}
		cur.Constraints = append(cur.Constraints, cc)
	}
}

// parseColumnConstraint returns nil when the next token starts no
// column constraint.
func (p *parser) parseColumnConstraint() (ast.ColumnConstraint, error) {
	tok := p.peek()
	switch {
	case tok.is("not"):
		if _, err := p.expect("not", "null"); err != nil {
			return nil, err
		}
		return &ast.NotNull{}, nil
	case tok.is("null"):
		p.advance()
		return &ast.Null{}, nil
	case tok.is("primary"):
		if _, err := p.expect("primary", "key"); err != nil {
			return nil, err
		}
		return &ast.PrimaryKey{}, nil
	case tok.is("unique"):
		p.advance()
		return &ast.Unique{}, nil
	case tok.is("autoincrement"):
		p.advance()
		return &ast.Autoincrement{}, nil
	case tok.is("default"):
		p.advance()
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		return &ast.Default{Value: v}, nil
	case tok.is("references"):
		p.advance()
		fk := &ast.ColumnForeignKey{}
		var err error
		if fk.ReferencedTable, err = p.ident("referenced table"); err != nil {
			return nil, err
		}
		if _, ok := p.accept("("); ok {
			if fk.ReferencedColumn, err = p.ident("referenced column"); err != nil {
				return nil, err
			}
			if _, err := p.expect(")"); err != nil {
				return nil, err
			}
		}
		if fk.OnDelete, fk.OnUpdate, err = p.actions(); err != nil {
			return nil, err
		}
		return fk, nil
	}
	return nil, nil
}

func (p *parser) parseTableConstraint() (*ast.TableConstraintComposition, error) {
	compo := &ast.TableConstraintComposition{}
	if _, ok := p.accept("constraint"); ok {
		name, err := p.ident("constraint name")
		if err != nil {
			return nil, err
		}
		compo.Name = name
	}

	tok := p.peek()
	var (
		tc  ast.TableConstraint
		err error
	)
	switch {
	case tok.is("primary"):
		if _, err = p.expect("primary", "key"); err != nil {
			return nil, err
		}
		pk := &ast.PrimaryKeyConstraint{}
		pk.Columns, err = p.columnList()
		tc = pk
	case tok.is("unique"):
		p.advance()
		u := &ast.UniqueConstraint{}
		u.Columns, err = p.columnList()
		tc = u
	case tok.is("foreign"):
		tc, err = p.parseForeignKey()
	default:
		return nil, p.unexpected(tok, `"primary key", "unique" or "foreign key"`)
	}
	if err != nil {
		return nil, err
	}
	compo.Constraints = []ast.TableConstraint{tc}
	return compo, nil
}

func (p *parser) parseForeignKey() (*ast.ForeignKeyConstraint, error) {
	if _, err := p.expect("foreign", "key"); err != nil {
		return nil, err
	}
	fk := &ast.ForeignKeyConstraint{}
	var err error
	if fk.Columns, err = p.columnList(); err != nil {
		return nil, err
	}
	if _, err := p.expect("references"); err != nil {
		return nil, err
	}
	if fk.ReferencedTable, err = p.ident("referenced table"); err != nil {
		return nil, err
	}
	if p.peek().is("(") {
		if fk.ReferencedColumns, err = p.columnList(); err != nil {
			return nil, err
		}
	}
	if fk.OnDelete, fk.OnUpdate, err = p.actions(); err != nil {
		return nil, err
	}
	return fk, nil
}

// -----------------------------------------------------------------------------
// Fragments
// -----------------------------------------------------------------------------

func (p *parser) columnList() ([]string, error) {
	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	var cols []string
	for {
		name, err := p.ident("column name")
		if err != nil {
			return nil, err
		}
		cols = append(cols, name)
		if _, ok := p.accept(","); !ok {
			break
		}
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}
	return cols, nil
}

// actions reads any "on delete X" and "on update X" clauses.
func (p *parser) actions() (onDelete, onUpdate ast.FKAction, err error) {
	for p.peek().is("on") {
		p.advance()
		event := p.peek()
		if !event.is("delete") && !event.is("update") {
			return "", "", p.unexpected(event, `"delete" or "update"`)
		}
		p.advance()
		action, err := p.action()
		if err != nil {
			return "", "", err
		}
		if event.is("delete") {
			onDelete = action
		} else {
			onUpdate = action
		}
	}
	return onDelete, onUpdate, nil
}

func (p *parser) action() (ast.FKAction, error) {
	tok := p.peek()
	switch {
	case tok.is("cascade"):
		p.advance()
		return ast.ActionCascade, nil
	case tok.is("restrict"):
		p.advance()
		return ast.ActionRestrict, nil
	case tok.is("no"):
		_, err := p.expect("no", "action")
		return ast.ActionNoAction, err
	case tok.is("set"):
		p.advance()
		if _, ok := p.accept("null"); ok {
			return ast.ActionSetNull, nil
		}
		_, err := p.expect("default")
		return ast.ActionSetDefault, err
	}
	return "", p.unexpected(tok, "referential action")
}

func (p *parser) value() (ast.Value, error) {
	tok := p.peek()
	switch tok.kind {
	case tokInt:
		n, err := strconv.ParseInt(tok.text, 10, 64)
		if err != nil {
			return ast.Value{}, p.errorAt(tok, "integer out of range: %s", tok.text)
		}
		p.advance()
		return ast.IntValue(n), nil
	case tokFloat:
		f, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return ast.Value{}, p.errorAt(tok, "invalid number: %s", tok.text)
		}
		p.advance()
		return ast.FloatValue(f), nil
	case tokString:
		p.advance()
		return ast.StringValue(tok.text), nil
	case tokIdent:
		switch word := strings.ToLower(tok.text); word {
		case "current_date", "current_time", "current_timestamp", "null":
			p.advance()
			return ast.SQLExpr(word), nil
		}
	}
	return ast.Value{}, p.unexpected(tok, "default value")
}

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

func (p *parser) unexpected(tok token, want string) error {
	if tok.kind == tokEOF {
		return p.errorAt(tok, "unexpected end of input, expected %s", want)
	}
	got := tok.text
	if tok.kind == tokString {
		got = "'" + got + "'"
	}
	return p.errorAt(tok, "unexpected %q, expected %s", got, want)
}

func (p *parser) errorAt(tok token, format string, args ...any) *alerr.Error {
	start := tok.pos - (tok.col - 1)
	end := strings.IndexByte(p.src[start:], '\n')
	if end < 0 {
		end = len(p.src)
	} else {
		end += start
	}
	width := max(tok.end-tok.pos, 1)
	return alerr.Newf(alerr.ErrSyntax, format, args...).
		WithLocation(p.file, tok.line, tok.col).
		WithSource(strings.TrimRight(p.src[start:end], "\r")).
		WithSpan(tok.col, tok.col+width-1)
}
