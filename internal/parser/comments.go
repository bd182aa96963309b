package parser

import "strings"

// Comment attachment. Own-line comments are grouped by blank lines. In
// front of a node, the group touching the node is its block comment and
// the other groups stand alone. Comments inside a node's span, and the
// comment ending the node's last line, are its inline comments.

// leading consumes the comments before tok. It returns the standalone
// groups and the block comment, if any.
func (p *parser) leading(tok token) (standalone []string, block string) {
	groups := p.groupsBefore(tok.pos)
	if len(groups) == 0 {
		return nil, ""
	}
	last := groups[len(groups)-1]
	if last[len(last)-1].line == tok.line-1 {
		block = groupText(last)
		groups = groups[:len(groups)-1]
	}
	return texts(groups), block
}

// rest consumes every comment left before offset as standalone groups.
func (p *parser) rest(offset int) []string {
	return texts(p.groupsBefore(offset))
}

func (p *parser) groupsBefore(offset int) [][]*comment {
	var (
		groups [][]*comment
		cur    []*comment
	)
	for _, c := range p.comments {
		if c.pos >= offset {
			break
		}
		if c.consumed {
			continue
		}
		c.consumed = true
		if len(cur) > 0 && c.line > cur[len(cur)-1].line+1 {
			groups = append(groups, cur)
			cur = nil
		}
		cur = append(cur, c)
	}
	if len(cur) > 0 {
		groups = append(groups, cur)
	}
	return groups
}

// inside consumes the comments in the byte range (from, to) and returns
// their trimmed text.
func (p *parser) inside(from, to int) []string {
	var out []string
	for _, c := range p.comments {
		if c.pos >= to {
			break
		}
		if c.consumed || c.pos <= from {
			continue
		}
		c.consumed = true
		if text := strings.TrimSpace(c.text); text != "" {
			out = append(out, text)
		}
	}
	return out
}

// trailing consumes the comment that ends the line of tok, unless code
// follows tok on that line.
func (p *parser) trailing(tok token) []string {
	next := p.peek()
	for _, c := range p.comments {
		if c.pos <= tok.pos {
			continue
		}
		if c.consumed || c.line != tok.line || (next.kind != tokEOF && next.pos < c.pos) {
			return nil
		}
		c.consumed = true
		if text := strings.TrimSpace(c.text); text != "" {
			return []string{text}
		}
		return nil
	}
	return nil
}

func groupText(group []*comment) string {
	lines := make([]string, len(group))
	empty := true
	for i, c := range group {
		lines[i] = c.text
		if c.text != "" {
			empty = false
		}
	}
	if empty {
		return ""
	}
	return strings.Join(lines, "\n")
}

func texts(groups [][]*comment) []string {
	var out []string
	for _, g := range groups {
		if text := groupText(g); text != "" {
			out = append(out, text)
		}
	}
	return out
}
