package dialect

import (
	"strings"

	"github.com/hlop3z/uddl/internal/strutil"
)

// Piece is the intermediate form of rendered DDL: an *Inline line or a
// *Block of pieces. A nil Piece renders nothing.
type Piece interface {
	piece()
}

// Inline is one line. A line without Code is a comment line, rendered as
// "-- Comment" (or "--" when Comment is empty too).
type Inline struct {
	Code    string
	Comment string
}

// Block is an indented group of pieces. SpaceBefore and SpaceAfter ask for
// a blank line between the block and its siblings.
type Block struct {
	Indent      int
	Lines       []Piece
	SpaceBefore bool
	SpaceAfter  bool
}

func (*Inline) piece() {}
func (*Block) piece()  {}

// -----------------------------------------------------------------------------
// Flattening
// -----------------------------------------------------------------------------

// Flatten renders a piece tree to text. The children of a top-level block
// are separated by one blank line; nested lines are joined by newlines.
func Flatten(p Piece, indentUnit string) string {
	b, ok := p.(*Block)
	if !ok {
		return strings.Join(renderLines(p, 0, indentUnit), "\n")
	}
	var parts []string
	for _, child := range b.Lines {
		if lines := renderLines(child, b.Indent, indentUnit); len(lines) > 0 {
			parts = append(parts, strings.Join(lines, "\n"))
		}
	}
	return strings.Join(parts, "\n\n")
}

func renderLines(p Piece, level int, unit string) []string {
	switch p := p.(type) {
	case *Inline:
		return []string{strutil.Indent(unit, level) + p.text()}
	case *Block:
		if p == nil {
			return nil
		}
		level += p.Indent
		var (
			out       []string
			prevSpace bool
		)
		for _, child := range p.Lines {
			lines := renderLines(child, level, unit)
			if len(lines) == 0 {
				continue
			}
			before, after := spacing(child)
			if len(out) > 0 && (prevSpace || before) {
				out = append(out, "")
			}
			out = append(out, lines...)
			prevSpace = after
		}
		return out
	}
	return nil
}

func (l *Inline) text() string {
	if l.Code == "" {
		if l.Comment == "" {
			return "--"
		}
		return "-- " + l.Comment
	}
	if l.Comment == "" {
		return l.Code
	}
	return l.Code + " -- " + l.Comment
}

func spacing(p Piece) (before, after bool) {
	if b, ok := p.(*Block); ok && b != nil {
		return b.SpaceBefore, b.SpaceAfter
	}
	return false, false
}

// -----------------------------------------------------------------------------
// Piece helpers
// -----------------------------------------------------------------------------

// hasCode reports whether p holds at least one line of code.
func hasCode(p Piece) bool {
	switch p := p.(type) {
	case *Inline:
		return p.Code != ""
	case *Block:
		if p == nil {
			return false
		}
		for _, child := range p.Lines {
			if hasCode(child) {
				return true
			}
		}
	}
	return false
}

func isEmpty(p Piece) bool {
	switch p := p.(type) {
	case *Inline:
		return p.Code == "" && p.Comment == ""
	case *Block:
		if p == nil {
			return true
		}
		for _, child := range p.Lines {
			if !isEmpty(child) {
				return false
			}
		}
		return true
	}
	return true
}

// appendSuffix appends last to the last code-bearing piece and notLast to
// every other one. Comment-only pieces are skipped.
func appendSuffix(pieces []Piece, notLast, last string) {
	isLast := true
	for i := len(pieces) - 1; i >= 0; i-- {
		p := pieces[i]
		if !hasCode(p) {
			continue
		}
		suffix := notLast
		if isLast {
			suffix = last
			isLast = false
		}
		if suffix != "" {
			appendToLastCode(p, suffix)
		}
	}
}

func appendToLastCode(p Piece, suffix string) {
	switch p := p.(type) {
	case *Inline:
		p.Code += suffix
	case *Block:
		appendSuffix(p.Lines, "", suffix)
	}
}

// tryInline returns a copy of the single non-empty line in pieces with
// comment appended to its own, or nil when pieces span several lines.
func tryInline(pieces []Piece, comment string) *Inline {
	var single Piece
	for _, p := range pieces {
		if isEmpty(p) {
			continue
		}
		if single != nil {
			return nil
		}
		single = p
	}
	switch s := single.(type) {
	case *Block:
		return tryInline(s.Lines, comment)
	case *Inline:
		return &Inline{Code: s.Code, Comment: strutil.JoinInlineComments([]string{s.Comment, comment})}
	}
	return nil
}

// blockComment renders a leading comment, one line per "\n".
func blockComment(text string) Piece {
	if text == "" {
		return nil
	}
	return &Block{Lines: commentLines(text)}
}

// standaloneComment renders a comment group separated from its
// neighbours by blank lines.
func standaloneComment(text string) Piece {
	return &Block{Lines: commentLines(text), SpaceBefore: true, SpaceAfter: true}
}

func commentLines(text string) []Piece {
	parts := strings.Split(text, "\n")
	lines := make([]Piece, len(parts))
	for i, part := range parts {
		lines[i] = &Inline{Comment: part}
	}
	return lines
}
