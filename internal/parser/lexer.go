package parser

import (
	"strings"

	"github.com/hlop3z/uddl/internal/alerr"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokFloat
	tokString
	tokPunct
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "identifier"
	case tokInt:
		return "integer"
	case tokFloat:
		return "number"
	case tokString:
		return "string"
	default:
		return "punctuation"
	}
}

// token is a code token. pos and end are byte offsets into the source;
// line and col are 1-based.
type token struct {
	kind      tokenKind
	text      string // identifier or literal text; unescaped for strings
	pos, end  int
	line, col int
}

// is reports whether the token is the given keyword or punctuation,
// ignoring case.
func (t token) is(word string) bool {
	return (t.kind == tokIdent || t.kind == tokPunct) && strings.EqualFold(t.text, word)
}

// comment is a "-- text" comment. ownLine is set when no code token
// precedes it on its line.
type comment struct {
	text     string
	pos      int
	line     int
	ownLine  bool
	consumed bool
}

type lexer struct {
	src      string
	file     string
	pos      int
	line     int
	lineHead int // offset of the first byte of the current line
	codeLine int // last line holding a code token

	tokens   []token
	comments []*comment
}

func lex(file, src string) ([]token, []*comment, error) {
	l := &lexer{src: src, file: file, line: 1}
	for {
		tok, err := l.next()
		if err != nil {
			return nil, nil, err
		}
		l.tokens = append(l.tokens, tok)
		if tok.kind == tokEOF {
			return l.tokens, l.comments, nil
		}
	}
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\n':
			l.pos++
			l.line++
			l.lineHead = l.pos
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case c == '-' && l.peek(1) == '-':
			if err := l.comment(); err != nil {
				return token{}, err
			}
		case isIdentStart(c):
			return l.emit(tokIdent, l.scan(isIdentPart)), nil
		case isDigit(c) || (c == '-' && isDigit(l.peek(1))) || (c == '.' && isDigit(l.peek(1))):
			return l.number()
		case c == '\'':
			return l.str()
		case strings.IndexByte("(),;", c) >= 0:
			return l.emit(tokPunct, l.src[l.pos:l.pos+1]), nil
		default:
			return token{}, l.errorAt(l.pos, 1, "unexpected character %q", string(c))
		}
	}
	return token{kind: tokEOF, pos: l.pos, end: l.pos, line: l.line, col: l.pos - l.lineHead + 1}, nil
}

func (l *lexer) peek(n int) byte {
	if l.pos+n < len(l.src) {
		return l.src[l.pos+n]
	}
	return 0
}

func (l *lexer) scan(accept func(byte) bool) string {
	start := l.pos
	for l.pos < len(l.src) && accept(l.src[l.pos]) {
		l.pos++
	}
	return l.src[start:l.pos]
}

// emit builds a token ending at the current offset, of which text is the
// trailing part, and advances past punctuation.
func (l *lexer) emit(kind tokenKind, text string) token {
	start := l.pos - len(text)
	if kind == tokPunct {
		start = l.pos
		l.pos++
	}
	l.codeLine = l.line
	return token{kind: kind, text: text, pos: start, end: l.pos, line: l.line, col: start - l.lineHead + 1}
}

func (l *lexer) number() (token, error) {
	start := l.pos
	if l.src[l.pos] == '-' {
		l.pos++
	}
	l.scan(isDigit)
	kind := tokInt
	if l.pos < len(l.src) && l.src[l.pos] == '.' {
		kind = tokFloat
		l.pos++
		if l.scan(isDigit) == "" && l.pos-start == 1 {
			return token{}, l.errorAt(start, 1, "malformed number")
		}
	}
	if l.pos < len(l.src) && isIdentStart(l.src[l.pos]) {
		return token{}, l.errorAt(start, l.pos-start+1, "malformed number %q", l.src[start:l.pos+1])
	}
	l.codeLine = l.line
	return token{kind: kind, text: l.src[start:l.pos], pos: start, end: l.pos, line: l.line, col: start - l.lineHead + 1}, nil
}

func (l *lexer) str() (token, error) {
	start := l.pos
	l.pos++
	var b strings.Builder
	for {
		if l.pos >= len(l.src) || l.src[l.pos] == '\n' {
			return token{}, l.errorAt(start, l.pos-start, "unterminated string literal")
		}
		c := l.src[l.pos]
		l.pos++
		if c != '\'' {
			b.WriteByte(c)
			continue
		}
		if l.pos < len(l.src) && l.src[l.pos] == '\'' {
			b.WriteByte('\'')
			l.pos++
			continue
		}
		break
	}
	l.codeLine = l.line
	return token{kind: tokString, text: b.String(), pos: start, end: l.pos, line: l.line, col: start - l.lineHead + 1}, nil
}

// comment reads a comment up to the end of the line. A comment is "--"
// alone or "-- " followed by text.
func (l *lexer) comment() error {
	start := l.pos
	end := strings.IndexByte(l.src[start:], '\n')
	if end < 0 {
		end = len(l.src)
	} else {
		end += start
	}
	raw := strings.TrimRight(l.src[start:end], " \t\r")
	if raw != "--" && !strings.HasPrefix(raw, "-- ") {
		return alerr.New(alerr.ErrSyntaxComment, `a comment must start with "-- "`).
			WithLocation(l.file, l.line, start-l.lineHead+1).
			WithSource(l.lineText(start)).
			WithSpan(start-l.lineHead+1, start-l.lineHead+3).
			WithHelp(`add a space after "--"`)
	}
	l.comments = append(l.comments, &comment{
		text:    strings.TrimPrefix(strings.TrimPrefix(raw, "--"), " "),
		pos:     start,
		line:    l.line,
		ownLine: l.codeLine != l.line,
	})
	l.pos = end
	return nil
}

func (l *lexer) lineText(offset int) string {
	end := strings.IndexByte(l.src[offset:], '\n')
	if end < 0 {
		return l.src[l.lineHead:]
	}
	return strings.TrimRight(l.src[l.lineHead:offset+end], "\r")
}

func (l *lexer) errorAt(offset, length int, format string, args ...any) error {
	col := offset - l.lineHead + 1
	return alerr.Newf(alerr.ErrSyntax, format, args...).
		WithLocation(l.file, l.line, col).
		WithSource(l.lineText(offset)).
		WithSpan(col, col+max(length, 1)-1)
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == '$'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
