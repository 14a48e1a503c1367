package script

import "strings"

// TokenKind identifies the lexical class of a token.
type TokenKind uint8

const (
	// Word is any bare or quoted text.
	Word TokenKind = iota
	Equal
	Less
	Greater
	Open
	Close
)

// IsOperator reports whether k is one of =, < or >.
func (k TokenKind) IsOperator() bool {
	return k == Equal || k == Less || k == Greater
}

func (k TokenKind) String() string {
	switch k {
	case Equal:
		return "="
	case Less:
		return "<"
	case Greater:
		return ">"
	case Open:
		return "{"
	case Close:
		return "}"
	}
	return "word"
}

// Token is a single lexical unit. Quoted words keep their quote characters.
type Token struct {
	Kind TokenKind
	Text string
	Line int
}

// Lex splits src into tokens. It never fails: anything that is not a
// delimiter, comment or whitespace ends up inside a Word.
func Lex(src string) []Token {
	l := &lexer{line: 1}
	for _, r := range src {
		l.step(r)
	}
	l.flush()
	return l.tokens
}

type lexer struct {
	tokens  []Token
	buf     strings.Builder
	bufLine int
	line    int
	quoted  bool
	escaped bool
	comment bool
}

func (l *lexer) step(r rune) {
	if r == '\n' {
		// Quoted strings never span lines; an unterminated one ends here.
		l.flush()
		l.quoted, l.escaped, l.comment = false, false, false
		l.line++
		return
	}
	if l.comment {
		return
	}

	if l.quoted {
		l.put(r)
		switch {
		case r == '\\':
			l.escaped = !l.escaped
		case r == '"' && !l.escaped:
			l.quoted = false
		default:
			l.escaped = false
		}
		return
	}

	switch r {
	case ' ', '\t', '\r':
		l.flush()
	case '#':
		l.flush()
		l.comment = true
	case '=':
		l.emit(Equal, "=")
	case '<':
		l.emit(Less, "<")
	case '>':
		l.emit(Greater, ">")
	case '{':
		l.emit(Open, "{")
	case '}':
		l.emit(Close, "}")
	case '"':
		l.put(r)
		if l.escaped {
			l.escaped = false
		} else {
			l.quoted = true
		}
	case '\\':
		l.put(r)
		l.escaped = !l.escaped
	default:
		l.put(r)
		l.escaped = false
	}
}

func (l *lexer) put(r rune) {
	if l.buf.Len() == 0 {
		l.bufLine = l.line
	}
	l.buf.WriteRune(r)
}

func (l *lexer) emit(kind TokenKind, text string) {
	l.flush()
	l.tokens = append(l.tokens, Token{Kind: kind, Text: text, Line: l.line})
}

// flush ends the current word. A backslash never escapes past a word boundary.
func (l *lexer) flush() {
	l.escaped = false
	if l.buf.Len() == 0 {
		return
	}
	l.tokens = append(l.tokens, Token{Kind: Word, Text: l.buf.String(), Line: l.bufLine})
	l.buf.Reset()
}
