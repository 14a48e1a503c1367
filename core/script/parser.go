package script

import "fmt"

// Warning describes input the parser accepted but had to interpret.
type Warning struct {
	Line int
	Msg  string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Msg)
}

// Document is the parse result for one file.
type Document struct {
	Statements []Statement
	// Warnings lists degenerate constructs. Parsing never fails; a document
	// with warnings still holds the best-effort tree.
	Warnings []Warning
}

// Root wraps the top-level statements for keyword lookups.
func (d *Document) Root() Statement {
	return Wrap(d.Statements)
}

// ParseString lexes and parses src.
func ParseString(src string) *Document {
	return Parse(Lex(src))
}

// ParseBytes decodes, lexes and parses raw file content.
func ParseBytes(data []byte) *Document {
	return ParseString(Decode(data))
}

type parseState uint8

const (
	stateKeyword parseState = iota
	stateValue
	stateList
)

// frame accumulates the contents of one brace level.
type frame struct {
	stmts []Statement
	array []string
	// tagged frames belong to a scalar written right before the brace,
	// e.g. the `rgb` in `color = rgb { 1 2 3 }`.
	tagged bool
	line   int
}

func (f *frame) value() Value {
	if len(f.array) > 0 {
		elems := make([]Element, len(f.array))
		for i, raw := range f.array {
			elems[i] = Coerce(raw)
		}
		return Array(elems...)
	}
	return Block(f.stmts...)
}

type parser struct {
	state      parseState
	keyword    string
	hasKeyword bool
	op         Operator
	cur        *frame
	stack      []*frame
	// skip counts braces opened inside an inline array; their contents are dropped.
	skip int
	line int
	doc  *Document
}

// Parse builds the statement tree from tokens.
//
// Three states drive the machine. In keyword state the first word becomes the
// pending keyword; an operator switches to value state, while a second word
// turns the construct into an inline array (list state) seeded with both
// words. In value state a word closes a scalar statement and an opening brace
// pushes a new frame attached to that statement. A closing brace pops the
// frame and stores it on the last statement of the parent as an array, a
// block, or the empty marker.
func Parse(tokens []Token) *Document {
	p := &parser{cur: &frame{}, doc: &Document{}}
	for _, tok := range tokens {
		p.line = tok.Line
		switch p.state {
		case stateKeyword:
			p.inKeyword(tok)
		case stateValue:
			p.inValue(tok)
		case stateList:
			p.inList(tok)
		}
	}
	p.finish()
	p.doc.Statements = p.cur.stmts
	return p.doc
}

func (p *parser) warn(format string, args ...any) {
	p.doc.Warnings = append(p.doc.Warnings, Warning{Line: p.line, Msg: fmt.Sprintf(format, args...)})
}

func (p *parser) reset() {
	p.state = stateKeyword
	p.hasKeyword = false
	p.keyword = ""
	p.op = ""
}

func (p *parser) inKeyword(tok Token) {
	switch {
	case tok.Kind == Word:
		if !p.hasKeyword {
			p.keyword, p.hasKeyword = tok.Text, true
			return
		}
		p.state = stateList
		p.cur.array = append(p.cur.array, p.keyword, tok.Text)
		p.hasKeyword = false
	case tok.Kind.IsOperator():
		if !p.hasKeyword {
			p.warn("operator %s without keyword", tok.Text)
			return
		}
		p.op = Operator(tok.Text)
		p.state = stateValue
	case tok.Kind == Open:
		if p.hasKeyword {
			// `key { ... }` is read as `key = { ... }`.
			p.open(p.keyword, OpEqual)
			return
		}
		if n := len(p.cur.stmts); n > 0 && p.cur.stmts[n-1].Value.Kind() == KindScalar {
			p.push(true)
			return
		}
		p.open("", "")
	case tok.Kind == Close:
		p.close()
	}
}

func (p *parser) inValue(tok Token) {
	switch {
	case tok.Kind == Word:
		p.cur.stmts = append(p.cur.stmts, Statement{Keyword: p.keyword, Operator: p.op, Value: Scalar(tok.Text)})
		p.reset()
	case tok.Kind == Open:
		p.open(p.keyword, p.op)
	case tok.Kind == Close:
		p.warn("keyword %q has no value", p.keyword)
		p.reset()
		p.close()
	default:
		p.warn("repeated operator %s after %q", tok.Text, p.keyword)
	}
}

func (p *parser) inList(tok Token) {
	if p.skip > 0 {
		switch tok.Kind {
		case Open:
			p.skip++
		case Close:
			p.skip--
		}
		return
	}
	switch tok.Kind {
	case Word:
		p.cur.array = append(p.cur.array, tok.Text)
	case Open:
		p.warn("nested block inside inline list ignored")
		p.skip = 1
	case Close:
		p.close()
	default:
		p.warn("operator %s inside inline list ignored", tok.Text)
	}
}

// open appends a statement with a pending value and descends into it.
func (p *parser) open(keyword string, op Operator) {
	p.cur.stmts = append(p.cur.stmts, Statement{Keyword: keyword, Operator: op})
	p.push(false)
}

func (p *parser) push(tagged bool) {
	p.stack = append(p.stack, p.cur)
	p.cur = &frame{tagged: tagged, line: p.line}
	p.reset()
}

func (p *parser) close() {
	if p.state == stateKeyword && p.hasKeyword {
		if len(p.cur.stmts) == 0 && len(p.cur.array) == 0 {
			// `{ GER }` is a one-element list.
			p.cur.array = append(p.cur.array, p.keyword)
		} else {
			p.warn("dangling word %q dropped", p.keyword)
		}
	}
	if len(p.cur.array) > 0 && len(p.cur.stmts) > 0 {
		p.warn("block mixes statements and list items; statements dropped")
	}

	if len(p.stack) == 0 {
		p.warn("unmatched }")
		p.cur.array = nil
		p.reset()
		return
	}

	value := p.cur.value()
	tagged := p.cur.tagged

	parent := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]

	last := &parent.stmts[len(parent.stmts)-1]
	if tagged {
		value = value.WithTag(last.Value.String())
	}
	last.Value = value

	p.cur = parent
	p.reset()
}

func (p *parser) finish() {
	if p.state == stateValue {
		p.warn("keyword %q has no value", p.keyword)
		p.reset()
	}
	for len(p.stack) > 0 {
		p.warn("block opened at line %d is not closed", p.cur.line)
		p.skip = 0
		p.close()
	}
	switch {
	case p.state == stateList:
		p.warn("inline list outside any block dropped")
		p.cur.array = nil
	case p.hasKeyword:
		p.warn("dangling word %q dropped", p.keyword)
	}
	p.reset()
}
