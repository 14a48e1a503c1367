package script

// Operator is the comparison between a keyword and its value.
type Operator string

const (
	OpEqual   Operator = "="
	OpLess    Operator = "<"
	OpGreater Operator = ">"
)

// Statement is one `keyword operator value` node of a document.
type Statement struct {
	Keyword  string
	Operator Operator
	Value    Value
}

// Wrap returns a keyword-less statement whose value is the given statements.
// It is the entry point for lookups over a whole document.
func Wrap(stmts []Statement) Statement {
	return Statement{Value: Block(stmts...)}
}

// Children returns the nested statements, or nil for non-block values.
func (s Statement) Children() []Statement {
	stmts, _ := s.Value.AsBlock()
	return stmts
}

// Lookup returns the first child with the given keyword in document order.
// The child is returned whole, so a nested block can be looked into again.
func (s Statement) Lookup(key string) (Statement, bool) {
	for _, c := range s.Children() {
		if c.Keyword == key {
			return c, true
		}
	}
	return Statement{}, false
}

// LookupLast returns the last child with the given keyword.
func (s Statement) LookupLast(key string) (Statement, bool) {
	children := s.Children()
	for i := len(children) - 1; i >= 0; i-- {
		if children[i].Keyword == key {
			return children[i], true
		}
	}
	return Statement{}, false
}

// Path follows keys through nested blocks, first match at each level.
func (s Statement) Path(keys ...string) (Statement, bool) {
	cur := s
	for _, k := range keys {
		next, ok := cur.Lookup(k)
		if !ok {
			return Statement{}, false
		}
		cur = next
	}
	return cur, true
}

// All returns every child with the given keyword, in document order.
func (s Statement) All(key string) []Statement {
	var out []Statement
	for _, c := range s.Children() {
		if c.Keyword == key {
			out = append(out, c)
		}
	}
	return out
}

// Get is Lookup returning only the value.
func (s Statement) Get(key string) (Value, bool) {
	c, ok := s.Lookup(key)
	return c.Value, ok
}

// GetLast is LookupLast returning only the value.
func (s Statement) GetLast(key string) (Value, bool) {
	c, ok := s.LookupLast(key)
	return c.Value, ok
}
