package script

import (
	"strconv"
	"strings"
)

// ValueKind is the variant held by a Value.
type ValueKind uint8

const (
	// KindEmpty is an explicit empty block: `key = { }`.
	KindEmpty ValueKind = iota
	// KindScalar is a single word: `key = value`.
	KindScalar
	// KindArray is an inline list of primitives: `key = { 1 2 3 }`.
	KindArray
	// KindBlock is a nested list of statements: `key = { a = 1 }`.
	KindBlock
)

func (k ValueKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindArray:
		return "array"
	case KindBlock:
		return "block"
	}
	return "empty"
}

// ElementKind is the coerced type of an array element.
type ElementKind uint8

const (
	ElementString ElementKind = iota
	ElementInt
	ElementFloat
)

// Element is one array entry. Raw always holds the source text; Int or Float
// is set according to Kind.
type Element struct {
	Raw   string
	Kind  ElementKind
	Int   int64
	Float float64
}

// Coerce classifies raw as an integer, else a float, else a string.
func Coerce(raw string) Element {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return Element{Raw: raw, Kind: ElementInt, Int: i, Float: float64(i)}
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return Element{Raw: raw, Kind: ElementFloat, Float: f}
	}
	return Element{Raw: raw, Kind: ElementString}
}

// IsNumber reports whether the element coerced to an int or a float.
func (e Element) IsNumber() bool {
	return e.Kind == ElementInt || e.Kind == ElementFloat
}

// Value is the right-hand side of a statement. Exactly one variant is
// populated, selected by Kind.
type Value struct {
	kind   ValueKind
	scalar string
	tag    string
	array  []Element
	block  []Statement
}

// Scalar returns a scalar value.
func Scalar(s string) Value {
	return Value{kind: KindScalar, scalar: s}
}

// Array returns an array value, or an empty value when elems is empty.
func Array(elems ...Element) Value {
	if len(elems) == 0 {
		return Value{}
	}
	return Value{kind: KindArray, array: elems}
}

// Block returns a block value, or an empty value when stmts is empty.
func Block(stmts ...Statement) Value {
	if len(stmts) == 0 {
		return Value{}
	}
	return Value{kind: KindBlock, block: stmts}
}

// Kind returns the populated variant.
func (v Value) Kind() ValueKind { return v.kind }

// IsEmpty reports whether v is the explicit empty marker.
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

// Tag is the word written before a brace block, as in `color = rgb { 1 2 3 }`.
func (v Value) Tag() string { return v.tag }

// WithTag returns a copy of v carrying tag.
func (v Value) WithTag(tag string) Value {
	v.tag = tag
	return v
}

// AsScalar returns the raw scalar text.
func (v Value) AsScalar() (string, bool) {
	return v.scalar, v.kind == KindScalar
}

// AsArray returns the array elements.
func (v Value) AsArray() ([]Element, bool) {
	return v.array, v.kind == KindArray
}

// AsBlock returns the nested statements.
func (v Value) AsBlock() ([]Statement, bool) {
	return v.block, v.kind == KindBlock
}

// String returns the scalar text, or "" for any other variant.
func (v Value) String() string {
	return v.scalar
}

// Unquoted returns the scalar text without surrounding double quotes.
func (v Value) Unquoted() string {
	return Unquote(v.scalar)
}

// Int parses the scalar as a base-10 integer.
func (v Value) Int() (int, bool) {
	if v.kind != KindScalar {
		return 0, false
	}
	i, err := strconv.Atoi(Unquote(v.scalar))
	return i, err == nil
}

// Float parses the scalar as a float.
func (v Value) Float() (float64, bool) {
	if v.kind != KindScalar {
		return 0, false
	}
	f, err := strconv.ParseFloat(Unquote(v.scalar), 64)
	return f, err == nil
}

// Bool interprets the scalar as yes/no (true/false also accepted).
func (v Value) Bool() (bool, bool) {
	if v.kind != KindScalar {
		return false, false
	}
	switch strings.ToLower(Unquote(v.scalar)) {
	case "yes", "true":
		return true, true
	case "no", "false":
		return false, true
	}
	return false, false
}

// Ints returns every array element as an int. A scalar is treated as a
// one-element array. It fails if any element is not numeric.
func (v Value) Ints() ([]int, bool) {
	switch v.kind {
	case KindEmpty:
		return nil, true
	case KindScalar:
		i, ok := v.Int()
		if !ok {
			return nil, false
		}
		return []int{i}, true
	case KindArray:
		out := make([]int, 0, len(v.array))
		for _, e := range v.array {
			switch e.Kind {
			case ElementInt:
				out = append(out, int(e.Int))
			case ElementFloat:
				out = append(out, int(e.Float))
			default:
				return nil, false
			}
		}
		return out, true
	}
	return nil, false
}

// Floats returns every numeric array element as a float64.
func (v Value) Floats() ([]float64, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	out := make([]float64, 0, len(v.array))
	for _, e := range v.array {
		if !e.IsNumber() {
			return nil, false
		}
		out = append(out, e.Float)
	}
	return out, true
}

// Strings returns the raw text of every array element, unquoted.
func (v Value) Strings() []string {
	switch v.kind {
	case KindScalar:
		return []string{v.Unquoted()}
	case KindArray:
		out := make([]string, 0, len(v.array))
		for _, e := range v.array {
			out = append(out, Unquote(e.Raw))
		}
		return out
	}
	return nil
}

// Unquote strips one pair of surrounding double quotes.
func Unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
