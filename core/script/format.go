package script

import "strings"

// Format renders statements back to script text. Parsing the output yields
// the same tree; comments and original spacing are not preserved.
func Format(stmts []Statement) string {
	var b strings.Builder
	for _, s := range stmts {
		writeStatement(&b, s, 0)
	}
	return b.String()
}

func writeStatement(b *strings.Builder, s Statement, depth int) {
	b.WriteString(strings.Repeat("\t", depth))
	if s.Keyword != "" || s.Operator != "" {
		b.WriteString(s.Keyword)
		b.WriteByte(' ')
		b.WriteString(string(s.Operator))
		b.WriteByte(' ')
	}
	writeValue(b, s.Value, depth)
	b.WriteByte('\n')
}

func writeValue(b *strings.Builder, v Value, depth int) {
	if v.tag != "" {
		b.WriteString(v.tag)
		b.WriteByte(' ')
	}
	switch v.kind {
	case KindScalar:
		b.WriteString(v.scalar)
	case KindEmpty:
		b.WriteString("{ }")
	case KindArray:
		b.WriteString("{")
		for _, e := range v.array {
			b.WriteByte(' ')
			b.WriteString(e.Raw)
		}
		b.WriteString(" }")
	case KindBlock:
		b.WriteString("{\n")
		for _, c := range v.block {
			writeStatement(b, c, depth+1)
		}
		b.WriteString(strings.Repeat("\t", depth))
		b.WriteString("}")
	}
}
