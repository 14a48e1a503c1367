package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func texts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}

func TestLex(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"Assignment", "a = b", []string{"a", "=", "b"}},
		{"NoSpaces", "a=b<c>d", []string{"a", "=", "b", "<", "c", ">", "d"}},
		{"Braces", "foo={a b}", []string{"foo", "=", "{", "a", "b", "}"}},
		{"Comment", "a = b # trailing = { }\nc = d", []string{"a", "=", "b", "c", "=", "d"}},
		{"CommentGlued", "a = b#x\nc", []string{"a", "=", "b", "c"}},
		{"QuotedKeepsSpacesAndQuotes", `name = "Hello World"`, []string{"name", "=", `"Hello World"`}},
		{"QuotedKeepsDelimiters", `a = "x = {y} # z"`, []string{"a", "=", `"x = {y} # z"`}},
		{"EscapedQuote", `a = "say \"hi\""`, []string{"a", "=", `"say \"hi\""`}},
		{"DoubleBackslashEndsString", `a = "c:\\" b`, []string{"a", "=", `"c:\\"`, "b"}},
		{"UnterminatedQuoteEndsAtNewline", "a = \"open\nb = c", []string{"a", "=", `"open`, "b", "=", "c"}},
		{"BackslashBeforeSpace", `a = \ "q r"`, []string{"a", "=", `\`, `"q r"`}},
		{"TabsAndCRLF", "a\t=\tb\r\nc = d\r\n", []string{"a", "=", "b", "c", "=", "d"}},
		{"Empty", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, texts(Lex(tt.src)))
		})
	}
}

func TestLex_KindsAndLines(t *testing.T) {
	tokens := Lex("a = {\n  b < 1\n}")

	kinds := make([]TokenKind, len(tokens))
	for i, tok := range tokens {
		kinds[i] = tok.Kind
	}
	assert.Equal(t, []TokenKind{Word, Equal, Open, Word, Less, Word, Close}, kinds)
	assert.Equal(t, 1, tokens[0].Line)
	assert.Equal(t, 2, tokens[3].Line)
	assert.Equal(t, 3, tokens[6].Line)
	assert.True(t, Greater.IsOperator())
	assert.False(t, Open.IsOperator())
}

func TestDecode(t *testing.T) {
	t.Run("UTF8WithBOM", func(t *testing.T) {
		assert.Equal(t, "a = é", Decode([]byte("\xEF\xBB\xBFa = é")))
	})
	t.Run("PlainUTF8", func(t *testing.T) {
		assert.Equal(t, "name = München", Decode([]byte("name = München")))
	})
	t.Run("SingleByteFallback", func(t *testing.T) {
		assert.Equal(t, "name = café", Decode([]byte("name = caf\xe9")))
	})
	t.Run("NeverFails", func(t *testing.T) {
		raw := make([]byte, 256)
		for i := range raw {
			raw[i] = byte(i)
		}
		assert.NotPanics(t, func() { _ = Decode(raw) })
	})
}
