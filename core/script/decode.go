package script

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode converts raw file content to text. UTF-8 (with or without BOM) is
// tried first; anything else is read as ISO-8859-1, which maps every byte and
// therefore cannot fail.
func Decode(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data)
	}

	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		// Unreachable for ISO-8859-1, kept so the function stays total.
		return string(data)
	}
	return string(out)
}
