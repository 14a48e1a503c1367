// Package script reads the brace-delimited declarative script format used by
// the game's content files (history, map regions, country tags, descriptors).
//
// # Pipeline
//
//   - Decode: UTF-8 with optional BOM, ISO-8859-1 fallback. Never fails.
//   - Lex: whitespace separated words, `#` comments, quoted strings with
//     backslash escapes, and the single-character tokens = < > { }.
//   - Parse: a three-state machine (keyword, value, list) with a frame stack.
//
// # Values
//
// A Statement's Value is exactly one of Scalar, Array (coerced primitives),
// Block (nested statements) or the explicit Empty marker. Consumers switch on
// Value.Kind; nothing is inferred from runtime types.
//
// # Malformed Input
//
// The grammar is permissive. Stray or missing braces, dangling words and
// mixed list/statement blocks produce a best-effort tree plus Document
// warnings instead of an error. Duplicate keys are kept in document order;
// Get returns the first, GetLast the last.
//
// # Usage
//
//	doc, err := script.ReadFile("history/states/1-France.txt")
//	owner, ok := doc.Root().Path("state", "history", "owner")
package script
