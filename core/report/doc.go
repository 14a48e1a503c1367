// Package report defines the structured errors raised while resolving and
// loading game content, and a collector for the non-fatal ones.
//
// # Error Types
//
//   - PathError: a content root or its descriptor.mod is missing or invalid.
//   - FileError: a present file could not be opened or read.
//   - ParseError: a row or statement inside a file was malformed.
//   - IntegrityError: records disagree with each other (duplicate colours,
//     provinces claimed twice, pixels with no province).
//
// Cancellation is never an error value of this package; callers see
// context.Canceled from the context they passed in.
//
// # Report
//
// A Report accumulates issues for one build. Loaders keep going after
// recording a problem so a single broken file does not hide the rest.
package report
