package report

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// PathError reports a content root or manifest that is missing or invalid.
type PathError struct {
	// Path is the offending root or manifest path.
	Path string
	// Reason is a short human readable explanation.
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("invalid path %s: %s", e.Path, e.Reason)
}

// FileError reports a present file that could not be read.
type FileError struct {
	Path string
	Op   string
	Err  error
}

// Error prints the path once; an *fs.PathError cause contributes only its
// inner error.
func (e *FileError) Error() string {
	cause := e.Err
	var pe *fs.PathError
	if errors.As(cause, &pe) && pe.Err != nil {
		cause = pe.Err
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, cause)
}

func (e *FileError) Unwrap() error { return e.Err }

// ParseError reports malformed content inside a file. Line is 1-based, 0 when unknown.
type ParseError struct {
	Path string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Msg)
}

// IntegrityKind classifies a data integrity violation.
type IntegrityKind string

const (
	// DuplicateColor means two provinces declare the same RGB key.
	DuplicateColor IntegrityKind = "duplicate_color"
	// DuplicateStateMember means a province is listed by two states.
	DuplicateStateMember IntegrityKind = "duplicate_state_member"
	// DuplicateRegionMember means a province is listed by two strategic regions.
	DuplicateRegionMember IntegrityKind = "duplicate_region_member"
	// UnknownColor means a bitmap pixel has a colour no province declares.
	UnknownColor IntegrityKind = "unknown_color"
	// UnknownProvince means a record references a province id that is not defined.
	UnknownProvince IntegrityKind = "unknown_province"
)

// IntegrityError reports inconsistent data across records.
type IntegrityError struct {
	Kind IntegrityKind
	// ID is the offending identifier (province id, colour, tag).
	ID   string
	Path string
	Msg  string
}

func (e *IntegrityError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteString(" ")
	b.WriteString(e.ID)
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Path != "" {
		b.WriteString(" (")
		b.WriteString(e.Path)
		b.WriteString(")")
	}
	return b.String()
}

// IsIntegrity reports whether err carries an IntegrityError of the given kind.
// An empty kind matches any integrity error.
func IsIntegrity(err error, kind IntegrityKind) bool {
	var ie *IntegrityError
	if !errors.As(err, &ie) {
		return false
	}
	return kind == "" || ie.Kind == kind
}
