package report

import (
	"errors"
	"io/fs"
)

// Severity tells whether an issue made data unusable or only suspicious.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Issue is a single non-fatal problem found while building a model.
type Issue struct {
	Severity Severity `json:"severity" msgpack:"severity"`
	Message  string   `json:"message" msgpack:"message"`
	Path     string   `json:"path,omitempty" msgpack:"path,omitempty"`
	err      error
}

// Err returns the underlying typed error, if any.
func (i Issue) Err() error { return i.err }

// Report collects issues during a single build. It is not safe for concurrent
// use; the owning build goroutine is the only writer and the report is treated
// as read-only once the build is published.
type Report struct {
	issues []Issue
}

// New returns an empty report.
func New() *Report {
	return &Report{}
}

// Add records err as an error-severity issue. Nil errors are ignored.
func (r *Report) Add(err error) {
	if err == nil {
		return
	}
	r.issues = append(r.issues, Issue{Severity: SeverityError, Message: err.Error(), Path: pathOf(err), err: err})
}

// Warn records err as a warning.
func (r *Report) Warn(err error) {
	if err == nil {
		return
	}
	r.issues = append(r.issues, Issue{Severity: SeverityWarning, Message: err.Error(), Path: pathOf(err), err: err})
}

// Merge appends every issue of other.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.issues = append(r.issues, other.issues...)
}

// Issues returns a copy of the collected issues in insertion order.
func (r *Report) Issues() []Issue {
	out := make([]Issue, len(r.issues))
	copy(out, r.issues)
	return out
}

// Since returns a copy of the issues recorded after the first n.
func (r *Report) Since(n int) []Issue {
	if n >= len(r.issues) {
		return nil
	}
	return append([]Issue(nil), r.issues[max(n, 0):]...)
}

// Replay appends issues recorded by an earlier build, such as those stored
// with a model cache. Their typed errors are gone, so Err and Denied see
// plain errors carrying the original message.
func (r *Report) Replay(issues []Issue) {
	for _, i := range issues {
		if i.err == nil {
			i.err = errors.New(i.Message)
		}
		r.issues = append(r.issues, i)
	}
}

// Len returns the number of collected issues.
func (r *Report) Len() int { return len(r.issues) }

// HasErrors reports whether any error-severity issue was recorded.
func (r *Report) HasErrors() bool {
	for _, i := range r.issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Err joins all error-severity issues, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, i := range r.issues {
		if i.Severity == SeverityError {
			errs = append(errs, i.err)
		}
	}
	return errors.Join(errs...)
}

// Denied returns the first recorded error caused by a permission failure.
// Unlike a missing file it means the content exists but cannot be trusted,
// so a build that sees one must not be published.
func (r *Report) Denied() error {
	for _, i := range r.issues {
		if i.err != nil && errors.Is(i.err, fs.ErrPermission) {
			return i.err
		}
	}
	return nil
}

func pathOf(err error) string {
	var (
		pe *PathError
		fe *FileError
		xe *ParseError
		ie *IntegrityError
	)
	switch {
	case errors.As(err, &pe):
		return pe.Path
	case errors.As(err, &fe):
		return fe.Path
	case errors.As(err, &xe):
		return xe.Path
	case errors.As(err, &ie):
		return ie.Path
	}
	return ""
}
