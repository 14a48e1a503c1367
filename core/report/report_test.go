package report

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_Collects(t *testing.T) {
	r := New()
	r.Add(nil)
	r.Warn(&ParseError{Path: "a.txt", Line: 3, Msg: "stray }"})
	assert.False(t, r.HasErrors())
	assert.NoError(t, r.Err())

	r.Add(&IntegrityError{Kind: DuplicateColor, ID: "10,10,10", Path: "map/definition.csv"})
	r.Add(&FileError{Path: "x.txt", Op: "read", Err: fs.ErrPermission})

	require.Equal(t, 3, r.Len())
	assert.True(t, r.HasErrors())

	issues := r.Issues()
	assert.Equal(t, SeverityWarning, issues[0].Severity)
	assert.Equal(t, "a.txt", issues[0].Path)
	assert.Equal(t, "map/definition.csv", issues[1].Path)

	err := r.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrPermission))
	assert.True(t, IsIntegrity(err, DuplicateColor))
	assert.False(t, IsIntegrity(err, UnknownColor))
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"Path", &PathError{Path: "/mods/a", Reason: "descriptor.mod missing"}, "invalid path /mods/a: descriptor.mod missing"},
		{"ParseWithLine", &ParseError{Path: "f.csv", Line: 2, Msg: "bad id"}, "f.csv:2: bad id"},
		{"ParseNoLine", &ParseError{Path: "f.csv", Msg: "empty"}, "f.csv: empty"},
		{"Integrity", &IntegrityError{Kind: UnknownColor, ID: "1,2,3"}, "unknown_color 1,2,3"},
		{"File", &FileError{Path: "x.txt", Op: "read", Err: fs.ErrPermission}, "read x.txt: permission denied"},
		{"FileWrapsPathError", &FileError{Path: "x.txt", Op: "read", Err: &fs.PathError{Op: "open", Path: "x.txt", Err: fs.ErrPermission}}, "read x.txt: permission denied"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestReport_Merge(t *testing.T) {
	a := New()
	b := New()
	b.Add(&PathError{Path: "p", Reason: "r"})
	a.Merge(b)
	a.Merge(nil)
	assert.Equal(t, 1, a.Len())
}

func TestReport_Denied(t *testing.T) {
	r := New()
	r.Add(&FileError{Path: "gone.txt", Op: "read", Err: fs.ErrNotExist})
	r.Warn(&ParseError{Path: "a.txt", Msg: "stray }"})
	assert.NoError(t, r.Denied())

	denied := &FileError{Path: "history/states", Op: "scan", Err: fs.ErrPermission}
	r.Add(denied)
	r.Add(&FileError{Path: "other", Op: "read", Err: fs.ErrPermission})
	assert.Same(t, denied, r.Denied())
}

func TestFileError_OpenFailureNamesPathOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.txt")
	_, err := os.Open(path)
	require.Error(t, err)

	fe := &FileError{Path: path, Op: "read", Err: err}
	assert.Equal(t, 1, strings.Count(fe.Error(), path))
	assert.True(t, errors.Is(fe, fs.ErrNotExist))
	var pe *fs.PathError
	assert.ErrorAs(t, fe, &pe)
}

func TestReport_ReplayKeepsSeverity(t *testing.T) {
	first := New()
	first.Warn(&ParseError{Path: "resolve", Msg: "before"})
	mark := first.Len()
	first.Add(&IntegrityError{Kind: DuplicateColor, ID: "1,1,1", Path: "map/definition.csv"})
	first.Warn(&ParseError{Path: "a.txt", Line: 2, Msg: "stray }"})

	cached := first.Since(mark)
	require.Len(t, cached, 2)
	assert.Nil(t, first.Since(first.Len()))

	second := New()
	second.Replay(cached)
	issues := second.Issues()
	require.Len(t, issues, 2)
	assert.Equal(t, cached[0].Message, issues[0].Message)
	assert.Equal(t, "map/definition.csv", issues[0].Path)
	assert.Equal(t, SeverityWarning, issues[1].Severity)
	assert.True(t, second.HasErrors())
	assert.EqualError(t, second.Err(), cached[0].Message)
	assert.NoError(t, second.Denied())
}
