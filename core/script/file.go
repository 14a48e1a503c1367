package script

import (
	"os"

	"map-atlas/core/report"
)

// ReadFile parses the script at path. Read failures are returned as
// *report.FileError, so errors.Is(err, fs.ErrNotExist) still works.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &report.FileError{Path: path, Op: "read", Err: err}
	}
	return ParseBytes(data), nil
}
