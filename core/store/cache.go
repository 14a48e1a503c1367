package store

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"map-atlas/core/mapdata"
	"map-atlas/core/report"
	"map-atlas/core/source"

	"github.com/vmihailenco/msgpack/v5"
)

// CacheVersion is bumped whenever the cached layout changes. Files written
// by another version are ignored, never migrated.
const CacheVersion = 2

type cacheFile struct {
	Version      int               `msgpack:"version"`
	Roots        []source.Root     `msgpack:"roots"`
	Model        *mapdata.Model    `msgpack:"model"`
	Localisation map[string]string `msgpack:"localisation"`
	Issues       []report.Issue    `msgpack:"issues"`
}

// SaveCache writes the model and localisation for roots to path, together
// with the issues found while loading them. The file is replaced atomically.
func SaveCache(path string, roots []source.Root, m *mapdata.Model, loc map[string]string, issues []report.Issue) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &report.FileError{Path: path, Op: "write", Err: err}
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return &report.FileError{Path: path, Op: "write", Err: err}
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	enc := msgpack.NewEncoder(w)
	err = enc.Encode(&cacheFile{Version: CacheVersion, Roots: roots, Model: m, Localisation: loc, Issues: issues})
	if err == nil {
		err = w.Flush()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return &report.FileError{Path: path, Op: "write", Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &report.FileError{Path: path, Op: "write", Err: err}
	}
	return nil
}

// LoadCache reads a cache written for the same roots. It reports false, with
// no error, when the file is absent, from another version, or for other
// roots. On a hit the stored issues are replayed into rep and the model is
// re-indexed; the integrity issues indexing finds are already among them.
func LoadCache(path string, roots []source.Root, rep *report.Report) (*mapdata.Model, map[string]string, bool, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, false, nil
	}
	if err != nil {
		return nil, nil, false, &report.FileError{Path: path, Op: "read", Err: err}
	}
	defer f.Close()

	var c cacheFile
	if err := msgpack.NewDecoder(bufio.NewReader(f)).Decode(&c); err != nil {
		return nil, nil, false, &report.FileError{Path: path, Op: "decode", Err: err}
	}
	if c.Version != CacheVersion || c.Model == nil || !slices.Equal(c.Roots, roots) {
		return nil, nil, false, nil
	}

	rep.Replay(c.Issues)
	c.Model.Index(report.New())
	return c.Model, c.Localisation, true, nil
}
