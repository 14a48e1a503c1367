package source

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"map-atlas/core/report"
)

// File is one content file found under a root.
type File struct {
	Root Root
	// Path is the absolute (or root-joined) path on disk.
	Path string
	// Rel is the path relative to the scanned directory, slash separated.
	Rel string
}

// Files lists the files under dir (relative to each root) whose name matches.
// Files are returned in priority order: roots ascending, lexical inside a root.
// A file whose base name shows up again in a later root is shadowed by it and
// left out, the same way the game replaces a vanilla file with a mod copy.
// A missing dir is skipped silently; other walk failures go to rep.
func Files(roots []Root, dir string, match func(name string) bool, rep *report.Report) []File {
	var found []File
	for _, r := range roots {
		found = append(found, walk(r, dir, match, rep)...)
	}
	return shadow(found, func(f File) string { return filepath.Base(f.Path) })
}

func walk(r Root, dir string, match func(name string) bool, rep *report.Report) []File {
	base := filepath.Join(r.Path, filepath.FromSlash(dir))
	var out []File
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == base && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			rep.Add(&report.FileError{Path: path, Op: "scan", Err: err})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || (match != nil && !match(d.Name())) {
			return nil
		}
		rel, _ := filepath.Rel(base, path)
		out = append(out, File{Root: r, Path: path, Rel: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		rep.Add(&report.FileError{Path: base, Op: "scan", Err: err})
	}
	return out
}

// shadow keeps only the last file for every key, preserving the position of
// the survivor.
func shadow(files []File, key func(File) string) []File {
	last := make(map[string]int, len(files))
	for i, f := range files {
		last[key(f)] = i
	}
	out := make([]File, 0, len(last))
	for i, f := range files {
		if last[key(f)] == i {
			out = append(out, f)
		}
	}
	return out
}

// Latest returns the whole-file resource rel from the highest priority root
// that has it. Files such as definition.csv or provinces.bmp are never merged.
func Latest(roots []Root, rel string) (File, bool) {
	for i := len(roots) - 1; i >= 0; i-- {
		path := filepath.Join(roots[i].Path, filepath.FromSlash(rel))
		if _, err := os.Stat(path); err == nil || !errors.Is(err, fs.ErrNotExist) {
			return File{Root: roots[i], Path: path, Rel: rel}, true
		}
	}
	return File{}, false
}

// Suffix matches file names ending with one of the given suffixes, case-insensitively.
func Suffix(suffixes ...string) func(string) bool {
	return func(name string) bool {
		lower := strings.ToLower(name)
		for _, s := range suffixes {
			if strings.HasSuffix(lower, strings.ToLower(s)) {
				return true
			}
		}
		return false
	}
}

// Entry is one keyed record read from a file.
type Entry[V any] struct {
	Key   string
	Value V
}

// Merge reads files in order and folds their entries into one map. The last
// write for a key wins, so the order of files is observable in the result.
// A file that vanished is skipped; any other read failure is reported and the
// file is skipped. The context is checked before every file.
func Merge[V any](ctx context.Context, files []File, read func(File) ([]Entry[V], error), rep *report.Report) (map[string]V, error) {
	out := make(map[string]V)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entries, err := read(f)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			rep.Add(err)
			continue
		}
		for _, e := range entries {
			out[e.Key] = e.Value
		}
	}
	return out, nil
}

// All returns rel from every root that has it, lowest priority first. It is
// used for keyed single files (colors.txt, continent.txt) merged per key.
func All(roots []Root, rel string) []File {
	var out []File
	for _, r := range roots {
		path := filepath.Join(r.Path, filepath.FromSlash(rel))
		if _, err := os.Stat(path); err == nil || !errors.Is(err, fs.ErrNotExist) {
			out = append(out, File{Root: r, Path: path, Rel: rel})
		}
	}
	return out
}
