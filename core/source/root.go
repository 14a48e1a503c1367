package source

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"map-atlas/core/report"
	"map-atlas/core/script"
)

// ManifestFile is the descriptor every mod root must carry.
const ManifestFile = "descriptor.mod"

// Kind tells where a root came from.
type Kind string

const (
	KindBase       Kind = "base"
	KindReferenced Kind = "referenced"
	KindPrimary    Kind = "primary"
)

// Root is one validated content directory.
type Root struct {
	Path    string `json:"path"`
	Kind    Kind   `json:"kind"`
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
}

// Label is a display name such as "My Mod(1.2)", or the path for the base root.
func (r Root) Label() string {
	if r.Name == "" {
		return r.Path
	}
	return fmt.Sprintf("%s(%s)", r.Name, r.Version)
}

// Resolve validates the configured roots and returns them base first,
// primary last. An invalid base root is fatal and returned as *report.PathError.
// Mod roots with a missing or unparsable manifest are dropped and reported
// on rep; resolution continues with the remaining roots.
func Resolve(cfg Config, rep *report.Report) ([]Root, error) {
	if err := checkBase(cfg); err != nil {
		return nil, err
	}

	roots := []Root{{Path: filepath.Clean(cfg.BasePath), Kind: KindBase}}

	for _, p := range cfg.ModPaths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		r, err := readManifest(p, KindReferenced)
		if err != nil {
			rep.Add(err)
			continue
		}
		roots = append(roots, r)
	}

	if cfg.PrimaryPath != "" {
		r, err := readManifest(cfg.PrimaryPath, KindPrimary)
		if err != nil {
			rep.Add(err)
		} else {
			roots = append(roots, r)
		}
	}

	return roots, nil
}

func checkBase(cfg Config) error {
	if cfg.BasePath == "" {
		return &report.PathError{Path: cfg.BasePath, Reason: "base path is not configured"}
	}
	info, err := os.Stat(cfg.BasePath)
	if err != nil {
		return &report.PathError{Path: cfg.BasePath, Reason: statReason(err)}
	}
	if !info.IsDir() {
		return &report.PathError{Path: cfg.BasePath, Reason: "not a directory"}
	}
	if cfg.RequireExecutable != "" {
		marker := filepath.Join(cfg.BasePath, cfg.RequireExecutable)
		if _, err := os.Stat(marker); err != nil {
			return &report.PathError{Path: cfg.BasePath, Reason: fmt.Sprintf("%s: %s", cfg.RequireExecutable, statReason(err))}
		}
	}
	return nil
}

func readManifest(path string, kind Kind) (Root, error) {
	manifest := filepath.Join(path, ManifestFile)
	doc, err := script.ReadFile(manifest)
	if err != nil {
		return Root{}, &report.PathError{Path: manifest, Reason: statReason(errors.Unwrap(err))}
	}

	root := doc.Root()
	name, okName := root.GetLast("name")
	version, okVersion := root.GetLast("version")
	if !okName || !okVersion || name.Unquoted() == "" || version.Unquoted() == "" {
		return Root{}, &report.PathError{Path: manifest, Reason: "manifest must declare name and version"}
	}

	return Root{
		Path:    filepath.Clean(path),
		Kind:    kind,
		Name:    name.Unquoted(),
		Version: version.Unquoted(),
	}, nil
}

func statReason(err error) string {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "does not exist"
	case errors.Is(err, fs.ErrPermission):
		return "permission denied"
	case err == nil:
		return "unreadable"
	}
	return err.Error()
}
