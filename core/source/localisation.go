package source

import (
	"context"
	"os"
	"regexp"
	"strings"

	"map-atlas/core/report"
	"map-atlas/core/script"
)

const localisationDir = "localisation"

// localisationLine matches `KEY:0 "value"`; the version digit is optional.
var localisationLine = regexp.MustCompile(`^(\w+):\s*\d*?\s*"([^"]+)"`)

// LocalisationFiles returns the localisation files in merge order. Inside each
// root the fallback language comes first, then the native language, then the
// replace/ folder (fallback, native). Roots are visited in priority order.
func LocalisationFiles(roots []Root, fallback, native string, rep *report.Report) []File {
	langs := []string{fallback}
	if native != "" && native != fallback {
		langs = append(langs, native)
	}

	var found []File
	for _, r := range roots {
		var main, replace []File
		for _, lang := range langs {
			for _, f := range walk(r, localisationDir, Suffix("l_"+lang+".yml"), rep) {
				if isReplace(f) {
					replace = append(replace, f)
				} else {
					main = append(main, f)
				}
			}
		}
		found = append(found, main...)
		found = append(found, replace...)
	}

	return shadow(found, func(f File) string {
		name := f.Rel[strings.LastIndex(f.Rel, "/")+1:]
		if isReplace(f) {
			return "replace/" + name
		}
		return name
	})
}

func isReplace(f File) bool {
	return strings.HasPrefix(f.Rel, "replace/") || strings.Contains(f.Rel, "/replace/")
}

// LoadLocalisation merges every localisation string of the given roots.
func LoadLocalisation(ctx context.Context, roots []Root, cfg Config, rep *report.Report) (map[string]string, error) {
	files := LocalisationFiles(roots, cfg.Language, cfg.Native(), rep)
	return Merge(ctx, files, ReadLocalisation, rep)
}

// ReadLocalisation parses one yml file. Lines that do not look like
// `key: "value"` (headers, comments) are ignored.
func ReadLocalisation(f File) ([]Entry[string], error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, &report.FileError{Path: f.Path, Op: "read", Err: err}
	}

	var out []Entry[string]
	for _, line := range strings.Split(script.Decode(data), "\n") {
		m := localisationLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		out = append(out, Entry[string]{Key: m[1], Value: m[2]})
	}
	return out, nil
}
