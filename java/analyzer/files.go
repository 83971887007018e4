package analyzer

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter selects files by doublestar patterns written relative to Root.
type Filter struct {
	Root    string
	Include []string
	Exclude []string
}

// Validate rejects malformed patterns up front so that Match can ignore
// pattern errors.
func (f *Filter) Validate() error {
	for _, pattern := range append(slices.Clone(f.Include), f.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid pattern %q", pattern)
		}
	}
	return nil
}

// Match reports whether rel, a slash separated path relative to Root, is
// included and not excluded. An empty include list includes everything.
func (f *Filter) Match(rel string) bool {
	included := len(f.Include) == 0
	for _, pattern := range f.Include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, pattern := range f.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}
	return true
}

func (f *Filter) rel(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(f.Root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// Files expands paths into the sorted list of Java files to analyze.
// Directories are walked and filtered; a file named explicitly is always
// kept. Hidden directories are skipped.
func (f *Filter) Files(paths []string) ([]string, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if !info.IsDir() {
			add(filepath.Clean(path))
			continue
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if p != path && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(p, ".java") {
				return nil
			}
			if f.Match(f.rel(p)) {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", path, err)
		}
	}

	slices.Sort(files)
	return files, nil
}
