package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"github.com/vk/taskbridge/internal/project"
)

// Pattern is a nested include or exclude of a FileSet.
type Pattern struct {
	name string
}

func (p *Pattern) SetName(name string) { p.name = name }

// FileSet selects the files under a directory with doublestar patterns.
// Without includes every file is selected.
type FileSet struct {
	project.Component
	dir      project.File
	includes []string
	excludes []string
	pending  []pendingPattern
}

func (f *FileSet) SetDir(dir project.File) { f.dir = dir }

// SetIncludes takes a comma or space separated pattern list.
func (f *FileSet) SetIncludes(patterns string) { f.includes = append(f.includes, splitPatterns(patterns)...) }

// SetExcludes takes a comma or space separated pattern list.
func (f *FileSet) SetExcludes(patterns string) { f.excludes = append(f.excludes, splitPatterns(patterns)...) }

func (f *FileSet) CreateInclude() *Pattern { return f.pattern(&f.includes) }
func (f *FileSet) CreateExclude() *Pattern { return f.pattern(&f.excludes) }

// pattern defers adding a nested pattern until its name is known.
func (f *FileSet) pattern(list *[]string) *Pattern {
	p := &Pattern{}
	f.pending = append(f.pending, pendingPattern{list: list, p: p})
	return p
}

// Dir returns the root directory of the set.
func (f *FileSet) Dir() project.File { return f.dir }

// Files returns the selected regular files as slash-separated paths
// relative to Dir, sorted.
func (f *FileSet) Files() ([]string, error) {
	if f.dir.IsZero() {
		return nil, errors.New("fileset requires the dir attribute")
	}
	f.flush()
	if err := validate(f.includes); err != nil {
		return nil, err
	}
	if err := validate(f.excludes); err != nil {
		return nil, err
	}

	includes := f.includes
	if len(includes) == 0 {
		includes = []string{"**"}
	}

	fsys := f.Project().Fs()
	root := f.dir.Path()
	var files []string
	err := afero.Walk(fsys, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if matchAny(includes, rel) && !matchAny(f.excludes, rel) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

type pendingPattern struct {
	list *[]string
	p    *Pattern
}

func (f *FileSet) flush() {
	for _, pp := range f.pending {
		if pp.p.name != "" {
			*pp.list = append(*pp.list, pp.p.name)
		}
	}
	f.pending = nil
}

func validate(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid pattern %q", p)
		}
	}
	return nil
}

// matchAny also lets a trailing "/" select everything below a directory.
func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if strings.HasSuffix(p, "/") {
			p += "**"
		}
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

func splitPatterns(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' || r == '\n' })
}
