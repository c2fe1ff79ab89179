package project

import (
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/vk/taskbridge/internal/host"
)

// File is an absolute path inside the project filesystem. Relative names
// are resolved against the project base directory when the File is built.
type File struct {
	path string
}

// Path returns the absolute path, or "" for the zero File.
func (f File) Path() string { return f.path }

// IsZero reports whether no path was set.
func (f File) IsZero() bool { return f.path == "" }

// Base returns the last element of the path.
func (f File) Base() string { return filepath.Base(f.path) }

// Join returns the File for a path below f.
func (f File) Join(elem ...string) File {
	return File{path: filepath.Join(append([]string{f.path}, elem...)...)}
}

func (f File) String() string { return f.path }

// TypeName makes File resolvable as a type reference.
func (File) TypeName() string { return host.FileType }

// ResolveFile returns the File for name, relative to the base directory
// unless name is absolute.
func (p *Project) ResolveFile(name string) File {
	if name == "" {
		return File{}
	}
	if !filepath.IsAbs(name) {
		name = filepath.Join(p.basedir, name)
	}
	return File{path: filepath.Clean(name)}
}

func (p *Project) newFile(v any) (any, error) {
	switch v := v.(type) {
	case string:
		return p.ResolveFile(v), nil
	case File:
		return v, nil
	case fmt.Stringer:
		return p.ResolveFile(v.String()), nil
	default:
		return nil, fmt.Errorf("cannot build a file from %T", v)
	}
}

func parseURL(v any) (any, error) {
	var raw string
	switch v := v.(type) {
	case string:
		raw = v
	case fmt.Stringer:
		raw = v.String()
	default:
		return nil, fmt.Errorf("cannot build a url from %T", v)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("url %q has no scheme", raw)
	}
	return u, nil
}
