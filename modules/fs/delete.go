package fs

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/vk/taskbridge/internal/ctxlog"
	"github.com/vk/taskbridge/internal/host"
	"github.com/vk/taskbridge/internal/project"
)

// Delete removes a file, a directory tree, or the files of nested filesets.
type Delete struct {
	project.Component
	file     project.File
	dir      project.File
	quiet    bool
	filesets []*FileSet
}

func (d *Delete) SetFile(f project.File)  { d.file = f }
func (d *Delete) SetDir(dir project.File) { d.dir = dir }
func (d *Delete) SetQuiet(quiet bool)     { d.quiet = quiet }
func (d *Delete) AddFileset(set *FileSet) { d.filesets = append(d.filesets, set) }

// Execute implements registry.Task.
func (d *Delete) Execute(ctx context.Context) error {
	if d.file.IsZero() && d.dir.IsZero() && len(d.filesets) == 0 {
		return errors.New("at least one of the file or dir attributes, or a nested fileset element, must be set")
	}
	p := d.Project()
	fsys := p.Fs()
	logger := ctxlog.FromContext(ctx)

	if !d.file.IsZero() {
		if err := fsys.Remove(d.file.Path()); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("unable to delete file %s: %w", d.file, err)
			}
			logger.Debug("Could not find file to delete.", "file", d.file.Path())
		} else if !d.quiet {
			p.Log(ctx, "Deleting: "+d.file.Path(), host.LevelInfo)
		}
	}

	if !d.dir.IsZero() {
		if _, err := fsys.Stat(d.dir.Path()); err == nil {
			if err := fsys.RemoveAll(d.dir.Path()); err != nil {
				return fmt.Errorf("unable to delete directory %s: %w", d.dir, err)
			}
			if !d.quiet {
				p.Log(ctx, "Deleting directory "+d.dir.Path(), host.LevelInfo)
			}
		}
	}

	for _, set := range d.filesets {
		files, err := set.Files()
		if err != nil {
			return err
		}
		for _, rel := range files {
			if err := fsys.Remove(set.Dir().Join(rel).Path()); err != nil {
				return fmt.Errorf("unable to delete file %s: %w", rel, err)
			}
		}
		if !d.quiet && len(files) > 0 {
			p.Log(ctx, fmt.Sprintf("Deleting %d files from %s", len(files), set.Dir()), host.LevelInfo)
		}
	}
	return nil
}
