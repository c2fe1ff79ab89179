package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/vk/taskbridge/internal/ctxlog"
	"github.com/vk/taskbridge/internal/host"
	"github.com/vk/taskbridge/internal/project"
)

// Copy copies a file, or the files of nested filesets, to a new location.
// Existing targets that are at least as new as their source are kept unless
// overwrite is set.
type Copy struct {
	project.Component
	file      project.File
	toFile    project.File
	toDir     project.File
	overwrite bool
	filesets  []*FileSet
}

func (c *Copy) SetFile(f project.File)    { c.file = f }
func (c *Copy) SetTofile(f project.File)  { c.toFile = f }
func (c *Copy) SetTodir(dir project.File) { c.toDir = dir }
func (c *Copy) SetOverwrite(on bool)      { c.overwrite = on }
func (c *Copy) AddFileset(set *FileSet)   { c.filesets = append(c.filesets, set) }

type copyJob struct {
	from, to string
}

// Execute implements registry.Task.
func (c *Copy) Execute(ctx context.Context) error {
	jobs, err := c.plan()
	if err != nil {
		return err
	}
	p := c.Project()
	fsys := p.Fs()
	logger := ctxlog.FromContext(ctx)

	copied := 0
	for _, job := range jobs {
		fresh, err := c.upToDate(fsys, job)
		if err != nil {
			return err
		}
		if fresh {
			logger.Debug("Skipping up-to-date file.", "from", job.from, "to", job.to)
			continue
		}
		if err := copyFile(fsys, job.from, job.to); err != nil {
			return fmt.Errorf("failed to copy %s to %s: %w", job.from, job.to, err)
		}
		copied++
	}
	if copied > 0 {
		dest := c.toDir.Path()
		if dest == "" {
			dest = c.toFile.Path()
		}
		p.Log(ctx, fmt.Sprintf("Copying %d files to %s", copied, dest), host.LevelInfo)
	}
	return nil
}

func (c *Copy) plan() ([]copyJob, error) {
	switch {
	case c.file.IsZero() && len(c.filesets) == 0:
		return nil, errors.New("specify at least one source: a file or a fileset")
	case !c.file.IsZero() && c.toFile.IsZero() && c.toDir.IsZero():
		return nil, errors.New("one of tofile or todir must be set")
	case len(c.filesets) > 0 && c.toDir.IsZero():
		return nil, errors.New("copying filesets requires the todir attribute")
	case !c.toFile.IsZero() && !c.toDir.IsZero():
		return nil, errors.New("only one of tofile and todir may be set")
	}

	var jobs []copyJob
	if !c.file.IsZero() {
		to := c.toFile
		if to.IsZero() {
			to = c.toDir.Join(c.file.Base())
		}
		jobs = append(jobs, copyJob{from: c.file.Path(), to: to.Path()})
	}
	for _, set := range c.filesets {
		files, err := set.Files()
		if err != nil {
			return nil, err
		}
		for _, rel := range files {
			jobs = append(jobs, copyJob{
				from: set.Dir().Join(rel).Path(),
				to:   c.toDir.Join(filepath.FromSlash(rel)).Path(),
			})
		}
	}
	return jobs, nil
}

func (c *Copy) upToDate(fsys afero.Fs, job copyJob) (bool, error) {
	if c.overwrite {
		return false, nil
	}
	src, err := fsys.Stat(job.from)
	if err != nil {
		return false, err
	}
	dst, err := fsys.Stat(job.to)
	if err != nil {
		return false, nil
	}
	return !dst.ModTime().Before(src.ModTime()), nil
}

func copyFile(fsys afero.Fs, from, to string) error {
	in, err := fsys.Open(from)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := fsys.MkdirAll(filepath.Dir(to), 0o755); err != nil {
		return err
	}
	out, err := fsys.Create(to)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
