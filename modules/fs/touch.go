package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vk/taskbridge/internal/project"
)

// Touch creates a file or updates its modification time.
type Touch struct {
	project.Component
	file   project.File
	mkdirs bool
	millis int64
}

func (t *Touch) SetFile(f project.File) { t.file = f }
func (t *Touch) SetMkdirs(on bool)      { t.mkdirs = on }
func (t *Touch) SetMillis(ms int64)     { t.millis = ms }

// Execute implements registry.Task.
func (t *Touch) Execute(ctx context.Context) error {
	if t.file.IsZero() {
		return errors.New("specify the file to touch")
	}
	fsys := t.Project().Fs()

	if _, err := fsys.Stat(t.file.Path()); errors.Is(err, os.ErrNotExist) {
		if t.mkdirs {
			if err := fsys.MkdirAll(filepath.Dir(t.file.Path()), 0o755); err != nil {
				return err
			}
		}
		f, err := fsys.Create(t.file.Path())
		if err != nil {
			return fmt.Errorf("could not create %s: %w", t.file, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	when := time.Now()
	if t.millis > 0 {
		when = time.UnixMilli(t.millis)
	}
	return fsys.Chtimes(t.file.Path(), when, when)
}
