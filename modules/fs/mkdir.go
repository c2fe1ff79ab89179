package fs

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/taskbridge/internal/host"
	"github.com/vk/taskbridge/internal/project"
)

// Mkdir creates a directory and any missing parents.
type Mkdir struct {
	project.Component
	dir project.File
}

func (m *Mkdir) SetDir(dir project.File) { m.dir = dir }

// Execute implements registry.Task.
func (m *Mkdir) Execute(ctx context.Context) error {
	if m.dir.IsZero() {
		return errors.New("dir attribute is required")
	}
	p := m.Project()
	fi, err := p.Fs().Stat(m.dir.Path())
	if err == nil {
		if !fi.IsDir() {
			return fmt.Errorf("unable to create directory as a file already exists with that name: %s", m.dir)
		}
		return nil
	}
	if err := p.Fs().MkdirAll(m.dir.Path(), 0o755); err != nil {
		return fmt.Errorf("directory %s creation was not successful: %w", m.dir, err)
	}
	p.Log(ctx, "Created dir: "+m.dir.Path(), host.LevelInfo)
	return nil
}
