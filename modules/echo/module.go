package echo

import (
	"context"
	"os"
	"path/filepath"

	"github.com/vk/taskbridge/internal/ctxlog"
	"github.com/vk/taskbridge/internal/host"
	"github.com/vk/taskbridge/internal/project"
	"github.com/vk/taskbridge/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Echo writes a message to the project output or to a file.
type Echo struct {
	project.Component
	message string
	level   host.LogLevel
	file    project.File
	append  bool
}

func (e *Echo) SetMessage(msg string)        { e.message = msg }
func (e *Echo) SetLevel(level host.LogLevel) { e.level = level }
func (e *Echo) SetFile(f project.File)       { e.file = f }
func (e *Echo) SetAppend(on bool)            { e.append = on }

// Execute implements registry.Task.
func (e *Echo) Execute(ctx context.Context) error {
	p := e.Project()
	if e.file.IsZero() {
		level := e.level
		if level == "" {
			level = host.LevelWarning
		}
		p.Log(ctx, e.message, level)
		return nil
	}

	ctxlog.FromContext(ctx).Debug("Writing message to file.", "file", e.file.Path(), "append", e.append)
	if err := p.Fs().MkdirAll(filepath.Dir(e.file.Path()), 0o755); err != nil {
		return err
	}
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if e.append {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := p.Fs().OpenFile(e.file.Path(), flags, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(e.message); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Register registers the task with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterTask("echo", (*Echo)(nil))
}
