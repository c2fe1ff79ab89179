package taskdef

import (
	"context"
	"errors"

	"github.com/vk/taskbridge/internal/project"
	"github.com/vk/taskbridge/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Taskdef binds a task name to an implementation type known to the project.
type Taskdef struct {
	project.Component
	name      string
	classname string
}

func (t *Taskdef) SetName(name string)      { t.name = name }
func (t *Taskdef) SetClassname(name string) { t.classname = name }

// Execute implements registry.Task.
func (t *Taskdef) Execute(ctx context.Context) error {
	if t.name == "" || t.classname == "" {
		return errors.New("taskdef requires both name and classname")
	}
	return t.Project().DefineTask(ctx, t.name, t.classname)
}

// Register registers the task with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterTask("taskdef", (*Taskdef)(nil))
}
