package flow

import (
	"context"
	"errors"

	"github.com/vk/taskbridge/internal/ctxlog"
	"github.com/vk/taskbridge/internal/host"
	"github.com/vk/taskbridge/internal/project"
	"github.com/vk/taskbridge/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Fail stops the build. With if or unless it only fails when the named
// property is set, or not set.
type Fail struct {
	project.Component
	message string
	ifProp  string
	unless  string
}

func (f *Fail) SetMessage(msg string) { f.message = msg }
func (f *Fail) SetIf(name string)     { f.ifProp = name }
func (f *Fail) SetUnless(name string) { f.unless = name }

// Execute implements registry.Task.
func (f *Fail) Execute(ctx context.Context) error {
	p := f.Project()
	if f.ifProp != "" {
		if _, ok := p.Property(f.ifProp); !ok {
			return nil
		}
	}
	if f.unless != "" {
		if _, ok := p.Property(f.unless); ok {
			return nil
		}
	}
	msg := f.message
	if msg == "" {
		msg = "No message"
	}
	return errors.New(msg)
}

// Sequential performs its nested tasks in order and stops at the first failure.
type Sequential struct {
	project.Component
	tasks []host.Element
}

// AddTask implements project.TaskContainer.
func (s *Sequential) AddTask(el host.Element) { s.tasks = append(s.tasks, el) }

// Execute implements registry.Task.
func (s *Sequential) Execute(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	for i, el := range s.tasks {
		logger.Debug("Performing nested task.", "index", i, "task", el.Name())
		if err := el.Perform(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Register registers the tasks with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterTask("fail", (*Fail)(nil))
	r.RegisterTask("sequential", (*Sequential)(nil))
}
