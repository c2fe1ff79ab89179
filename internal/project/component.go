package project

import "github.com/vk/taskbridge/internal/host"

// binder is implemented by objects that need their Project.
type binder interface {
	Bind(p *Project)
}

// Component gives an embedding task or data type access to its Project.
type Component struct {
	project *Project
}

// Bind attaches the project. The engine calls it on every instance it creates.
func (c *Component) Bind(p *Project) { c.project = p }

// Project returns the bound project.
func (c *Component) Project() *Project { return c.project }

// TaskContainer is a task that receives its nested tasks unconfigured and
// performs them itself.
type TaskContainer interface {
	AddTask(el host.Element)
}
