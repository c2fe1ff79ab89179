package property

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/vk/taskbridge/internal/ctxlog"
	"github.com/vk/taskbridge/internal/project"
	"github.com/vk/taskbridge/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Property defines a property unless it is already set. With environment it
// imports every environment variable under the given prefix instead.
type Property struct {
	project.Component
	name        string
	value       string
	hasValue    bool
	location    project.File
	environment string
}

func (p *Property) SetName(name string)          { p.name = name }
func (p *Property) SetLocation(f project.File)   { p.location = f }
func (p *Property) SetEnvironment(prefix string) { p.environment = prefix }

func (p *Property) SetValue(v string) {
	p.value = v
	p.hasValue = true
}

// Execute implements registry.Task.
func (p *Property) Execute(ctx context.Context) error {
	proj := p.Project()

	if p.environment != "" {
		prefix := strings.TrimSuffix(p.environment, ".") + "."
		defined := 0
		for _, e := range os.Environ() {
			pair := strings.SplitN(e, "=", 2)
			if len(pair) == 2 && proj.SetNewProperty(ctx, prefix+pair[0], pair[1]) {
				defined++
			}
		}
		ctxlog.FromContext(ctx).Debug("Environment imported.", "prefix", prefix, "defined", defined)
		return nil
	}

	if p.name == "" {
		return errors.New("you must specify name or environment with the property task")
	}
	switch {
	case p.hasValue:
		proj.SetNewProperty(ctx, p.name, p.value)
	case !p.location.IsZero():
		proj.SetNewProperty(ctx, p.name, p.location.Path())
	default:
		return errors.New("you must specify value or location with the property task")
	}
	return nil
}

// Available sets a property when a file or directory exists.
type Available struct {
	project.Component
	property string
	file     project.File
	kind     string
	value    string
}

func (a *Available) SetProperty(name string) { a.property = name }
func (a *Available) SetFile(f project.File)  { a.file = f }
func (a *Available) SetType(kind string)     { a.kind = kind }
func (a *Available) SetValue(v string)       { a.value = v }

// Execute implements registry.Task.
func (a *Available) Execute(ctx context.Context) error {
	if a.property == "" {
		return errors.New("property attribute is required")
	}
	if a.file.IsZero() {
		return errors.New("file attribute is required")
	}
	proj := a.Project()

	fi, err := proj.Fs().Stat(a.file.Path())
	if err != nil {
		ctxlog.FromContext(ctx).Debug("Resource not available.", "file", a.file.Path())
		return nil
	}
	switch strings.ToLower(a.kind) {
	case "dir":
		if !fi.IsDir() {
			return nil
		}
	case "file":
		if fi.IsDir() {
			return nil
		}
	case "":
	default:
		return errors.New("type must be file or dir")
	}

	value := a.value
	if value == "" {
		value = "true"
	}
	proj.SetNewProperty(ctx, a.property, value)
	return nil
}

// Register registers the tasks with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterTask("property", (*Property)(nil))
	r.RegisterTask("available", (*Available)(nil))
}
