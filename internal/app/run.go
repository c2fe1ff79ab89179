package app

import (
	"context"
	"fmt"
	"reflect"

	"github.com/vk/taskbridge/internal/bridge"
	"github.com/vk/taskbridge/internal/ctxlog"
	"github.com/vk/taskbridge/internal/host"
	"github.com/vk/taskbridge/internal/project"
	"github.com/vk/taskbridge/internal/script"
)

// Run loads the configured scripts and executes them against a fresh project.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	msgLevel, err := host.ParseLogLevel(a.config.MessageLevel)
	if err != nil {
		return err
	}

	p, err := project.New(a.registry, project.Options{
		BaseDir:      a.config.BaseDir,
		Fs:           a.fs,
		Output:       a.outW,
		MessageLevel: msgLevel,
		Strict:       a.config.Strict,
		Properties:   a.config.Defines,
	})
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	a.logger.Debug("Project created.", "basedir", p.BaseDir())

	s, err := script.NewLoader(a.fs).Load(ctx, a.config.Files...)
	if err != nil {
		return fmt.Errorf("failed to load build scripts: %w", err)
	}
	a.logger.Info("Build scripts loaded.", "files", s.Files, "statements", len(s.Statements))

	runner := script.NewRunner(bridge.New(p), a.config.Defines)
	if err := runner.Run(ctx, s); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	a.logger.Info("Build finished.")
	return nil
}

// TaskDoc describes a registered task or data type.
type TaskDoc struct {
	Name       string
	Attributes []string // accepted through setters
}

// Describe documents the registered tasks and data types and lists every
// type name scripts may use in taskdef.
func (a *App) Describe() (tasks, dataTypes []TaskDoc, typeNames []string, err error) {
	p, err := project.New(a.registry, project.Options{BaseDir: a.config.BaseDir, Fs: a.fs})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create project: %w", err)
	}
	doc := func(name string, typ reflect.Type) (TaskDoc, error) {
		d, err := p.Reflector().ResolveType(typ)
		if err != nil {
			return TaskDoc{}, err
		}
		return TaskDoc{Name: name, Attributes: p.Reflector().Mutators(d)}, nil
	}

	for _, name := range a.registry.TaskNames() {
		typ, _ := a.registry.Task(name)
		d, err := doc(name, typ)
		if err != nil {
			return nil, nil, nil, err
		}
		tasks = append(tasks, d)
	}
	for _, name := range a.registry.DataTypeNames() {
		typ, _ := a.registry.DataType(name)
		d, err := doc(name, typ)
		if err != nil {
			return nil, nil, nil, err
		}
		dataTypes = append(dataTypes, d)
	}
	return tasks, dataTypes, p.TypeNames(), nil
}

// TaskNames lists the registered task names, then the data type names.
func (a *App) TaskNames() (tasks, dataTypes []string) {
	return a.registry.TaskNames(), a.registry.DataTypeNames()
}
