package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/vk/taskbridge/internal/ctxlog"
	"github.com/vk/taskbridge/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	config   *Config
	fs       afero.Fs
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// It panics when the registered modules are inconsistent.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logW := cfg.LogOutput
	if logW == nil {
		logW = outW
	}
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	if err := reg.ValidateRegistry(ctx); err != nil {
		// A module registered something unusable; that is a programmer error.
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	fsys := cfg.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		config:   cfg,
		fs:       fsys,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}
