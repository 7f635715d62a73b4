package app

import (
	"io"
	"log/slog"

	"github.com/Bassline-Org/bassline-sub010/internal/gadget"
	"github.com/Bassline-Org/bassline-sub010/internal/session"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *gadget.Registry
	sessions *session.Manager
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// With no modules given the compiled-in core library is registered.
func NewApp(outW io.Writer, cfg *Config, modules ...gadget.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	reg := gadget.NewRegistry()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All gadget modules registered.", "count", len(modules), "variants", reg.Names())

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		sessions: session.NewManager(reg),
	}
}

// Registry returns the application's gadget registry. This is primarily for
// testing.
func (a *App) Registry() *gadget.Registry {
	return a.registry
}
