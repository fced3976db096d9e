// Package storylint is a pluggable validation engine for long-form prose
// projects authored as a tree of Markdown files. It discovers and parses the
// corpus once, merges cross-file metadata under a plugin-defined contract,
// and orchestrates an ordered set of validator plugins, aggregating their
// findings into a single structured report.
package storylint

import (
	"context"

	"github.com/goliatone/go-storylint/internal/engine"
	"github.com/goliatone/go-storylint/internal/engineconfig"
	"github.com/goliatone/go-storylint/internal/events"
	"github.com/goliatone/go-storylint/internal/logging"
	"github.com/goliatone/go-storylint/internal/registry"
	"github.com/goliatone/go-storylint/pkg/interfaces"
)

// Engine is the top-level validation runtime. Construct with New, attach
// listeners, then call Run.
type Engine struct {
	orchestrator *engine.Orchestrator
	bus          *events.Bus
}

type options struct {
	plugins   []interfaces.Plugin
	provider  interfaces.LoggerProvider
	listeners []interfaces.EventListener
}

// Option customises engine construction.
type Option func(*options)

// WithPlugins registers plugin bundles. Plugins are resolved at construction;
// there is no on-disk discovery or dynamic loading.
func WithPlugins(plugins ...interfaces.Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugins...)
	}
}

// WithLoggerProvider injects the logging provider used for module loggers.
// When omitted the engine runs silently.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(o *options) {
		o.provider = provider
	}
}

// WithListener subscribes a lifecycle event listener at construction time.
func WithListener(listener interfaces.EventListener) Option {
	return func(o *options) {
		o.listeners = append(o.listeners, listener)
	}
}

// New validates the configuration, resolves the plugins into the validator
// registry, and wires the orchestrator. Configuration problems (missing
// include globs, unknown validator keys, validators declaring unknown
// extractors, options failing their schema) are fatal here.
func New(cfg Config, opts ...Option) (*Engine, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.EngineLogger(o.provider)

	reg, err := registry.New(cfg, o.plugins, logging.RegistryLogger(o.provider))
	if err != nil {
		return nil, err
	}

	bus := events.New(logger)
	for _, listener := range o.listeners {
		bus.Subscribe(listener)
	}

	return &Engine{
		orchestrator: engine.New(cfg, reg, bus, o.provider),
		bus:          bus,
	}, nil
}

// Subscribe attaches a lifecycle listener. Listeners run synchronously in
// registration order.
func (e *Engine) Subscribe(listener interfaces.EventListener) {
	e.bus.Subscribe(listener)
}

// Run executes one validation pass over the configured corpus. Only
// configuration and discovery errors are returned; every other fault is
// folded into the result as an engine finding. Cancellation is observed
// through ctx between files and between validators.
func (e *Engine) Run(ctx context.Context) (ValidationResult, error) {
	return e.orchestrator.Run(ctx)
}

// IsConfigError reports whether err is a fatal configuration failure, the
// kind the CLI maps to exit code 2.
func IsConfigError(err error) bool {
	return engineconfig.IsConfigError(err)
}
