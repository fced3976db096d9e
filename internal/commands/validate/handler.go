package validatecmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	command "github.com/goliatone/go-command"

	storylint "github.com/goliatone/go-storylint"
	"github.com/goliatone/go-storylint/formatter"
	"github.com/goliatone/go-storylint/internal/commands"
	"github.com/goliatone/go-storylint/internal/configfile"
	"github.com/goliatone/go-storylint/internal/engineconfig"
	"github.com/goliatone/go-storylint/internal/findings"
	"github.com/goliatone/go-storylint/internal/logging"
	"github.com/goliatone/go-storylint/pkg/interfaces"
	"github.com/goliatone/go-storylint/validators/characters"
	"github.com/goliatone/go-storylint/validators/linkgraph"
)

var _ command.Commander[Command] = (*Handler)(nil)

// Handler executes validate commands. It owns the configuration resolution,
// engine construction, and result rendering; the exit-code decision stays
// with the CLI, which reads the captured result.
type Handler struct {
	inner    *commands.Handler[Command]
	out      io.Writer
	provider interfaces.LoggerProvider
	plugins  []interfaces.Plugin

	result *interfaces.ValidationResult
}

// NewHandler builds the validate handler. When no plugins are supplied the
// bundled character-consistency and link-graph plugins are registered.
func NewHandler(out io.Writer, provider interfaces.LoggerProvider, plugins []interfaces.Plugin, opts ...commands.HandlerOption[Command]) *Handler {
	if out == nil {
		out = os.Stdout
	}
	if len(plugins) == 0 {
		plugins = []interfaces.Plugin{characters.New(), linkgraph.New()}
	}

	h := &Handler{out: out, provider: provider, plugins: plugins}

	options := append([]commands.HandlerOption[Command]{
		commands.WithLogger[Command](logging.ModuleLogger(provider, "storylint.cli")),
		commands.WithOperation[Command]("storylint.validate"),
	}, opts...)

	h.inner = commands.NewHandler(h.run, options...)
	return h
}

// Execute implements command.Commander[Command].
func (h *Handler) Execute(ctx context.Context, msg Command) error {
	return h.inner.Execute(ctx, msg)
}

// Result returns the validation result captured by the last successful
// execution.
func (h *Handler) Result() (interfaces.ValidationResult, bool) {
	if h.result == nil {
		return interfaces.ValidationResult{}, false
	}
	return *h.result, true
}

func (h *Handler) run(ctx context.Context, msg Command) error {
	cfg, diagnostics, err := h.resolveConfig(msg)
	if err != nil {
		return err
	}

	engine, err := storylint.New(cfg,
		storylint.WithPlugins(h.plugins...),
		storylint.WithLoggerProvider(h.provider),
	)
	if err != nil {
		return err
	}

	if msg.Verbose {
		engine.Subscribe(progressListener(logging.ModuleLogger(h.provider, "storylint.cli")))
	}

	result, err := engine.Run(ctx)
	if err != nil {
		return err
	}

	if len(diagnostics) > 0 {
		all := append(diagnostics, result.Findings...)
		result = findings.Aggregate(result.RunID, all, result.FileCount, cfg.MinSeverity, result.Cancelled)
	}

	h.result = &result
	return h.render(msg, result)
}

// resolveConfig loads the config file when present; a missing default file
// falls back to linting every Markdown file under the working directory.
func (h *Handler) resolveConfig(msg Command) (engineconfig.Config, []interfaces.Finding, error) {
	path := strings.TrimSpace(msg.ConfigPath)

	if path == "" {
		candidate := configfile.DefaultFileName
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}

	var cfg engineconfig.Config
	var diagnostics []interfaces.Finding

	if path != "" {
		loaded, diags, err := configfile.Load(path)
		if err != nil {
			return engineconfig.Config{}, nil, err
		}
		cfg = loaded
		diagnostics = diags
	} else {
		cfg = engineconfig.DefaultConfig()
		cfg.Include = []string{"**/*.md"}
		cwd, err := os.Getwd()
		if err != nil {
			return engineconfig.Config{}, nil, err
		}
		cfg.RootDir = cwd
	}

	if len(msg.Paths) > 0 {
		cfg.Include = append([]string(nil), msg.Paths...)
	}
	if !filepath.IsAbs(cfg.RootDir) && cfg.RootDir != "" {
		if abs, err := filepath.Abs(cfg.RootDir); err == nil {
			cfg.RootDir = abs
		}
	}

	return cfg, diagnostics, nil
}

func (h *Handler) render(msg Command, result interfaces.ValidationResult) error {
	switch strings.ToLower(strings.TrimSpace(msg.Format)) {
	case "", FormatText:
		return formatter.Text(h.out, result, formatter.TextOptions{
			NoColor: msg.NoColor,
			Quiet:   msg.Quiet,
			Verbose: msg.Verbose,
		})
	case FormatJSON:
		return formatter.JSON(h.out, result)
	default:
		return nil
	}
}

func progressListener(logger interfaces.Logger) interfaces.EventListener {
	return func(event interfaces.Event) {
		switch event.Kind {
		case interfaces.EventRunStart:
			logger.Info("run started", "files", event.FileCount)
		case interfaces.EventFileDone:
			logger.Debug("file parsed", "file", event.Path)
		case interfaces.EventValidatorDone:
			logger.Info("validator finished", "validator", event.Validator, "findings", event.Findings)
		case interfaces.EventRunEnd:
			logger.Info("run finished", "cancelled", event.Cancelled)
		}
	}
}
