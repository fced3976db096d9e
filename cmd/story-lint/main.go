// Command story-lint validates a Markdown prose corpus and reports
// cross-file inconsistencies: broken links, orphaned documents, and character
// name drift.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	storylint "github.com/goliatone/go-storylint"
	"github.com/goliatone/go-storylint/internal/configfile"
	"github.com/goliatone/go-storylint/internal/discovery"
	"github.com/goliatone/go-storylint/internal/logging/gologger"
	"github.com/goliatone/go-storylint/pkg/interfaces"

	validatecmd "github.com/goliatone/go-storylint/internal/commands/validate"
)

// Exit codes per the CLI contract: 0 when validation passed, 1 when findings
// failed the run, 2 on configuration or discovery errors.
const (
	exitOK     = 0
	exitFailed = 1
	exitConfig = 2
)

var (
	flagConfig   string
	flagFormat   string
	flagNoColor  bool
	flagQuiet    bool
	flagVerbose  bool
	flagLogLevel string
)

func main() {
	os.Exit(run())
}

func run() int {
	root := &cobra.Command{
		Use:           "story-lint",
		Short:         "Lint Markdown prose projects for cross-file inconsistencies",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var exitCode int

	validate := &cobra.Command{
		Use:   "validate [paths...]",
		Short: "Validate the corpus and report findings",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := runValidate(cmd, args)
			exitCode = code
			return err
		},
	}

	validate.Flags().StringVar(&flagConfig, "config", "", "path to the configuration file (default .story-linter.yml)")
	validate.Flags().StringVar(&flagFormat, "format", validatecmd.FormatText, "output format: text or json")
	validate.Flags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")
	validate.Flags().BoolVar(&flagQuiet, "quiet", false, "only print the summary line")
	validate.Flags().BoolVar(&flagVerbose, "verbose", false, "print related locations, suggestions, and progress")
	validate.Flags().StringVar(&flagLogLevel, "log-level", "", "structured log level (trace, debug, info, warn, error)")

	root.AddCommand(validate)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "story-lint:", err)
		if exitCode == exitOK {
			exitCode = classifyError(err)
		}
	}
	return exitCode
}

func runValidate(cmd *cobra.Command, args []string) (int, error) {
	provider, err := loggerProvider()
	if err != nil {
		return exitConfig, err
	}

	handler := validatecmd.NewHandler(os.Stdout, provider, nil)

	msg := validatecmd.Command{
		ConfigPath: flagConfig,
		Paths:      args,
		Format:     flagFormat,
		NoColor:    flagNoColor,
		Quiet:      flagQuiet,
		Verbose:    flagVerbose,
	}

	if err := handler.Execute(cmd.Context(), msg); err != nil {
		return classifyError(err), err
	}

	if result, ok := handler.Result(); ok && !result.Passed {
		return exitFailed, nil
	}
	return exitOK, nil
}

// loggerProvider only wires structured logging when asked for; the default
// CLI experience is the formatter output alone.
func loggerProvider() (interfaces.LoggerProvider, error) {
	level := flagLogLevel
	if level == "" {
		if !flagVerbose {
			return nil, nil
		}
		level = "debug"
	}
	return gologger.NewProvider(gologger.Config{
		Level:  level,
		Format: "console",
	})
}

func classifyError(err error) int {
	if err == nil {
		return exitOK
	}
	if storylint.IsConfigError(err) ||
		discovery.IsDiscoveryError(err) ||
		errors.Is(err, configfile.ErrMalformed) {
		return exitConfig
	}
	// Findings never surface as errors, so anything else that escapes the
	// engine is still an environment problem rather than a lint failure.
	return exitConfig
}
