// Package validatecmd implements the CLI validate operation on top of the
// shared command handler foundation.
package validatecmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const validateMessageType = "storylint.validate"

// Formats accepted by the validate command. HTML rendering is left to
// external report tooling.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Command triggers one validation run: resolve configuration, construct the
// engine with the bundled plugins, run it over the corpus, and render the
// result in the requested format.
type Command struct {
	// ConfigPath selects the configuration file; empty means
	// .story-linter.yml at the working directory, falling back to defaults
	// when absent.
	ConfigPath string `json:"config_path,omitempty"`
	// Paths optionally overrides the configured include globs.
	Paths []string `json:"paths,omitempty"`
	// Format selects the output renderer (text or json). Defaults to text.
	Format string `json:"format,omitempty"`
	// NoColor disables ANSI colors in text output.
	NoColor bool `json:"no_color,omitempty"`
	// Quiet suppresses per-finding output.
	Quiet bool `json:"quiet,omitempty"`
	// Verbose prints related locations, suggestions, and progress events.
	Verbose bool `json:"verbose,omitempty"`
}

// Type implements command.Message.
func (Command) Type() string { return validateMessageType }

// Validate ensures the requested format is supported before the handler runs.
func (cmd Command) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Format, validation.By(func(any) error {
			switch strings.ToLower(strings.TrimSpace(cmd.Format)) {
			case "", FormatText, FormatJSON:
				return nil
			default:
				return validation.NewError("storylint.validate.format_invalid",
					"format must be one of: text, json")
			}
		})),
	)
}
