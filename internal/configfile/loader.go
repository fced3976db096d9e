// Package configfile loads the on-disk .story-linter.yml and translates it
// into the engine configuration. The loader belongs to the CLI layer; the
// engine itself only ever sees the translated Config.
package configfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/goccy/go-yaml"

	"github.com/goliatone/go-storylint/internal/engineconfig"
	"github.com/goliatone/go-storylint/pkg/interfaces"
)

// DefaultFileName is the conventional config file at the project root.
const DefaultFileName = ".story-linter.yml"

// ErrMalformed marks YAML that failed to parse; fatal before the engine is
// constructed.
var ErrMalformed = errors.New("storylint config file: malformed YAML")

type fileSchema struct {
	Include     []string                       `yaml:"include"`
	Exclude     []string                       `yaml:"exclude"`
	RootDir     string                         `yaml:"rootDir"`
	Validators  map[string]fileValidatorSchema `yaml:"validators"`
	StopOnError bool                           `yaml:"stopOnError"`
	MinSeverity string                         `yaml:"minSeverity"`
}

type fileValidatorSchema struct {
	Enabled  *bool             `yaml:"enabled"`
	Severity string            `yaml:"severity"`
	Rules    map[string]string `yaml:"rules"`
	Options  map[string]any    `yaml:"options"`
}

var knownKeys = map[string]struct{}{
	"include":     {},
	"exclude":     {},
	"rootDir":     {},
	"validators":  {},
	"stopOnError": {},
	"minSeverity": {},
}

// Load reads and translates the config file. Unknown top-level keys become
// CONF001 warning diagnostics the caller folds into the run output; malformed
// YAML aborts. Relative rootDir values resolve against the config file's
// directory, which is also the default root.
func Load(path string) (engineconfig.Config, []interfaces.Finding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return engineconfig.Config{}, nil, fmt.Errorf("storylint config file: read %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse translates raw config bytes; split from Load for tests.
func Parse(path string, data []byte) (engineconfig.Config, []interfaces.Finding, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return engineconfig.Config{}, nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}

	diagnostics := unknownKeyDiagnostics(path, raw)

	var schema fileSchema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return engineconfig.Config{}, nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}

	cfg := engineconfig.DefaultConfig()
	cfg.Include = schema.Include
	cfg.Exclude = schema.Exclude
	cfg.StopOnError = schema.StopOnError

	if schema.MinSeverity != "" {
		severity, err := interfaces.ParseSeverity(schema.MinSeverity)
		if err != nil {
			return engineconfig.Config{}, nil, engineconfig.WrapConfigError(
				fmt.Errorf("%w: %v", engineconfig.ErrConfigInvalid, err))
		}
		cfg.MinSeverity = severity
	}

	baseDir := filepath.Dir(path)
	cfg.RootDir = resolveRoot(baseDir, schema.RootDir)

	for key, validator := range schema.Validators {
		translated, err := translateValidator(key, validator)
		if err != nil {
			return engineconfig.Config{}, nil, err
		}
		cfg.Validators[key] = translated
	}

	return cfg, diagnostics, nil
}

func translateValidator(key string, schema fileValidatorSchema) (engineconfig.ValidatorConfig, error) {
	cfg := engineconfig.ValidatorConfig{
		Enabled: schema.Enabled,
		Options: schema.Options,
	}

	if schema.Severity != "" {
		severity, err := interfaces.ParseSeverity(schema.Severity)
		if err != nil {
			return engineconfig.ValidatorConfig{}, engineconfig.WrapConfigError(
				fmt.Errorf("%w: validator %q: %v", engineconfig.ErrConfigInvalid, key, err))
		}
		cfg.Severity = severity
	}

	for rule, value := range schema.Rules {
		severity, err := interfaces.ParseSeverity(value)
		if err != nil {
			return engineconfig.ValidatorConfig{}, engineconfig.WrapConfigError(
				fmt.Errorf("%w: validator %q rule %q: %v", engineconfig.ErrConfigInvalid, key, rule, err))
		}
		if cfg.RuleSeverities == nil {
			cfg.RuleSeverities = map[string]interfaces.Severity{}
		}
		cfg.RuleSeverities[rule] = severity
	}

	return cfg, nil
}

func unknownKeyDiagnostics(path string, raw map[string]any) []interfaces.Finding {
	var unknown []string
	for key := range raw {
		if _, ok := knownKeys[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)

	diagnostics := make([]interfaces.Finding, 0, len(unknown))
	for _, key := range unknown {
		diagnostics = append(diagnostics, interfaces.Finding{
			Validator: interfaces.EngineValidatorKey,
			Code:      interfaces.CodeUnknownConfigKey,
			Severity:  interfaces.SeverityWarning,
			Message:   fmt.Sprintf("unknown configuration key %q in %s", key, filepath.Base(path)),
		})
	}
	return diagnostics
}

func resolveRoot(baseDir, rootDir string) string {
	if rootDir == "" {
		rootDir = baseDir
	} else if !filepath.IsAbs(rootDir) {
		rootDir = filepath.Join(baseDir, rootDir)
	}
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return rootDir
	}
	return abs
}
