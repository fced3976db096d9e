package engineconfig

import (
	"errors"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-storylint/pkg/interfaces"
)

const configInvalidCode = "CONFIG_INVALID"

var (
	// ErrConfigInvalid is the sentinel every configuration failure wraps.
	ErrConfigInvalid = errors.New("storylint config: configuration invalid")

	ErrIncludeRequired       = errors.New("storylint config: at least one include glob is required")
	ErrRootDirRequired       = errors.New("storylint config: root directory is required")
	ErrRootDirNotAbsolute    = errors.New("storylint config: root directory must be absolute")
	ErrMinSeverityInvalid    = errors.New("storylint config: minSeverity is invalid")
	ErrSeverityInvalid       = errors.New("storylint config: severity override is invalid")
	ErrUnknownValidator      = errors.New("storylint config: unknown validator key")
	ErrUnknownExtractor      = errors.New("storylint config: validator declares unknown extractor")
	ErrDuplicateExtractorKey = errors.New("storylint config: duplicate extractor key")
	ErrDuplicateValidatorKey = errors.New("storylint config: duplicate validator key")
)

// Config enumerates the options the validation engine recognizes. Host
// applications usually obtain one from the .story-linter.yml loader, but the
// struct can be populated programmatically as well.
type Config struct {
	// RootDir is the absolute path relative globs are anchored at.
	RootDir string
	// Include lists the glob patterns (POSIX style, supporting *, ** and ?)
	// that select corpus files. Required; at least one pattern.
	Include []string
	// Exclude lists glob patterns subtracted from the include expansion.
	Exclude []string
	// Validators maps validator keys to their per-validator configuration.
	Validators map[string]ValidatorConfig
	// StopOnError halts the run after the first validator that reports an
	// error-severity finding.
	StopOnError bool
	// MinSeverity is the lowest severity retained in the result. Defaults to
	// info, which keeps everything.
	MinSeverity interfaces.Severity
}

// ValidatorConfig carries the recognized per-validator options plus the
// validator's opaque option payload.
type ValidatorConfig struct {
	// Enabled defaults to true when nil.
	Enabled *bool
	// Severity overrides the severity of every finding the validator emits.
	Severity interfaces.Severity
	// RuleSeverities overrides severities per rule code and wins over the
	// validator-wide Severity override.
	RuleSeverities map[string]interfaces.Severity
	// Options is the validator's opaque configuration, checked against the
	// validator's declared schema at engine construction when one exists.
	Options map[string]any
}

// IsEnabled resolves the Enabled tri-state with its default.
func (v ValidatorConfig) IsEnabled() bool {
	if v.Enabled == nil {
		return true
	}
	return *v.Enabled
}

// DefaultConfig returns a configuration with the engine defaults applied.
// Include and RootDir remain for the caller to fill in.
func DefaultConfig() Config {
	return Config{
		Include:     nil,
		Exclude:     nil,
		Validators:  map[string]ValidatorConfig{},
		MinSeverity: interfaces.SeverityInfo,
	}
}

// Normalize applies defaults in place: empty MinSeverity becomes info and
// RootDir is cleaned. Call before Validate.
func (c *Config) Normalize() {
	if c.MinSeverity == "" {
		c.MinSeverity = interfaces.SeverityInfo
	}
	if c.RootDir != "" {
		c.RootDir = filepath.Clean(c.RootDir)
	}
	if c.Validators == nil {
		c.Validators = map[string]ValidatorConfig{}
	}
}

// Validate checks the configuration for structural problems. Failures are
// fatal to the run and surface as a wrapped ErrConfigInvalid.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Include, validation.By(func(any) error {
			if len(c.Include) == 0 {
				return ErrIncludeRequired
			}
			for _, pattern := range c.Include {
				if strings.TrimSpace(pattern) == "" {
					return ErrIncludeRequired
				}
			}
			return nil
		})),
		validation.Field(&c.RootDir, validation.By(func(any) error {
			if strings.TrimSpace(c.RootDir) == "" {
				return ErrRootDirRequired
			}
			if !filepath.IsAbs(c.RootDir) {
				return ErrRootDirNotAbsolute
			}
			return nil
		})),
		validation.Field(&c.MinSeverity, validation.By(func(any) error {
			if c.MinSeverity != "" && !c.MinSeverity.Valid() {
				return ErrMinSeverityInvalid
			}
			return nil
		})),
		validation.Field(&c.Validators, validation.By(func(any) error {
			for key, vc := range c.Validators {
				if vc.Severity != "" && !vc.Severity.Valid() {
					return wrapFieldError(ErrSeverityInvalid, key)
				}
				for rule, severity := range vc.RuleSeverities {
					if !severity.Valid() {
						return wrapFieldError(ErrSeverityInvalid, key+"/"+rule)
					}
				}
			}
			return nil
		})),
	)
	if err != nil {
		return WrapConfigError(err)
	}
	return nil
}

// WrapConfigError tags an error as a fatal configuration failure. Already
// wrapped errors pass through untouched.
func WrapConfigError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "engine configuration invalid").
		WithTextCode(configInvalidCode)
}

// IsConfigError reports whether err stems from engine configuration.
func IsConfigError(err error) bool {
	return goerrors.IsCategory(err, goerrors.CategoryValidation)
}

func wrapFieldError(err error, field string) error {
	return validation.NewError("storylint_config_validator", err.Error()+": "+field)
}
