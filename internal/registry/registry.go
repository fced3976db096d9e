// Package registry holds the extractor descriptors and the ordered set of
// enabled validators resolved from configuration at engine construction.
package registry

import (
	"fmt"
	"sort"

	"github.com/goliatone/go-storylint/internal/engineconfig"
	"github.com/goliatone/go-storylint/internal/logging"
	"github.com/goliatone/go-storylint/internal/validation"
	"github.com/goliatone/go-storylint/pkg/interfaces"
)

// ActiveValidator pairs a validator descriptor with its instantiated
// implementation and the configuration slice that applies to it.
type ActiveValidator struct {
	Descriptor interfaces.ValidatorDescriptor
	Instance   interfaces.Validator
	Config     engineconfig.ValidatorConfig
}

// Registry is immutable once constructed. Validator run order is the key
// sorted order so results stay deterministic across runs regardless of
// plugin registration order.
type Registry struct {
	extractors     map[string]interfaces.ExtractorDescriptor
	extractorOrder []string
	validators     []ActiveValidator
}

// New resolves the supplied plugins against the configuration: extractors are
// registered by key, enabled validators are instantiated through their
// factories, opaque options are checked against any declared schema, and
// every declared extractor dependency is verified to exist. All failures are
// configuration errors, fatal to engine construction.
func New(cfg engineconfig.Config, plugins []interfaces.Plugin, logger interfaces.Logger) (*Registry, error) {
	if logger == nil {
		logger = logging.NoOp()
	}

	r := &Registry{extractors: map[string]interfaces.ExtractorDescriptor{}}

	var descriptors []interfaces.ValidatorDescriptor
	known := map[string]struct{}{}

	for _, plugin := range plugins {
		for _, extractor := range plugin.Extractors() {
			if _, dup := r.extractors[extractor.Key]; dup {
				return nil, engineconfig.WrapConfigError(
					fmt.Errorf("%w: %q", engineconfig.ErrDuplicateExtractorKey, extractor.Key))
			}
			r.extractors[extractor.Key] = extractor
			r.extractorOrder = append(r.extractorOrder, extractor.Key)
		}
		for _, descriptor := range plugin.Validators() {
			if _, dup := known[descriptor.Key]; dup {
				return nil, engineconfig.WrapConfigError(
					fmt.Errorf("%w: %q", engineconfig.ErrDuplicateValidatorKey, descriptor.Key))
			}
			known[descriptor.Key] = struct{}{}
			descriptors = append(descriptors, descriptor)
		}
	}

	// Config entries must reference registered validators.
	for key := range cfg.Validators {
		if _, ok := known[key]; !ok {
			return nil, engineconfig.WrapConfigError(
				fmt.Errorf("%w: %q", engineconfig.ErrUnknownValidator, key))
		}
	}

	for _, descriptor := range descriptors {
		for _, extractorKey := range descriptor.Extractors {
			if _, ok := r.extractors[extractorKey]; !ok {
				return nil, engineconfig.WrapConfigError(
					fmt.Errorf("%w: validator %q references %q",
						engineconfig.ErrUnknownExtractor, descriptor.Key, extractorKey))
			}
		}

		vcfg := cfg.Validators[descriptor.Key]
		if !vcfg.IsEnabled() {
			logger.Debug("registry.validator.disabled", "validator", descriptor.Key)
			continue
		}

		if len(descriptor.OptionsSchema) > 0 {
			if err := validation.ValidateOptions(descriptor.OptionsSchema, vcfg.Options); err != nil {
				return nil, engineconfig.WrapConfigError(
					fmt.Errorf("storylint config: validator %q options invalid: %w", descriptor.Key, err))
			}
		}

		instance, err := instantiate(descriptor, vcfg.Options)
		if err != nil {
			return nil, engineconfig.WrapConfigError(
				fmt.Errorf("storylint config: validator %q construction failed: %w", descriptor.Key, err))
		}

		r.validators = append(r.validators, ActiveValidator{
			Descriptor: descriptor,
			Instance:   instance,
			Config:     vcfg,
		})
		logger.Debug("registry.validator.enabled",
			"validator", descriptor.Key, "version", descriptor.Version)
	}

	sort.Slice(r.validators, func(i, j int) bool {
		return r.validators[i].Descriptor.Key < r.validators[j].Descriptor.Key
	})

	return r, nil
}

func instantiate(descriptor interfaces.ValidatorDescriptor, options map[string]any) (interfaces.Validator, error) {
	if descriptor.Factory == nil {
		return nil, fmt.Errorf("validator %q has no factory", descriptor.Key)
	}
	if options == nil {
		options = map[string]any{}
	}
	return descriptor.Factory(options)
}

// Validators returns the enabled validators in run order.
func (r *Registry) Validators() []ActiveValidator {
	return r.validators
}

// ActiveExtractors returns the union of extractor descriptors referenced by
// enabled validators, in extractor registration order. This is the set the
// extraction pipeline runs.
func (r *Registry) ActiveExtractors() []interfaces.ExtractorDescriptor {
	needed := map[string]struct{}{}
	for _, validator := range r.validators {
		for _, key := range validator.Descriptor.Extractors {
			needed[key] = struct{}{}
		}
	}

	active := make([]interfaces.ExtractorDescriptor, 0, len(needed))
	for _, key := range r.extractorOrder {
		if _, ok := needed[key]; ok {
			active = append(active, r.extractors[key])
		}
	}
	return active
}
