package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-storylint/pkg/interfaces"
)

const (
	rootModule       = "storylint"
	engineModule     = "storylint.engine"
	discoveryModule  = "storylint.discovery"
	extractionModule = "storylint.extraction"
	registryModule   = "storylint.registry"
)

const (
	fieldFilePath  = "file_path"
	fieldValidator = "validator"
	fieldExtractor = "extractor"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{
			"module": module,
		})
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// EngineLogger returns the logger namespace reserved for the orchestrator.
func EngineLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, engineModule)
}

// DiscoveryLogger returns the logger namespace reserved for file discovery.
func DiscoveryLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, discoveryModule)
}

// ExtractionLogger returns the logger namespace reserved for the metadata
// extraction pipeline.
func ExtractionLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, extractionModule)
}

// RegistryLogger returns the logger namespace reserved for plugin registration.
func RegistryLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, registryModule)
}

// WithRunContext enriches the provided logger with common run fields such as
// the current file path, validator key, and extractor key. Empty values are
// ignored.
func WithRunContext(logger interfaces.Logger, path, validator, extractor string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldFilePath] = trimmed
	}
	if trimmed := strings.TrimSpace(validator); trimmed != "" {
		fields[fieldValidator] = trimmed
	}
	if trimmed := strings.TrimSpace(extractor); trimmed != "" {
		fields[fieldExtractor] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so the engine can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithContext(_ context.Context) interfaces.Logger { return n }
