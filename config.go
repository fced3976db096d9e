package storylint

import (
	"github.com/goliatone/go-storylint/internal/engineconfig"
	"github.com/goliatone/go-storylint/pkg/interfaces"
)

type (
	Config          = engineconfig.Config
	ValidatorConfig = engineconfig.ValidatorConfig

	Severity            = interfaces.Severity
	Finding             = interfaces.Finding
	SourceLocation      = interfaces.SourceLocation
	RelatedLocation     = interfaces.RelatedLocation
	ValidationResult    = interfaces.ValidationResult
	Corpus              = interfaces.Corpus
	Event               = interfaces.Event
	EventKind           = interfaces.EventKind
	EventListener       = interfaces.EventListener
	Plugin              = interfaces.Plugin
	ExtractorDescriptor = interfaces.ExtractorDescriptor
	ValidatorDescriptor = interfaces.ValidatorDescriptor
	Validator           = interfaces.Validator
	MetadataView        = interfaces.MetadataView
	ExtractionContext   = interfaces.ExtractionContext
	FileResult          = interfaces.FileResult
)

const (
	SeverityError   = interfaces.SeverityError
	SeverityWarning = interfaces.SeverityWarning
	SeverityInfo    = interfaces.SeverityInfo
)

// DefaultConfig returns a configuration with engine defaults applied; Include
// and RootDir remain for the caller.
func DefaultConfig() Config {
	return engineconfig.DefaultConfig()
}
