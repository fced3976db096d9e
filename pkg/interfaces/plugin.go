package interfaces

import "context"

// ExtractionContext lets a per-file extractor translate byte offsets within
// the document body into corpus source locations. It is only valid for the
// duration of the extractor invocation.
type ExtractionContext interface {
	// Path returns the root-relative slash path of the file being extracted.
	Path() string
	// LocationAt translates a byte offset within the document body into a
	// source location in the raw file, accounting for any front-matter block.
	LocationAt(offset int) SourceLocation
}

// ExtractFunc is an extractor's single-file function. It receives the document
// body (front matter removed), the parsed front-matter mapping, and an
// extraction context. It must not perform I/O; its output is opaque to the
// engine and is only interpreted by the extractor's own merge function and by
// the validators that declared the extractor key.
type ExtractFunc func(body []byte, matter map[string]any, ctx ExtractionContext) (any, error)

// FileResult is the output of one extractor over one file.
type FileResult struct {
	Key     string
	Path    string
	Payload any
}

// MergeFunc combines the per-file results of a single extractor into one
// corpus-wide payload. Inputs arrive in file-path-sorted order so merge
// outcomes are deterministic; tie-breaking is wholly the extractor's concern.
type MergeFunc func(results []FileResult) (any, error)

// ExtractorDescriptor declares a metadata extractor contributed by a plugin.
// Descriptors are stateless and referenced by key from validator descriptors.
type ExtractorDescriptor struct {
	Key     string
	Extract ExtractFunc
	Merge   MergeFunc
}

// MetadataView is a validator's read-only window over the merged metadata
// map, restricted to the extractor keys the validator declared. Validators
// must not retain the view beyond their own Validate call.
type MetadataView interface {
	// Get returns the merged payload for a declared extractor key. The second
	// return is false when the key was not declared by the validator. A
	// declared key whose extraction or merge failed yields a nil payload.
	Get(key string) (any, bool)
	// Keys returns the validator's declared extractor keys in sorted order.
	Keys() []string
}

// Validator inspects the corpus through its merged metadata view and reports
// findings. Implementations are instantiated per run via their descriptor's
// factory and must not spawn goroutines.
type Validator interface {
	Validate(ctx context.Context, corpus *Corpus, metadata MetadataView) ([]Finding, error)
}

// ValidatorFactory builds a validator instance from its opaque per-validator
// options, as loaded from configuration.
type ValidatorFactory func(options map[string]any) (Validator, error)

// ValidatorDescriptor declares a validator contributed by a plugin. The
// descriptor is registered at engine construction and immutable thereafter.
type ValidatorDescriptor struct {
	// Key uniquely identifies the validator (e.g. "link-graph").
	Key string
	// Version is the validator's semantic version.
	Version string
	// Extractors lists the extractor keys the validator consumes. The set
	// must be a subset of the registered extractor keys.
	Extractors []string
	// DefaultSeverity applies to findings whose rule has no more specific
	// policy. Defaults to SeverityError when empty.
	DefaultSeverity Severity
	// RuleSeverities optionally overrides the default per rule code.
	RuleSeverities map[string]Severity
	// OptionsSchema optionally declares a JSON schema the validator's opaque
	// options are checked against at engine construction.
	OptionsSchema map[string]any
	// Factory instantiates the validator with its configured options.
	Factory ValidatorFactory
}

// Plugin bundles the extractors and validators a package contributes to the
// engine. Plugins are registered programmatically at engine construction;
// there is no on-disk discovery or dynamic loading.
type Plugin interface {
	Name() string
	Extractors() []ExtractorDescriptor
	Validators() []ValidatorDescriptor
}
