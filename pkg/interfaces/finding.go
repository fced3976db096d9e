package interfaces

import (
	"fmt"
	"strings"
)

// Severity classifies the impact of a finding.
type Severity string

const (
	// SeverityError indicates a condition that must be resolved before publication.
	SeverityError Severity = "error"
	// SeverityWarning indicates a condition that should be reviewed.
	SeverityWarning Severity = "warning"
	// SeverityInfo indicates an advisory note with no action required.
	SeverityInfo Severity = "info"
)

// Rank orders severities so they can be compared for threshold filtering.
// Higher values are more severe.
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 2
	case SeverityWarning:
		return 1
	case SeverityInfo:
		return 0
	default:
		return -1
	}
}

// Valid reports whether the severity is one of the recognized values.
func (s Severity) Valid() bool {
	return s.Rank() >= 0
}

// ParseSeverity converts a config-supplied string into a Severity.
func ParseSeverity(value string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return SeverityError, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "info":
		return SeverityInfo, nil
	default:
		return "", fmt.Errorf("severity: unknown value %q", value)
	}
}

// SourceLocation points at a place in the corpus. File is the root-relative,
// slash-separated path of the source document; Line and Column are 1-based;
// Offset is the byte offset into the raw file.
type SourceLocation struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Offset int    `json:"offset"`
}

// RelatedLocation annotates a secondary location attached to a finding, such
// as the introduction site of a character whose name drifted.
type RelatedLocation struct {
	SourceLocation
	Message string `json:"message,omitempty"`
}

// Finding is a single diagnostic emitted by a validator or by the engine
// itself. Findings are append-only; they are never mutated after emission.
type Finding struct {
	// Validator is the key of the validator that produced the finding. Engine
	// synthesised findings use the reserved key "engine".
	Validator string
	// Code is a stable short rule identifier such as "LINK001".
	Code string
	// Severity is the finding's effective severity after policy application.
	Severity Severity
	// Message is the human readable description.
	Message string
	// Location points at the offending place in the corpus, when known.
	Location *SourceLocation
	// Related lists additional locations that give the finding context.
	Related []RelatedLocation
	// Suggestion optionally proposes a fix.
	Suggestion string
}

// EngineValidatorKey is the synthetic validator key used for findings the
// engine emits on behalf of failing plugins, listeners, or unreadable files.
const EngineValidatorKey = "engine"

// Engine-emitted rule codes.
const (
	CodeReadFailed        = "READ001"
	CodeFrontMatterFailed = "FM001"
	CodeExtractorFailed   = "EXT001"
	CodeMergeFailed       = "MERGE001"
	CodeValidatorFailed   = "VAL001"
	CodeListenerFailed    = "BUS001"
	CodeUnknownConfigKey  = "CONF001"
)
