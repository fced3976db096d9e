// Package formatter renders validation results for people and machines. The
// engine itself never prints; the CLI picks a formatter over the result.
package formatter

import (
	"encoding/json"
	"io"

	"github.com/goliatone/go-storylint/pkg/interfaces"
)

// findingWire is the stable JSON shape of a single finding.
type findingWire struct {
	Code       string        `json:"code"`
	Validator  string        `json:"validator"`
	Severity   string        `json:"severity"`
	Message    string        `json:"message"`
	File       string        `json:"file,omitempty"`
	Line       int           `json:"line,omitempty"`
	Column     int           `json:"column,omitempty"`
	Related    []relatedWire `json:"related,omitempty"`
	Suggestion string        `json:"suggestion,omitempty"`
}

type relatedWire struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Message string `json:"message,omitempty"`
}

type resultWire struct {
	Passed    bool           `json:"passed"`
	Cancelled bool           `json:"cancelled,omitempty"`
	FileCount int            `json:"fileCount"`
	Tally     map[string]int `json:"tally"`
	Findings  []findingWire  `json:"findings"`
}

// JSON writes the result as deterministic, indented JSON. The run identifier
// is deliberately excluded so two runs over unchanged bytes serialize
// byte-identically.
func JSON(w io.Writer, result interfaces.ValidationResult) error {
	wire := resultWire{
		Passed:    result.Passed,
		Cancelled: result.Cancelled,
		FileCount: result.FileCount,
		Tally:     map[string]int{},
		Findings:  make([]findingWire, 0, len(result.Findings)),
	}
	for severity, count := range result.Tally {
		wire.Tally[string(severity)] = count
	}
	for _, finding := range result.Findings {
		wire.Findings = append(wire.Findings, toWire(finding))
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(wire)
}

func toWire(finding interfaces.Finding) findingWire {
	wire := findingWire{
		Code:       finding.Code,
		Validator:  finding.Validator,
		Severity:   string(finding.Severity),
		Message:    finding.Message,
		Suggestion: finding.Suggestion,
	}
	if finding.Location != nil {
		wire.File = finding.Location.File
		wire.Line = finding.Location.Line
		wire.Column = finding.Location.Column
	}
	for _, related := range finding.Related {
		wire.Related = append(wire.Related, relatedWire{
			File:    related.File,
			Line:    related.Line,
			Column:  related.Column,
			Message: related.Message,
		})
	}
	return wire
}
