// Package findings turns the raw finding stream into the final, deterministic
// validation result.
package findings

import (
	"sort"

	"github.com/goliatone/go-storylint/pkg/interfaces"
)

// Aggregate filters findings below minSeverity, sorts the remainder by the
// stable invariant ordering (file path, then line, then validator key, then
// rule code), tallies per severity, and stamps the passed flag. Findings
// without a location order ahead of located ones within the empty file key.
func Aggregate(runID string, all []interfaces.Finding, fileCount int, minSeverity interfaces.Severity, cancelled bool) interfaces.ValidationResult {
	kept := make([]interfaces.Finding, 0, len(all))
	for _, finding := range all {
		if finding.Severity.Rank() < minSeverity.Rank() {
			continue
		}
		kept = append(kept, finding)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		if fileOf(a) != fileOf(b) {
			return fileOf(a) < fileOf(b)
		}
		if lineOf(a) != lineOf(b) {
			return lineOf(a) < lineOf(b)
		}
		if a.Validator != b.Validator {
			return a.Validator < b.Validator
		}
		return a.Code < b.Code
	})

	tally := map[interfaces.Severity]int{
		interfaces.SeverityError:   0,
		interfaces.SeverityWarning: 0,
		interfaces.SeverityInfo:    0,
	}
	for _, finding := range kept {
		tally[finding.Severity]++
	}

	return interfaces.ValidationResult{
		RunID:     runID,
		Findings:  kept,
		Tally:     tally,
		FileCount: fileCount,
		Passed:    tally[interfaces.SeverityError] == 0,
		Cancelled: cancelled,
	}
}

func fileOf(f interfaces.Finding) string {
	if f.Location == nil {
		return ""
	}
	return f.Location.File
}

func lineOf(f interfaces.Finding) int {
	if f.Location == nil {
		return 0
	}
	return f.Location.Line
}
