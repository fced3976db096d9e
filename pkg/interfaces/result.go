package interfaces

// ValidationResult is the engine's top-level output. With the same
// configuration and the same on-disk bytes, two runs produce identical
// results; RunID is the one exception and is excluded from the serialized
// wire shape for that reason.
type ValidationResult struct {
	// RunID uniquely identifies the run for event correlation.
	RunID string
	// Findings holds the aggregated findings sorted by file path, then line,
	// then validator key, then rule code.
	Findings []Finding
	// Tally counts findings per severity after minSeverity filtering.
	Tally map[Severity]int
	// FileCount is the number of files the corpus resolved to.
	FileCount int
	// Passed is true when no error-severity finding survived aggregation.
	Passed bool
	// Cancelled is true when the run was interrupted by the caller and the
	// result is partial.
	Cancelled bool
}

// Errors returns the number of error-severity findings in the result.
func (r ValidationResult) Errors() int {
	return r.Tally[SeverityError]
}

// Warnings returns the number of warning-severity findings in the result.
func (r ValidationResult) Warnings() int {
	return r.Tally[SeverityWarning]
}
