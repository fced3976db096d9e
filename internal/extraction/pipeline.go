// Package extraction runs the registered metadata extractors over each parsed
// file and merges their per-file outputs into the corpus-wide metadata map.
package extraction

import (
	"fmt"

	"github.com/goliatone/go-storylint/internal/logging"
	"github.com/goliatone/go-storylint/internal/markdown"
	"github.com/goliatone/go-storylint/pkg/interfaces"
)

// Buckets accumulates per-file extractor results, one flat bucket per
// extractor key. Files are appended in the sorted discovery order, which is
// the order merge functions later observe.
type Buckets map[string][]interfaces.FileResult

// Pipeline applies extractors to file records and records their outputs.
type Pipeline struct {
	extractors []interfaces.ExtractorDescriptor
	logger     interfaces.Logger
}

// NewPipeline builds a pipeline over the active extractor set, in
// registration order.
func NewPipeline(extractors []interfaces.ExtractorDescriptor, logger interfaces.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Pipeline{extractors: extractors, logger: logger}
}

// ExtractFile runs every extractor over the record in registration order and
// pushes the results into buckets. A failing extractor becomes an EXT001
// engine finding and does not disturb the other extractors or files. The
// record's body is released before returning; only extractor outputs and
// findings survive.
func (p *Pipeline) ExtractFile(record *markdown.FileRecord, buckets Buckets) []interfaces.Finding {
	defer record.Release()

	var faults []interfaces.Finding
	ctx := &fileContext{record: record}

	for _, extractor := range p.extractors {
		payload, err := p.safeExtract(extractor, record, ctx)
		if err != nil {
			p.logger.Error("extraction.extractor.failed",
				"extractor", extractor.Key, "file", record.Path, "error", err)
			location := record.LocationAt(0)
			faults = append(faults, interfaces.Finding{
				Validator: interfaces.EngineValidatorKey,
				Code:      interfaces.CodeExtractorFailed,
				Severity:  interfaces.SeverityError,
				Message:   fmt.Sprintf("extractor %q failed on %s: %v", extractor.Key, record.Path, err),
				Location:  &location,
			})
			continue
		}
		buckets[extractor.Key] = append(buckets[extractor.Key], interfaces.FileResult{
			Key:     extractor.Key,
			Path:    record.Path,
			Payload: payload,
		})
	}
	return faults
}

// safeExtract shields the pipeline from panicking extractors.
func (p *Pipeline) safeExtract(extractor interfaces.ExtractorDescriptor, record *markdown.FileRecord, ctx interfaces.ExtractionContext) (payload any, err error) {
	defer func() {
		if r := recover(); r != nil {
			payload = nil
			err = fmt.Errorf("extractor panic: %v", r)
		}
	}()
	return extractor.Extract(record.Body, record.FrontMatter, ctx)
}

// Merge folds each extractor's bucket into a single corpus-wide payload via
// the extractor's own merge function. A failing merge becomes a MERGE001
// engine finding and the extractor key resolves to an empty (nil) payload so
// dependent validators observe an empty view.
func (p *Pipeline) Merge(buckets Buckets) (map[string]any, []interfaces.Finding) {
	merged := make(map[string]any, len(p.extractors))
	var faults []interfaces.Finding

	for _, extractor := range p.extractors {
		payload, err := p.safeMerge(extractor, buckets[extractor.Key])
		if err != nil {
			p.logger.Error("extraction.merge.failed", "extractor", extractor.Key, "error", err)
			merged[extractor.Key] = nil
			faults = append(faults, interfaces.Finding{
				Validator: interfaces.EngineValidatorKey,
				Code:      interfaces.CodeMergeFailed,
				Severity:  interfaces.SeverityError,
				Message:   fmt.Sprintf("merge failed for extractor %q: %v", extractor.Key, err),
			})
			continue
		}
		merged[extractor.Key] = payload
	}
	return merged, faults
}

func (p *Pipeline) safeMerge(extractor interfaces.ExtractorDescriptor, results []interfaces.FileResult) (payload any, err error) {
	defer func() {
		if r := recover(); r != nil {
			payload = nil
			err = fmt.Errorf("merge panic: %v", r)
		}
	}()
	if extractor.Merge == nil {
		return nil, nil
	}
	return extractor.Merge(results)
}

// fileContext adapts a FileRecord to the plugin-facing extraction context.
type fileContext struct {
	record *markdown.FileRecord
}

func (c *fileContext) Path() string { return c.record.Path }

func (c *fileContext) LocationAt(offset int) interfaces.SourceLocation {
	return c.record.LocationAt(offset)
}
