// Package engine implements the validation orchestrator: discovery, the
// single parse pass, metadata merging, validator dispatch, and aggregation.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/goliatone/go-storylint/internal/discovery"
	"github.com/goliatone/go-storylint/internal/engineconfig"
	"github.com/goliatone/go-storylint/internal/events"
	"github.com/goliatone/go-storylint/internal/extraction"
	"github.com/goliatone/go-storylint/internal/findings"
	"github.com/goliatone/go-storylint/internal/logging"
	"github.com/goliatone/go-storylint/internal/markdown"
	"github.com/goliatone/go-storylint/internal/registry"
	"github.com/goliatone/go-storylint/pkg/interfaces"
)

// Orchestrator drives one validation run end to end. The model is strictly
// single-threaded cooperative: files are processed in sorted discovery order,
// extractors in registration order within a file, validators in registry
// order across the corpus. Cancellation is observed between files and
// between validators; in-flight units complete before the partial result is
// returned.
type Orchestrator struct {
	cfg      engineconfig.Config
	registry *registry.Registry
	bus      *events.Bus

	logger        interfaces.Logger
	discoveryLog  interfaces.Logger
	extractionLog interfaces.Logger
}

// New wires an orchestrator over a validated configuration and a constructed
// registry. The provider scopes per-phase loggers; nil keeps the engine silent.
func New(cfg engineconfig.Config, reg *registry.Registry, bus *events.Bus, provider interfaces.LoggerProvider) *Orchestrator {
	logger := logging.EngineLogger(provider)
	if bus == nil {
		bus = events.New(logger)
	}
	return &Orchestrator{
		cfg:           cfg,
		registry:      reg,
		bus:           bus,
		logger:        logger,
		discoveryLog:  logging.DiscoveryLogger(provider),
		extractionLog: logging.ExtractionLogger(provider),
	}
}

// Run executes the full sequence. Only configuration and discovery failures
// propagate as errors; every other fault is converted into an engine finding
// and the run continues.
func (o *Orchestrator) Run(ctx context.Context) (interfaces.ValidationResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	runID := uuid.NewString()
	var collected []interfaces.Finding

	emit := func(event interfaces.Event) {
		event.RunID = runID
		collected = append(collected, o.bus.Publish(event)...)
	}

	emit(interfaces.Event{Kind: interfaces.EventRunStart, FileCount: interfaces.FileCountUnknown})

	files, err := discovery.Discover(o.cfg, o.discoveryLog)
	if err != nil {
		return interfaces.ValidationResult{}, err
	}

	emit(interfaces.Event{Kind: interfaces.EventRunStart, FileCount: len(files)})
	o.logger.Info("engine.run.start", "run_id", runID, "files", len(files))

	extractors := o.registry.ActiveExtractors()
	pipeline := extraction.NewPipeline(extractors, o.extractionLog)
	buckets := extraction.Buckets{}

	cancelled := false
	halted := false

	for _, file := range files {
		if ctx.Err() != nil {
			cancelled = true
			break
		}

		emit(interfaces.Event{Kind: interfaces.EventFileParse, Path: file.Rel})

		faults := o.processFile(file, pipeline, buckets)
		collected = append(collected, faults...)

		emit(interfaces.Event{Kind: interfaces.EventFileDone, Path: file.Rel})

		if o.cfg.StopOnError && hasError(faults) {
			logging.WithRunContext(o.logger, file.Rel, "", "").Warn("engine.run.halted")
			halted = true
			break
		}
	}

	merged, mergeFaults := pipeline.Merge(buckets)
	collected = append(collected, mergeFaults...)

	corpus := corpusOf(o.cfg.RootDir, files)

	if !cancelled && !halted {
		for _, validator := range o.registry.Validators() {
			if ctx.Err() != nil {
				cancelled = true
				break
			}

			key := validator.Descriptor.Key
			emit(interfaces.Event{Kind: interfaces.EventValidatorStart, Validator: key})

			results := o.runValidator(ctx, validator, corpus, merged)
			for i := range results {
				emit(interfaces.Event{Kind: interfaces.EventFinding, Finding: &results[i]})
			}
			collected = append(collected, results...)

			emit(interfaces.Event{Kind: interfaces.EventValidatorDone, Validator: key, Findings: len(results)})

			if o.cfg.StopOnError && hasError(results) {
				o.logger.Warn("engine.run.stop_on_error", "validator", key)
				break
			}
		}
	}

	result := findings.Aggregate(runID, collected, len(files), o.cfg.MinSeverity, cancelled)

	emit(interfaces.Event{Kind: interfaces.EventRunEnd, FileCount: len(files), Cancelled: cancelled})
	o.logger.Info("engine.run.end",
		"run_id", runID,
		"findings", len(result.Findings),
		"errors", result.Errors(),
		"passed", result.Passed,
		"cancelled", cancelled)

	return result, nil
}

// processFile performs the single C1 read for the file and streams it through
// the extractors. Read failures become READ001/FM001 findings and the file is
// skipped; the rest of the corpus is unaffected.
func (o *Orchestrator) processFile(file discovery.File, pipeline *extraction.Pipeline, buckets extraction.Buckets) []interfaces.Finding {
	record, err := markdown.Read(file.Abs, file.Rel)
	if err != nil {
		return []interfaces.Finding{readFinding(file.Rel, err)}
	}
	return pipeline.ExtractFile(record, buckets)
}

// runValidator invokes one validator behind a panic shield with its metadata
// view restricted to the declared extractor keys, then applies the severity
// policy to every finding it returned.
func (o *Orchestrator) runValidator(ctx context.Context, validator registry.ActiveValidator, corpus *interfaces.Corpus, merged map[string]any) []interfaces.Finding {
	key := validator.Descriptor.Key
	view := extraction.NewView(merged, validator.Descriptor.Extractors)

	results, err := o.safeValidate(ctx, validator.Instance, corpus, view)
	if err != nil {
		logging.WithRunContext(o.logger, "", key, "").Error("engine.validator.failed", "error", err)
		return []interfaces.Finding{{
			Validator: interfaces.EngineValidatorKey,
			Code:      interfaces.CodeValidatorFailed,
			Severity:  interfaces.SeverityError,
			Message:   fmt.Sprintf("validator %q failed: %v", key, err),
		}}
	}

	for i := range results {
		results[i].Validator = key
		results[i].Severity = o.effectiveSeverity(validator, results[i])
	}
	return results
}

func (o *Orchestrator) safeValidate(ctx context.Context, validator interfaces.Validator, corpus *interfaces.Corpus, view interfaces.MetadataView) (results []interfaces.Finding, err error) {
	defer func() {
		if r := recover(); r != nil {
			results = nil
			err = fmt.Errorf("validator panic: %v", r)
		}
	}()
	if validator == nil {
		return nil, errors.New("validator instance is nil")
	}
	return validator.Validate(ctx, corpus, view)
}

// effectiveSeverity resolves the severity policy: the per-rule config
// override wins, then the per-validator config override, then the
// descriptor's per-rule default, then the descriptor default.
func (o *Orchestrator) effectiveSeverity(validator registry.ActiveValidator, finding interfaces.Finding) interfaces.Severity {
	if severity, ok := validator.Config.RuleSeverities[finding.Code]; ok && severity.Valid() {
		return severity
	}
	if validator.Config.Severity.Valid() {
		return validator.Config.Severity
	}
	if severity, ok := validator.Descriptor.RuleSeverities[finding.Code]; ok && severity.Valid() {
		return severity
	}
	if validator.Descriptor.DefaultSeverity.Valid() {
		return validator.Descriptor.DefaultSeverity
	}
	if finding.Severity.Valid() {
		return finding.Severity
	}
	return interfaces.SeverityError
}

func readFinding(path string, err error) interfaces.Finding {
	code := interfaces.CodeReadFailed
	location := interfaces.SourceLocation{File: path, Line: 1, Column: 1}

	var fmErr *markdown.FrontMatterParseError
	if errors.As(err, &fmErr) {
		code = interfaces.CodeFrontMatterFailed
		location.Line = fmErr.Line
	}

	return interfaces.Finding{
		Validator: interfaces.EngineValidatorKey,
		Code:      code,
		Severity:  interfaces.SeverityError,
		Message:   err.Error(),
		Location:  &location,
	}
}

func corpusOf(root string, files []discovery.File) *interfaces.Corpus {
	paths := make([]string, len(files))
	for i, file := range files {
		paths[i] = file.Rel
	}
	return interfaces.NewCorpus(root, paths)
}

func hasError(list []interfaces.Finding) bool {
	for _, finding := range list {
		if finding.Severity == interfaces.SeverityError {
			return true
		}
	}
	return false
}
