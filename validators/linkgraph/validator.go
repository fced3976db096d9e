package linkgraph

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/goliatone/go-storylint/pkg/interfaces"
)

const (
	// Key identifies the link-graph validator.
	Key = "link-graph"
	// Version is the validator's semantic version.
	Version = "1.0.0"

	// CodeBrokenLink flags a link whose target is not part of the corpus.
	CodeBrokenLink = "LINK001"
	// CodeOrphanedDocument flags a file with no inbound link that is not a
	// declared entry point.
	CodeOrphanedDocument = "LINK002"
)

type validator struct {
	entryPoints []string
}

func newValidator(options map[string]any) (interfaces.Validator, error) {
	v := &validator{}
	if raw, ok := options["entryPoints"]; ok {
		entries, err := stringList(raw)
		if err != nil {
			return nil, fmt.Errorf("link-graph: entryPoints must be a list of paths")
		}
		for _, entry := range entries {
			v.entryPoints = append(v.entryPoints, normalizePath(entry))
		}
	}
	return v, nil
}

// stringList tolerates both YAML-decoded ([]any) and programmatic ([]string)
// option payloads.
func stringList(raw any) ([]string, error) {
	switch list := raw.(type) {
	case []string:
		return list, nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected string, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected list, got %T", raw)
	}
}

// Validate resolves every extracted link against the corpus inventory. A link
// whose cleaned target is not a corpus file is broken; a corpus file with no
// inbound link from another file, and not listed as an entry point, is an
// orphan.
func (v *validator) Validate(_ context.Context, corpus *interfaces.Corpus, metadata interfaces.MetadataView) ([]interfaces.Finding, error) {
	payload, _ := metadata.Get(ExtractorKey)
	links, _ := payload.([]Link)

	inbound := map[string]struct{}{}
	var findings []interfaces.Finding

	for _, link := range links {
		target := resolveTarget(link.Location.File, link.Target)
		if target == "" {
			continue
		}

		if !corpus.Contains(target) {
			location := link.Location
			findings = append(findings, interfaces.Finding{
				Code:     CodeBrokenLink,
				Message:  fmt.Sprintf("broken link: %q does not resolve to a file in the corpus", link.Target),
				Location: &location,
				Suggestion: fmt.Sprintf("create %s or point the link at an existing document",
					target),
			})
			continue
		}

		// Self references do not rescue a document from orphan status.
		if target != link.Location.File {
			inbound[target] = struct{}{}
		}
	}

	entries := map[string]struct{}{}
	for _, entry := range v.entryPoints {
		entries[entry] = struct{}{}
	}

	for _, file := range corpus.Files {
		if _, ok := inbound[file]; ok {
			continue
		}
		if _, ok := entries[file]; ok {
			continue
		}
		findings = append(findings, interfaces.Finding{
			Code:    CodeOrphanedDocument,
			Message: fmt.Sprintf("orphaned document: %s has no inbound link and is not an entry point", file),
			Location: &interfaces.SourceLocation{
				File: file, Line: 1, Column: 1,
			},
			Suggestion: "link to the document from another file or add it to entryPoints",
		})
	}

	return findings, nil
}

// resolveTarget turns a raw link destination into a root-relative corpus
// path: fragments and queries are stripped and the remainder is resolved
// against the linking file's directory.
func resolveTarget(fromFile, target string) string {
	if i := strings.IndexAny(target, "#?"); i >= 0 {
		target = target[:i]
	}
	if target == "" {
		return ""
	}
	target = normalizePath(target)
	if path.IsAbs(target) {
		// Absolute link targets are anchored at the project root.
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return path.Clean(path.Join(path.Dir(fromFile), target))
}

func normalizePath(p string) string {
	p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	return path.Clean(strings.TrimPrefix(p, "./"))
}

// New bundles the links extractor and the link-graph validator as a plugin.
func New() interfaces.Plugin {
	return plugin{}
}

type plugin struct{}

func (plugin) Name() string { return Key }

func (plugin) Extractors() []interfaces.ExtractorDescriptor {
	return []interfaces.ExtractorDescriptor{{
		Key:     ExtractorKey,
		Extract: extract,
		Merge:   merge,
	}}
}

func (plugin) Validators() []interfaces.ValidatorDescriptor {
	return []interfaces.ValidatorDescriptor{{
		Key:             Key,
		Version:         Version,
		Extractors:      []string{ExtractorKey},
		DefaultSeverity: interfaces.SeverityError,
		RuleSeverities: map[string]interfaces.Severity{
			CodeBrokenLink:       interfaces.SeverityError,
			CodeOrphanedDocument: interfaces.SeverityWarning,
		},
		OptionsSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"entryPoints": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
			"additionalProperties": false,
		},
		Factory: newValidator,
	}}
}
