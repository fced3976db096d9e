package characters

import (
	"context"
	"fmt"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/goliatone/go-storylint/pkg/interfaces"
)

const (
	// Key identifies the character-consistency validator.
	Key = "character-consistency"
	// Version is the validator's semantic version.
	Version = "1.0.0"

	// CodeNameDrift flags a mention that diverges from the canonical form a
	// character was first introduced under.
	CodeNameDrift = "CHAR001"
)

const (
	defaultMaxDistance = 2
	defaultMinLength   = 4
)

type validator struct {
	maxDistance int
	minLength   int
	ignore      map[string]struct{}
}

func newValidator(options map[string]any) (interfaces.Validator, error) {
	v := &validator{
		maxDistance: defaultMaxDistance,
		minLength:   defaultMinLength,
		ignore:      map[string]struct{}{},
	}

	if raw, ok := options["maxDistance"]; ok {
		distance, ok := toInt(raw)
		if !ok || distance < 1 {
			return nil, fmt.Errorf("character-consistency: maxDistance must be a positive integer")
		}
		v.maxDistance = distance
	}
	if raw, ok := options["ignore"]; ok {
		names, err := stringList(raw)
		if err != nil {
			return nil, fmt.Errorf("character-consistency: ignore must be a list of names")
		}
		for _, name := range names {
			v.ignore[strings.ToLower(name)] = struct{}{}
		}
	}

	return v, nil
}

// Validate tests every mention against the canonical character roster. A
// mention that is not a canonical name or declared alias, but sits within the
// configured edit distance of one, is reported as name drift.
func (v *validator) Validate(_ context.Context, _ *interfaces.Corpus, metadata interfaces.MetadataView) ([]interfaces.Finding, error) {
	payload, _ := metadata.Get(ExtractorKey)
	corpus, _ := payload.(CorpusCharacters)

	known := map[string]struct{}{}
	for _, character := range corpus.Characters {
		known[character.Slug] = struct{}{}
		for _, alias := range character.Aliases {
			known[identitySlug(alias)] = struct{}{}
		}
	}

	var findings []interfaces.Finding
	for _, mention := range corpus.Mentions {
		if len(mention.Text) < v.minLength {
			continue
		}
		if _, skip := v.ignore[strings.ToLower(mention.Text)]; skip {
			continue
		}
		if _, ok := known[identitySlug(mention.Text)]; ok {
			continue
		}

		canonical, distance := v.closestCharacter(corpus.Characters, mention.Text)
		if canonical == nil || distance > v.maxDistance {
			continue
		}

		location := mention.Location
		findings = append(findings, interfaces.Finding{
			Code: CodeNameDrift,
			Message: fmt.Sprintf("character name %q diverges from canonical form %q (introduced at %s:%d)",
				mention.Text, canonical.Name, canonical.Location.File, canonical.Location.Line),
			Location: &location,
			Related: []interfaces.RelatedLocation{{
				SourceLocation: canonical.Location,
				Message:        fmt.Sprintf("%q introduced here", canonical.Name),
			}},
			Suggestion: fmt.Sprintf("replace %q with %q", mention.Text, canonical.Name),
		})
	}

	return findings, nil
}

// closestCharacter returns the canonical character nearest to the mention by
// edit distance; ties resolve to the earliest-introduced character.
func (v *validator) closestCharacter(characters []Character, mention string) (*Character, int) {
	lowered := strings.ToLower(mention)

	best := -1
	var found *Character
	for i := range characters {
		distance := levenshtein.Distance(lowered, strings.ToLower(characters[i].Name), nil)
		if distance == 0 {
			continue
		}
		if best < 0 || distance < best {
			best = distance
			found = &characters[i]
		}
	}
	if found == nil {
		return nil, 0
	}
	return found, best
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

func toInt(value any) (int, bool) {
	switch n := value.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		return int(n), n == float64(int(n))
	default:
		return 0, false
	}
}

// New bundles the characters extractor and the character-consistency
// validator as a plugin.
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
		OptionsSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"maxDistance": map[string]any{"type": "integer", "minimum": 1},
				"ignore": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
			"additionalProperties": false,
		},
		Factory: newValidator,
	}}
}
