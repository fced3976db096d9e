// Package characters ships the characters extractor and the
// character-consistency validator (CHAR001: a character name diverging from
// its first-introduced canonical form).
package characters

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/goliatone/go-slug"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-storylint/pkg/interfaces"
)

// ExtractorKey identifies the characters extractor.
const ExtractorKey = "characters"

// Character is a canonical character introduction: the name as first written,
// its normalized identity slug, declared aliases, and the introduction site.
type Character struct {
	Name     string
	Slug     string
	Aliases  []string
	Location interfaces.SourceLocation
}

// Mention is a capitalised name token found in a document body.
type Mention struct {
	Text     string
	Location interfaces.SourceLocation
}

// FileCharacters is the per-file extraction payload.
type FileCharacters struct {
	Characters []Character
	Mentions   []Mention
}

// CorpusCharacters is the merged payload: canonical characters under the
// first-wins rule, and every mention in file order.
type CorpusCharacters struct {
	Characters []Character
	Mentions   []Mention
}

var mentionPattern = regexp.MustCompile(`[A-Z][a-zA-Z']+`)

// extract collects character introductions from headings and the front-matter
// characters list, and records every capitalised token as a mention for the
// validator to test against canonical forms.
func extract(body []byte, matter map[string]any, ctx interfaces.ExtractionContext) (any, error) {
	payload := FileCharacters{}

	payload.Characters = append(payload.Characters, frontMatterCharacters(matter, ctx)...)
	payload.Characters = append(payload.Characters, headingCharacters(body, ctx)...)

	for _, match := range mentionPattern.FindAllIndex(body, -1) {
		payload.Mentions = append(payload.Mentions, Mention{
			Text:     string(body[match[0]:match[1]]),
			Location: ctx.LocationAt(match[0]),
		})
	}

	return payload, nil
}

// merge applies the first-wins rule: a character is introduced by the
// earliest file mentioning it, keyed by its identity slug. Inputs arrive in
// file-path-sorted order, so the outcome is deterministic.
func merge(results []interfaces.FileResult) (any, error) {
	merged := CorpusCharacters{}
	seen := map[string]struct{}{}

	for _, result := range results {
		payload, ok := result.Payload.(FileCharacters)
		if !ok {
			continue
		}
		for _, character := range payload.Characters {
			if _, dup := seen[character.Slug]; dup {
				continue
			}
			seen[character.Slug] = struct{}{}
			merged.Characters = append(merged.Characters, character)
		}
		merged.Mentions = append(merged.Mentions, payload.Mentions...)
	}

	return merged, nil
}

// headingCharacters treats name-like ATX headings ("# Tuxicles") as character
// introductions, the convention prose projects use for character sheets and
// point-of-view chapters.
func headingCharacters(body []byte, ctx interfaces.ExtractionContext) []Character {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(body))

	var characters []Character
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := node.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		name, offset := headingText(heading, body)
		if !isNameLike(name) {
			return ast.WalkSkipChildren, nil
		}

		characters = append(characters, Character{
			Name:     name,
			Slug:     identitySlug(name),
			Location: ctx.LocationAt(offset),
		})
		return ast.WalkSkipChildren, nil
	})
	return characters
}

// frontMatterCharacters reads an optional characters list from front matter.
// Entries are either plain names or mappings with name and aliases keys.
func frontMatterCharacters(matter map[string]any, ctx interfaces.ExtractionContext) []Character {
	raw, ok := matter["characters"]
	if !ok {
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil
	}

	var characters []Character
	for _, item := range list {
		if name, ok := item.(string); ok {
			if name = strings.TrimSpace(name); name != "" {
				characters = append(characters, Character{
					Name:     name,
					Slug:     identitySlug(name),
					Location: ctx.LocationAt(0),
				})
			}
			continue
		}

		entry := asStringMap(item)
		if entry == nil {
			continue
		}
		name, _ := entry["name"].(string)
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		character := Character{
			Name:     name,
			Slug:     identitySlug(name),
			Location: ctx.LocationAt(0),
		}
		if aliases, ok := entry["aliases"].([]any); ok {
			for _, alias := range aliases {
				if s, ok := alias.(string); ok && strings.TrimSpace(s) != "" {
					character.Aliases = append(character.Aliases, strings.TrimSpace(s))
				}
			}
		}
		characters = append(characters, character)
	}
	return characters
}

// asStringMap tolerates both YAML decoder generations: yaml.v3 produces
// map[string]any for nested mappings, yaml.v2 map[interface{}]interface{}.
func asStringMap(value any) map[string]any {
	switch m := value.(type) {
	case map[string]any:
		return m
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			key, ok := k.(string)
			if !ok {
				continue
			}
			out[key] = v
		}
		return out
	default:
		return nil
	}
}

func headingText(heading *ast.Heading, body []byte) (string, int) {
	offset := -1
	var builder strings.Builder
	for child := heading.FirstChild(); child != nil; child = child.NextSibling() {
		textNode, ok := child.(*ast.Text)
		if !ok {
			continue
		}
		if offset < 0 {
			offset = textNode.Segment.Start
		}
		builder.Write(textNode.Segment.Value(body))
	}
	if offset < 0 {
		offset = 0
	}
	return strings.TrimSpace(builder.String()), offset
}

// isNameLike accepts one to three words that each open with an uppercase
// letter and contain only letters and apostrophes.
func isNameLike(value string) bool {
	words := strings.Fields(value)
	if len(words) == 0 || len(words) > 3 {
		return false
	}
	for _, word := range words {
		runes := []rune(word)
		if !unicode.IsUpper(runes[0]) {
			return false
		}
		for _, r := range runes[1:] {
			if !unicode.IsLetter(r) && r != '\'' {
				return false
			}
		}
	}
	return true
}

// identitySlug normalizes a character name into its stable identity key.
func identitySlug(name string) string {
	normalized, err := slug.Normalize(name)
	if err != nil || normalized == "" {
		return strings.ToLower(strings.Join(strings.Fields(name), "-"))
	}
	return normalized
}
