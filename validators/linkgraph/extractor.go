// Package linkgraph ships the links extractor and the link-graph validator:
// broken intra-corpus links (LINK001) and orphaned documents (LINK002).
package linkgraph

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-storylint/pkg/interfaces"
)

// ExtractorKey identifies the links extractor.
const ExtractorKey = "links"

// Link is one outbound link discovered in a file. Target is the raw link
// destination as written; resolution against the corpus happens in the
// validator.
type Link struct {
	Target   string
	Location interfaces.SourceLocation
}

// extract walks the Markdown AST and records every outbound link that could
// point inside the corpus. External schemes and pure fragment links are
// ignored at this stage.
func extract(body []byte, _ map[string]any, ctx interfaces.ExtractionContext) (any, error) {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(body))

	var links []Link
	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := node.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}

		target := strings.TrimSpace(string(link.Destination))
		if !isCorpusCandidate(target) {
			return ast.WalkContinue, nil
		}

		links = append(links, Link{
			Target:   target,
			Location: ctx.LocationAt(linkOffset(link)),
		})
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	return links, nil
}

// merge concatenates the per-file link lists in the given (file-path-sorted)
// order.
func merge(results []interfaces.FileResult) (any, error) {
	var all []Link
	for _, result := range results {
		links, ok := result.Payload.([]Link)
		if !ok {
			continue
		}
		all = append(all, links...)
	}
	return all, nil
}

// linkOffset approximates the link's position with the start segment of its
// first text child; links with no literal text fall back to the file start.
func linkOffset(link *ast.Link) int {
	for child := link.FirstChild(); child != nil; child = child.NextSibling() {
		if textNode, ok := child.(*ast.Text); ok {
			return textNode.Segment.Start
		}
	}
	return 0
}

func isCorpusCandidate(target string) bool {
	if target == "" || strings.HasPrefix(target, "#") {
		return false
	}
	if strings.Contains(target, "://") {
		return false
	}
	lowered := strings.ToLower(target)
	if strings.HasPrefix(lowered, "mailto:") || strings.HasPrefix(lowered, "tel:") {
		return false
	}
	return true
}
