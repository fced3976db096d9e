package linkgraph

import (
	"context"
	"sort"
	"testing"

	"github.com/goliatone/go-storylint/internal/markdown"
	"github.com/goliatone/go-storylint/pkg/interfaces"
)

type recordContext struct {
	record *markdown.FileRecord
}

func (c recordContext) Path() string { return c.record.Path }
func (c recordContext) LocationAt(offset int) interfaces.SourceLocation {
	return c.record.LocationAt(offset)
}

func extractLinks(t *testing.T, path, content string) []Link {
	t.Helper()
	record, err := markdown.Parse(path, []byte(content))
	if err != nil {
		t.Fatalf("Parse(%s) error = %v", path, err)
	}
	payload, err := extract(record.Body, record.FrontMatter, recordContext{record})
	if err != nil {
		t.Fatalf("extract(%s) error = %v", path, err)
	}
	links, _ := payload.([]Link)
	return links
}

type fakeView map[string]any

func (v fakeView) Get(key string) (any, bool) {
	payload, ok := v[key]
	return payload, ok
}

func (v fakeView) Keys() []string {
	keys := make([]string, 0, len(v))
	for key := range v {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func TestExtractFindsRelativeLinks(t *testing.T) {
	links := extractLinks(t, "ch1.md", "Start at [Chapter 2](./ch2.md) and [notes](appendix/notes.md).\n")
	if len(links) != 2 {
		t.Fatalf("extract() = %d links, want 2", len(links))
	}
	if links[0].Target != "./ch2.md" {
		t.Fatalf("extract()[0] target = %q", links[0].Target)
	}
	if links[1].Target != "appendix/notes.md" {
		t.Fatalf("extract()[1] target = %q", links[1].Target)
	}
	if links[0].Location.Line != 1 {
		t.Fatalf("extract()[0] line = %d, want 1", links[0].Location.Line)
	}
	if links[0].Location.File != "ch1.md" {
		t.Fatalf("extract()[0] file = %q", links[0].Location.File)
	}
}

func TestExtractSkipsExternalTargets(t *testing.T) {
	content := "[web](https://example.com) [mail](mailto:a@b.c) [phone](tel:+15551234) [frag](#section)\n"
	if links := extractLinks(t, "skip.md", content); len(links) != 0 {
		t.Fatalf("extract() = %v, want none", links)
	}
}

func TestExtractReportsLinesPastFrontMatter(t *testing.T) {
	content := "---\ntitle: t\n---\n\nSee [next](./next.md).\n"
	links := extractLinks(t, "fm.md", content)
	if len(links) != 1 {
		t.Fatalf("extract() = %d links, want 1", len(links))
	}
	if links[0].Location.Line != 5 {
		t.Fatalf("extract() line = %d, want 5", links[0].Location.Line)
	}
}

func TestMergeConcatenates(t *testing.T) {
	payload, err := merge([]interfaces.FileResult{
		{Path: "a.md", Payload: []Link{{Target: "x.md"}}},
		{Path: "b.md", Payload: []Link{{Target: "y.md"}, {Target: "z.md"}}},
	})
	if err != nil {
		t.Fatalf("merge() error = %v", err)
	}
	links := payload.([]Link)
	if len(links) != 3 || links[0].Target != "x.md" || links[2].Target != "z.md" {
		t.Fatalf("merge() = %v", links)
	}
}

func TestResolveTarget(t *testing.T) {
	cases := []struct {
		from, target, want string
	}{
		{"ch1.md", "./ch2.md", "ch2.md"},
		{"guide/ch1.md", "ch2.md", "guide/ch2.md"},
		{"guide/ch1.md", "../intro.md", "intro.md"},
		{"ch1.md", "ch2.md#heading", "ch2.md"},
		{"ch1.md", "ch2.md?ref=1", "ch2.md"},
		{"ch1.md", "/docs/ch2.md", "docs/ch2.md"},
		{"ch1.md", "#only-fragment", ""},
	}
	for _, tc := range cases {
		if got := resolveTarget(tc.from, tc.target); got != tc.want {
			t.Fatalf("resolveTarget(%q, %q) = %q, want %q", tc.from, tc.target, got, tc.want)
		}
	}
}

func newTestValidator(t *testing.T, options map[string]any) interfaces.Validator {
	t.Helper()
	v, err := newValidator(options)
	if err != nil {
		t.Fatalf("newValidator() error = %v", err)
	}
	return v
}

func TestValidateBrokenLink(t *testing.T) {
	corpus := interfaces.NewCorpus("/p", []string{"README.md"})
	view := fakeView{ExtractorKey: []Link{{
		Target:   "./ch2.md",
		Location: interfaces.SourceLocation{File: "README.md", Line: 1, Column: 5},
	}}}

	v := newTestValidator(t, map[string]any{"entryPoints": []string{"README.md"}})
	findings, err := v.Validate(context.Background(), corpus, view)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("Validate() = %d findings, want 1", len(findings))
	}
	f := findings[0]
	if f.Code != CodeBrokenLink {
		t.Fatalf("finding code = %q, want LINK001", f.Code)
	}
	if f.Location == nil || f.Location.File != "README.md" || f.Location.Line != 1 {
		t.Fatalf("finding location = %v", f.Location)
	}
	if f.Suggestion == "" {
		t.Fatal("broken link findings should carry a suggestion")
	}
}

func TestValidateOrphanedDocument(t *testing.T) {
	corpus := interfaces.NewCorpus("/p", []string{"README.md", "ch1.md", "ch2.md"})
	view := fakeView{ExtractorKey: []Link{{
		Target:   "./ch1.md",
		Location: interfaces.SourceLocation{File: "README.md", Line: 1, Column: 1},
	}}}

	v := newTestValidator(t, map[string]any{"entryPoints": []string{"README.md"}})
	findings, err := v.Validate(context.Background(), corpus, view)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("Validate() = %v, want only the orphan", findings)
	}
	f := findings[0]
	if f.Code != CodeOrphanedDocument {
		t.Fatalf("finding code = %q, want LINK002", f.Code)
	}
	if f.Location == nil || f.Location.File != "ch2.md" || f.Location.Line != 1 || f.Location.Column != 1 {
		t.Fatalf("finding location = %v, want ch2.md:1:1", f.Location)
	}
}

func TestValidateSelfLinkDoesNotRescueOrphan(t *testing.T) {
	corpus := interfaces.NewCorpus("/p", []string{"lonely.md"})
	view := fakeView{ExtractorKey: []Link{{
		Target:   "./lonely.md",
		Location: interfaces.SourceLocation{File: "lonely.md", Line: 3, Column: 1},
	}}}

	v := newTestValidator(t, nil)
	findings, err := v.Validate(context.Background(), corpus, view)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if len(findings) != 1 || findings[0].Code != CodeOrphanedDocument {
		t.Fatalf("Validate() = %v, want the self-linked file flagged as orphan", findings)
	}
}

func TestValidateFragmentLinkResolvesToFile(t *testing.T) {
	corpus := interfaces.NewCorpus("/p", []string{"README.md", "ch1.md"})
	view := fakeView{ExtractorKey: []Link{{
		Target:   "ch1.md#scene-two",
		Location: interfaces.SourceLocation{File: "README.md", Line: 2, Column: 1},
	}}}

	v := newTestValidator(t, map[string]any{"entryPoints": []string{"README.md"}})
	findings, err := v.Validate(context.Background(), corpus, view)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if len(findings) != 0 {
		t.Fatalf("Validate() = %v, want none", findings)
	}
}

func TestNewValidatorRejectsBadEntryPoints(t *testing.T) {
	if _, err := newValidator(map[string]any{"entryPoints": "README.md"}); err == nil {
		t.Fatal("newValidator() should reject a non-list entryPoints")
	}
	if _, err := newValidator(map[string]any{"entryPoints": []any{42}}); err == nil {
		t.Fatal("newValidator() should reject non-string entries")
	}
}
