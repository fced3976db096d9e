package markdown

import (
	"errors"
	"strings"
	"testing"
)

func TestParsePlainDocument(t *testing.T) {
	record, err := Parse("notes.md", []byte("# Title\n\nBody text.\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if string(record.Body) != "# Title\n\nBody text.\n" {
		t.Fatalf("Parse() body = %q", record.Body)
	}
	if record.BodyOffset != 0 {
		t.Fatalf("Parse() body offset = %d, want 0", record.BodyOffset)
	}
	if len(record.FrontMatter) != 0 {
		t.Fatalf("Parse() front matter = %v, want empty", record.FrontMatter)
	}
}

func TestParseFrontMatter(t *testing.T) {
	raw := "---\ntitle: Chapter One\ndraft: true\n---\n# Chapter One\n"
	record, err := Parse("ch1.md", []byte(raw))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := record.FrontMatter["title"]; got != "Chapter One" {
		t.Fatalf("Parse() title = %v, want Chapter One", got)
	}
	if got := record.FrontMatter["draft"]; got != true {
		t.Fatalf("Parse() draft = %v, want true", got)
	}
	if string(record.Body) != "# Chapter One\n" {
		t.Fatalf("Parse() body = %q", record.Body)
	}
	if record.BodyOffset != len(raw)-len(record.Body) {
		t.Fatalf("Parse() body offset = %d", record.BodyOffset)
	}
}

func TestParseStripsBOM(t *testing.T) {
	record, err := Parse("bom.md", []byte("\xEF\xBB\xBF# Title\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if string(record.Body) != "# Title\n" {
		t.Fatalf("Parse() body = %q, want BOM stripped", record.Body)
	}
	loc := record.LocationAt(0)
	if loc.Line != 1 || loc.Column != 1 {
		t.Fatalf("LocationAt(0) = %d:%d, want 1:1", loc.Line, loc.Column)
	}
}

func TestParseInvalidUTF8(t *testing.T) {
	_, err := Parse("bad.md", []byte{0xFF, 0xFE, 0x41})
	if !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("Parse() error = %v, want ErrInvalidUTF8", err)
	}
}

func TestParseMalformedFrontMatter(t *testing.T) {
	_, err := Parse("broken.md", []byte("---\ntitle: [unclosed\n---\nBody\n"))
	var parseErr *FrontMatterParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Parse() error = %v, want FrontMatterParseError", err)
	}
	if parseErr.Path != "broken.md" {
		t.Fatalf("Parse() error path = %q", parseErr.Path)
	}
	if parseErr.Line != 1 {
		t.Fatalf("Parse() error line = %d, want 1", parseErr.Line)
	}
}

func TestParseDashesInBodyAreNotFrontMatter(t *testing.T) {
	record, err := Parse("rule.md", []byte("# Title\n\n---\n\nMore text.\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(record.FrontMatter) != 0 {
		t.Fatalf("Parse() front matter = %v, want empty", record.FrontMatter)
	}
	if !strings.Contains(string(record.Body), "---") {
		t.Fatalf("Parse() body = %q, want thematic break preserved", record.Body)
	}
}

func TestLocationAtAfterFrontMatter(t *testing.T) {
	raw := "---\ntitle: x\n---\nline one\nline two\n"
	record, err := Parse("loc.md", []byte(raw))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	// Body starts after the closing fence, so offset 0 is line 4 of the file.
	loc := record.LocationAt(0)
	if loc.Line != 4 || loc.Column != 1 {
		t.Fatalf("LocationAt(0) = %d:%d, want 4:1", loc.Line, loc.Column)
	}

	second := strings.Index(string(record.Body), "line two")
	loc = record.LocationAt(second)
	if loc.Line != 5 || loc.Column != 1 {
		t.Fatalf("LocationAt(line two) = %d:%d, want 5:1", loc.Line, loc.Column)
	}
}

func TestLocationAtColumns(t *testing.T) {
	record, err := Parse("cols.md", []byte("abc\ndefgh\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	loc := record.LocationAt(6) // "e"
	if loc.Line != 2 || loc.Column != 3 {
		t.Fatalf("LocationAt(6) = %d:%d, want 2:3", loc.Line, loc.Column)
	}
	if loc.File != "cols.md" {
		t.Fatalf("LocationAt(6) file = %q", loc.File)
	}
}

func TestLocationAtClamps(t *testing.T) {
	record, err := Parse("clamp.md", []byte("ab\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if loc := record.LocationAt(-5); loc.Line != 1 || loc.Column != 1 {
		t.Fatalf("LocationAt(-5) = %d:%d, want 1:1", loc.Line, loc.Column)
	}
	if loc := record.LocationAt(100); loc.Offset != 3 {
		t.Fatalf("LocationAt(100) offset = %d, want 3", loc.Offset)
	}
}

func TestParseEmptyFile(t *testing.T) {
	record, err := Parse("empty.md", nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(record.Body) != 0 {
		t.Fatalf("Parse() body = %q, want empty", record.Body)
	}
	loc := record.LocationAt(0)
	if loc.Line != 1 || loc.Column != 1 {
		t.Fatalf("LocationAt(0) = %d:%d, want 1:1", loc.Line, loc.Column)
	}
}

func TestReleaseDropsBuffers(t *testing.T) {
	record, err := Parse("rel.md", []byte("text\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	record.Release()
	if record.Body != nil || record.FrontMatter != nil {
		t.Fatal("Release() should drop body and front matter")
	}
}
