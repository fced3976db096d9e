package discovery

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-storylint/internal/engineconfig"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return root
}

func testConfig(root string, include, exclude []string) engineconfig.Config {
	cfg := engineconfig.DefaultConfig()
	cfg.RootDir = root
	cfg.Include = include
	cfg.Exclude = exclude
	return cfg
}

func relPaths(files []File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Rel
	}
	return out
}

func TestDiscoverMatchesAndSorts(t *testing.T) {
	root := writeTree(t, map[string]string{
		"z.md":          "z",
		"a.md":          "a",
		"chapters/b.md": "b",
		"notes.txt":     "not markdown",
	})

	files, err := Discover(testConfig(root, []string{"**/*.md"}, nil), nil)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	got := relPaths(files)
	want := []string{"a.md", "chapters/b.md", "z.md"}
	if len(got) != len(want) {
		t.Fatalf("Discover() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Discover()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDiscoverExcludes(t *testing.T) {
	root := writeTree(t, map[string]string{
		"keep.md":        "k",
		"drafts/skip.md": "s",
	})

	files, err := Discover(testConfig(root, []string{"**/*.md"}, []string{"drafts/**"}), nil)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(files) != 1 || files[0].Rel != "keep.md" {
		t.Fatalf("Discover() = %v, want [keep.md]", relPaths(files))
	}
}

func TestDiscoverDeduplicatesOverlappingIncludes(t *testing.T) {
	root := writeTree(t, map[string]string{"ch1.md": "x"})

	files, err := Discover(testConfig(root, []string{"**/*.md", "ch1.md", "*.md"}, nil), nil)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("Discover() = %v, want a single entry", relPaths(files))
	}
}

func TestDiscoverNoMatches(t *testing.T) {
	root := writeTree(t, map[string]string{"readme.txt": "t"})

	_, err := Discover(testConfig(root, []string{"**/*.md"}, nil), nil)
	if !errors.Is(err, ErrNoFilesMatched) {
		t.Fatalf("Discover() error = %v, want ErrNoFilesMatched", err)
	}
	if !IsDiscoveryError(err) {
		t.Fatalf("IsDiscoveryError(%v) = false, want true", err)
	}
}

func TestDiscoverInvalidPattern(t *testing.T) {
	root := writeTree(t, map[string]string{"a.md": "a"})

	_, err := Discover(testConfig(root, []string{"[unterminated"}, nil), nil)
	if !errors.Is(err, ErrInvalidPattern) {
		t.Fatalf("Discover() error = %v, want ErrInvalidPattern", err)
	}
}

func TestDiscoverQuestionMarkGlob(t *testing.T) {
	root := writeTree(t, map[string]string{
		"ch1.md":  "1",
		"ch2.md":  "2",
		"ch10.md": "10",
	})

	files, err := Discover(testConfig(root, []string{"ch?.md"}, nil), nil)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	got := relPaths(files)
	if len(got) != 2 || got[0] != "ch1.md" || got[1] != "ch2.md" {
		t.Fatalf("Discover() = %v, want [ch1.md ch2.md]", got)
	}
}

func TestDiscoverAbsolutePathsAreCanonical(t *testing.T) {
	root := writeTree(t, map[string]string{"a.md": "a"})

	files, err := Discover(testConfig(root, []string{"*.md"}, nil), nil)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if !filepath.IsAbs(filepath.FromSlash(files[0].Abs)) {
		t.Fatalf("Discover() abs = %q, want absolute", files[0].Abs)
	}
}
