// Package discovery expands the configured include and exclude globs into the
// ordered, deduplicated corpus file list.
package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-storylint/internal/engineconfig"
	"github.com/goliatone/go-storylint/internal/logging"
	"github.com/goliatone/go-storylint/pkg/interfaces"
)

const discoveryFailedCode = "DISCOVERY_FAILED"

var (
	// ErrNoFilesMatched is returned when the include globs select nothing.
	ErrNoFilesMatched = errors.New("storylint discovery: no files matched")
	// ErrInvalidPattern is returned when a glob pattern cannot be compiled.
	ErrInvalidPattern = errors.New("storylint discovery: invalid glob pattern")
)

// File pairs the canonical absolute path of a corpus file with the
// root-relative slash path used in every reported location.
type File struct {
	Abs string
	Rel string
}

// Discover expands the include globs under cfg.RootDir, subtracts the exclude
// globs, canonicalizes and deduplicates the matches, and returns them sorted
// lexicographically by relative path so downstream ordering is deterministic.
func Discover(cfg engineconfig.Config, logger interfaces.Logger) ([]File, error) {
	if logger == nil {
		logger = logging.NoOp()
	}

	includes, err := compilePatterns(cfg.Include)
	if err != nil {
		return nil, err
	}
	excludes, err := compilePatterns(cfg.Exclude)
	if err != nil {
		return nil, err
	}

	seen := map[string]File{}

	walkErr := filepath.WalkDir(cfg.RootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable directories are skipped rather than failing the
			// whole expansion; individual file read errors surface later as
			// findings.
			logger.Warn("discovery.walk.skip", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(cfg.RootDir, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if !matchesAny(includes, rel) || matchesAny(excludes, rel) {
			return nil
		}

		abs := canonicalize(path)
		if _, dup := seen[abs]; dup {
			return nil
		}
		seen[abs] = File{Abs: abs, Rel: rel}
		return nil
	})
	if walkErr != nil {
		return nil, wrapDiscoveryError(fmt.Errorf("storylint discovery: walk %s: %w", cfg.RootDir, walkErr))
	}

	if len(seen) == 0 {
		return nil, wrapDiscoveryError(ErrNoFilesMatched)
	}

	files := make([]File, 0, len(seen))
	for _, f := range seen {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Rel < files[j].Rel })

	logger.Debug("discovery.resolved", "files", len(files))
	return files, nil
}

// IsDiscoveryError reports whether err originated in glob expansion.
func IsDiscoveryError(err error) bool {
	return errors.Is(err, ErrNoFilesMatched) || errors.Is(err, ErrInvalidPattern)
}

type compiledPattern struct {
	source string
	glob   glob.Glob
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		normalized := filepath.ToSlash(pattern)
		g, err := glob.Compile(normalized, '/')
		if err != nil {
			return nil, wrapDiscoveryError(fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err))
		}
		compiled = append(compiled, compiledPattern{source: pattern, glob: g})
	}
	return compiled, nil
}

func matchesAny(patterns []compiledPattern, rel string) bool {
	for _, p := range patterns {
		if p.glob.Match(rel) {
			return true
		}
		// "**/*.md" style patterns should also match files at the root, the
		// way POSIX globstar users expect.
		if strings.HasPrefix(p.source, "**/") {
			if trimmed, err := glob.Compile(strings.TrimPrefix(filepath.ToSlash(p.source), "**/"), '/'); err == nil && trimmed.Match(rel) {
				return true
			}
		}
	}
	return false
}

// canonicalize resolves symlinks and normalizes the absolute path so two
// include patterns matching the same file collapse to one corpus entry.
func canonicalize(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return filepath.ToSlash(abs)
}

func wrapDiscoveryError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "corpus discovery failed").
		WithTextCode(discoveryFailedCode)
}
