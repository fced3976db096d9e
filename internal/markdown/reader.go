package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"unicode/utf8"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-storylint/pkg/interfaces"
)

var (
	// ErrRead is the sentinel wrapped by every low-level read failure.
	ErrRead = errors.New("markdown reader: read failed")
	// ErrInvalidUTF8 marks files whose bytes are not valid UTF-8.
	ErrInvalidUTF8 = errors.New("markdown reader: file is not valid UTF-8")
)

var (
	bom        = []byte{0xEF, 0xBB, 0xBF}
	fenceLF    = []byte("---\n")
	fenceCRLF  = []byte("---\r\n")
	fenceAlone = []byte("---")
)

// FrontMatterParseError reports a front-matter fence that failed to parse.
type FrontMatterParseError struct {
	Path string
	Line int
	Err  error
}

func (e *FrontMatterParseError) Error() string {
	return fmt.Sprintf("markdown reader: %s:%d: front matter parse failed: %v", e.Path, e.Line, e.Err)
}

func (e *FrontMatterParseError) Unwrap() error { return e.Err }

// FileRecord is the product of reading a source file once: the document body
// with front matter removed, the parsed front-matter mapping, and a
// line-offset index sufficient to translate byte offsets into line/column
// pairs. Records live only for the duration of the extraction pass over the
// file; only extractor outputs survive.
type FileRecord struct {
	// Path is the root-relative slash path used in all reported locations.
	Path string
	// Body is the document text with any leading front-matter block removed.
	Body []byte
	// BodyOffset is the byte offset of Body[0] within the raw file.
	BodyOffset int
	// FrontMatter holds the parsed front-matter mapping; empty when the file
	// carries no fence. Values are strings, numbers, booleans, or nested
	// mappings and sequences as produced by the YAML decoder.
	FrontMatter map[string]any

	// lineOffsets records the byte offset of every line start in the raw
	// file, built by a single left-to-right scan.
	lineOffsets []int
}

// Read loads the file at absPath and produces its record. Locations reported
// from the record use relPath. Malformed UTF-8 is a fatal read error; a
// fence that fails to parse yields a FrontMatterParseError.
func Read(absPath, relPath string) (*FileRecord, error) {
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRead, relPath, err)
	}
	return Parse(relPath, data)
}

// Parse builds a record from raw bytes. Split from Read so tests and future
// embedders can feed in-memory sources through the same path.
func Parse(relPath string, raw []byte) (*FileRecord, error) {
	raw = bytes.TrimPrefix(raw, bom)

	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidUTF8, relPath)
	}

	record := &FileRecord{
		Path:        relPath,
		FrontMatter: map[string]any{},
		lineOffsets: scanLineOffsets(raw),
	}

	if !hasFrontMatterFence(raw) {
		record.Body = raw
		return record, nil
	}

	var matter map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(raw), &matter)
	if err != nil {
		return nil, &FrontMatterParseError{Path: relPath, Line: 1, Err: err}
	}

	if matter != nil {
		record.FrontMatter = matter
	}
	record.Body = body
	record.BodyOffset = len(raw) - len(body)
	return record, nil
}

// LocationAt translates a byte offset within Body into a source location in
// the raw file. Offsets beyond the body clamp to the final position.
func (r *FileRecord) LocationAt(offset int) interfaces.SourceLocation {
	if offset < 0 {
		offset = 0
	}
	if offset > len(r.Body) {
		offset = len(r.Body)
	}
	raw := offset + r.BodyOffset

	idx := sort.Search(len(r.lineOffsets), func(i int) bool {
		return r.lineOffsets[i] > raw
	}) - 1
	if idx < 0 {
		idx = 0
	}

	return interfaces.SourceLocation{
		File:   r.Path,
		Line:   idx + 1,
		Column: raw - r.lineOffsets[idx] + 1,
		Offset: raw,
	}
}

// Release drops the body and line index once every extractor for the file has
// run, honouring the streaming memory discipline.
func (r *FileRecord) Release() {
	r.Body = nil
	r.lineOffsets = nil
	r.FrontMatter = nil
}

func scanLineOffsets(raw []byte) []int {
	offsets := []int{0}
	for i, b := range raw {
		if b == '\n' && i+1 < len(raw) {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

// hasFrontMatterFence reports whether the file opens with a YAML fence at
// byte zero. CRLF files and a bare trailing fence are accepted.
func hasFrontMatterFence(raw []byte) bool {
	if bytes.HasPrefix(raw, fenceLF) || bytes.HasPrefix(raw, fenceCRLF) {
		return true
	}
	return bytes.Equal(bytes.TrimRight(raw, "\r\n"), fenceAlone) && len(raw) >= len(fenceAlone)
}
