package interfaces

// Corpus is the read-only file inventory handed to validators. File bodies
// are not retained; only the extracted metadata survives the parse pass, so
// validators that need document content must obtain it through an extractor.
type Corpus struct {
	// Root is the absolute project root the corpus was discovered under.
	Root string
	// Files lists root-relative slash paths in lexicographic order.
	Files []string

	index map[string]struct{}
}

// NewCorpus builds a corpus over the supplied root-relative paths. The caller
// is responsible for ordering; discovery already sorts lexicographically.
func NewCorpus(root string, files []string) *Corpus {
	index := make(map[string]struct{}, len(files))
	for _, f := range files {
		index[f] = struct{}{}
	}
	return &Corpus{Root: root, Files: files, index: index}
}

// Contains reports whether the root-relative path is part of the corpus.
func (c *Corpus) Contains(path string) bool {
	if c == nil {
		return false
	}
	_, ok := c.index[path]
	return ok
}

// Len returns the number of files in the corpus.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Files)
}
