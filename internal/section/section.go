package section

import "strings"

// HeadingNode is a node in a document's heading tree. The root node carries
// the document title at level 0; its Body is the text appearing before the
// first child heading.
type HeadingNode struct {
	Level    int
	Title    string // raw heading text, decoration included
	Body     string
	Children []*HeadingNode
}

// Document is a parsed document ready for segmentation.
type Document struct {
	Title string
	Root  *HeadingNode
}

// Subsection is a flattened heading-tree node: the title path from the
// document root down to the node, plus the node's own body text
// (descendants' text excluded).
type Subsection struct {
	Path []string
	Text string
}

// Chunk is the pipeline's terminal artifact: section context plus body,
// bounded by the configured token budget. Path records which subsection
// the chunk came from.
type Chunk struct {
	Path       []string
	Content    string
	TokenCount int
}

// IgnoreSet holds heading titles whose subtrees are discarded during
// flattening. Matching happens after decoration stripping and is
// case-sensitive.
type IgnoreSet map[string]struct{}

// NewIgnoreSet builds an IgnoreSet from a list of titles.
func NewIgnoreSet(titles ...string) IgnoreSet {
	s := make(IgnoreSet, len(titles))
	for _, t := range titles {
		s[t] = struct{}{}
	}
	return s
}

// Has reports whether title is in the set.
func (s IgnoreSet) Has(title string) bool {
	_, ok := s[title]
	return ok
}

// DefaultIgnoreTitles lists boilerplate section titles that add no
// retrievable content.
var DefaultIgnoreTitles = []string{
	"References",
	"External links",
	"Further reading",
	"See also",
	"Notes",
	"Sources",
	"Bibliography",
}

// DefaultIgnoreSet returns the default pruning policy.
func DefaultIgnoreSet() IgnoreSet {
	return NewIgnoreSet(DefaultIgnoreTitles...)
}

// StripDecoration removes heading markup from a title: wiki-style "=" fences,
// markdown "#" prefixes, and surrounding whitespace. "==References==" and
// "## References" both strip to "References".
func StripDecoration(title string) string {
	t := strings.TrimSpace(title)
	t = strings.Trim(t, "=#")
	return strings.TrimSpace(t)
}
