package section

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultMinChars is the minimum cleaned text length for a subsection to
// survive filtering.
const DefaultMinChars = 16

// citationPattern matches inline reference markers: [12], [note 3],
// [citation needed] and similar bracketed annotations.
var citationPattern = regexp.MustCompile(`\[(?:\d+|[a-z]+(?: [a-z0-9]+)?)\]`)

// Clean strips inline citation markup and surrounding whitespace from the
// subsection text. The path is untouched. Cleaning already-cleaned text is
// a no-op.
func Clean(sub Subsection) Subsection {
	text := citationPattern.ReplaceAllString(sub.Text, "")
	sub.Text = strings.TrimSpace(text)
	return sub
}

// Keep reports whether a cleaned subsection carries enough text to be worth
// chunking. Stub headings below minChars produce noise chunks and are
// dropped. minChars <= 0 falls back to DefaultMinChars.
func Keep(sub Subsection, minChars int) bool {
	if minChars <= 0 {
		minChars = DefaultMinChars
	}
	return utf8.RuneCountInString(sub.Text) >= minChars
}
