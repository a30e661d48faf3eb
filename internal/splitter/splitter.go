// Package splitter turns flattened subsections into chunks that fit a
// token budget. Splitting is structure-aware: it prefers paragraph breaks,
// then line breaks, then sentence boundaries, and recurses on the halves
// until everything fits or the recursion budget runs out.
package splitter

import (
	"errors"
	"log/slog"
	"strings"

	"doc-segmenter/internal/section"
	"doc-segmenter/internal/tokenizer"
)

// DefaultMaxDepth bounds split recursion. Output fan-out per subsection is
// at most 2^depth.
const DefaultMaxDepth = 5

// contentSeparator joins path titles and body text into one chunk string.
const contentSeparator = "\n\n"

// delimiters is the split preference order: paragraph break, line break,
// sentence-terminal period.
var delimiters = []string{"\n\n", "\n", ". "}

type Splitter struct {
	counter   tokenizer.Counter
	maxTokens int
	maxDepth  int
	log       *slog.Logger
}

// New builds a Splitter. maxTokens must be positive; maxDepth <= 0 falls
// back to DefaultMaxDepth.
func New(counter tokenizer.Counter, maxTokens, maxDepth int, log *slog.Logger) (*Splitter, error) {
	if maxTokens <= 0 {
		return nil, errors.New("splitter: maxTokens must be positive")
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Splitter{counter: counter, maxTokens: maxTokens, maxDepth: maxDepth, log: log}, nil
}

// Split returns one or more chunks covering the subsection. Every chunk is
// within the token budget, except chunks produced by the truncation
// fallback, which are exactly at it.
func (s *Splitter) Split(sub section.Subsection) []section.Chunk {
	return s.split(sub.Path, sub.Text, s.maxDepth)
}

func (s *Splitter) split(path []string, text string, depth int) []section.Chunk {
	candidate := compose(path, text)
	count := s.counter.Count(candidate)
	if count <= s.maxTokens {
		return []section.Chunk{{Path: path, Content: candidate, TokenCount: count}}
	}
	if depth == 0 {
		return []section.Chunk{s.truncate(path, candidate, count)}
	}

	for _, delim := range delimiters {
		left, right := s.halve(text, delim)
		if left == "" || right == "" {
			continue
		}
		out := s.split(path, left, depth-1)
		return append(out, s.split(path, right, depth-1)...)
	}

	// No delimiter produced a usable split.
	return []section.Chunk{s.truncate(path, candidate, count)}
}

// halve splits text on delim near its token midpoint. A single piece means
// the delimiter is absent and is signalled by an empty right half. Two
// pieces are returned as-is. Otherwise the prefix is grown piece by piece
// while its distance to half the total count keeps strictly shrinking; the
// first non-improvement settles the split one piece back. The halves
// always rejoin to the original text.
func (s *Splitter) halve(text, delim string) (left, right string) {
	pieces := strings.Split(text, delim)
	if len(pieces) == 1 {
		return text, ""
	}
	if len(pieces) == 2 {
		return pieces[0], pieces[1]
	}

	target := s.counter.Count(text) / 2
	bestDiff := target
	i := 0
	for ; i < len(pieces); i++ {
		prefix := strings.Join(pieces[:i+1], delim)
		diff := target - s.counter.Count(prefix)
		if diff < 0 {
			diff = -diff
		}
		if diff >= bestDiff {
			break
		}
		bestDiff = diff
	}
	// A scan that improves all the way through stops one piece before the
	// end, putting the final piece alone on the right.
	if i == len(pieces) {
		i--
	}
	return strings.Join(pieces[:i], delim), strings.Join(pieces[i:], delim)
}

func (s *Splitter) truncate(path []string, candidate string, count int) section.Chunk {
	trimmed := s.counter.Truncate(candidate, s.maxTokens)
	s.log.Warn("split depth exhausted, truncating chunk",
		"tokens_before", count,
		"tokens_after", s.maxTokens,
	)
	return section.Chunk{Path: path, Content: trimmed, TokenCount: s.maxTokens}
}

// compose joins the section path and body into the chunk layout. An empty
// body yields just the path titles.
func compose(path []string, text string) string {
	parts := make([]string, 0, len(path)+1)
	parts = append(parts, path...)
	if text != "" {
		parts = append(parts, text)
	}
	return strings.Join(parts, contentSeparator)
}
