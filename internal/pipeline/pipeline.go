// Package pipeline composes the segmentation stages: flatten the heading
// tree, clean and filter subsections, then split each one to the token
// budget. Chunks come out in document order.
package pipeline

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"doc-segmenter/internal/section"
	"doc-segmenter/internal/splitter"
	"doc-segmenter/internal/tokenizer"
)

const defaultWorkers = 4

// Options controls segmentation behavior.
type Options struct {
	MaxTokens       int               // token budget per chunk
	MinSectionChars int               // minimum cleaned text length to keep a subsection
	MaxDepth        int               // split recursion bound
	Ignore          section.IgnoreSet // pruned heading titles
	Workers         int               // concurrent subsection splits
}

type Pipeline struct {
	splitter *splitter.Splitter
	opts     Options
	log      *slog.Logger
}

// New builds a Pipeline over the given token counter.
func New(counter tokenizer.Counter, opts Options, log *slog.Logger) (*Pipeline, error) {
	if opts.MinSectionChars <= 0 {
		opts.MinSectionChars = section.DefaultMinChars
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.Ignore == nil {
		opts.Ignore = section.DefaultIgnoreSet()
	}
	sp, err := splitter.New(counter, opts.MaxTokens, opts.MaxDepth, log)
	if err != nil {
		return nil, err
	}
	return &Pipeline{splitter: sp, opts: opts, log: log}, nil
}

// Run segments one document. Subsections are split concurrently; results
// land in indexed slots so chunk order always matches subsection order.
func (p *Pipeline) Run(ctx context.Context, doc section.Document) ([]section.Chunk, error) {
	var kept []section.Subsection
	for _, sub := range section.Flatten(doc, p.opts.Ignore) {
		cleaned := section.Clean(sub)
		if section.Keep(cleaned, p.opts.MinSectionChars) {
			kept = append(kept, cleaned)
		}
	}

	results := make([][]section.Chunk, len(kept))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i, sub := range kept {
		i, sub := i, sub
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.splitter.Split(sub)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var chunks []section.Chunk
	for _, r := range results {
		chunks = append(chunks, r...)
	}
	p.log.Debug("document segmented",
		"title", doc.Title,
		"subsections", len(kept),
		"chunks", len(chunks),
	)
	return chunks, nil
}

// RunAll segments documents in order and concatenates their chunks.
// A failure is scoped to its document; earlier documents' chunks are
// returned alongside the error so callers can decide to keep or drop them.
func (p *Pipeline) RunAll(ctx context.Context, docs []section.Document) ([]section.Chunk, error) {
	var all []section.Chunk
	for _, doc := range docs {
		chunks, err := p.Run(ctx, doc)
		if err != nil {
			return all, err
		}
		all = append(all, chunks...)
	}
	return all, nil
}
