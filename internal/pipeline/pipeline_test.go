package pipeline

import (
	"context"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"doc-segmenter/internal/section"
)

type wordCounter struct{}

func (wordCounter) Count(text string) int { return len(strings.Fields(text)) }

func (wordCounter) Truncate(text string, maxTokens int) string {
	words := strings.Fields(text)
	if len(words) <= maxTokens {
		return text
	}
	return strings.Join(words[:maxTokens], " ")
}

func (wordCounter) Encoding() string { return "words" }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testDoc() section.Document {
	return section.Document{
		Title: "Saturn",
		Root: &section.HeadingNode{
			Body: "Saturn is the sixth planet from the Sun.[1] It is a gas giant.",
			Children: []*section.HeadingNode{
				{Title: "==Atmosphere==", Body: "The outer atmosphere is bland and lacking in contrast to the eye."},
				{Title: "==Rings==", Body: "tiny"},
				{
					Title: "==References==",
					Body:  "Long reference list that would otherwise definitely be kept.",
					Children: []*section.HeadingNode{
						{Title: "===Web===", Body: "Even more references in a nested section of the branch."},
					},
				},
			},
		},
	}
}

func newPipeline(t *testing.T, opts Options) *Pipeline {
	t.Helper()
	p, err := New(wordCounter{}, opts, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return p
}

func TestRunPrunesCleansAndFilters(t *testing.T) {
	p := newPipeline(t, Options{MaxTokens: 100})

	chunks, err := p.Run(context.Background(), testDoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Root + Atmosphere survive. "Rings" is under 16 chars; the References
	// branch (including its nested child) is pruned.
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %v", len(chunks), chunks)
	}
	if !strings.Contains(chunks[0].Content, "sixth planet") {
		t.Errorf("first chunk should be the root body, got %q", chunks[0].Content)
	}
	if strings.Contains(chunks[0].Content, "[1]") {
		t.Errorf("citation markup not cleaned: %q", chunks[0].Content)
	}
	if !strings.HasPrefix(chunks[1].Content, "Saturn\n\n==Atmosphere==") {
		t.Errorf("second chunk missing section path: %q", chunks[1].Content)
	}
	for i, c := range chunks {
		if c.TokenCount > 100 {
			t.Errorf("chunk %d over budget: %d", i, c.TokenCount)
		}
	}
}

func TestRunOrderStableUnderConcurrency(t *testing.T) {
	// Many sections, several workers: output order must still be document
	// order.
	root := &section.HeadingNode{Body: "Introduction text long enough to keep around."}
	for i := 0; i < 40; i++ {
		root.Children = append(root.Children, &section.HeadingNode{
			Title: "==S" + strings.Repeat("x", i%5) + "==",
			Body:  "Section body number " + strings.Repeat("w ", i+8),
		})
	}
	doc := section.Document{Title: "Doc", Root: root}
	p := newPipeline(t, Options{MaxTokens: 1000, Workers: 8})

	first, err := p.Run(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := p.Run(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("non-deterministic chunk count: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !reflect.DeepEqual(first[i], second[i]) {
			t.Errorf("chunk %d differs across runs", i)
		}
	}
}

func TestRunRespectsBudgetOnLongSections(t *testing.T) {
	doc := section.Document{
		Title: "Doc",
		Root: &section.HeadingNode{
			Body: strings.Repeat("some words in every paragraph\n\n", 30),
		},
	}
	p := newPipeline(t, Options{MaxTokens: 20})

	chunks, err := p.Run(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected the long body to split, got %d chunks", len(chunks))
	}
	for i, c := range chunks {
		if c.TokenCount > 20 {
			t.Errorf("chunk %d over budget: %d", i, c.TokenCount)
		}
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := newPipeline(t, Options{MaxTokens: 50})

	_, err := p.Run(ctx, testDoc())
	if err == nil {
		t.Error("expected context error")
	}
}

func TestRunAllKeepsDocumentOrder(t *testing.T) {
	docA := section.Document{Title: "Alpha", Root: &section.HeadingNode{Body: "Alpha body text long enough to keep."}}
	docB := section.Document{Title: "Beta", Root: &section.HeadingNode{Body: "Beta body text long enough to keep."}}
	p := newPipeline(t, Options{MaxTokens: 100})

	chunks, err := p.RunAll(context.Background(), []section.Document{docA, docB})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if !strings.HasPrefix(chunks[0].Content, "Alpha") || !strings.HasPrefix(chunks[1].Content, "Beta") {
		t.Errorf("document order not preserved: %q, %q", chunks[0].Content, chunks[1].Content)
	}
}

func TestNewRejectsBadBudget(t *testing.T) {
	if _, err := New(wordCounter{}, Options{MaxTokens: 0}, testLogger()); err == nil {
		t.Error("expected error for zero token budget")
	}
}
