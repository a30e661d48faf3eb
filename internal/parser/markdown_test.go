package parser

import (
	"strings"
	"testing"
)

func TestMarkdownParserBuildsTree(t *testing.T) {
	src := `Intro paragraph before any heading.

# Overview

Overview text.

## Details

Detail text.

# Second

Second text.
`
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(src), "guide.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "guide" {
		t.Errorf("expected title from filename, got %q", doc.Title)
	}
	if doc.Root.Body != "Intro paragraph before any heading." {
		t.Errorf("unexpected root body: %q", doc.Root.Body)
	}
	if len(doc.Root.Children) != 2 {
		t.Fatalf("expected 2 top-level sections, got %d", len(doc.Root.Children))
	}

	overview := doc.Root.Children[0]
	if overview.Title != "Overview" || overview.Body != "Overview text." {
		t.Errorf("unexpected first section: %+v", overview)
	}
	if len(overview.Children) != 1 || overview.Children[0].Title != "Details" {
		t.Fatalf("expected nested Details section, got %+v", overview.Children)
	}
	if overview.Children[0].Body != "Detail text." {
		t.Errorf("unexpected nested body: %q", overview.Children[0].Body)
	}

	second := doc.Root.Children[1]
	if second.Title != "Second" || second.Body != "Second text." {
		t.Errorf("unexpected second section: %+v", second)
	}
}

func TestMarkdownParserSkippedLevels(t *testing.T) {
	src := `# Top

## Mid

#### Deep

Deep text.
`
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(src), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	top := doc.Root.Children[0]
	mid := top.Children[0]
	if len(mid.Children) != 1 || mid.Children[0].Title != "Deep" {
		t.Errorf("h4 under h2 should nest directly, got %+v", mid.Children)
	}
}

func TestMarkdownParserNoHeadings(t *testing.T) {
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader("Just a plain paragraph."), "plain.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Root.Body != "Just a plain paragraph." {
		t.Errorf("unexpected root body: %q", doc.Root.Body)
	}
	if len(doc.Root.Children) != 0 {
		t.Errorf("expected no children, got %d", len(doc.Root.Children))
	}
}

func TestMarkdownParserEmitsBodyTextOnce(t *testing.T) {
	src := `# Section

A paragraph with *emphasis* inside.

` + "```\ncode line\n```" + `
`
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(src), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := doc.Root.Children[0].Body
	if got := strings.Count(body, "A paragraph"); got != 1 {
		t.Errorf("paragraph text emitted %d times in %q", got, body)
	}
	if got := strings.Count(body, "emphasis"); got != 1 {
		t.Errorf("inline text emitted %d times in %q", got, body)
	}
	if got := strings.Count(body, "code line"); got != 1 {
		t.Errorf("code block text emitted %d times in %q", got, body)
	}
}

func TestDocTitle(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"saturn.wiki", "saturn"},
		{"docs/guide.md", "guide"},
		{"notes", "notes"},
		{"archive.tar.gz", "archive.tar"},
	}
	for _, tt := range tests {
		if got := DocTitle(tt.filename); got != tt.want {
			t.Errorf("DocTitle(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

func TestForFileDispatch(t *testing.T) {
	tests := []struct {
		filename string
		wantErr  bool
	}{
		{"a.md", false},
		{"a.markdown", false},
		{"a.wiki", false},
		{"a.wikitext", false},
		{"a.txt", false},
		{"a.pdf", false},
		{"a.docx", true},
		{"a", true},
	}
	for _, tt := range tests {
		_, err := ForFile(tt.filename)
		if (err != nil) != tt.wantErr {
			t.Errorf("ForFile(%q) error = %v, wantErr %v", tt.filename, err, tt.wantErr)
		}
		if got := IsSupportedExtension(tt.filename); got == tt.wantErr {
			t.Errorf("IsSupportedExtension(%q) = %v", tt.filename, got)
		}
	}
}
