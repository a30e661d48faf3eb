package parser

import (
	"io"
	"strings"

	"doc-segmenter/internal/section"
)

// TextParser treats the whole file as the root body of a flat document.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (section.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return section.Document{}, err
	}
	title := DocTitle(filename)
	return section.Document{
		Title: title,
		Root: &section.HeadingNode{
			Level: 0,
			Title: title,
			Body:  strings.TrimSpace(string(src)),
		},
	}, nil
}
