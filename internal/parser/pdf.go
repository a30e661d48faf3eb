package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"doc-segmenter/internal/section"
)

// PDFParser extracts plain text page by page. PDFs carry no reliable
// heading structure, so the whole text becomes the root body.
type PDFParser struct{}

func (p *PDFParser) Parse(r io.Reader, filename string) (section.Document, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return section.Document{}, err
	}

	reader := bytes.NewReader(content)
	pdfReader, err := pdf.NewReader(reader, int64(len(content)))
	if err != nil {
		return section.Document{}, fmt.Errorf("pdf: %w", err)
	}

	var textBuilder strings.Builder
	numPages := pdfReader.NumPage()

	for pageNum := 1; pageNum <= numPages; pageNum++ {
		page := pdfReader.Page(pageNum)
		if page.V.IsNull() || page.V.Key("Contents").Kind() == pdf.Null {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip pages that fail to extract
			continue
		}
		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}

	title := DocTitle(filename)
	return section.Document{
		Title: title,
		Root: &section.HeadingNode{
			Level: 0,
			Title: title,
			Body:  strings.TrimSpace(textBuilder.String()),
		},
	}, nil
}
