// Package parser converts raw document bytes into a heading tree. Parsers
// only build the tree model; segmentation itself never touches markup.
package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"doc-segmenter/internal/section"
)

// Parser converts raw document bytes into a section.Document.
type Parser interface {
	Parse(r io.Reader, filename string) (section.Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".wiki":     true,
	".wikitext": true,
	".pdf":      true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".wiki", ".wikitext":
		return &WikiParser{}, nil
	case ".pdf":
		return &PDFParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// DocTitle derives a document title from the filename.
func DocTitle(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
