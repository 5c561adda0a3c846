// Package source imports page sources of various formats as Markdown in the
// dialect the builder understands.
package source

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/mdsite/internal/slug"
)

// Document is an imported page, ready to render.
type Document struct {
	Title    string
	Slug     string
	Markdown string
	Meta     FrontMatter
}

// Importer converts raw source bytes into a Document.
type Importer interface {
	Import(r io.Reader, filename string) (*Document, error)
}

// SupportedExtensions lists file extensions that can be imported.
var SupportedExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// Options tune importers that have knobs.
type Options struct {
	PDFFallbackPdftotext bool
}

// ForFile returns the importer for filename's extension.
func ForFile(filename string, opts Options) (Importer, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown":
		return &MarkdownImporter{}, nil
	case ".txt":
		return &TextImporter{}, nil
	case ".csv":
		return &CSVImporter{}, nil
	case ".html", ".htm":
		return &HTMLImporter{}, nil
	case ".pdf":
		return &PDFImporter{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXImporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %q", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// baseTitle strips the directory and extension from filename.
func baseTitle(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// newDocument fills in title and slug defaults.
func newDocument(filename, title string, blocks []string) *Document {
	if title == "" {
		title = baseTitle(filename)
	}
	return &Document{
		Title:    title,
		Slug:     slug.Make(title),
		Markdown: strings.Join(blocks, "\n\n"),
	}
}

// collapse joins the whitespace-separated words of s with single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func headingLine(level int, text string) string {
	if level > 6 {
		level = 6
	}
	return strings.Repeat("#", level) + " " + text
}
