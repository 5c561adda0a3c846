package source

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/mdsite/internal/slug"
	"github.com/dgallion1/mdsite/internal/yamlutil"
)

const frontMatterFence = "---"

// FrontMatter is the optional YAML header of a Markdown source.
type FrontMatter struct {
	Title string   `yaml:"title"`
	Slug  string   `yaml:"slug"`
	Date  string   `yaml:"date"`
	Draft bool     `yaml:"draft"`
	Tags  []string `yaml:"tags"`
}

// MarkdownImporter passes Markdown through, lifting a leading YAML front
// matter block into Document.Meta.
type MarkdownImporter struct{}

func (m *MarkdownImporter) Import(r io.Reader, filename string) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	meta, body, err := SplitFrontMatter(string(src))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	doc := newDocument(filename, meta.Title, nil)
	doc.Markdown = body
	doc.Meta = meta
	if meta.Slug != "" {
		doc.Slug = slug.Make(meta.Slug)
	}
	return doc, nil
}

// SplitFrontMatter separates a "---" fenced YAML header from the body. Text
// without a complete header is returned unchanged.
func SplitFrontMatter(src string) (FrontMatter, string, error) {
	var meta FrontMatter
	if !strings.HasPrefix(src, frontMatterFence+"\n") {
		return meta, src, nil
	}
	rest := src[len(frontMatterFence)+1:]

	var header, body string
	switch {
	case strings.HasPrefix(rest, frontMatterFence+"\n") || rest == frontMatterFence:
		header, body = "", strings.TrimPrefix(rest, frontMatterFence)
	default:
		var found bool
		header, body, found = strings.Cut(rest, "\n"+frontMatterFence+"\n")
		if !found {
			if !strings.HasSuffix(rest, "\n"+frontMatterFence) {
				return meta, src, nil
			}
			header, body = strings.TrimSuffix(rest, "\n"+frontMatterFence), ""
		}
	}

	if strings.TrimSpace(header) != "" {
		if err := yamlutil.Unmarshal([]byte(header), &meta); err != nil {
			return meta, "", fmt.Errorf("front matter: %w", err)
		}
	}
	return meta, strings.TrimLeft(body, "\n"), nil
}
