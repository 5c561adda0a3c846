package pipeline

import (
	"bytes"
	"fmt"
	"time"

	"github.com/dgallion1/mdsite/internal/builder"
	"github.com/dgallion1/mdsite/internal/chunker"
	"github.com/dgallion1/mdsite/internal/doctree"
	"github.com/dgallion1/mdsite/internal/htmlnode"
	"github.com/dgallion1/mdsite/internal/slug"
	"github.com/dgallion1/mdsite/internal/source"
)

// Result is a rendered page with its search index.
type Result struct {
	Title       string             `json:"title"`
	Slug        string             `json:"slug"`
	HTML        string             `json:"html"`
	Index       []doctree.Chunk    `json:"index"`
	ContentHash string             `json:"content_hash"`
	Meta        source.FrontMatter `json:"meta"`
	Links       []string           `json:"links,omitempty"`
	Blocks      int                `json:"blocks"`
	RenderTime  time.Duration      `json:"-"`
}

// Renderer turns imported documents into pages.
type Renderer struct {
	ChunkConfig chunker.Config
	Stats       *RenderStats // Optional.
}

// Render builds, renders and indexes doc.
func (r *Renderer) Render(doc *source.Document) (*Result, error) {
	start := time.Now()
	root, err := builder.Build(doc.Markdown)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	html, err := root.Render()
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	elapsed := time.Since(start)
	if r.Stats != nil {
		r.Stats.Record(elapsed)
	}

	tree, err := doctree.FromMarkdown(doc.Title, doc.Markdown)
	if err != nil {
		return nil, fmt.Errorf("outline: %w", err)
	}

	pageSlug := doc.Slug
	if pageSlug == "" {
		pageSlug = slug.Make(doc.Title)
	}
	return &Result{
		Title:       doc.Title,
		Slug:        pageSlug,
		HTML:        html,
		Index:       chunker.ChunkTree(tree, r.ChunkConfig),
		ContentHash: ContentHashHex([]byte(doc.Markdown)),
		Meta:        doc.Meta,
		Links:       pageLinks(root),
		Blocks:      len(root.Children),
		RenderTime:  elapsed,
	}, nil
}

// Import picks the importer for filename and reads data with it.
func Import(filename string, data []byte, opts source.Options) (*source.Document, error) {
	imp, err := source.ForFile(filename, opts)
	if err != nil {
		return nil, err
	}
	return imp.Import(bytes.NewReader(data), filename)
}

// pageLinks lists link and image targets in document order, each once.
func pageLinks(root htmlnode.Node) []string {
	var links []string
	seen := make(map[string]bool)
	htmlnode.Walk(root, func(n htmlnode.Node) {
		leaf, ok := n.(*htmlnode.Leaf)
		if !ok {
			return
		}
		var key string
		switch leaf.Tag {
		case "a":
			key = "href"
		case "img":
			key = "src"
		default:
			return
		}
		target, ok := leaf.Attrs.Get(key)
		if !ok || target == "" || seen[target] {
			return
		}
		seen[target] = true
		links = append(links, target)
	})
	return links
}
