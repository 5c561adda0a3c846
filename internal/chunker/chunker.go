// Package chunker cuts a page outline into search index entries.
package chunker

import (
	"strings"

	"github.com/dgallion1/mdsite/internal/doctree"
)

// Config controls chunk sizes, measured in estimated tokens.
type Config struct {
	ChunkSize    int // Target chunk size.
	ChunkOverlap int // Trailing context repeated at the start of the next chunk.
	MinChunk     int // Chunks below this size are dropped.
}

// DefaultConfig suits short search snippets.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    300,
		ChunkOverlap: 40,
		MinChunk:     10,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ChunkSize <= 0 {
		c.ChunkSize = d.ChunkSize
	}
	if c.ChunkOverlap <= 0 {
		c.ChunkOverlap = d.ChunkOverlap
	}
	if c.ChunkOverlap >= c.ChunkSize {
		c.ChunkOverlap = c.ChunkSize / 4
	}
	if c.MinChunk <= 0 {
		c.MinChunk = d.MinChunk
	}
	return c
}

// ChunkTree walks the outline depth first and returns its chunks in document
// order. Every chunk carries the heading path that leads to it and the anchor
// of its innermost heading.
func ChunkTree(tree *doctree.DocTree, cfg Config) []doctree.Chunk {
	c := &collector{cfg: cfg.withDefaults()}
	for _, n := range tree.Children {
		c.walk(n, nil, "")
	}
	return c.chunks
}

type collector struct {
	cfg    Config
	chunks []doctree.Chunk
}

func (c *collector) walk(node *doctree.DocNode, breadcrumb []string, anchor string) {
	bc := breadcrumb
	if node.Title != "" {
		bc = append(append([]string(nil), breadcrumb...), node.Title)
	}
	if node.Anchor != "" {
		anchor = node.Anchor
	}

	if node.Text != "" {
		parts := []string{node.Text}
		if EstimateTokens(node.Text) > c.cfg.ChunkSize {
			parts = splitText(node.Text, c.cfg.ChunkSize, c.cfg.ChunkOverlap)
		}
		for _, p := range parts {
			if EstimateTokens(p) < c.cfg.MinChunk {
				continue
			}
			c.chunks = append(c.chunks, doctree.Chunk{
				Text:       p,
				Index:      len(c.chunks),
				Breadcrumb: copyBreadcrumb(bc),
				Anchor:     anchor,
			})
		}
	}

	for _, child := range node.Children {
		c.walk(child, bc, anchor)
	}
}

// packer accumulates pieces up to a token budget and carries an overlap
// into the next chunk.
type packer struct {
	target, overlap int
	sep             string
	out             []string
	cur             strings.Builder
	tokens          int
}

func (p *packer) add(piece string) {
	n := EstimateTokens(piece)
	if p.tokens+n > p.target && p.tokens > 0 {
		p.flushWithOverlap()
	}
	if p.cur.Len() > 0 {
		p.cur.WriteString(p.sep)
	}
	p.cur.WriteString(piece)
	p.tokens += n
}

func (p *packer) flushWithOverlap() {
	done := p.cur.String()
	p.out = append(p.out, done)
	p.cur.Reset()
	p.tokens = 0
	if tail := overlapText(done, p.overlap); tail != "" {
		p.cur.WriteString(tail)
		p.tokens = EstimateTokens(tail)
	}
}

func (p *packer) finish() []string {
	if p.tokens > 0 {
		p.out = append(p.out, p.cur.String())
	}
	return p.out
}

// splitText breaks text on paragraphs, and paragraphs that alone exceed the
// target on sentences.
func splitText(text string, target, overlap int) []string {
	p := &packer{target: target, overlap: overlap, sep: "\n\n"}
	for _, para := range splitParagraphs(text) {
		if EstimateTokens(para) <= target {
			p.add(para)
			continue
		}
		if p.tokens > 0 {
			p.out = append(p.out, p.cur.String())
			p.cur.Reset()
			p.tokens = 0
		}
		s := &packer{target: target, overlap: overlap, sep: " "}
		for _, sent := range splitSentences(para) {
			s.add(sent)
		}
		p.out = append(p.out, s.finish()...)
	}
	return p.finish()
}

func splitParagraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitSentences cuts after '.', '!' or '?' followed by a space.
func splitSentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text)-1; i++ {
		switch text[i] {
		case '.', '!', '?':
			if text[i+1] == ' ' {
				if s := strings.TrimSpace(text[start : i+1]); s != "" {
					out = append(out, s)
				}
				start = i + 1
			}
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// overlapText returns roughly the last n tokens of text.
func overlapText(text string, n int) string {
	words := strings.Fields(text)
	keep := int(float64(n) / tokensPerWord)
	if keep <= 0 || len(words) <= keep {
		return ""
	}
	return strings.Join(words[len(words)-keep:], " ")
}

func copyBreadcrumb(bc []string) []string {
	if len(bc) == 0 {
		return nil
	}
	out := make([]string, len(bc))
	copy(out, bc)
	return out
}
