package doctree

// DocTree is the heading outline of a rendered page.
type DocTree struct {
	Title    string     // Page title (front matter or filename)
	Children []*DocNode // Top-level sections
}

// DocNode is a recursive section in the outline.
type DocNode struct {
	Title    string     // Heading text (empty for text before the first heading)
	Anchor   string     // Slug of the heading, usable as a fragment id
	Text     string     // Plain text of the section's blocks
	Children []*DocNode // Subsections
}

// Chunk is a sized piece of section text, ready for a search index.
type Chunk struct {
	Text       string   `json:"text"`
	Index      int      `json:"index"`
	Breadcrumb []string `json:"breadcrumb,omitempty"` // e.g. ["Install", "Linux", "From source"]
	Anchor     string   `json:"anchor,omitempty"`
}
