package doctree

import (
	"fmt"
	"strings"

	"github.com/dgallion1/mdsite/internal/block"
	"github.com/dgallion1/mdsite/internal/inline"
	"github.com/dgallion1/mdsite/internal/slug"
	"github.com/dgallion1/mdsite/internal/textnode"
)

// FromMarkdown builds the heading outline of md. Each heading opens a section
// nested under the closest previous heading of a lower level; the plain text
// of every other block is appended to the innermost open section.
func FromMarkdown(title, md string) (*DocTree, error) {
	tree := &DocTree{Title: title}

	type stackEntry struct {
		node  *DocNode
		level int
	}

	// Root is level 0: all h1+ nest under it.
	root := &DocNode{Title: title}
	stack := []stackEntry{{node: root, level: 0}}

	for i, b := range block.Parse(md) {
		text, err := plainText(b)
		if err != nil {
			return nil, fmt.Errorf("block %d (%s): %w", i, b.Kind, err)
		}

		if b.Kind == block.Heading {
			level := block.HeadingLevel(b.Text)
			newNode := &DocNode{Title: text, Anchor: slug.Make(text)}

			// Pop stack until we find a parent with lower level.
			for len(stack) > 1 && stack[len(stack)-1].level >= level {
				stack = stack[:len(stack)-1]
			}
			parent := stack[len(stack)-1].node
			parent.Children = append(parent.Children, newNode)
			stack = append(stack, stackEntry{node: newNode, level: level})
			continue
		}

		if text == "" {
			continue
		}
		top := stack[len(stack)-1].node
		if top.Text != "" {
			top.Text += "\n\n" + text
		} else {
			top.Text = text
		}
	}

	tree.Children = root.Children
	// Text before the first heading becomes a leading untitled section.
	if root.Text != "" {
		tree.Children = append([]*DocNode{{Text: root.Text}}, tree.Children...)
	}
	return tree, nil
}

// plainText returns the visible text of a block. Code is taken verbatim and
// list items are joined by newlines.
func plainText(b block.Block) (string, error) {
	content := block.Content(b)
	if b.Kind == block.Code {
		return content[0], nil
	}
	parts := make([]string, 0, len(content))
	for _, c := range content {
		frags, err := inline.Tokenize(c)
		if err != nil {
			return "", err
		}
		if t := strings.TrimSpace(textnode.PlainText(frags)); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n"), nil
}

// Flatten returns all section text in document order, one section per line.
func (t *DocTree) Flatten() string {
	var sb strings.Builder
	var walk func(nodes []*DocNode)
	walk = func(nodes []*DocNode) {
		for _, n := range nodes {
			if n.Text != "" {
				if sb.Len() > 0 {
					sb.WriteString("\n")
				}
				sb.WriteString(n.Text)
			}
			walk(n.Children)
		}
	}
	walk(t.Children)
	return sb.String()
}
