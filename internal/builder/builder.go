// Package builder assembles an HTML node tree from a Markdown document.
package builder

import (
	"errors"
	"fmt"

	"github.com/dgallion1/mdsite/internal/block"
	"github.com/dgallion1/mdsite/internal/htmlnode"
	"github.com/dgallion1/mdsite/internal/inline"
	"github.com/dgallion1/mdsite/internal/textnode"
)

// ErrUnsupportedFragmentKind means a fragment kind has no HTML mapping.
var ErrUnsupportedFragmentKind = errors.New("unsupported fragment kind")

// RootTag wraps every document.
const RootTag = "div"

// Build converts doc into a tree rooted at a div with one child per block.
// A tokenizer error aborts the whole document.
//
// Blocks whose inline content produces nothing (for example a paragraph that
// is only "****") are left out so that every parent in the tree has children.
func Build(doc string) (*htmlnode.Parent, error) {
	root := htmlnode.NewParent(RootTag)
	for i, b := range block.Parse(doc) {
		n, err := BlockToNode(b)
		if err != nil {
			return nil, fmt.Errorf("block %d (%s): %w", i, b.Kind, err)
		}
		if n != nil {
			root.Append(n)
		}
	}
	return root, nil
}

// ToHTML builds doc and renders it.
func ToHTML(doc string) (string, error) {
	root, err := Build(doc)
	if err != nil {
		return "", err
	}
	return root.Render()
}

// BlockToNode returns the subtree for one block, or nil when the block has no
// renderable content.
func BlockToNode(b block.Block) (htmlnode.Node, error) {
	content := block.Content(b)
	switch b.Kind {
	case block.Heading:
		return inlineParent(fmt.Sprintf("h%d", block.HeadingLevel(b.Text)), content[0])
	case block.Code:
		return htmlnode.NewParent("pre", htmlnode.NewParent("code", htmlnode.NewText(content[0]))), nil
	case block.Quote:
		return inlineParent("blockquote", content[0])
	case block.UnorderedList:
		return list("ul", content)
	case block.OrderedList:
		return list("ol", content)
	}
	return inlineParent("p", content[0])
}

// FragmentToNode maps a single fragment to its leaf node.
func FragmentToNode(f textnode.Fragment) (htmlnode.Node, error) {
	switch f.Kind {
	case textnode.Plain:
		return htmlnode.NewText(f.Content), nil
	case textnode.Bold:
		return htmlnode.NewLeaf("b", f.Content), nil
	case textnode.Italic:
		return htmlnode.NewLeaf("i", f.Content), nil
	case textnode.Code:
		return htmlnode.NewLeaf("code", f.Content), nil
	case textnode.Link:
		return htmlnode.NewLeaf("a", f.Content, htmlnode.Attr{Key: "href", Value: f.Target}), nil
	case textnode.Image:
		return htmlnode.NewLeaf("img", "",
			htmlnode.Attr{Key: "src", Value: f.Target},
			htmlnode.Attr{Key: "alt", Value: f.Content},
		), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFragmentKind, f.Kind)
}

// TextToNodes tokenizes text and maps every fragment to a node.
func TextToNodes(text string) ([]htmlnode.Node, error) {
	frags, err := inline.Tokenize(text)
	if err != nil {
		return nil, err
	}
	nodes := make([]htmlnode.Node, 0, len(frags))
	for _, f := range frags {
		n, err := FragmentToNode(f)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// inlineParent wraps the inline content of text in tag. It returns nil with
// no error when text has no content.
func inlineParent(tag, text string) (htmlnode.Node, error) {
	children, err := TextToNodes(text)
	if err != nil {
		return nil, err
	}
	if len(children) == 0 {
		return nil, nil
	}
	return htmlnode.NewParent(tag, children...), nil
}

func list(tag string, items []string) (htmlnode.Node, error) {
	l := htmlnode.NewParent(tag)
	for i, item := range items {
		li, err := inlineParent("li", item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		if li != nil {
			l.Append(li)
		}
	}
	if len(l.Children) == 0 {
		return nil, nil
	}
	return l, nil
}
