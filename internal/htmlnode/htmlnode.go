// Package htmlnode is a minimal HTML element tree with a string serializer.
//
// A tree is made of two node kinds: Leaf holds raw content with an optional
// wrapping tag, Parent holds an ordered list of child nodes. Serialization is
// strict: a leaf without a value or a parent without a tag or children is a
// structural error rather than malformed output.
package htmlnode

import (
	"errors"
	"fmt"
	"strings"
)

// Structural errors returned by Render.
var (
	ErrEmptyLeafValue      = errors.New("leaf node must have a value")
	ErrEmptyParentChildren = errors.New("parent node must have children")
	ErrMissingParentTag    = errors.New("parent node must have a tag")
)

// voidElements never have content or a closing tag.
var voidElements = map[string]bool{
	"img": true,
	"br":  true,
	"hr":  true,
}

// Node is either a *Leaf or a *Parent.
type Node interface {
	Render() (string, error)
	node()
}

// Leaf is a node with no children. A leaf without a tag renders as its raw value.
type Leaf struct {
	Tag   string
	Value string
	Attrs Attrs
}

// NewLeaf returns a leaf with the given tag, value and attributes.
func NewLeaf(tag, value string, attrs ...Attr) *Leaf {
	return &Leaf{Tag: tag, Value: value, Attrs: NewAttrs(attrs...)}
}

// NewText returns an untagged leaf.
func NewText(value string) *Leaf {
	return &Leaf{Value: value}
}

func (*Leaf) node() {}

// Render emits <tag attrs>value</tag>. Void elements such as img emit only the
// opening tag and may have an empty value.
func (l *Leaf) Render() (string, error) {
	if voidElements[l.Tag] {
		return "<" + l.Tag + l.Attrs.String() + ">", nil
	}
	if l.Value == "" {
		return "", ErrEmptyLeafValue
	}
	if l.Tag == "" {
		return l.Value, nil
	}
	return "<" + l.Tag + l.Attrs.String() + ">" + l.Value + "</" + l.Tag + ">", nil
}

func (l *Leaf) String() string {
	return fmt.Sprintf("Leaf(%s, %q, %s)", l.Tag, l.Value, l.Attrs.debug())
}

// Parent is an element owning an ordered list of children.
type Parent struct {
	Tag      string
	Children []Node
	Attrs    Attrs
}

// NewParent returns a parent with the given tag and children.
func NewParent(tag string, children ...Node) *Parent {
	return &Parent{Tag: tag, Children: children}
}

func (*Parent) node() {}

// Append adds children in order.
func (p *Parent) Append(children ...Node) {
	p.Children = append(p.Children, children...)
}

func (p *Parent) Render() (string, error) {
	if p.Tag == "" {
		return "", ErrMissingParentTag
	}
	if len(p.Children) == 0 {
		return "", fmt.Errorf("<%s>: %w", p.Tag, ErrEmptyParentChildren)
	}
	var sb strings.Builder
	sb.WriteString("<" + p.Tag + p.Attrs.String() + ">")
	for _, c := range p.Children {
		s, err := c.Render()
		if err != nil {
			return "", fmt.Errorf("<%s>: %w", p.Tag, err)
		}
		sb.WriteString(s)
	}
	sb.WriteString("</" + p.Tag + ">")
	return sb.String(), nil
}

func (p *Parent) String() string {
	return fmt.Sprintf("Parent(%s, %d children, %s)", p.Tag, len(p.Children), p.Attrs.debug())
}

// Walk calls fn for n and every descendant in document order.
func Walk(n Node, fn func(Node)) {
	fn(n)
	if p, ok := n.(*Parent); ok {
		for _, c := range p.Children {
			Walk(c, fn)
		}
	}
}
