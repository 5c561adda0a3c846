// Package textnode defines the typed inline fragments produced by the inline
// tokenizer and consumed by the tree builder.
package textnode

import "fmt"

// Kind identifies how a fragment is rendered.
type Kind int

const (
	Plain Kind = iota
	Bold
	Italic
	Code
	Link
	Image
)

var kindNames = [...]string{
	Plain:  "plain",
	Bold:   "bold",
	Italic: "italic",
	Code:   "code",
	Link:   "link",
	Image:  "image",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Fragment is a typed, non-recursive unit of inline text.
//
// Target is the destination URL for Link and Image fragments and is empty for
// every other kind. An empty target and an absent one are the same value.
type Fragment struct {
	Kind    Kind
	Content string
	Target  string
}

func NewPlain(s string) Fragment  { return Fragment{Kind: Plain, Content: s} }
func NewBold(s string) Fragment   { return Fragment{Kind: Bold, Content: s} }
func NewItalic(s string) Fragment { return Fragment{Kind: Italic, Content: s} }
func NewCode(s string) Fragment   { return Fragment{Kind: Code, Content: s} }

// NewLink returns a Link fragment with the given anchor text and URL.
func NewLink(text, url string) Fragment {
	return Fragment{Kind: Link, Content: text, Target: url}
}

// NewImage returns an Image fragment. Alt may be empty.
func NewImage(alt, url string) Fragment {
	return Fragment{Kind: Image, Content: alt, Target: url}
}

// New builds a fragment of the given kind. The target is kept only for kinds
// that carry one.
func New(kind Kind, content, target string) Fragment {
	f := Fragment{Kind: kind, Content: content}
	if kind.HasTarget() {
		f.Target = target
	}
	return f
}

// HasTarget reports whether fragments of this kind carry a URL.
func (k Kind) HasTarget() bool {
	return k == Link || k == Image
}

// Equal reports structural equality.
func (f Fragment) Equal(o Fragment) bool {
	return f == o
}

func (f Fragment) String() string {
	if f.Kind.HasTarget() {
		return fmt.Sprintf("Fragment(%q, %s, %q)", f.Content, f.Kind, f.Target)
	}
	return fmt.Sprintf("Fragment(%q, %s)", f.Content, f.Kind)
}

// PlainText concatenates the content of every fragment, dropping markup.
func PlainText(frags []Fragment) string {
	n := 0
	for _, f := range frags {
		n += len(f.Content)
	}
	buf := make([]byte, 0, n)
	for _, f := range frags {
		buf = append(buf, f.Content...)
	}
	return string(buf)
}
