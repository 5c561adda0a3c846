// Package block splits a Markdown document into top-level blocks and
// classifies each one.
package block

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind is the syntactic type of a block.
type Kind int

const (
	Paragraph Kind = iota
	Heading
	Code
	Quote
	UnorderedList
	OrderedList
)

var kindNames = [...]string{
	Paragraph:     "paragraph",
	Heading:       "heading",
	Code:          "code",
	Quote:         "quote",
	UnorderedList: "unordered_list",
	OrderedList:   "ordered_list",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// Block is one classified unit of a document.
type Block struct {
	Kind Kind
	Text string
}

const (
	CodeFence     = "```"
	MaxHeading    = 6
	bulletPrefix  = "- "
	quotePrefix   = ">"
	headingMarker = '#'
)

var blankLines = regexp.MustCompile(`\n{2,}`)

// Segment splits doc on blank lines, trims every block and drops the empty
// ones. Order is preserved.
func Segment(doc string) []string {
	var out []string
	for _, b := range blankLines.Split(doc, -1) {
		b = strings.TrimSpace(b)
		if b != "" {
			out = append(out, b)
		}
	}
	return out
}

// Parse segments doc and classifies every block.
func Parse(doc string) []Block {
	raw := Segment(doc)
	blocks := make([]Block, 0, len(raw))
	for _, b := range raw {
		blocks = append(blocks, Block{Kind: Classify(b), Text: b})
	}
	return blocks
}

// Classify returns the kind of a single block. The first matching rule wins
// and anything unmatched is a paragraph.
func Classify(block string) Kind {
	lines := strings.Split(block, "\n")
	switch {
	case HeadingLevel(block) > 0:
		return Heading
	case isCode(lines):
		return Code
	case allHavePrefix(lines, quotePrefix):
		return Quote
	case allHavePrefix(lines, bulletPrefix):
		return UnorderedList
	case isOrdered(lines):
		return OrderedList
	}
	return Paragraph
}

// HeadingLevel returns 1-6 for a heading block and 0 otherwise. A heading is
// 1-6 '#' characters, a space, and some non-space text.
func HeadingLevel(block string) int {
	n := 0
	for n < len(block) && block[n] == headingMarker {
		n++
	}
	if n < 1 || n > MaxHeading || n >= len(block) || block[n] != ' ' {
		return 0
	}
	if strings.TrimSpace(block[n+1:]) == "" {
		return 0
	}
	return n
}

func isCode(lines []string) bool {
	if len(lines) < 3 {
		return false
	}
	return strings.HasPrefix(lines[0], CodeFence) &&
		strings.TrimRight(lines[len(lines)-1], " \t\r") == CodeFence
}

func allHavePrefix(lines []string, prefix string) bool {
	for _, l := range lines {
		if !strings.HasPrefix(l, prefix) {
			return false
		}
	}
	return true
}

// OrderedPrefix returns the marker expected on the nth line (1-based) of an
// ordered list.
func OrderedPrefix(n int) string {
	return strconv.Itoa(n) + ". "
}

func isOrdered(lines []string) bool {
	for i, l := range lines {
		if !strings.HasPrefix(l, OrderedPrefix(i+1)) {
			return false
		}
	}
	return true
}

// Lines splits a block into lines.
func Lines(block string) []string {
	return strings.Split(block, "\n")
}

// Content returns the inline source of b with its block markers removed.
// Lists yield one entry per item, every other kind a single entry:
//
//   - Heading: the text after the '#' run and its space.
//   - Code: the lines between the fences, verbatim.
//   - Quote: every line without its '>' and one following space.
//   - Paragraph: the text with newlines collapsed to spaces.
func Content(b Block) []string {
	switch b.Kind {
	case Heading:
		return []string{b.Text[HeadingLevel(b.Text)+1:]}
	case Code:
		lines := Lines(b.Text)
		return []string{strings.Join(lines[1:len(lines)-1], "\n")}
	case Quote:
		lines := Lines(b.Text)
		for i, l := range lines {
			lines[i] = strings.TrimPrefix(strings.TrimPrefix(l, quotePrefix), " ")
		}
		return []string{strings.Join(lines, "\n")}
	case UnorderedList:
		return stripMarkers(b.Text, func(int) string { return bulletPrefix })
	case OrderedList:
		return stripMarkers(b.Text, OrderedPrefix)
	}
	return []string{strings.ReplaceAll(b.Text, "\n", " ")}
}

func stripMarkers(text string, marker func(n int) string) []string {
	lines := Lines(text)
	for i, l := range lines {
		lines[i] = strings.TrimPrefix(l, marker(i+1))
	}
	return lines
}
