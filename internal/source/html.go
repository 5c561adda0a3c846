package source

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// HTMLImporter converts an HTML page to Markdown. Headings, paragraphs,
// lists, block quotes and preformatted text become blocks; strong, em, code,
// links and images inside them become inline markup.
type HTMLImporter struct{}

func (p *HTMLImporter) Import(r io.Reader, filename string) (*Document, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var blocks []string
	add := func(b string) {
		if strings.TrimSpace(b) != "" {
			blocks = append(blocks, b)
		}
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				if t := collapse(inlineMarkdown(n)); t != "" {
					add(headingLine(level, t))
				}
				return
			}
			switch n.Data {
			case "script", "style", "nav", "footer", "header", "head":
				return
			case "p":
				add(blockSafe(collapse(inlineMarkdown(n))))
				return
			case "ul", "ol":
				add(listMarkdown(n))
				return
			case "blockquote":
				add(quoteMarkdown(n))
				return
			case "pre":
				if t := preformatted(textContent(n)); t != "" {
					add("```\n" + t + "\n```")
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findElement(doc, "body"); body != nil {
		walk(body)
	} else {
		walk(doc)
	}

	title := ""
	if t := findElement(doc, "title"); t != nil {
		title = collapse(textContent(t))
	}
	return newDocument(filename, title, blocks), nil
}

// preformatted drops fence markers and blank lines, which would otherwise
// end the code block early.
func preformatted(s string) string {
	s = strings.ReplaceAll(s, "```", "")
	var lines []string
	for _, l := range strings.Split(s, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, strings.TrimRight(l, " \t\r"))
		}
	}
	return strings.Join(lines, "\n")
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func listMarkdown(n *html.Node) string {
	var lines []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "li" {
			continue
		}
		item := collapse(inlineMarkdown(c))
		if item == "" {
			continue
		}
		marker := "- "
		if n.Data == "ol" {
			marker = strconv.Itoa(len(lines)+1) + ". "
		}
		lines = append(lines, marker+item)
	}
	return strings.Join(lines, "\n")
}

func quoteMarkdown(n *html.Node) string {
	var lines []string
	for _, l := range strings.Split(strings.TrimSpace(textContent(n)), "\n") {
		if l = collapse(literal(l)); l != "" {
			lines = append(lines, "> "+l)
		}
	}
	return strings.Join(lines, "\n")
}

// inlineMarkdown renders the inline content of n with Markdown markers.
func inlineMarkdown(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(literal(n.Data))
			return
		case html.ElementNode:
			switch n.Data {
			case "strong", "b":
				if t := stripMarkup(textContent(n)); t != "" {
					sb.WriteString("**" + t + "**")
				}
				return
			case "em", "i":
				if t := stripMarkup(textContent(n)); t != "" {
					sb.WriteString("_" + t + "_")
				}
				return
			case "code":
				if t := strings.ReplaceAll(textContent(n), "`", ""); strings.TrimSpace(t) != "" {
					sb.WriteString("`" + t + "`")
				}
				return
			case "a":
				text := stripMarkup(textContent(n))
				href := stripParens(attr(n, "href"))
				if text == "" || href == "" {
					sb.WriteString(text)
					return
				}
				sb.WriteString("[" + text + "](" + href + ")")
				return
			case "img":
				if src := stripParens(attr(n, "src")); src != "" {
					sb.WriteString("![" + stripMarkup(attr(n, "alt")) + "](" + src + ")")
				}
				return
			case "br":
				sb.WriteString(" ")
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func stripParens(s string) string {
	return strings.NewReplacer("(", "%28", ")", "%29").Replace(strings.TrimSpace(s))
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}
