package source

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
)

// DOCXImporter handles .docx files. Heading styles map to Markdown headings,
// list styles to list items, bold and italic runs to inline markup.
type DOCXImporter struct{}

func (p *DOCXImporter) Import(r io.Reader, filename string) (*Document, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "mdsite-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var blocks []string
	var list []string
	flushList := func() {
		if len(list) > 0 {
			blocks = append(blocks, strings.Join(list, "\n"))
			list = nil
		}
	}

	title := ""
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		style := docxStyle(para)
		text := docxParagraphMarkdown(para)
		if text == "" {
			continue
		}

		switch {
		case strings.EqualFold(style, "Title"):
			flushList()
			if title == "" {
				title = stripMarkup(text)
			}
			blocks = append(blocks, headingLine(1, text))
		case docxHeadingLevel(style) > 0:
			flushList()
			blocks = append(blocks, headingLine(docxHeadingLevel(style), text))
		case strings.HasPrefix(strings.ToLower(style), "list"):
			list = append(list, "- "+text)
		default:
			flushList()
			blocks = append(blocks, blockSafe(text))
		}
	}
	flushList()

	return newDocument(filename, title, blocks), nil
}

func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return para.Properties.Style.Val
}

// docxHeadingLevel reads "Heading1" and "heading 1" style names.
func docxHeadingLevel(style string) int {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	if len(s) == len("heading1") && strings.HasPrefix(s, "heading") {
		if d := s[len(s)-1]; d >= '1' && d <= '6' {
			return int(d - '0')
		}
	}
	return 0
}

func docxParagraphMarkdown(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		var text strings.Builder
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				text.WriteString(t.Text)
			}
		}
		buf.WriteString(styleRun(run, text.String()))
	}
	return collapse(buf.String())
}

func styleRun(run *docx.Run, text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	if run.RunProperties == nil {
		return literal(text)
	}
	inner := stripMarkup(text)
	if inner == "" {
		return ""
	}
	lead, trail := edgeSpace(text)
	switch {
	case run.RunProperties.Bold != nil:
		return lead + "**" + inner + "**" + trail
	case run.RunProperties.Italic != nil:
		return lead + "_" + inner + "_" + trail
	}
	return literal(text)
}

func edgeSpace(s string) (lead, trail string) {
	if strings.TrimLeft(s, " ") != s {
		lead = " "
	}
	if strings.TrimRight(s, " ") != s {
		trail = " "
	}
	return lead, trail
}
