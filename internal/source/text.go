package source

import (
	"bufio"
	"io"
	"strings"
)

// TextImporter treats plain text as paragraphs separated by blank lines.
// Whitespace-only lines count as blank.
type TextImporter struct{}

func (p *TextImporter) Import(r io.Reader, filename string) (*Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, blockSafe(current.String()))
				current.Reset()
			}
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(literal(line))
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, blockSafe(current.String()))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return newDocument(filename, "", paragraphs), nil
}
