package source

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFImporter extracts page text with the Go library and, when enabled,
// falls back to pdftotext.
type PDFImporter struct {
	FallbackPdftotext bool
}

func (p *PDFImporter) Import(r io.Reader, filename string) (*Document, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "mdsite-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	text, err := extractPDFText(tmpPath)
	if (err != nil || strings.TrimSpace(text) == "") && p.FallbackPdftotext {
		if alt, altErr := extractPdftotext(tmpPath); altErr == nil {
			text, err = alt, nil
		} else if err == nil {
			err = altErr
		}
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	return newDocument(filename, "", pageBlocks(text)), nil
}

// pageBlocks turns form-feed separated page text into a heading per page
// followed by its paragraphs. A single page gets no heading.
func pageBlocks(text string) []string {
	pages := strings.Split(text, "\f")
	var nonEmpty []string
	var numbers []int
	for i, page := range pages {
		if strings.TrimSpace(page) != "" {
			nonEmpty = append(nonEmpty, page)
			numbers = append(numbers, i+1)
		}
	}

	var blocks []string
	for i, page := range nonEmpty {
		if len(nonEmpty) > 1 {
			blocks = append(blocks, headingLine(2, fmt.Sprintf("Page %d", numbers[i])))
		}
		blocks = append(blocks, pageParagraphs(page)...)
	}
	return blocks
}

func pageParagraphs(page string) []string {
	var paras []string
	var cur []string
	flush := func() {
		if len(cur) > 0 {
			paras = append(paras, blockSafe(literal(strings.Join(cur, " "))))
			cur = nil
		}
	}
	for _, line := range strings.Split(page, "\n") {
		line = collapse(line)
		if line == "" {
			flush()
			continue
		}
		cur = append(cur, line)
	}
	flush()
	return paras
}

func extractPDFText(path string) (string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		if i > 1 {
			buf.WriteString("\f")
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		buf.WriteString(text)
	}
	return buf.String(), nil
}

func extractPdftotext(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}
