package source

import (
	"strings"
	"unicode"

	"github.com/dgallion1/mdsite/internal/block"
)

const markupChars = "*_`[]"

// literal makes imported prose safe for the inline tokenizer. Words that
// contain markup characters are wrapped in code spans so they render
// verbatim; whitespace between words is kept as is.
func literal(s string) string {
	if !strings.ContainsAny(s, markupChars) {
		return s
	}
	var sb strings.Builder
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		sb.WriteString(literalWord(s[start:end]))
		start = -1
	}
	for i, r := range s {
		if unicode.IsSpace(r) {
			flush(i)
			sb.WriteRune(r)
			continue
		}
		if start < 0 {
			start = i
		}
	}
	flush(len(s))
	return sb.String()
}

func literalWord(w string) string {
	if !strings.ContainsAny(w, markupChars) {
		return w
	}
	w = strings.ReplaceAll(w, "`", "")
	if w == "" {
		return ""
	}
	return "`" + w + "`"
}

// blockSafe keeps an imported paragraph a paragraph. When its text would read
// as a heading, list or quote, the leading marker is wrapped in a code span.
// s must already have passed through literal.
func blockSafe(s string) string {
	body := strings.TrimLeftFunc(s, unicode.IsSpace)
	if block.Classify(body) == block.Paragraph {
		return s
	}
	i := strings.IndexFunc(body, unicode.IsSpace)
	if i < 0 {
		i = len(body)
	}
	return "`" + body[:i] + "`" + body[i:]
}

// stripMarkup replaces markup characters with spaces, for text that already
// sits inside a span of its own.
func stripMarkup(s string) string {
	return collapse(strings.Map(func(r rune) rune {
		if strings.ContainsRune(markupChars, r) {
			return ' '
		}
		return r
	}, s))
}
