// Package slug makes URL and key safe page names.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLen caps the byte length of a slug.
const MaxLen = 50

// Fallback is returned when nothing usable is left of the input.
const Fallback = "page"

var (
	invalid = regexp.MustCompile(`[^a-z0-9-]`)
	dashes  = regexp.MustCompile(`-+`)
)

// Make folds accents, lowercases and replaces everything outside [a-z0-9-]
// with dashes. "Café Menü" becomes "cafe-menu".
func Make(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err == nil {
		s = folded
	}
	s = strings.ToLower(strings.TrimSpace(s))
	s = invalid.ReplaceAllString(s, "-")
	s = dashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > MaxLen {
		s = strings.TrimRight(s[:MaxLen], "-")
	}
	if s == "" {
		return Fallback
	}
	return s
}
