package inline

import (
	"regexp"
	"strings"

	"github.com/dgallion1/mdsite/internal/textnode"
)

// Match is one image or link found in text.
type Match struct {
	Text string
	URL  string
}

var (
	imageRe = regexp.MustCompile(`!\[([^\[\]]*)\]\(([^()]*)\)`)
	// linkAt is anchored; ExtractLinks tries it at every '[' so it can apply
	// the neighbour checks RE2 has no lookaround for.
	linkAt = regexp.MustCompile(`^\[([^\[\]]*)\]\(([^()]*)\)`)
)

// ExtractImages returns every ![alt](url) in text, left to right.
func ExtractImages(text string) []Match {
	var out []Match
	for _, m := range imageRe.FindAllStringSubmatch(text, -1) {
		out = append(out, Match{Text: m[1], URL: m[2]})
	}
	return out
}

// ExtractLinks returns every [text](url) in text that is not part of image
// syntax: the opening bracket must not follow '!' or precede "![".
func ExtractLinks(text string) []Match {
	var out []Match
	for i := 0; i < len(text); {
		if text[i] != '[' ||
			(i > 0 && text[i-1] == '!') ||
			strings.HasPrefix(text[i+1:], "![") {
			i++
			continue
		}
		m := linkAt.FindStringSubmatchIndex(text[i:])
		if m == nil {
			i++
			continue
		}
		out = append(out, Match{
			Text: text[i+m[2] : i+m[3]],
			URL:  text[i+m[4] : i+m[5]],
		})
		i += m[1]
	}
	return out
}

// SplitImages rewrites image syntax inside plain fragments into Image
// fragments. Alt text may be empty.
func SplitImages(frags []textnode.Fragment) []textnode.Fragment {
	return splitMatches(frags, ExtractImages, func(m Match) string {
		return "![" + m.Text + "](" + m.URL + ")"
	}, func(m Match) (textnode.Fragment, bool) {
		return textnode.NewImage(m.Text, m.URL), true
	})
}

// SplitLinks rewrites link syntax inside plain fragments into Link fragments.
// A link with empty text is removed without a trace.
func SplitLinks(frags []textnode.Fragment) []textnode.Fragment {
	return splitMatches(frags, ExtractLinks, func(m Match) string {
		return "[" + m.Text + "](" + m.URL + ")"
	}, func(m Match) (textnode.Fragment, bool) {
		if m.Text == "" {
			return textnode.Fragment{}, false
		}
		return textnode.NewLink(m.Text, m.URL), true
	})
}

func splitMatches(
	frags []textnode.Fragment,
	extract func(string) []Match,
	source func(Match) string,
	emit func(Match) (textnode.Fragment, bool),
) []textnode.Fragment {
	out := make([]textnode.Fragment, 0, len(frags))
	for _, f := range frags {
		if f.Kind != textnode.Plain {
			out = append(out, f)
			continue
		}
		matches := extract(f.Content)
		if len(matches) == 0 {
			out = append(out, f)
			continue
		}
		rest := f.Content
		for _, m := range matches {
			before, after, found := strings.Cut(rest, source(m))
			if !found {
				continue
			}
			if before != "" {
				out = append(out, textnode.NewPlain(before))
			}
			if frag, ok := emit(m); ok {
				out = append(out, frag)
			}
			rest = after
		}
		if rest != "" {
			out = append(out, textnode.NewPlain(rest))
		}
	}
	return out
}
