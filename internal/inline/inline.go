// Package inline turns a raw string into a sequence of typed text fragments.
//
// Tokenization runs five rewrite stages in a fixed order: code spans, images,
// links, bold, italic. Each stage only rewrites fragments that are still
// plain, so the content of a recognized span is never scanned again. Nested
// inline styles are not supported.
package inline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgallion1/mdsite/internal/textnode"
)

// Inline delimiters.
const (
	CodeDelimiter   = "`"
	BoldDelimiter   = "**"
	ItalicDelimiter = "_"
)

// ErrUnbalancedDelimiter matches every *UnbalancedDelimiterError.
var ErrUnbalancedDelimiter = errors.New("unbalanced delimiter")

// UnbalancedDelimiterError reports a delimiter with no matching close.
type UnbalancedDelimiterError struct {
	Delimiter string
}

func (e *UnbalancedDelimiterError) Error() string {
	return fmt.Sprintf("unbalanced delimiter %q", e.Delimiter)
}

func (e *UnbalancedDelimiterError) Unwrap() error { return ErrUnbalancedDelimiter }

// Tokenize splits text into fragments. It fails on the first unbalanced
// delimiter and returns no partial result.
func Tokenize(text string) ([]textnode.Fragment, error) {
	if text == "" {
		return []textnode.Fragment{}, nil
	}
	frags := []textnode.Fragment{textnode.NewPlain(text)}

	frags, err := SplitDelimiter(frags, CodeDelimiter, textnode.Code)
	if err != nil {
		return nil, err
	}
	frags = SplitImages(frags)
	frags = SplitLinks(frags)
	if frags, err = SplitDelimiter(frags, BoldDelimiter, textnode.Bold); err != nil {
		return nil, err
	}
	if frags, err = SplitDelimiter(frags, ItalicDelimiter, textnode.Italic); err != nil {
		return nil, err
	}
	return frags, nil
}

// SplitDelimiter splits every plain fragment on delim. Pieces at odd indexes
// become kind, the rest stay plain, and empty pieces are dropped. An even
// number of pieces means an unmatched delimiter.
func SplitDelimiter(frags []textnode.Fragment, delim string, kind textnode.Kind) ([]textnode.Fragment, error) {
	out := make([]textnode.Fragment, 0, len(frags))
	for _, f := range frags {
		if f.Kind != textnode.Plain {
			out = append(out, f)
			continue
		}
		parts := strings.Split(f.Content, delim)
		if len(parts)%2 == 0 {
			return nil, &UnbalancedDelimiterError{Delimiter: delim}
		}
		for i, part := range parts {
			if part == "" {
				continue
			}
			if i%2 == 1 {
				out = append(out, textnode.New(kind, part, ""))
			} else {
				out = append(out, textnode.NewPlain(part))
			}
		}
	}
	return out, nil
}
