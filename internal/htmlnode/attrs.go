package htmlnode

import "strings"

// Attr is a single attribute.
type Attr struct {
	Key   string
	Value string
}

// Attrs is an insertion-ordered attribute mapping. The zero value is empty and
// ready to use.
type Attrs struct {
	entries []Attr
}

// NewAttrs builds a mapping from attrs in order. Later duplicates overwrite
// earlier values without moving them.
func NewAttrs(attrs ...Attr) Attrs {
	var a Attrs
	for _, at := range attrs {
		a.Set(at.Key, at.Value)
	}
	return a
}

// Set assigns key. A new key is appended; an existing key keeps its position.
func (a *Attrs) Set(key, value string) {
	for i := range a.entries {
		if a.entries[i].Key == key {
			a.entries[i].Value = value
			return
		}
	}
	a.entries = append(a.entries, Attr{Key: key, Value: value})
}

// Get returns the value for key and whether it is present.
func (a Attrs) Get(key string) (string, bool) {
	for _, e := range a.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// String serializes the mapping as ` key="value"` pairs, or "" when empty.
func (a Attrs) String() string {
	if len(a.entries) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, e := range a.entries {
		sb.WriteString(" ")
		sb.WriteString(e.Key)
		sb.WriteString(`="`)
		sb.WriteString(e.Value)
		sb.WriteString(`"`)
	}
	return sb.String()
}

func (a Attrs) debug() string {
	parts := make([]string, len(a.entries))
	for i, e := range a.entries {
		parts[i] = e.Key + ":" + e.Value
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
