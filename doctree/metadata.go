package doctree

import (
	"reflect"

	"gopkg.in/yaml.v3"
)

// Metadata is the document's YAML front matter.
type Metadata struct {
	Value     any  `json:"value,omitempty"`     // decoded YAML document, typically a mapping
	Malformed bool `json:"malformed,omitempty"` // true when the front matter failed to decode
	Span      Span `json:"span,omitzero"`       // delimiters included, zero if constructed
}

// DecodeMetadata decodes front matter content (the text between the
// delimiter lines). A decode failure is not an error: the metadata is
// marked malformed, which makes it compare unequal to everything and
// forces a prefix rewrite downstream.
func DecodeMetadata(content string, span Span) *Metadata {
	m := &Metadata{Span: span}
	if err := yaml.Unmarshal([]byte(content), &m.Value); err != nil {
		m.Value = nil
		m.Malformed = true
	}
	return m
}

// EqualMeta reports structural equality of two metadata values, ignoring
// spans. Malformed metadata never equals anything, itself included.
func EqualMeta(a, b *Metadata) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Malformed || b.Malformed {
		return false
	}
	return reflect.DeepEqual(a.Value, b.Value)
}
