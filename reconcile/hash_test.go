package reconcile

import (
	"testing"

	"github.com/dgallion1/mdsplice/doctree"
)

func TestHashIgnoresSpans(t *testing.T) {
	a := para("same content")
	a.Span = doctree.Span{Start: 100, End: 120}
	b := para("same content")

	h := newHasher()
	if h.block(a) != h.block(b) {
		t.Errorf("blocks differing only in span must hash the same")
	}
}

func TestHashDifferentContent(t *testing.T) {
	h := newHasher()
	if h.block(para("one")) == h.block(para("two")) {
		t.Errorf("different text should hash differently")
	}
}

func TestHashKindDistinguishes(t *testing.T) {
	h := newHasher()
	heading := &doctree.Block{Kind: doctree.Heading, Level: 1, Inlines: []*doctree.Inline{{Kind: doctree.Text, Text: "x"}}}
	p := &doctree.Block{Kind: doctree.Paragraph, Level: 1, Inlines: []*doctree.Inline{{Kind: doctree.Text, Text: "x"}}}
	if h.block(heading) == h.block(p) {
		t.Errorf("different kinds should hash differently")
	}
}

func TestHashNestedChildren(t *testing.T) {
	h := newHasher()
	a := div(para("one"), para("two"))
	b := div(para("one"), para("two"))
	c := div(para("one"), para("changed"))
	if h.block(a) != h.block(b) {
		t.Errorf("identical containers should hash the same")
	}
	if h.block(a) == h.block(c) {
		t.Errorf("containers with different children should hash differently")
	}
}

func TestHashMemoized(t *testing.T) {
	h := newHasher()
	b := div(para("one"))
	first := h.block(b)
	if got := h.block(b); got != first {
		t.Errorf("memoized hash changed between calls: %d then %d", first, got)
	}
	if _, ok := h.blocks[b]; !ok {
		t.Errorf("expected block hash to be cached")
	}
}

func TestHashHeadingLevel(t *testing.T) {
	h := newHasher()
	h1 := &doctree.Block{Kind: doctree.Heading, Level: 1, Inlines: []*doctree.Inline{{Kind: doctree.Text, Text: "t"}}}
	h2 := &doctree.Block{Kind: doctree.Heading, Level: 2, Inlines: []*doctree.Inline{{Kind: doctree.Text, Text: "t"}}}
	if h.block(h1) == h.block(h2) {
		t.Errorf("different heading levels should hash differently")
	}
}
