package writer

import (
	"strings"
	"testing"

	"github.com/dgallion1/mdsplice/doctree"
	"github.com/dgallion1/mdsplice/parser"
)

func textInline(s string) *doctree.Inline {
	return &doctree.Inline{Kind: doctree.Text, Text: s}
}

func para(s string) *doctree.Block {
	return &doctree.Block{Kind: doctree.Paragraph, Inlines: []*doctree.Inline{textInline(s)}}
}

// mustRender fails the test on render errors.
func mustRender(t *testing.T, b *doctree.Block) string {
	t.Helper()
	s, err := RenderBlock(b)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return s
}

// checkRoundTrip renders the block and parses the result back, expecting
// the same structure.
func checkRoundTrip(t *testing.T, b *doctree.Block) string {
	t.Helper()
	s := mustRender(t, b)
	doc := parser.Parse(s)
	if len(doc.Blocks) != 1 {
		t.Fatalf("rendered %q parses to %d blocks, want 1", s, len(doc.Blocks))
	}
	if !doctree.EqualBlock(doc.Blocks[0], b) {
		t.Errorf("round trip changed block:\nrendered: %q\ngot:  %+v\nwant: %+v", s, doc.Blocks[0], b)
	}
	return s
}

func TestRenderHeading(t *testing.T) {
	b := &doctree.Block{Kind: doctree.Heading, Level: 2, Inlines: []*doctree.Inline{textInline("Section")}}
	if got := checkRoundTrip(t, b); got != "## Section\n" {
		t.Errorf("got %q", got)
	}
}

func TestRenderParagraphEscapes(t *testing.T) {
	checkRoundTrip(t, para("5 * 3 = 15 [sic] <here>"))
}

func TestRenderCodeBlock(t *testing.T) {
	b := &doctree.Block{Kind: doctree.CodeBlock, Info: "go", Text: "x := 1\n"}
	if got := checkRoundTrip(t, b); got != "```go\nx := 1\n```\n" {
		t.Errorf("got %q", got)
	}
}

func TestRenderCodeBlockContainingFence(t *testing.T) {
	b := &doctree.Block{Kind: doctree.CodeBlock, Text: "a ``` b\n"}
	got := checkRoundTrip(t, b)
	if !strings.HasPrefix(got, "````\n") {
		t.Errorf("fence must outrun content backticks, got %q", got)
	}
}

func TestRenderThematicBreak(t *testing.T) {
	b := &doctree.Block{Kind: doctree.ThematicBreak}
	if got := checkRoundTrip(t, b); got != "***\n" {
		t.Errorf("got %q", got)
	}
}

func TestRenderTightList(t *testing.T) {
	b := &doctree.Block{
		Kind: doctree.BulletList, Tight: true, Marker: '-',
		Items: [][]*doctree.Block{{para("one")}, {para("two")}},
	}
	if got := checkRoundTrip(t, b); got != "- one\n- two\n" {
		t.Errorf("got %q", got)
	}
}

func TestRenderLooseList(t *testing.T) {
	b := &doctree.Block{
		Kind: doctree.BulletList, Marker: '-',
		Items: [][]*doctree.Block{{para("one")}, {para("two")}},
	}
	if got := checkRoundTrip(t, b); got != "- one\n\n- two\n" {
		t.Errorf("got %q", got)
	}
}

func TestRenderOrderedList(t *testing.T) {
	b := &doctree.Block{
		Kind: doctree.OrderedList, Tight: true, Marker: '.', Start: 3,
		Items: [][]*doctree.Block{{para("three")}, {para("four")}},
	}
	if got := checkRoundTrip(t, b); got != "3. three\n4. four\n" {
		t.Errorf("got %q", got)
	}
}

func TestRenderNestedListItem(t *testing.T) {
	b := &doctree.Block{
		Kind: doctree.BulletList, Marker: '-',
		Items: [][]*doctree.Block{{para("first"), para("continuation")}},
	}
	got := checkRoundTrip(t, b)
	if !strings.Contains(got, "\n\n  continuation\n") {
		t.Errorf("continuation must be indented under the marker, got %q", got)
	}
}

func TestRenderBlockQuote(t *testing.T) {
	b := &doctree.Block{Kind: doctree.BlockQuote, Blocks: []*doctree.Block{para("first"), para("second")}}
	if got := checkRoundTrip(t, b); got != "> first\n>\n> second\n" {
		t.Errorf("got %q", got)
	}
}

func TestRenderTable(t *testing.T) {
	b := &doctree.Block{Kind: doctree.Table, Table: &doctree.TableData{
		Alignments: []doctree.Alignment{doctree.AlignNone, doctree.AlignRight},
		Header:     []doctree.TableCell{{Inlines: []*doctree.Inline{textInline("a")}}, {Inlines: []*doctree.Inline{textInline("b")}}},
		Rows: [][]doctree.TableCell{
			{{Inlines: []*doctree.Inline{textInline("c")}}, {Inlines: []*doctree.Inline{textInline("d")}}},
		},
	}}
	if got := checkRoundTrip(t, b); got != "| a | b |\n| --- | ---: |\n| c | d |\n" {
		t.Errorf("got %q", got)
	}
}

func TestRenderDefinitionList(t *testing.T) {
	b := &doctree.Block{Kind: doctree.DefinitionList, Definitions: []doctree.Definition{
		{Term: []*doctree.Inline{textInline("Term")}, Descriptions: [][]*doctree.Block{{para("Definition.")}}},
	}}
	checkRoundTrip(t, b)
}

func TestRenderDiv(t *testing.T) {
	b := &doctree.Block{
		Kind:   doctree.Div,
		Attr:   doctree.Attr{Classes: []string{"note"}},
		Blocks: []*doctree.Block{para("inside")},
	}
	if got := mustRender(t, b); got != "::: {.note}\ninside\n:::\n" {
		t.Errorf("got %q", got)
	}
}

func TestRenderFootnoteDef(t *testing.T) {
	b := &doctree.Block{Kind: doctree.FootnoteDef, Label: "1", Blocks: []*doctree.Block{para("note text")}}
	if got := mustRender(t, b); got != "[^1]: note text\n" {
		t.Errorf("got %q", got)
	}
}

func TestRenderInlineForms(t *testing.T) {
	ins := []*doctree.Inline{
		textInline("a "),
		{Kind: doctree.Emph, Inlines: []*doctree.Inline{textInline("em")}},
		textInline(" "),
		{Kind: doctree.Strong, Inlines: []*doctree.Inline{textInline("st")}},
		textInline(" "),
		{Kind: doctree.Strikeout, Inlines: []*doctree.Inline{textInline("del")}},
	}
	got, err := RenderInlines(ins)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "a *em* **st** ~~del~~" {
		t.Errorf("got %q", got)
	}
}

func TestRenderLinkRoundTrip(t *testing.T) {
	b := &doctree.Block{Kind: doctree.Paragraph, Inlines: []*doctree.Inline{
		{Kind: doctree.Link, Dest: "https://example.com", Title: "a title", Inlines: []*doctree.Inline{textInline("text")}},
	}}
	if got := checkRoundTrip(t, b); got != `[text](https://example.com "a title")`+"\n" {
		t.Errorf("got %q", got)
	}
}

func TestRenderCodeSpanWithBacktick(t *testing.T) {
	b := &doctree.Block{Kind: doctree.Paragraph, Inlines: []*doctree.Inline{
		{Kind: doctree.Code, Text: "x`y"},
	}}
	checkRoundTrip(t, b)
}

func TestRenderHardBreak(t *testing.T) {
	b := &doctree.Block{Kind: doctree.Paragraph, Inlines: []*doctree.Inline{
		textInline("a"), {Kind: doctree.LineBreak}, textInline("b"),
	}}
	if got := checkRoundTrip(t, b); got != "a\\\nb\n" {
		t.Errorf("got %q", got)
	}
}

func TestRenderMetadata(t *testing.T) {
	got, err := RenderMetadata(&doctree.Metadata{Value: map[string]any{"title": "New"}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "---\ntitle: New\n---\n" {
		t.Errorf("got %q", got)
	}

	got, err = RenderMetadata(nil)
	if err != nil || got != "" {
		t.Errorf("nil metadata: got %q, %v", got, err)
	}
}

func TestRenderUnknownKindFails(t *testing.T) {
	if _, err := RenderBlock(&doctree.Block{Kind: doctree.BlockKind(99)}); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}
