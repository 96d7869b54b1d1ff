// Package parser turns markdown source into a doctree.Document using
// goldmark. Top-level blocks carry byte spans covering their full source
// lines, so that the writer can splice unchanged blocks back verbatim.
package parser

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/mdsplice/doctree"
)

var markdown = goldmark.New(goldmark.WithExtensions(
	extension.Table,
	extension.DefinitionList,
	extension.Strikethrough,
))

// Parse converts markdown source into a document tree. Parsing is total:
// malformed front matter is flagged on the metadata rather than reported,
// and unrecognized constructs degrade to raw blocks.
func Parse(src string) *doctree.Document {
	meta, bodyOffset := splitFrontMatter(src)
	body := src[bodyOffset:]

	root := markdown.Parser().Parse(text.NewReader([]byte(body)))
	c := &converter{
		src:        []byte(body),
		offset:     bodyOffset,
		lineStarts: lineStarts(body),
	}

	doc := &doctree.Document{Meta: meta}
	cursor := 0
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		b := c.block(n)
		if b == nil {
			continue
		}
		span := c.topSpan(n, cursor)
		cursor = span.End
		span.Start += bodyOffset
		span.End += bodyOffset
		b.Span = span
		doc.Blocks = append(doc.Blocks, b)
	}

	// A whitespace-only tail belongs to the last block, so that kept
	// blocks reproduce the document end byte for byte.
	if len(doc.Blocks) > 0 && strings.TrimSpace(body[cursor:]) == "" {
		doc.Blocks[len(doc.Blocks)-1].Span.End = len(src)
	}
	return doc
}

// splitFrontMatter detects a leading "---" YAML block closed by "---" or
// "...". It returns the decoded metadata and the offset where the body
// starts, or (nil, 0) when the document has no front matter.
func splitFrontMatter(src string) (*doctree.Metadata, int) {
	if !strings.HasPrefix(src, "---\n") {
		return nil, 0
	}
	pos := 4
	for pos < len(src) {
		lineEnd := strings.IndexByte(src[pos:], '\n')
		var next int
		var line string
		if lineEnd < 0 {
			line = src[pos:]
			next = len(src)
		} else {
			line = src[pos : pos+lineEnd]
			next = pos + lineEnd + 1
		}
		trimmed := strings.TrimRight(line, " \t")
		if trimmed == "---" || trimmed == "..." {
			content := src[4:pos]
			return doctree.DecodeMetadata(content, doctree.Span{Start: 0, End: next}), next
		}
		pos = next
	}
	// No closing delimiter: the opening "---" is a thematic break.
	return nil, 0
}

type converter struct {
	src        []byte
	offset     int
	lineStarts []int
}

func lineStarts(body string) []int {
	starts := []int{0}
	for i := 0; i < len(body); i++ {
		if body[i] == '\n' && i+1 < len(body) {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func (c *converter) lineIndex(off int) int {
	lo, hi := 0, len(c.lineStarts)
	for lo < hi {
		mid := (lo + hi) / 2
		if c.lineStarts[mid] <= off {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo - 1
}

func (c *converter) lineEnd(li int) int {
	if li+1 < len(c.lineStarts) {
		return c.lineStarts[li+1]
	}
	return len(c.src)
}

func (c *converter) lineText(li int) string {
	return string(c.src[c.lineStarts[li]:c.lineEnd(li)])
}

// topSpan computes the byte span of a top-level node: from the first
// non-blank line at or after the cursor through the last line the node's
// content touches, line terminators included.
func (c *converter) topSpan(n ast.Node, cursor int) doctree.Span {
	li := c.lineIndex(cursor)
	if cursor > c.lineStarts[li] {
		li++
	}
	for li < len(c.lineStarts) && strings.TrimSpace(c.lineText(li)) == "" {
		li++
	}
	if li >= len(c.lineStarts) {
		return doctree.Span{Start: cursor, End: cursor}
	}
	start := c.lineStarts[li]
	end := c.nodeEnd(n, start)

	// Setext headings carry their underline on the line after the text.
	if h, ok := n.(*ast.Heading); ok && h.Lines().Len() > 0 {
		first := strings.TrimLeft(c.lineText(li), " ")
		if !strings.HasPrefix(first, "#") {
			ui := c.lineIndex(end)
			if end > c.lineStarts[ui] {
				ui++
			}
			if ui < len(c.lineStarts) && isSetextUnderline(c.lineText(ui)) {
				end = c.lineEnd(ui)
			}
		}
	}
	return doctree.Span{Start: start, End: end}
}

func isSetextUnderline(line string) bool {
	s := strings.TrimRight(strings.TrimLeft(line, " "), " \t\n")
	if s == "" {
		return false
	}
	ch := s[0]
	if ch != '=' && ch != '-' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] != ch {
			return false
		}
	}
	return true
}

// nodeEnd finds the end of the last line covered by the node's content,
// including closing fences and HTML closure lines that goldmark keeps out
// of Lines().
func (c *converter) nodeEnd(n ast.Node, start int) int {
	maxStop := start
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		// Tables and other transformer-built blocks may carry no Lines;
		// their inline text segments still point into the source.
		if t, ok := n.(*ast.Text); ok {
			if s := t.Segment.Stop; s > maxStop {
				maxStop = s
			}
		}
		if n.Type() == ast.TypeBlock {
			if lines := n.Lines(); lines != nil {
				for i := 0; i < lines.Len(); i++ {
					if s := lines.At(i).Stop; s > maxStop {
						maxStop = s
					}
				}
			}
			switch t := n.(type) {
			case *ast.FencedCodeBlock:
				next := c.stopLine(maxStop, start) + 1
				if next < len(c.lineStarts) && isClosingFence(c.lineText(next)) {
					if e := c.lineEnd(next); e > maxStop {
						maxStop = e
					}
				}
			case *ast.HTMLBlock:
				if t.HasClosure() {
					if s := t.ClosureLine.Stop; s > maxStop {
						maxStop = s
					}
				}
			}
		}
		for ch := n.FirstChild(); ch != nil; ch = ch.NextSibling() {
			walk(ch)
		}
	}
	walk(n)
	return c.lineEnd(c.stopLine(maxStop, start))
}

// stopLine maps an exclusive content offset back to the line holding the
// content. Segment stops usually sit on the next line start because they
// include the terminator.
func (c *converter) stopLine(maxStop, start int) int {
	li := c.lineIndex(maxStop)
	if maxStop > start && maxStop == c.lineStarts[li] && li > 0 {
		li--
	}
	return li
}

// isClosingFence matches a line that closes a fenced code block, allowing
// blockquote markers and indentation before the fence run.
func isClosingFence(line string) bool {
	s := strings.TrimLeft(line, " \t>")
	s = strings.TrimRight(s, " \t\n")
	if len(s) < 3 {
		return false
	}
	ch := s[0]
	if ch != '`' && ch != '~' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] != ch {
			return false
		}
	}
	return true
}

func (c *converter) block(n ast.Node) *doctree.Block {
	switch t := n.(type) {
	case *ast.Heading:
		return &doctree.Block{Kind: doctree.Heading, Level: t.Level, Inlines: c.inlineChildren(n)}
	case *ast.Paragraph:
		return &doctree.Block{Kind: doctree.Paragraph, Inlines: c.inlineChildren(n)}
	case *ast.TextBlock:
		// Tight list items hold their text in a TextBlock; the model
		// does not distinguish it from a paragraph.
		return &doctree.Block{Kind: doctree.Paragraph, Inlines: c.inlineChildren(n)}
	case *ast.CodeBlock:
		return &doctree.Block{Kind: doctree.CodeBlock, Text: c.linesValue(n)}
	case *ast.FencedCodeBlock:
		info := ""
		if t.Info != nil {
			info = string(t.Info.Segment.Value(c.src))
		}
		return &doctree.Block{Kind: doctree.CodeBlock, Text: c.linesValue(n), Info: info}
	case *ast.ThematicBreak:
		return &doctree.Block{Kind: doctree.ThematicBreak}
	case *ast.HTMLBlock:
		txt := c.linesValue(n)
		if t.HasClosure() {
			txt += string(t.ClosureLine.Value(c.src))
		}
		return &doctree.Block{Kind: doctree.RawBlock, Format: "html", Text: txt}
	case *ast.Blockquote:
		return &doctree.Block{Kind: doctree.BlockQuote, Blocks: c.blockChildren(n)}
	case *ast.List:
		return c.list(t)
	case *east.Table:
		return c.table(t)
	case *east.DefinitionList:
		return c.definitionList(t)
	default:
		if n.Type() != ast.TypeBlock {
			return nil
		}
		// Unrecognized blocks degrade to raw text so nothing is lost.
		return &doctree.Block{Kind: doctree.RawBlock, Text: c.linesValue(n)}
	}
}

func (c *converter) blockChildren(n ast.Node) []*doctree.Block {
	var out []*doctree.Block
	for ch := n.FirstChild(); ch != nil; ch = ch.NextSibling() {
		if b := c.block(ch); b != nil {
			out = append(out, b)
		}
	}
	return out
}

func (c *converter) list(l *ast.List) *doctree.Block {
	b := &doctree.Block{Kind: doctree.BulletList, Tight: l.IsTight, Marker: l.Marker}
	if l.IsOrdered() {
		b.Kind = doctree.OrderedList
		b.Start = l.Start
	}
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		b.Items = append(b.Items, c.blockChildren(item))
	}
	return b
}

func (c *converter) table(t *east.Table) *doctree.Block {
	data := &doctree.TableData{}
	for _, a := range t.Alignments {
		data.Alignments = append(data.Alignments, alignOf(a))
	}
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		cells := c.rowCells(row)
		if _, ok := row.(*east.TableHeader); ok {
			data.Header = cells
		} else {
			data.Rows = append(data.Rows, cells)
		}
	}
	return &doctree.Block{Kind: doctree.Table, Table: data}
}

func (c *converter) rowCells(row ast.Node) []doctree.TableCell {
	var cells []doctree.TableCell
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		cells = append(cells, doctree.TableCell{Inlines: c.inlineChildren(cell)})
	}
	return cells
}

func alignOf(a east.Alignment) doctree.Alignment {
	switch a {
	case east.AlignLeft:
		return doctree.AlignLeft
	case east.AlignRight:
		return doctree.AlignRight
	case east.AlignCenter:
		return doctree.AlignCenter
	}
	return doctree.AlignNone
}

func (c *converter) definitionList(dl *east.DefinitionList) *doctree.Block {
	b := &doctree.Block{Kind: doctree.DefinitionList}
	for ch := dl.FirstChild(); ch != nil; ch = ch.NextSibling() {
		switch ch.(type) {
		case *east.DefinitionTerm:
			b.Definitions = append(b.Definitions, doctree.Definition{Term: c.inlineChildren(ch)})
		case *east.DefinitionDescription:
			if len(b.Definitions) == 0 {
				b.Definitions = append(b.Definitions, doctree.Definition{})
			}
			d := &b.Definitions[len(b.Definitions)-1]
			d.Descriptions = append(d.Descriptions, c.blockChildren(ch))
		}
	}
	return b
}

func (c *converter) linesValue(n ast.Node) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		sb.Write(line.Value(c.src))
	}
	return sb.String()
}

func (c *converter) inlineChildren(n ast.Node) []*doctree.Inline {
	var out []*doctree.Inline
	for ch := n.FirstChild(); ch != nil; ch = ch.NextSibling() {
		out = append(out, c.inline(ch)...)
	}
	return coalesceText(out)
}

func (c *converter) inline(n ast.Node) []*doctree.Inline {
	switch t := n.(type) {
	case *ast.Text:
		var out []*doctree.Inline
		if s := unescapeText(string(t.Segment.Value(c.src))); s != "" {
			out = append(out, &doctree.Inline{Kind: doctree.Text, Text: s})
		}
		if t.HardLineBreak() {
			out = append(out, &doctree.Inline{Kind: doctree.LineBreak})
		} else if t.SoftLineBreak() {
			out = append(out, &doctree.Inline{Kind: doctree.SoftBreak})
		}
		return out
	case *ast.String:
		return []*doctree.Inline{{Kind: doctree.Text, Text: string(t.Value)}}
	case *ast.CodeSpan:
		var sb strings.Builder
		for ch := n.FirstChild(); ch != nil; ch = ch.NextSibling() {
			if txt, ok := ch.(*ast.Text); ok {
				sb.Write(txt.Segment.Value(c.src))
			}
		}
		// Line endings inside a code span read as spaces.
		code := strings.ReplaceAll(sb.String(), "\n", " ")
		return []*doctree.Inline{{Kind: doctree.Code, Text: code}}
	case *ast.Emphasis:
		kind := doctree.Emph
		if t.Level >= 2 {
			kind = doctree.Strong
		}
		return []*doctree.Inline{{Kind: kind, Inlines: c.inlineChildren(n)}}
	case *east.Strikethrough:
		return []*doctree.Inline{{Kind: doctree.Strikeout, Inlines: c.inlineChildren(n)}}
	case *ast.Link:
		return []*doctree.Inline{{
			Kind:    doctree.Link,
			Dest:    string(t.Destination),
			Title:   string(t.Title),
			Inlines: c.inlineChildren(n),
		}}
	case *ast.Image:
		return []*doctree.Inline{{
			Kind:    doctree.Image,
			Dest:    string(t.Destination),
			Title:   string(t.Title),
			Inlines: c.inlineChildren(n),
		}}
	case *ast.AutoLink:
		url := string(t.URL(c.src))
		label := string(t.Label(c.src))
		dest := url
		if t.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(url, "mailto:") {
			dest = "mailto:" + url
		}
		return []*doctree.Inline{{
			Kind:    doctree.Link,
			Dest:    dest,
			Inlines: []*doctree.Inline{{Kind: doctree.Text, Text: label}},
		}}
	case *ast.RawHTML:
		var sb strings.Builder
		for i := 0; i < t.Segments.Len(); i++ {
			seg := t.Segments.At(i)
			sb.Write(seg.Value(c.src))
		}
		return []*doctree.Inline{{Kind: doctree.RawInline, Text: sb.String()}}
	default:
		// Flatten unknown wrappers into their children.
		var out []*doctree.Inline
		for ch := n.FirstChild(); ch != nil; ch = ch.NextSibling() {
			out = append(out, c.inline(ch)...)
		}
		return out
	}
}

// unescapeText resolves backslash escapes: a backslash before ASCII
// punctuation yields the punctuation alone, any other backslash stays
// literal. The tree holds plain text; the writer re-escapes on render.
func unescapeText(s string) string {
	if !strings.Contains(s, "\\") {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && isEscapablePunct(s[i+1]) {
			i++
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

func isEscapablePunct(b byte) bool {
	switch {
	case b >= '!' && b <= '/', b >= ':' && b <= '@', b >= '[' && b <= '`', b >= '{' && b <= '~':
		return true
	}
	return false
}

// coalesceText merges adjacent text inlines. goldmark splits text on
// escape sequences and entity boundaries; equality on the tree should not
// depend on that segmentation.
func coalesceText(ins []*doctree.Inline) []*doctree.Inline {
	var out []*doctree.Inline
	for _, in := range ins {
		if in.Kind == doctree.Text && len(out) > 0 && out[len(out)-1].Kind == doctree.Text {
			out[len(out)-1].Text += in.Text
			continue
		}
		out = append(out, in)
	}
	return out
}
