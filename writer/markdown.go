// Package writer renders document trees back to markdown and splices
// rendered blocks into original source text, reusing unchanged bytes.
package writer

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/mdsplice/doctree"
)

// RenderBlock renders a single block as markdown. The result is
// newline-terminated. Rendering is the only place that knows per-construct
// surface syntax; everything above treats it as a primitive.
func RenderBlock(b *doctree.Block) (string, error) {
	switch b.Kind {
	case doctree.Heading:
		inner, err := RenderInlines(b.Inlines)
		if err != nil {
			return "", err
		}
		level := b.Level
		if level < 1 {
			level = 1
		} else if level > 6 {
			level = 6
		}
		inner = strings.ReplaceAll(inner, "\n", " ")
		return strings.Repeat("#", level) + " " + inner + "\n", nil

	case doctree.Paragraph:
		inner, err := RenderInlines(b.Inlines)
		if err != nil {
			return "", err
		}
		return inner + "\n", nil

	case doctree.CodeBlock:
		fence := strings.Repeat("`", fenceLen(b.Text))
		var sb strings.Builder
		sb.WriteString(fence)
		sb.WriteString(b.Info)
		sb.WriteByte('\n')
		sb.WriteString(ensureNewline(b.Text))
		sb.WriteString(fence)
		sb.WriteByte('\n')
		return sb.String(), nil

	case doctree.RawBlock:
		return ensureNewline(b.Text), nil

	case doctree.ThematicBreak:
		// "***" rather than "---" so a break at the top of a document
		// cannot be mistaken for a front matter delimiter.
		return "***\n", nil

	case doctree.BlockQuote:
		inner, err := renderBlocks(b.Blocks, false)
		if err != nil {
			return "", err
		}
		return quotePrefix(inner), nil

	case doctree.BulletList, doctree.OrderedList:
		return renderList(b)

	case doctree.Div, doctree.Figure:
		inner, err := renderBlocks(b.Blocks, false)
		if err != nil {
			return "", err
		}
		return "::: " + renderAttr(b.Attr) + "\n" + inner + ":::\n", nil

	case doctree.FootnoteDef:
		inner, err := renderBlocks(b.Blocks, false)
		if err != nil {
			return "", err
		}
		marker := "[^" + b.Label + "]: "
		return hangingIndent(inner, marker, "    "), nil

	case doctree.Table:
		return renderTable(b.Table)

	case doctree.DefinitionList:
		return renderDefinitions(b.Definitions)
	}
	return "", fmt.Errorf("render: unknown block kind %v", b.Kind)
}

// RenderBlocks renders a block sequence separated by blank lines.
func RenderBlocks(bs []*doctree.Block) (string, error) {
	return renderBlocks(bs, false)
}

func renderBlocks(bs []*doctree.Block, tight bool) (string, error) {
	var sb strings.Builder
	for i, b := range bs {
		if i > 0 && !tight {
			sb.WriteByte('\n')
		}
		s, err := RenderBlock(b)
		if err != nil {
			return "", err
		}
		sb.WriteString(s)
	}
	return sb.String(), nil
}

// RenderMetadata renders front matter including both delimiter lines, or
// "" when there is nothing to render.
func RenderMetadata(m *doctree.Metadata) (string, error) {
	if m == nil || m.Value == nil {
		return "", nil
	}
	out, err := yaml.Marshal(m.Value)
	if err != nil {
		return "", fmt.Errorf("render metadata: %w", err)
	}
	return "---\n" + string(out) + "---\n", nil
}

func renderList(b *doctree.Block) (string, error) {
	var sb strings.Builder
	for i, item := range b.Items {
		if i > 0 && !b.Tight {
			sb.WriteByte('\n')
		}
		marker := listMarker(b, i)
		inner, err := renderBlocks(item, b.Tight)
		if err != nil {
			return "", err
		}
		if inner == "" {
			inner = "\n"
		}
		sb.WriteString(hangingIndent(inner, marker, strings.Repeat(" ", len(marker))))
	}
	return sb.String(), nil
}

func listMarker(b *doctree.Block, i int) string {
	if b.Kind == doctree.OrderedList {
		delim := byte('.')
		if b.Marker == ')' {
			delim = ')'
		}
		start := b.Start
		if start == 0 {
			start = 1
		}
		return strconv.Itoa(start+i) + string(delim) + " "
	}
	marker := b.Marker
	switch marker {
	case '-', '*', '+':
	default:
		marker = '-'
	}
	return string(marker) + " "
}

func renderTable(t *doctree.TableData) (string, error) {
	if t == nil {
		return "", fmt.Errorf("render: table block without table data")
	}
	cols := len(t.Alignments)
	if n := len(t.Header); n > cols {
		cols = n
	}
	for _, r := range t.Rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	if cols == 0 {
		return "", fmt.Errorf("render: table has no columns")
	}

	var sb strings.Builder
	row, err := renderTableRow(t.Header, cols)
	if err != nil {
		return "", err
	}
	sb.WriteString(row)

	sb.WriteString("|")
	for i := 0; i < cols; i++ {
		var a doctree.Alignment
		if i < len(t.Alignments) {
			a = t.Alignments[i]
		}
		switch a {
		case doctree.AlignLeft:
			sb.WriteString(" :--- |")
		case doctree.AlignRight:
			sb.WriteString(" ---: |")
		case doctree.AlignCenter:
			sb.WriteString(" :---: |")
		default:
			sb.WriteString(" --- |")
		}
	}
	sb.WriteByte('\n')

	for _, r := range t.Rows {
		row, err := renderTableRow(r, cols)
		if err != nil {
			return "", err
		}
		sb.WriteString(row)
	}
	return sb.String(), nil
}

func renderTableRow(cells []doctree.TableCell, cols int) (string, error) {
	var sb strings.Builder
	sb.WriteString("|")
	for i := 0; i < cols; i++ {
		text := ""
		if i < len(cells) {
			s, err := RenderInlines(cells[i].Inlines)
			if err != nil {
				return "", err
			}
			text = strings.ReplaceAll(s, "\n", " ")
		}
		sb.WriteString(" ")
		sb.WriteString(text)
		sb.WriteString(" |")
	}
	sb.WriteByte('\n')
	return sb.String(), nil
}

func renderDefinitions(defs []doctree.Definition) (string, error) {
	var sb strings.Builder
	for i, d := range defs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		term, err := RenderInlines(d.Term)
		if err != nil {
			return "", err
		}
		sb.WriteString(strings.ReplaceAll(term, "\n", " "))
		sb.WriteByte('\n')
		for _, desc := range d.Descriptions {
			inner, err := renderBlocks(desc, true)
			if err != nil {
				return "", err
			}
			if inner == "" {
				inner = "\n"
			}
			sb.WriteString(hangingIndent(inner, ": ", "    "))
		}
	}
	return sb.String(), nil
}

// RenderInlines renders an inline sequence as markdown.
func RenderInlines(ins []*doctree.Inline) (string, error) {
	var sb strings.Builder
	for _, in := range ins {
		s, err := renderInline(in)
		if err != nil {
			return "", err
		}
		sb.WriteString(s)
	}
	return sb.String(), nil
}

func renderInline(in *doctree.Inline) (string, error) {
	switch in.Kind {
	case doctree.Text:
		return escapeText(in.Text), nil
	case doctree.Code:
		return renderCodeSpan(in.Text), nil
	case doctree.RawInline:
		return in.Text, nil
	case doctree.SoftBreak:
		return "\n", nil
	case doctree.LineBreak:
		return "\\\n", nil
	case doctree.Emph:
		return wrapInlines(in.Inlines, "*")
	case doctree.Strong:
		return wrapInlines(in.Inlines, "**")
	case doctree.Strikeout:
		return wrapInlines(in.Inlines, "~~")
	case doctree.Link:
		return renderLink(in, "")
	case doctree.Image:
		return renderLink(in, "!")
	}
	return "", fmt.Errorf("render: unknown inline kind %v", in.Kind)
}

func wrapInlines(ins []*doctree.Inline, delim string) (string, error) {
	inner, err := RenderInlines(ins)
	if err != nil {
		return "", err
	}
	return delim + inner + delim, nil
}

func renderLink(in *doctree.Inline, prefix string) (string, error) {
	inner, err := RenderInlines(in.Inlines)
	if err != nil {
		return "", err
	}
	dest := in.Dest
	if strings.ContainsAny(dest, " \n") {
		dest = "<" + dest + ">"
	}
	title := ""
	if in.Title != "" {
		title = ` "` + strings.ReplaceAll(in.Title, `"`, `\"`) + `"`
	}
	return prefix + "[" + inner + "](" + dest + title + ")", nil
}

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"~", `\~`,
	"|", `\|`,
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

func renderCodeSpan(code string) string {
	run := 0
	longest := 0
	for i := 0; i < len(code); i++ {
		if code[i] == '`' {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	fence := strings.Repeat("`", longest+1)
	pad := ""
	if strings.HasPrefix(code, "`") || strings.HasSuffix(code, "`") ||
		strings.HasPrefix(code, " ") || strings.HasSuffix(code, " ") || code == "" {
		pad = " "
	}
	return fence + pad + code + pad + fence
}

func renderAttr(a doctree.Attr) string {
	var parts []string
	if a.ID != "" {
		parts = append(parts, "#"+a.ID)
	}
	for _, c := range a.Classes {
		parts = append(parts, "."+c)
	}
	for _, kv := range a.KeyVals {
		parts = append(parts, kv[0]+`="`+kv[1]+`"`)
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// fenceLen sizes a code fence one longer than the longest backtick run in
// the content, with a minimum of three.
func fenceLen(text string) int {
	run := 0
	longest := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '`' {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	if longest < 3 {
		return 3
	}
	return longest + 1
}

func ensureNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

// quotePrefix prefixes every line with a blockquote marker; blank lines
// get a bare ">" so the quote does not split.
func quotePrefix(s string) string {
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	var sb strings.Builder
	for _, line := range lines {
		if line == "" {
			sb.WriteString(">")
		} else {
			sb.WriteString("> ")
			sb.WriteString(line)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// hangingIndent writes the first line behind the marker and indents the
// following lines with cont. Blank lines stay blank.
func hangingIndent(s, marker, cont string) string {
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	var sb strings.Builder
	for i, line := range lines {
		switch {
		case i == 0:
			sb.WriteString(marker)
		case line == "":
		default:
			sb.WriteString(cont)
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}
