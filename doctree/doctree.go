// Package doctree defines the document tree shared by the parser, the
// reconciler, and the writer. Nodes parsed from source carry byte spans;
// nodes built programmatically carry zero spans.
package doctree

// Span is a half-open byte range [Start, End) into the source text.
// The zero Span means the node has no source location.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// IsZero reports whether the span carries no source location.
func (s Span) IsZero() bool { return s.Start == 0 && s.End == 0 }

// Len returns the number of bytes the span covers.
func (s Span) Len() int { return s.End - s.Start }

// Document is the root of a parsed or constructed document.
type Document struct {
	Meta   *Metadata `json:"meta,omitempty"`   // YAML front matter, nil if absent
	Blocks []*Block  `json:"blocks,omitempty"` // top-level blocks in document order
}

// BlockKind identifies the variant of a Block.
type BlockKind int

const (
	Heading BlockKind = iota + 1
	Paragraph
	CodeBlock
	RawBlock
	ThematicBreak
	BlockQuote
	BulletList
	OrderedList
	Div
	Figure
	FootnoteDef
	Table
	DefinitionList
)

// Attr holds the identifier, classes and key/value attributes of a block.
type Attr struct {
	ID      string      `json:"id,omitempty"`
	Classes []string    `json:"classes,omitempty"`
	KeyVals [][2]string `json:"keyvals,omitempty"`
}

// IsZero reports whether the attr is empty.
func (a Attr) IsZero() bool {
	return a.ID == "" && len(a.Classes) == 0 && len(a.KeyVals) == 0
}

// Block is a single node of the tree. Kind selects the variant; the other
// fields are populated per kind:
//
//	Heading        Level, Inlines
//	Paragraph      Inlines
//	CodeBlock      Text, Info
//	RawBlock       Text, Format
//	ThematicBreak  (no fields)
//	BlockQuote     Blocks
//	BulletList     Items, Tight, Marker
//	OrderedList    Items, Tight, Marker, Start
//	Div            Blocks, Attr
//	Figure         Blocks, Attr
//	FootnoteDef    Label, Blocks
//	Table          Table
//	DefinitionList Definitions
type Block struct {
	Kind BlockKind `json:"kind"`
	Span Span      `json:"span,omitzero"`

	Level  int    `json:"level,omitempty"`  // Heading: 1..6
	Text   string `json:"text,omitempty"`   // CodeBlock, RawBlock: literal content
	Info   string `json:"info,omitempty"`   // CodeBlock: fence info string
	Format string `json:"format,omitempty"` // RawBlock: target format, e.g. "html"
	Label  string `json:"label,omitempty"`  // FootnoteDef: note label without "^"

	Start  int  `json:"start,omitempty"`  // OrderedList: first item number
	Tight  bool `json:"tight,omitempty"`  // lists: no blank lines between items
	Marker byte `json:"marker,omitempty"` // lists: '-', '*', '+', '.' or ')'

	Attr Attr `json:"attr,omitzero"`

	Inlines []*Inline  `json:"inlines,omitempty"` // Heading, Paragraph
	Blocks  []*Block   `json:"blocks,omitempty"`  // BlockQuote, Div, Figure, FootnoteDef
	Items   [][]*Block `json:"items,omitempty"`   // lists: one block sequence per item

	Table       *TableData   `json:"table,omitempty"`
	Definitions []Definition `json:"definitions,omitempty"`
}

// Alignment is a table column alignment.
type Alignment string

const (
	AlignNone   Alignment = ""
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// TableData holds the rows of a pipe table.
type TableData struct {
	Alignments []Alignment   `json:"alignments,omitempty"`
	Header     []TableCell   `json:"header,omitempty"`
	Rows       [][]TableCell `json:"rows,omitempty"`
}

// TableCell is one cell of a table row.
type TableCell struct {
	Inlines []*Inline `json:"inlines,omitempty"`
}

// Definition is one term of a definition list with its descriptions.
type Definition struct {
	Term         []*Inline  `json:"term,omitempty"`
	Descriptions [][]*Block `json:"descriptions,omitempty"`
}

// InlineKind identifies the variant of an Inline.
type InlineKind int

const (
	Text InlineKind = iota + 1
	Code
	RawInline
	SoftBreak
	LineBreak
	Emph
	Strong
	Strikeout
	Link
	Image
)

// Inline is a single inline node. Kind selects the variant:
//
//	Text, Code, RawInline  Text
//	SoftBreak, LineBreak   (no fields)
//	Emph, Strong, Strikeout Inlines
//	Link, Image            Inlines, Dest, Title
type Inline struct {
	Kind    InlineKind `json:"kind"`
	Text    string     `json:"text,omitempty"`
	Inlines []*Inline  `json:"inlines,omitempty"`
	Dest    string     `json:"dest,omitempty"`
	Title   string     `json:"title,omitempty"`
}
