package doctree

import (
	"encoding/json"
	"fmt"
)

// Kinds marshal as stable string names so trees survive the HTTP surface
// without clients depending on iota values.

var blockKindNames = map[BlockKind]string{
	Heading:        "heading",
	Paragraph:      "paragraph",
	CodeBlock:      "code_block",
	RawBlock:       "raw_block",
	ThematicBreak:  "thematic_break",
	BlockQuote:     "block_quote",
	BulletList:     "bullet_list",
	OrderedList:    "ordered_list",
	Div:            "div",
	Figure:         "figure",
	FootnoteDef:    "footnote_def",
	Table:          "table",
	DefinitionList: "definition_list",
}

var inlineKindNames = map[InlineKind]string{
	Text:      "text",
	Code:      "code",
	RawInline: "raw_inline",
	SoftBreak: "soft_break",
	LineBreak: "line_break",
	Emph:      "emph",
	Strong:    "strong",
	Strikeout: "strikeout",
	Link:      "link",
	Image:     "image",
}

var blockKindValues = map[string]BlockKind{}
var inlineKindValues = map[string]InlineKind{}

func init() {
	for k, name := range blockKindNames {
		blockKindValues[name] = k
	}
	for k, name := range inlineKindNames {
		inlineKindValues[name] = k
	}
}

func (k BlockKind) String() string {
	if name, ok := blockKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("BlockKind(%d)", int(k))
}

func (k BlockKind) MarshalJSON() ([]byte, error) {
	name, ok := blockKindNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown block kind %d", int(k))
	}
	return json.Marshal(name)
}

func (k *BlockKind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	v, ok := blockKindValues[name]
	if !ok {
		return fmt.Errorf("unknown block kind %q", name)
	}
	*k = v
	return nil
}

func (k InlineKind) String() string {
	if name, ok := inlineKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("InlineKind(%d)", int(k))
}

func (k InlineKind) MarshalJSON() ([]byte, error) {
	name, ok := inlineKindNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown inline kind %d", int(k))
	}
	return json.Marshal(name)
}

func (k *InlineKind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	v, ok := inlineKindValues[name]
	if !ok {
		return fmt.Errorf("unknown inline kind %q", name)
	}
	*k = v
	return nil
}
