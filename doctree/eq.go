package doctree

// Structural equality ignores source spans: two nodes are equal when they
// would render the same, regardless of where (or whether) they appear in
// the original text.

// EqualBlocks reports structural equality of two block sequences.
func EqualBlocks(a, b []*Block) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !EqualBlock(a[i], b[i]) {
			return false
		}
	}
	return true
}

// EqualBlock reports structural equality of two blocks, ignoring spans.
func EqualBlock(a, b *Block) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind ||
		a.Level != b.Level ||
		a.Text != b.Text ||
		a.Info != b.Info ||
		a.Format != b.Format ||
		a.Label != b.Label ||
		a.Start != b.Start ||
		a.Tight != b.Tight ||
		a.Marker != b.Marker {
		return false
	}
	if !equalAttr(a.Attr, b.Attr) {
		return false
	}
	if !EqualInlines(a.Inlines, b.Inlines) || !EqualBlocks(a.Blocks, b.Blocks) {
		return false
	}
	if len(a.Items) != len(b.Items) {
		return false
	}
	for i := range a.Items {
		if !EqualBlocks(a.Items[i], b.Items[i]) {
			return false
		}
	}
	if !equalTable(a.Table, b.Table) {
		return false
	}
	if len(a.Definitions) != len(b.Definitions) {
		return false
	}
	for i := range a.Definitions {
		if !equalDefinition(a.Definitions[i], b.Definitions[i]) {
			return false
		}
	}
	return true
}

// EqualInlines reports structural equality of two inline sequences.
func EqualInlines(a, b []*Inline) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !EqualInline(a[i], b[i]) {
			return false
		}
	}
	return true
}

// EqualInline reports structural equality of two inlines.
func EqualInline(a, b *Inline) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Kind == b.Kind &&
		a.Text == b.Text &&
		a.Dest == b.Dest &&
		a.Title == b.Title &&
		EqualInlines(a.Inlines, b.Inlines)
}

func equalAttr(a, b Attr) bool {
	if a.ID != b.ID || len(a.Classes) != len(b.Classes) || len(a.KeyVals) != len(b.KeyVals) {
		return false
	}
	for i := range a.Classes {
		if a.Classes[i] != b.Classes[i] {
			return false
		}
	}
	for i := range a.KeyVals {
		if a.KeyVals[i] != b.KeyVals[i] {
			return false
		}
	}
	return true
}

func equalTable(a, b *TableData) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.Alignments) != len(b.Alignments) {
		return false
	}
	for i := range a.Alignments {
		if a.Alignments[i] != b.Alignments[i] {
			return false
		}
	}
	if !equalRow(a.Header, b.Header) || len(a.Rows) != len(b.Rows) {
		return false
	}
	for i := range a.Rows {
		if !equalRow(a.Rows[i], b.Rows[i]) {
			return false
		}
	}
	return true
}

func equalRow(a, b []TableCell) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !EqualInlines(a[i].Inlines, b[i].Inlines) {
			return false
		}
	}
	return true
}

func equalDefinition(a, b Definition) bool {
	if !EqualInlines(a.Term, b.Term) || len(a.Descriptions) != len(b.Descriptions) {
		return false
	}
	for i := range a.Descriptions {
		if !EqualBlocks(a.Descriptions[i], b.Descriptions[i]) {
			return false
		}
	}
	return true
}
