package doctree

// Class controls how the writer may splice a block back into source text.
type Class int

const (
	// Leaf blocks splice freely on their span boundaries.
	Leaf Class = iota
	// IndentationBoundary blocks own the indentation of their children.
	// Splicing inside them would have to re-derive prefixes for every
	// line, so changes rewrite the whole block.
	IndentationBoundary
	// Container blocks hold child blocks without reindenting them.
	Container
	// AlwaysRewrite blocks come from sugared surface syntax and
	// re-render wholesale whenever touched.
	AlwaysRewrite
)

func (c Class) String() string {
	switch c {
	case Leaf:
		return "leaf"
	case IndentationBoundary:
		return "indentation-boundary"
	case Container:
		return "container"
	case AlwaysRewrite:
		return "always-rewrite"
	}
	return "unknown"
}

// Sugar describes a markdown construct whose surface form is sugar for a
// dedicated block kind. The writer emits a stricter form than the reader
// accepts, so sugared blocks are never spliced partially.
type Sugar struct {
	Name  string
	Kind  BlockKind
	Class Class
}

var sugars = []Sugar{
	{Name: "pipe table", Kind: Table, Class: AlwaysRewrite},
	{Name: "definition list", Kind: DefinitionList, Class: AlwaysRewrite},
}

// Sugars returns the registered sugared constructs.
func Sugars() []Sugar {
	out := make([]Sugar, len(sugars))
	copy(out, sugars)
	return out
}

// SugarFor returns the sugar entry for the given kind, if one is registered.
func SugarFor(k BlockKind) (Sugar, bool) {
	for _, s := range sugars {
		if s.Kind == k {
			return s, true
		}
	}
	return Sugar{}, false
}

// Class returns the splice class of the kind. Sugared kinds take their
// class from the registry.
func (k BlockKind) Class() Class {
	if s, ok := SugarFor(k); ok {
		return s.Class
	}
	switch k {
	case BlockQuote, BulletList, OrderedList:
		return IndentationBoundary
	case Div, Figure, FootnoteDef:
		return Container
	}
	return Leaf
}

// Recursable reports whether two blocks of this kind can be reconciled by
// descending into their children instead of replacing the whole block.
func (k BlockKind) Recursable() bool {
	switch k.Class() {
	case IndentationBoundary, Container:
		return true
	}
	return false
}
