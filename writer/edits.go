package writer

import (
	"strings"

	"github.com/dgallion1/mdsplice/doctree"
	"github.com/dgallion1/mdsplice/parser"
	"github.com/dgallion1/mdsplice/reconcile"
)

// TextEdit replaces original[Start:End) with Replacement. Edits returned
// by ComputeIncrementalEdits are ascending and non-overlapping; applying
// them back to front reproduces IncrementalWrite's output exactly.
type TextEdit struct {
	Start       int    `json:"start"`
	End         int    `json:"end"`
	Replacement string `json:"replacement"`
}

// Apply applies a sorted, non-overlapping edit list to text.
func Apply(text string, edits []TextEdit) string {
	var sb strings.Builder
	pos := 0
	for _, e := range edits {
		sb.WriteString(text[pos:e.Start])
		sb.WriteString(e.Replacement)
		pos = e.End
	}
	sb.WriteString(text[pos:])
	return sb.String()
}

// anchor ties a range of the output to the range of the original it was
// copied from.
type anchor struct {
	origStart, origEnd int
	wStart, wEnd       int
}

// ComputeIncrementalEdits computes the minimal per-region edits that turn
// original into the incremental write output. Runs of kept blocks that
// are adjacent in the original anchor the text; only the gaps between
// anchors become edits. Kept blocks that moved out of order cannot anchor
// without reordering edits, so they count as replaced content.
func ComputeIncrementalEdits(original string, before, after *doctree.Document, plan *reconcile.Plan) ([]TextEdit, []Diagnostic, error) {
	prefix, pieces, diags, err := assemble(original, before, after, plan)
	if err != nil {
		return nil, diags, err
	}
	if before == nil {
		before = &doctree.Document{}
	}

	var anchors []anchor
	var w strings.Builder

	prefixEnd := firstBlockStart(before, original)
	if prefix == original[:prefixEnd] {
		anchors = append(anchors, anchor{0, prefixEnd, 0, len(prefix)})
	}
	w.WriteString(prefix)

	lastOrig := -1 // highest before index anchored so far
	open := -1     // index of the anchor currently being extended
	for _, p := range pieces {
		if p.verbatim && p.orig > lastOrig {
			if open >= 0 && p.orig == lastOrig+1 {
				// consecutive in the original: the separator is the
				// original gap, so the run keeps tiling both texts
				w.WriteString(p.sep)
				w.WriteString(p.text)
				anchors[open].origEnd = p.span.End
				anchors[open].wEnd = w.Len()
			} else {
				w.WriteString(p.sep)
				start := w.Len()
				w.WriteString(p.text)
				anchors = append(anchors, anchor{p.span.Start, p.span.End, start, w.Len()})
				open = len(anchors) - 1
			}
			lastOrig = p.orig
			continue
		}
		open = -1
		w.WriteString(p.sep)
		w.WriteString(p.text)
	}
	out := w.String()

	// Virtual anchors bound the leading and trailing gaps.
	anchors = append([]anchor{{0, 0, 0, 0}}, anchors...)
	anchors = append(anchors, anchor{len(original), len(original), len(out), len(out)})

	var edits []TextEdit
	for i := 0; i+1 < len(anchors); i++ {
		a, b := anchors[i], anchors[i+1]
		repl := out[a.wEnd:b.wStart]
		if original[a.origEnd:b.origStart] == repl {
			continue
		}
		edits = append(edits, TextEdit{Start: a.origEnd, End: b.origStart, Replacement: repl})
	}
	return edits, diags, nil
}

// ComputeIncrementalEditsFromSource parses original, reconciles it
// against after and computes edits in one call.
func ComputeIncrementalEditsFromSource(original string, after *doctree.Document) ([]TextEdit, []Diagnostic, error) {
	before := parser.Parse(original)
	plan := reconcile.Reconcile(before, after)
	return ComputeIncrementalEdits(original, before, after, plan)
}
