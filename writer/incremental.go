package writer

import (
	"fmt"
	"strings"

	"github.com/dgallion1/mdsplice/doctree"
	"github.com/dgallion1/mdsplice/parser"
	"github.com/dgallion1/mdsplice/reconcile"
)

// segment is the coarsened form of a plan entry: either a byte range of
// the original to copy, or an after block to render fresh.
type segment struct {
	verbatim bool
	span     doctree.Span // verbatim: range into original
	orig     int          // verbatim: before block index
	idx      int          // rewrite: after block index
}

// coarsen flattens a plan into segments. Recurse entries become whole
// rewrites of the after container: splicing inside containers is not
// attempted, which keeps every splice on a safe top-level boundary.
//
// A malformed plan returns a diagnostic instead of segments; the caller
// degrades to a full-document rewrite.
func coarsen(plan *reconcile.Plan, before, after *doctree.Document, origLen int) ([]segment, *Diagnostic) {
	if plan == nil || len(plan.Entries) != len(after.Blocks) {
		d := warnf(CodePlanShape, "plan has %d entries for %d blocks; rewriting whole document", planLen(plan), len(after.Blocks))
		return nil, &d
	}
	segs := make([]segment, 0, len(plan.Entries))
	for _, e := range plan.Entries {
		switch e.Op {
		case reconcile.KeepBefore:
			if e.Before < 0 || e.Before >= len(before.Blocks) {
				d := warnf(CodePlanShape, "keep refers to block %d of %d; rewriting whole document", e.Before, len(before.Blocks))
				return nil, &d
			}
			span := before.Blocks[e.Before].Span
			if span.IsZero() || span.Start < 0 || span.End <= span.Start || span.End > origLen {
				d := warnf(CodePlanShape, "kept block %d has no usable source span; rewriting whole document", e.Before)
				return nil, &d
			}
			// The assembler slices the gap between adjacent kept blocks,
			// so their spans must not run backwards.
			if n := len(segs); n > 0 && segs[n-1].verbatim && e.Before == segs[n-1].orig+1 && span.Start < segs[n-1].span.End {
				d := warnf(CodePlanShape, "kept blocks %d and %d have overlapping source spans; rewriting whole document", segs[n-1].orig, e.Before)
				return nil, &d
			}
			segs = append(segs, segment{verbatim: true, span: span, orig: e.Before})
		case reconcile.UseAfter, reconcile.Recurse:
			if e.After < 0 || e.After >= len(after.Blocks) {
				d := warnf(CodePlanShape, "rewrite refers to block %d of %d; rewriting whole document", e.After, len(after.Blocks))
				return nil, &d
			}
			segs = append(segs, segment{orig: -1, idx: e.After})
		default:
			d := warnf(CodePlanShape, "unknown plan op %d; rewriting whole document", int(e.Op))
			return nil, &d
		}
	}
	return segs, nil
}

func planLen(p *reconcile.Plan) int {
	if p == nil {
		return 0
	}
	return len(p.Entries)
}

// piece is a segment resolved to text, with the separator that precedes it.
type piece struct {
	sep      string
	text     string
	verbatim bool
	orig     int
	span     doctree.Span
}

// assemble resolves the plan to the output prefix and pieces. Both the
// full writer and the edit computation consume this one list, so their
// results agree by construction.
func assemble(original string, before, after *doctree.Document, plan *reconcile.Plan) (string, []piece, []Diagnostic, error) {
	if before == nil {
		before = &doctree.Document{}
	}
	if after == nil {
		after = &doctree.Document{}
	}
	var diags []Diagnostic

	segs, bad := coarsen(plan, before, after, len(original))
	if bad != nil {
		diags = append(diags, *bad)
		segs = make([]segment, len(after.Blocks))
		for j := range after.Blocks {
			segs[j] = segment{orig: -1, idx: j}
		}
	}

	prefix, err := metadataPrefix(original, before, after)
	if err != nil {
		diags = append(diags, errorf(CodeRenderFailed, "%v", err))
		return "", nil, diags, err
	}

	pieces := make([]piece, 0, len(segs))
	for _, s := range segs {
		var p piece
		if s.verbatim {
			p = piece{
				verbatim: true,
				orig:     s.orig,
				span:     s.span,
				text:     original[s.span.Start:s.span.End],
			}
		} else {
			b := after.Blocks[s.idx]
			text, err := RenderBlock(b)
			if err != nil {
				diags = append(diags, errorf(CodeRenderFailed, "block %d: %v", s.idx, err))
				return "", nil, diags, fmt.Errorf("render block %d: %w", s.idx, err)
			}
			if b.Kind.Class() == doctree.AlwaysRewrite {
				if d := lossyCheck(b, text); d != nil {
					diags = append(diags, *d)
				}
			}
			p = piece{text: text, orig: -1}
		}
		if n := len(pieces); n > 0 {
			prev := pieces[n-1]
			switch {
			case p.verbatim && prev.verbatim && p.orig == prev.orig+1:
				// adjacent in the original too: keep the original gap
				p.sep = original[prev.span.End:p.span.Start]
			case strings.HasSuffix(prev.text, "\n\n"):
			case strings.HasSuffix(prev.text, "\n"):
				p.sep = "\n"
			default:
				// kept text without a terminator needs one before the
				// blank line, or the blocks merge on the next parse
				p.sep = "\n\n"
			}
		}
		pieces = append(pieces, p)
	}
	return prefix, pieces, diags, nil
}

// metadataPrefix produces everything before the first block: unchanged
// front matter is copied byte for byte together with the gap that follows
// it; changed front matter renders fresh and keeps the original gap.
func metadataPrefix(original string, before, after *doctree.Document) (string, error) {
	end := firstBlockStart(before, original)
	if doctree.EqualMeta(before.Meta, after.Meta) {
		return original[:end], nil
	}
	rendered, err := RenderMetadata(after.Meta)
	if err != nil {
		return "", err
	}
	gapStart := 0
	if before.Meta != nil && !before.Meta.Span.IsZero() && before.Meta.Span.End <= end {
		gapStart = before.Meta.Span.End
	}
	return rendered + original[gapStart:end], nil
}

func firstBlockStart(before *doctree.Document, original string) int {
	if len(before.Blocks) == 0 {
		return len(original)
	}
	s := before.Blocks[0].Span.Start
	if s < 0 {
		return 0
	}
	if s > len(original) {
		return len(original)
	}
	return s
}

// lossyCheck re-reads the rendered form of an always-rewrite block. The
// writer emits a stricter surface form than the reader accepts, so some
// trees cannot round-trip; that is surfaced, not repaired.
func lossyCheck(b *doctree.Block, rendered string) *Diagnostic {
	doc := parser.Parse(rendered)
	if len(doc.Blocks) == 1 && doctree.EqualBlock(doc.Blocks[0], b) {
		return nil
	}
	d := warnf(CodeLossyRewrite, "%s does not read back as written; content may change shape on the next parse", b.Kind)
	return &d
}

// IncrementalWrite produces the new document text: blocks the plan keeps
// are copied from original byte for byte, everything else renders fresh.
// A non-nil error means no output could be produced; warnings come back
// as diagnostics alongside valid output.
func IncrementalWrite(original string, before, after *doctree.Document, plan *reconcile.Plan) (string, []Diagnostic, error) {
	prefix, pieces, diags, err := assemble(original, before, after, plan)
	if err != nil {
		return "", diags, err
	}
	var sb strings.Builder
	sb.WriteString(prefix)
	for _, p := range pieces {
		sb.WriteString(p.sep)
		sb.WriteString(p.text)
	}
	return sb.String(), diags, nil
}

// IncrementalWriteFromSource parses original, reconciles it against after
// and writes the result in one call.
func IncrementalWriteFromSource(original string, after *doctree.Document) (string, []Diagnostic, error) {
	before := parser.Parse(original)
	plan := reconcile.Reconcile(before, after)
	return IncrementalWrite(original, before, after, plan)
}
