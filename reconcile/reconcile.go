package reconcile

import (
	"github.com/dgallion1/mdsplice/doctree"
)

// Reconcile aligns before and after and returns a plan with one entry per
// after block. It terminates for arbitrary tree pairs; a worst-case result
// is a plan that replaces everything.
func Reconcile(before, after *doctree.Document) *Plan {
	h := newHasher()
	var b, a []*doctree.Block
	if before != nil {
		b = before.Blocks
	}
	if after != nil {
		a = after.Blocks
	}
	return reconcileBlocks(h, b, a)
}

// reconcileBlocks runs the three phases over one sibling level:
//
//  1. exact matches: after blocks claim structurally identical before
//     blocks anywhere in the sequence, closest index first;
//  2. positional recursion: a leftover after block pairs with the before
//     block at the same index, and same-kind containers descend;
//  3. fallback: whatever remains is rendered fresh.
//
// Before blocks left unclaimed are deletions and simply never referenced.
func reconcileBlocks(h *hasher, before, after []*doctree.Block) *Plan {
	plan := &Plan{Entries: make([]Entry, len(after))}

	byHash := make(map[uint64][]int, len(before))
	for i, b := range before {
		hv := h.block(b)
		byHash[hv] = append(byHash[hv], i)
	}
	used := make([]bool, len(before))

	// Phase 1. Hash lookup narrows the candidates; structural equality
	// confirms them. Among several identical candidates the closest
	// index wins, which keeps edits local when content repeats.
	var unmatched []int
	for j, a := range after {
		best := -1
		for _, i := range byHash[h.block(a)] {
			if used[i] || !doctree.EqualBlock(before[i], a) {
				continue
			}
			if best == -1 || abs(i-j) < abs(best-j) {
				best = i
			}
		}
		if best >= 0 {
			used[best] = true
			plan.Entries[j] = Entry{Op: KeepBefore, Before: best, After: j}
			plan.Stats.Kept++
			continue
		}
		plan.Entries[j] = Entry{Op: UseAfter, Before: -1, After: j}
		unmatched = append(unmatched, j)
	}

	// Phase 2. An unmatched after block may pair with the before block
	// at the same index: the shared position is the only evidence they
	// are the same logical entity. Containers of the same kind recurse;
	// anything else falls through and the before block goes unused.
	for _, j := range unmatched {
		if j >= len(before) || used[j] {
			continue
		}
		a, b := after[j], before[j]
		if b.Kind != a.Kind || !a.Kind.Recursable() {
			continue
		}
		var inner *Plan
		if a.Kind == doctree.BulletList || a.Kind == doctree.OrderedList {
			inner = reconcileItems(h, b.Items, a.Items)
		} else {
			inner = reconcileBlocks(h, b.Blocks, a.Blocks)
		}
		used[j] = true
		plan.Entries[j] = Entry{Op: Recurse, Before: j, After: j, Inner: inner}
		plan.Stats.Recursed++
		plan.Stats.add(inner.Stats)
	}

	// Phase 3 is implicit: unmatched entries were already UseAfter.
	for _, e := range plan.Entries {
		if e.Op == UseAfter {
			plan.Stats.Replaced++
		}
	}
	return plan
}

// reconcileItems aligns list items. Each item is a block sequence; exact
// matches are claimed by sequence hash first, then leftover items pair
// positionally and recurse into their blocks.
func reconcileItems(h *hasher, before, after [][]*doctree.Block) *Plan {
	plan := &Plan{Entries: make([]Entry, len(after))}

	byHash := make(map[uint64][]int, len(before))
	for i, item := range before {
		byHash[h.blockSeq(item)] = append(byHash[h.blockSeq(item)], i)
	}
	used := make([]bool, len(before))

	var unmatched []int
	for j, item := range after {
		best := -1
		for _, i := range byHash[h.blockSeq(item)] {
			if used[i] || !doctree.EqualBlocks(before[i], item) {
				continue
			}
			if best == -1 || abs(i-j) < abs(best-j) {
				best = i
			}
		}
		if best >= 0 {
			used[best] = true
			plan.Entries[j] = Entry{Op: KeepBefore, Before: best, After: j}
			plan.Stats.Kept++
			continue
		}
		plan.Entries[j] = Entry{Op: UseAfter, Before: -1, After: j}
		unmatched = append(unmatched, j)
	}

	for _, j := range unmatched {
		if j >= len(before) || used[j] {
			continue
		}
		inner := reconcileBlocks(h, before[j], after[j])
		used[j] = true
		plan.Entries[j] = Entry{Op: Recurse, Before: j, After: j, Inner: inner}
		plan.Stats.Recursed++
		plan.Stats.add(inner.Stats)
	}

	for _, e := range plan.Entries {
		if e.Op == UseAfter {
			plan.Stats.Replaced++
		}
	}
	return plan
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
