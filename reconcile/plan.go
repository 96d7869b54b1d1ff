// Package reconcile aligns two versions of a document tree and produces a
// plan describing, slot by slot, whether the result keeps the old block's
// source bytes, renders the new block fresh, or descends into a container.
package reconcile

// Op says how one result slot is produced.
type Op int

const (
	// KeepBefore reuses the before block and its source bytes unchanged.
	KeepBefore Op = iota
	// UseAfter renders the after block fresh.
	UseAfter
	// Recurse pairs two containers of the same kind and reconciles
	// their children with the nested plan.
	Recurse
)

func (o Op) String() string {
	switch o {
	case KeepBefore:
		return "keep_before"
	case UseAfter:
		return "use_after"
	case Recurse:
		return "recurse"
	}
	return "unknown"
}

// Entry is one slot of a plan. Before and After index into the respective
// block lists; an index not used by the op is -1.
type Entry struct {
	Op     Op
	Before int
	After  int
	Inner  *Plan // nested plan for Recurse entries, nil otherwise
}

// Plan maps the after sequence onto the before sequence: one entry per
// after block, in after order. Before blocks not referenced by any entry
// are dropped; there is no representation for pure reordering.
type Plan struct {
	Entries []Entry
	Stats   Stats
}

// Stats counts slot outcomes across a plan and all nested plans.
type Stats struct {
	Kept     int `json:"kept"`
	Replaced int `json:"replaced"`
	Recursed int `json:"recursed"`
}

func (s *Stats) add(o Stats) {
	s.Kept += o.Kept
	s.Replaced += o.Replaced
	s.Recursed += o.Recursed
}
