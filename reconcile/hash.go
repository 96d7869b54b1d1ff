package reconcile

import (
	"encoding/binary"
	"hash"
	"hash/fnv"

	"github.com/dgallion1/mdsplice/doctree"
)

// hasher computes span-insensitive structural hashes. Results are memoized
// by node pointer; the cache lives for a single Reconcile call, during
// which node addresses are stable. Equal hashes are only a candidate
// signal: matches are confirmed with structural equality.
type hasher struct {
	blocks  map[*doctree.Block]uint64
	inlines map[*doctree.Inline]uint64
}

func newHasher() *hasher {
	return &hasher{
		blocks:  make(map[*doctree.Block]uint64),
		inlines: make(map[*doctree.Inline]uint64),
	}
}

// fieldHasher accumulates tagged fields into an FNV-1a state. Strings are
// length-prefixed and child hashes written as fixed-width words so that
// field boundaries cannot alias.
type fieldHasher struct {
	h   hash.Hash64
	buf [8]byte
}

func newFieldHasher() *fieldHasher {
	return &fieldHasher{h: fnv.New64a()}
}

func (f *fieldHasher) uint64(v uint64) {
	binary.LittleEndian.PutUint64(f.buf[:], v)
	f.h.Write(f.buf[:])
}

func (f *fieldHasher) int(v int) { f.uint64(uint64(v)) }

func (f *fieldHasher) str(s string) {
	f.int(len(s))
	f.h.Write([]byte(s))
}

func (f *fieldHasher) bool(v bool) {
	if v {
		f.int(1)
	} else {
		f.int(0)
	}
}

func (f *fieldHasher) sum() uint64 { return f.h.Sum64() }

func (h *hasher) block(b *doctree.Block) uint64 {
	if v, ok := h.blocks[b]; ok {
		return v
	}
	f := newFieldHasher()
	f.int(int(b.Kind))
	f.int(b.Level)
	f.str(b.Text)
	f.str(b.Info)
	f.str(b.Format)
	f.str(b.Label)
	f.int(b.Start)
	f.bool(b.Tight)
	f.int(int(b.Marker))
	h.attr(f, b.Attr)
	f.int(len(b.Inlines))
	for _, in := range b.Inlines {
		f.uint64(h.inline(in))
	}
	f.int(len(b.Blocks))
	for _, c := range b.Blocks {
		f.uint64(h.block(c))
	}
	f.int(len(b.Items))
	for _, item := range b.Items {
		f.uint64(h.blockSeq(item))
	}
	if b.Table != nil {
		h.table(f, b.Table)
	}
	f.int(len(b.Definitions))
	for _, d := range b.Definitions {
		f.int(len(d.Term))
		for _, in := range d.Term {
			f.uint64(h.inline(in))
		}
		f.int(len(d.Descriptions))
		for _, desc := range d.Descriptions {
			f.uint64(h.blockSeq(desc))
		}
	}
	v := f.sum()
	h.blocks[b] = v
	return v
}

// blockSeq hashes a block sequence as a unit, used for list items and
// definition descriptions.
func (h *hasher) blockSeq(bs []*doctree.Block) uint64 {
	f := newFieldHasher()
	f.int(len(bs))
	for _, b := range bs {
		f.uint64(h.block(b))
	}
	return f.sum()
}

func (h *hasher) inline(in *doctree.Inline) uint64 {
	if v, ok := h.inlines[in]; ok {
		return v
	}
	f := newFieldHasher()
	f.int(int(in.Kind))
	f.str(in.Text)
	f.str(in.Dest)
	f.str(in.Title)
	f.int(len(in.Inlines))
	for _, c := range in.Inlines {
		f.uint64(h.inline(c))
	}
	v := f.sum()
	h.inlines[in] = v
	return v
}

func (h *hasher) attr(f *fieldHasher, a doctree.Attr) {
	f.str(a.ID)
	f.int(len(a.Classes))
	for _, c := range a.Classes {
		f.str(c)
	}
	f.int(len(a.KeyVals))
	for _, kv := range a.KeyVals {
		f.str(kv[0])
		f.str(kv[1])
	}
}

func (h *hasher) cells(f *fieldHasher, row []doctree.TableCell) {
	f.int(len(row))
	for _, c := range row {
		f.int(len(c.Inlines))
		for _, in := range c.Inlines {
			f.uint64(h.inline(in))
		}
	}
}

func (h *hasher) table(f *fieldHasher, t *doctree.TableData) {
	f.int(len(t.Alignments))
	for _, a := range t.Alignments {
		f.str(string(a))
	}
	h.cells(f, t.Header)
	f.int(len(t.Rows))
	for _, r := range t.Rows {
		h.cells(f, r)
	}
}
