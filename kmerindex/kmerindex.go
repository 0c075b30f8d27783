// Copyright © 2018 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package kmerindex maps every canonical k-mer occurring in a set of
// contigs to the list of (contig, offset) coordinates where it occurs,
// so the aligner can look up a read k-mer and find seed candidates.
package kmerindex

import (
	"github.com/kdna-bio/quipcore/kmerops"
	"github.com/kdna-bio/quipcore/twobit"
)

// Pos is one occurrence of a canonical k-mer within an indexed contig.
// Offset carries both the position and the strand the k-mer was seen on
// at index time: a non-negative Offset means the forward contig k-mer
// was already canonical (pos == Offset); a negative Offset encodes the
// contig k-mer was on the reverse strand, with the true forward-strand
// position recoverable as -Offset-1. The +1 bias is what lets -1
// (position 0, reverse) be told apart from +0 (position 0, forward).
type Pos struct {
	ContigIdx int
	Offset    int
}

// Forward reports whether the contig k-mer at this position was already
// in canonical (forward-strand) form when indexed.
func (p Pos) Forward() bool { return p.Offset >= 0 }

// ContigPos recovers the forward-strand start position within the
// contig, regardless of which strand the k-mer was indexed from.
func (p Pos) ContigPos() int {
	if p.Offset >= 0 {
		return p.Offset
	}
	return -p.Offset - 1
}

// KmerIndex maps a canonical k-mer's 2-bit code to every place it
// occurs across a set of indexed contigs, in insertion order.
type KmerIndex struct {
	k int
	m map[uint64][]Pos
}

// New allocates an empty KmerIndex for k-mers of size k.
func New(k int) *KmerIndex {
	return &KmerIndex{k: k, m: make(map[uint64][]Pos)}
}

// K returns the k-mer size this index was built for.
func (idx *KmerIndex) K() int { return idx.k }

// Put records one occurrence. pos is the forward-strand start position
// within the contig; forward reports whether the k-mer observed at
// index time was already canonical.
func (idx *KmerIndex) Put(key uint64, contigIdx, pos int, forward bool) {
	p := Pos{ContigIdx: contigIdx}
	if forward {
		p.Offset = pos
	} else {
		p.Offset = -(pos + 1)
	}
	idx.m[key] = append(idx.m[key], p)
}

// Get returns every recorded occurrence of the canonical k-mer key, in
// the order they were indexed. The returned slice must not be mutated.
func (idx *KmerIndex) Get(key uint64) []Pos {
	return idx.m[key]
}

// NumKeys returns the number of distinct canonical k-mers indexed.
func (idx *KmerIndex) NumKeys() int { return len(idx.m) }

// IndexContigs builds a KmerIndex of size k over every contig, sliding a
// k-mer window across each one and recording the canonical form's
// position and strand at every window.
func IndexContigs(contigs []*twobit.TwoBit, k int) *KmerIndex {
	idx := New(k)
	mask := kmerops.KmerMask(k)

	for ci, contig := range contigs {
		var x uint64
		n := contig.Len()
		for pos := 0; pos < n; pos++ {
			x = ((x << 2) | uint64(contig.Get(pos))) & mask
			if pos+1 < k {
				continue
			}
			y := kmerops.Canonical(x, k)
			start := pos + 1 - k
			idx.Put(y, ci, start, x == y)
		}
	}
	return idx
}
