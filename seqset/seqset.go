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

// Package seqset implements a deduplicating, open-addressed hash set of
// TwoBit sequences with quadratic probing. Each unique sequence is
// counted; the assembler consumes the abundance-ordered dump to pick
// seeds.
package seqset

import (
	"math"

	"github.com/kdna-bio/quipcore/twobit"
)

// primes is a table of 28 primes roughly doubling, used as quadratic
// probing table sizes.
var primes = [28]uint64{
	53, 97, 193, 389,
	769, 1543, 3079, 6151,
	12289, 24593, 49157, 98317,
	196613, 393241, 786433, 1572869,
	3145739, 6291469, 12582917, 25165843,
	50331653, 100663319, 201326611, 402653189,
	805306457, 1610612741, 3221225473, 4294967291,
}

const (
	maxLoad = 0.5
	minLoad = 0.1
)

// countTombstone marks a deleted slot; a real count can never reach this
// value because Inc saturates one below it.
const countTombstone = math.MaxUint32

// Entry pairs a unique sequence with its observed multiplicity.
type Entry struct {
	Seq   *twobit.TwoBit
	Count uint32
}

func (e *Entry) isNil() bool  { return e.Seq == nil && e.Count == 0 }
func (e *Entry) isDel() bool  { return e.Seq == nil && e.Count == countTombstone }
func (e *Entry) isLive() bool { return e.Seq != nil }

// probe implements the quadratic probe h + i/2 + i*i/2 (mod n), i
// starting at 1 and incrementing on each collision.
func probe(h uint64, i uint64, n uint64) uint64 {
	return (h + i/2 + (i*i)/2) % n
}

// SeqSet is an open-addressed hash table mapping TwoBit sequences to
// occupancy counts. It owns every stored sequence.
type SeqSet struct {
	xs       []Entry
	pn       int // n == primes[pn]
	n        uint64
	occupied int // live entries, excludes tombstones
	deleted  int
}

// New allocates an empty SeqSet.
func New() *SeqSet {
	s := &SeqSet{pn: 0, n: primes[0]}
	s.xs = make([]Entry, s.n)
	return s
}

// Size returns the number of unique sequences stored.
func (s *SeqSet) Size() int { return s.occupied }

func (s *SeqSet) maxM() int { return int(float64(s.n) * maxLoad) }
func (s *SeqSet) minM() int { return int(float64(s.n) * minLoad) }

func (s *SeqSet) resize(newPn int) {
	newN := primes[newPn]
	dst := make([]Entry, newN)

	for i := range s.xs {
		e := &s.xs[i]
		if !e.isLive() {
			continue
		}
		h := uint64(e.Seq.Hash())
		k := h % newN
		for i := uint64(1); ; i++ {
			if !dst[k].isLive() {
				dst[k] = Entry{Seq: e.Seq, Count: e.Count}
				break
			}
			k = probe(h, i, newN)
		}
	}

	s.xs = dst
	s.pn = newPn
	s.n = newN
	s.deleted = 0
}

func (s *SeqSet) shrinkAsNeeded() {
	newPn := s.pn
	for newPn > 0 && s.occupied < int(minLoad*float64(primes[newPn])) {
		newPn--
	}
	if newPn != s.pn {
		s.resize(newPn)
	}
}

func (s *SeqSet) growForDelta(delta int) {
	s.shrinkAsNeeded()
	newPn := s.pn
	for s.occupied+delta > int(maxLoad*float64(primes[newPn])) {
		newPn++
	}
	if newPn != s.pn {
		s.resize(newPn)
	}
}

// Inc looks up seq; if found, saturating-increments its counter and
// returns the new value. If absent, it inserts a duplicate of seq at the
// first tombstone or empty slot found while probing, with count 1.
func (s *SeqSet) Inc(seq *twobit.TwoBit) uint32 {
	s.growForDelta(1)

	h := uint64(seq.Hash())
	k := h % s.n
	insPos := -1

	for i := uint64(1); ; i++ {
		e := &s.xs[k]
		if e.isDel() {
			if insPos == -1 {
				insPos = int(k)
			}
		} else if e.isNil() {
			if insPos == -1 {
				insPos = int(k)
			}
			break
		} else if twobit.Equal(e.Seq, seq) {
			if e.Count < countTombstone-1 {
				e.Count++
			}
			return e.Count
		}
		k = probe(h, i, s.n)
	}

	if s.xs[insPos].isDel() {
		s.deleted--
	} else {
		s.occupied++
	}
	s.xs[insPos] = Entry{Seq: seq.Dup(), Count: 1}
	return 1
}

// Dump returns a freshly-allocated slice of all live entries, each
// holding its own independent copy of the sequence. Callers own the
// result outright and may mutate or retain it without affecting the
// table.
func (s *SeqSet) Dump() []Entry {
	out := make([]Entry, 0, s.occupied)
	for i := range s.xs {
		e := &s.xs[i]
		if e.isLive() {
			out = append(out, Entry{Seq: e.Seq.Dup(), Count: e.Count})
		}
	}
	return out
}

// Iterator walks live entries in table order (undefined but deterministic
// for a given history of operations).
type Iterator struct {
	s   *SeqSet
	pos int
}

// Iter returns a fresh Iterator positioned before the first live entry.
func (s *SeqSet) Iter() *Iterator {
	return &Iterator{s: s, pos: -1}
}

// Next advances to the next live entry, returning false when exhausted.
func (it *Iterator) Next() bool {
	for it.pos++; it.pos < len(it.s.xs); it.pos++ {
		if it.s.xs[it.pos].isLive() {
			return true
		}
	}
	return false
}

// Entry returns the entry at the iterator's current position.
func (it *Iterator) Entry() Entry {
	return it.s.xs[it.pos]
}
