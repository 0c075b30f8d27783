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

package seqset

import (
	"testing"

	"github.com/kdna-bio/quipcore/twobit"
)

func TestDedup(t *testing.T) {
	s := New()
	for i := 0; i < 100; i++ {
		s.Inc(twobit.New([]byte("ACGT")))
	}
	if s.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", s.Size())
	}
	dump := s.Dump()
	if len(dump) != 1 || dump[0].Count != 100 {
		t.Fatalf("Dump() = %+v, want one entry with count 100", dump)
	}
}

func TestDistinctSequencesCountedSeparately(t *testing.T) {
	s := New()
	s.Inc(twobit.New([]byte("AAAA")))
	s.Inc(twobit.New([]byte("CCCC")))
	s.Inc(twobit.New([]byte("AAAA")))
	if s.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", s.Size())
	}
}

func TestIteratorVisitsAllEntries(t *testing.T) {
	s := New()
	seqs := []string{"AAAA", "CCCC", "GGGG", "TTTT", "ACGT"}
	for _, seq := range seqs {
		s.Inc(twobit.New([]byte(seq)))
	}

	count := 0
	it := s.Iter()
	for it.Next() {
		count++
		if it.Entry().Seq == nil {
			t.Fatal("iterator yielded a nil sequence")
		}
	}
	if count != len(seqs) {
		t.Fatalf("iterator visited %d entries, want %d", count, len(seqs))
	}
}

func TestGrowthAcrossManyInserts(t *testing.T) {
	s := New()
	for i := 0; i < 5000; i++ {
		seq := make([]byte, 8)
		for j := range seq {
			seq[j] = "ACGT"[(i>>uint(j*2))&3]
		}
		s.Inc(twobit.New(seq))
	}
	if s.Size() == 0 {
		t.Fatal("Size() == 0 after many inserts")
	}
	// after repeated resizes no sequence may appear in the dump twice
	dump := s.Dump()
	seen := make(map[string]uint32)
	for _, e := range dump {
		seen[e.Seq.String()] += e.Count
	}
	for _, e := range dump {
		if seen[e.Seq.String()] != e.Count {
			t.Fatalf("entry %s: count mismatch after resize", e.Seq.String())
		}
	}
}

func TestSortByAbundanceDescendingWithDeterministicTieBreak(t *testing.T) {
	entries := []Entry{
		{Seq: twobit.New([]byte("TTTT")), Count: 5},
		{Seq: twobit.New([]byte("AAAA")), Count: 9},
		{Seq: twobit.New([]byte("CCCC")), Count: 9},
		{Seq: twobit.New([]byte("GGGG")), Count: 1},
	}
	SortByAbundance(entries)

	if entries[0].Count != 9 || entries[1].Count != 9 {
		t.Fatalf("top two entries should have count 9, got %+v", entries[:2])
	}
	if twobit.Compare(entries[0].Seq, entries[1].Seq) >= 0 {
		t.Fatal("equal-count entries must tie-break by ascending TwoBit compare")
	}
	if entries[3].Count != 1 {
		t.Fatalf("last entry count = %d, want 1", entries[3].Count)
	}
}
