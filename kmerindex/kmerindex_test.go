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

package kmerindex

import (
	"testing"

	"github.com/kdna-bio/quipcore/kmerops"
	"github.com/kdna-bio/quipcore/twobit"
)

// bruteForcePositions recomputes, by direct kmerops calls on extracted
// windows, what IndexContigs should have recorded for one contig.
func bruteForcePositions(t *testing.T, seq string, k int) map[uint64][]Pos {
	t.Helper()
	want := make(map[uint64][]Pos)
	for start := 0; start+k <= len(seq); start++ {
		code, err := kmerops.Encode([]byte(seq[start : start+k]))
		if err != nil {
			t.Fatal(err)
		}
		y := kmerops.Canonical(code, k)
		var offset int
		if code == y {
			offset = start
		} else {
			offset = -(start + 1)
		}
		want[y] = append(want[y], Pos{ContigIdx: 0, Offset: offset})
	}
	return want
}

func TestIndexContigsMatchesBruteForce(t *testing.T) {
	const seq = "ACGTACGTTGCA"
	const k = 4

	idx := IndexContigs([]*twobit.TwoBit{twobit.New([]byte(seq))}, k)
	want := bruteForcePositions(t, seq, k)

	if idx.NumKeys() != len(want) {
		t.Fatalf("NumKeys() = %d, want %d", idx.NumKeys(), len(want))
	}
	for key, positions := range want {
		got := idx.Get(key)
		if len(got) != len(positions) {
			t.Fatalf("key %d: got %d positions, want %d", key, len(got), len(positions))
		}
		for i := range positions {
			if got[i] != positions[i] {
				t.Fatalf("key %d position %d: got %+v, want %+v", key, i, got[i], positions[i])
			}
		}
	}
}

func TestPosForwardAndContigPos(t *testing.T) {
	fwd := Pos{ContigIdx: 3, Offset: 5}
	if !fwd.Forward() || fwd.ContigPos() != 5 {
		t.Fatalf("forward Pos: Forward()=%v ContigPos()=%d", fwd.Forward(), fwd.ContigPos())
	}

	rev := Pos{ContigIdx: 3, Offset: -(5 + 1)}
	if rev.Forward() || rev.ContigPos() != 5 {
		t.Fatalf("reverse Pos: Forward()=%v ContigPos()=%d", rev.Forward(), rev.ContigPos())
	}

	zero := Pos{Offset: -(0 + 1)}
	if zero.Forward() || zero.ContigPos() != 0 {
		t.Fatalf("reverse Pos at offset 0: Forward()=%v ContigPos()=%d", zero.Forward(), zero.ContigPos())
	}
}

func TestIndexMultipleContigsKeepsContigIdx(t *testing.T) {
	contigs := []*twobit.TwoBit{
		twobit.New([]byte("AAAACCCC")),
		twobit.New([]byte("GGGGTTTT")),
	}
	idx := IndexContigs(contigs, 4)

	for _, positions := range idx.m {
		for _, p := range positions {
			if p.ContigIdx != 0 && p.ContigIdx != 1 {
				t.Fatalf("unexpected ContigIdx %d", p.ContigIdx)
			}
		}
	}
}

func TestInsertionOrderPreservedWithinKey(t *testing.T) {
	// "AAAA" occurs five times in "AAAAAAAA", at offsets 0..4
	idx := IndexContigs([]*twobit.TwoBit{twobit.New([]byte("AAAAAAAA"))}, 4)
	code, _ := kmerops.Encode([]byte("AAAA"))
	y := kmerops.Canonical(code, 4)
	positions := idx.Get(y)
	if len(positions) != 5 {
		t.Fatalf("got %d positions, want 5", len(positions))
	}
	for i, p := range positions {
		if p.ContigPos() != i {
			t.Fatalf("position %d: ContigPos() = %d, want %d", i, p.ContigPos(), i)
		}
	}
}
