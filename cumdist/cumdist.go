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

// Package cumdist implements a binary-indexed tree over a fixed number of
// leaf frequencies, giving O(1) point lookups, O(log n) prefix sums and
// O(log n) updates for an arithmetic coder's cumulative-frequency queries,
// where the invariants here must hold bit-exactly for encoder/decoder
// agreement. Package dist does not use it: Dist sums its freqs with a
// linear scan.
package cumdist

// CumDist is a binary-indexed tree on n leaves. Internally it stores
// subtree totals (fs) and left-subtree totals for interior nodes (ls):
// leaf i lives at internal index 2n-2-i, and fs[parent] ==
// fs[left]+fs[right] while ls[parent] == fs[left] for every interior
// node.
type CumDist struct {
	fs []uint32 // len 2n-1: subtree totals
	ls []uint32 // len n-1: left-subtree totals (interior nodes only)
	n  int
}

// New allocates a CumDist over n leaves, each initialised to frequency 1
// (Laplace smoothing).
func New(n int) *CumDist {
	c := &CumDist{
		fs: make([]uint32, 2*n-1),
		ls: make([]uint32, max(n-1, 0)),
		n:  n,
	}
	for i := 0; i < n; i++ {
		c.Add(i, 1)
	}
	return c
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func parentIdx(i int) int { return (i - 1) / 2 }
func leftIdx(i int) int   { return 2*i + 1 }
func rightIdx(i int) int  { return 2*i + 2 }

// leafIdx maps a leaf position to its internal index.
func (c *CumDist) leafIdx(i int) int { return 2*c.n - 2 - i }

// Point returns the frequency at leaf i. O(1).
func (c *CumDist) Point(i int) uint32 {
	return c.fs[c.leafIdx(i)]
}

// Prefix returns the sum of frequencies over leaves [0, i). O(log n):
// walk from leaf i to the root; leaves are laid out in descending
// symbol order, so every ascent from a left child passes a right
// subtree (fs[parent]-ls[parent]) holding only lower-numbered symbols.
// Prefix(n) == Z().
func (c *CumDist) Prefix(i int) uint32 {
	if i <= 0 {
		return 0
	}
	if i >= c.n {
		return c.Z()
	}
	idx := c.leafIdx(i)
	var sum uint32
	for idx > 0 {
		p := parentIdx(idx)
		if idx%2 == 1 {
			sum += c.fs[p] - c.ls[p]
		}
		idx = p
	}
	return sum
}

// Z returns the total frequency (the root of fs). O(1).
func (c *CumDist) Z() uint32 {
	return c.fs[0]
}

// Add adds x to leaf i and propagates the delta to every ancestor.
// Ascending from a left child also bumps the parent's left-subtree total.
func (c *CumDist) Add(i int, x uint32) {
	idx := c.leafIdx(i)
	c.fs[idx] += x

	for idx > 0 {
		if idx%2 == 1 {
			c.ls[parentIdx(idx)] += x
		}
		idx = parentIdx(idx)
		c.fs[idx] += x
	}
}

// N returns the number of leaves.
func (c *CumDist) N() int { return c.n }

// Check verifies the tree invariants: for every interior node,
// fs[node] == fs[left]+fs[right] and ls[node] == fs[left]. It is intended
// for tests and debug builds.
func (c *CumDist) Check() bool {
	total := 2*c.n - 1
	for i := 0; i < total-c.n; i++ {
		var sum uint32
		li, ri := leftIdx(i), rightIdx(i)
		if li < total {
			sum += c.fs[li]
			if c.fs[li] != c.ls[i] {
				return false
			}
		}
		if ri < total {
			sum += c.fs[ri]
		}
		if c.fs[i] != sum {
			return false
		}
	}
	return true
}
