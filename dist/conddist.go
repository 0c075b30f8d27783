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

package dist

import "sort"

// CondDist is a family of N context-indexed Dist instances, addressed
// through a permutation that periodic reordering keeps packed so hot
// contexts land in a contiguous low-index range for cache locality.
type CondDist struct {
	xss    []*Dist
	index  []uint32 // xss[index[y]] is the distribution for context y
	ord    []uint32 // mutual inverse of index: xss[i] belongs to context ord[i]
	alphaN int
	decode bool
}

// NewCondDist allocates a CondDist over N contexts, each a Dist of
// alphabet size alphaN.
func NewCondDist(n, alphaN int, decode bool) *CondDist {
	cd := &CondDist{
		xss:    make([]*Dist, n),
		index:  make([]uint32, n),
		ord:    make([]uint32, n),
		alphaN: alphaN,
		decode: decode,
	}
	for y := 0; y < n; y++ {
		cd.xss[y] = New(alphaN, decode)
		cd.index[y] = uint32(y)
		cd.ord[y] = uint32(y)
	}
	return cd
}

// N returns the number of contexts.
func (cd *CondDist) N() int { return len(cd.xss) }

// distFor returns the Dist addressed by context y.
func (cd *CondDist) distFor(y uint32) *Dist {
	return cd.xss[cd.index[y]]
}

// Encode encodes symbol x in the distribution for context y.
func (cd *CondDist) Encode(coder Coder, y uint32, x int) {
	cd.distFor(y).Encode(coder, x)
}

// Decode decodes a symbol from the distribution for context y.
func (cd *CondDist) Decode(coder Coder, y uint32) int {
	return cd.distFor(y).Decode(coder)
}

// Reorder re-sorts index/ord so that contexts with higher use_count are
// packed into a contiguous low-index range of xss, keeping index and ord
// mutually inverse. It is safe to call between any two Encode/Decode
// calls on different contexts, provided the arithmetic coder itself is
// in a well-defined position -- Reorder never touches coder state, only
// the permutation.
func (cd *CondDist) Reorder() {
	n := len(cd.xss)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return cd.xss[order[i]].useCount > cd.xss[order[j]].useCount })

	newXss := make([]*Dist, n)
	newOrd := make([]uint32, n)
	newIndex := make([]uint32, n)
	for newSlot, oldSlot := range order {
		ctx := cd.ord[oldSlot]
		newXss[newSlot] = cd.xss[oldSlot]
		newOrd[newSlot] = ctx
		newIndex[ctx] = uint32(newSlot)
	}
	cd.xss = newXss
	cd.ord = newOrd
	cd.index = newIndex
}
