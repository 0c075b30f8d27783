// Copyright © 2018-2020 Wei Shen <shenwei356@gmail.com>
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
	"github.com/twotwotwo/sorts"

	"github.com/kdna-bio/quipcore/twobit"
)

// EntrySlice is a slice of Entry, sorted by descending Count with a
// deterministic tie-break on the sequence itself. This is what the
// assembler walks to pick abundance-ordered seeds.
type EntrySlice []Entry

// Len returns the number of entries.
func (es EntrySlice) Len() int { return len(es) }

// Swap exchanges two entries.
func (es EntrySlice) Swap(i, j int) { es[i], es[j] = es[j], es[i] }

// Less orders by descending Count, then ascending TwoBit compare.
func (es EntrySlice) Less(i, j int) bool {
	if es[i].Count != es[j].Count {
		return es[i].Count > es[j].Count
	}
	return twobit.Compare(es[i].Seq, es[j].Seq) < 0
}

// SortByAbundance concurrently sorts entries by descending Count via
// twotwotwo/sorts.Quicksort, a drop-in replacement for sort.Sort that
// parallelizes well for large kmer/id slices.
func SortByAbundance(entries []Entry) {
	sorts.Quicksort(EntrySlice(entries))
}

// MaxProcs sets the concurrency cap used by SortByAbundance.
func MaxProcs(n int) {
	sorts.MaxProcs = n
}
