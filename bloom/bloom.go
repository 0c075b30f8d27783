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

// Package bloom implements a counting Bloom filter keyed by canonical
// k-mer. Cells are 4-bit saturating counters, 16 packed per uint64 word,
// giving a deterministic per-key delta Add and a hard per-key Del that a
// simple presence-only filter can't support.
//
// The filter is mutated destructively by the assembler: kmers are
// consumed with Del as contigs are built, and it must never be consulted
// again once alignment starts.
package bloom

const (
	cellBits     = 4
	cellMax      = (1 << cellBits) - 1 // 15, saturating ceiling
	cellsPerWord = 64 / cellBits
)

// Filter is a fixed-size counting Bloom filter with K hash functions over
// M cells, M a power of two.
type Filter struct {
	cells []uint64
	m     uint64 // number of cells, power of two
	k     int
}

// New allocates a Filter with m cells (rounded up to a power of two) and k
// hash functions.
func New(m uint64, k int) *Filter {
	size := uint64(1)
	for size < m {
		size <<= 1
	}
	return &Filter{
		cells: make([]uint64, (size+cellsPerWord-1)/cellsPerWord),
		m:     size,
		k:     k,
	}
}

func (f *Filter) getCell(idx uint64) uint8 {
	word := f.cells[idx/cellsPerWord]
	shift := (idx % cellsPerWord) * cellBits
	return uint8((word >> shift) & cellMax)
}

func (f *Filter) setCell(idx uint64, v uint8) {
	w := idx / cellsPerWord
	shift := (idx % cellsPerWord) * cellBits
	f.cells[w] = (f.cells[w] &^ (uint64(cellMax) << shift)) | (uint64(v&cellMax) << shift)
}

// positions derives the k cell indices for a canonical k-mer key by
// xorshift-mixing the 64-bit value and taking a shifted window of it
// modulo m for each index, re-mixing the value between indices.
func (f *Filter) positions(key uint64) []uint64 {
	h := xorshiftMix(key)
	out := make([]uint64, f.k)
	for i := 0; i < f.k; i++ {
		window := h >> uint((i*23)%41)
		out[i] = window % f.m
		h = xorshiftMix(h + uint64(i)*0x9E3779B97F4A7C15)
	}
	return out
}

func xorshiftMix(x uint64) uint64 {
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	x *= 0xc4ceb9fe1a85ec53
	x ^= x >> 33
	return x
}

// Add increments each of the k cells for key by delta, saturating at
// cellMax. delta is typically the observed read multiplicity.
func (f *Filter) Add(key uint64, delta uint32) {
	for _, idx := range f.positions(key) {
		v := uint32(f.getCell(idx)) + delta
		if v > cellMax {
			v = cellMax
		}
		f.setCell(idx, uint8(v))
	}
}

// Get returns the minimum of the k cells for key (the standard counting
// Bloom filter estimate; collisions only ever inflate it).
func (f *Filter) Get(key uint64) uint32 {
	min := uint32(cellMax) + 1
	for _, idx := range f.positions(key) {
		v := uint32(f.getCell(idx))
		if v < min {
			min = v
		}
	}
	if min > cellMax {
		return 0
	}
	return min
}

// Del fully clears the k cells for key -- a hard delete used only by the
// assembler to consume a k-mer once it has been folded into a contig.
// It is a no-op if the cells are already zero or the key was never
// added: Del never reports an error.
func (f *Filter) Del(key uint64) {
	for _, idx := range f.positions(key) {
		f.setCell(idx, 0)
	}
}
