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

package cmd

import (
	"github.com/will-rowe/nthash"
)

// estimateDistinctKmers gives a quick, approximate count of distinct
// canonical k-mers across seqs using a rolling ntHash instead of the
// core's exact (and much more expensive) Bloom/SeqSet machinery. It's
// used only to right-size the assemble command's Bloom filter before
// the real ingest pass, never by the assembler itself: the core Bloom
// filter's hash positions are always derived per bloom.Filter's own
// xorshift mix (see bloom.Filter.positions), not from ntHash.
func estimateDistinctKmers(seqs [][]byte, k int) int {
	seen := make(map[uint64]struct{})
	for _, s := range seqs {
		if len(s) < k {
			continue
		}
		hasher, err := nthash.NewHasher(&s, uint(k))
		if err != nil {
			continue
		}
		for {
			code, ok := hasher.Next(true)
			if !ok {
				break
			}
			seen[code] = struct{}{}
		}
	}
	return len(seen)
}

// nextPowerOfTwo returns the smallest power of two >= n, at least 1<<16.
func nextPowerOfTwo(n uint64) uint64 {
	size := uint64(1 << 16)
	for size < n {
		size <<= 1
	}
	return size
}
