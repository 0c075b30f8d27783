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

// Package align implements a seeded, banded, affine-gap local aligner in
// the Gotoh style: given an exact k-mer seed shared by a read and a
// contig, it extends outward from the seed in both directions rather
// than computing a full dynamic-programming matrix over the whole
// sequence pair.
package align

import (
	"fmt"

	"github.com/kdna-bio/quipcore/twobit"
)

const (
	matchScore       = 5
	mismatchPenalty  = -4
	gapOpen          = -8
	gapExtend        = -2
	bandWidth        = 32
	// ScoreThreshold is the minimum combined score (seed + both
	// extensions) for an alignment to be reported instead of discarded.
	ScoreThreshold = 20
)

const negInf = -(1 << 30)

// Alignment is the result of a successful seeded extension.
type Alignment struct {
	Score                int
	RefStart, RefEnd     int
	QueryStart, QueryEnd int
	Cigar                string
}

// Aligner holds the reference (contig) sequence for repeated seeded
// alignment calls against many reads.
type Aligner struct {
	ref []byte
}

// Alloc builds an Aligner over refContig's decoded bytes.
func Alloc(refContig *twobit.TwoBit) *Aligner {
	return &Aligner{ref: refContig.Bytes()}
}

// Close releases the aligner's per-contig state.
func (a *Aligner) Close() {
	a.ref = nil
}

// SeededAlign extends an exact seed match of length seedLen, anchored at
// refSeedPos in the reference and querySeedPos in query, outward in both
// directions. It reports ok == false if the combined score doesn't reach
// ScoreThreshold.
func (a *Aligner) SeededAlign(query *twobit.TwoBit, refSeedPos, querySeedPos, seedLen int) (aln Alignment, ok bool) {
	qb := query.Bytes()
	leftRef := a.ref[:refSeedPos]
	leftQuery := qb[:querySeedPos]
	rightRef := a.ref[refSeedPos+seedLen:]
	rightQuery := qb[querySeedPos+seedLen:]

	lScore, lRefExt, lQueryExt, lOps := extend(reverseBytes(leftRef), reverseBytes(leftQuery))
	reverseOps(lOps)
	rScore, rRefExt, rQueryExt, rOps := extend(rightRef, rightQuery)

	total := lScore + seedLen*matchScore + rScore
	if total < ScoreThreshold {
		return Alignment{}, false
	}

	ops := make([]byte, 0, len(lOps)+seedLen+len(rOps))
	ops = append(ops, lOps...)
	for i := 0; i < seedLen; i++ {
		ops = append(ops, 'M')
	}
	ops = append(ops, rOps...)

	return Alignment{
		Score:      total,
		RefStart:   refSeedPos - lRefExt,
		RefEnd:     refSeedPos + seedLen + rRefExt,
		QueryStart: querySeedPos - lQueryExt,
		QueryEnd:   querySeedPos + seedLen + rQueryExt,
		Cigar:      collapseCigar(ops),
	}, true
}

// extend runs a banded, semi-global (fixed start, free end), affine-gap
// Gotoh alignment of ref against query, both anchored at position 0, and
// returns the score and extent of the best-scoring prefix alignment
// along with its traceback ops ('M' match/mismatch, 'I' gap in ref, 'D'
// gap in query), in left-to-right order.
func extend(ref, query []byte) (score, refLen, queryLen int, ops []byte) {
	nr, nq := len(ref), len(query)

	h := make([][]int, nr+1)
	e := make([][]int, nr+1)
	f := make([][]int, nr+1)
	for i := range h {
		h[i] = make([]int, nq+1)
		e[i] = make([]int, nq+1)
		f[i] = make([]int, nq+1)
	}

	for i := 1; i <= nr; i++ {
		f[i][0] = maxOf(h[i-1][0]+gapOpen, f[i-1][0]+gapExtend)
		e[i][0] = negInf
		h[i][0] = f[i][0]
	}
	for j := 1; j <= nq; j++ {
		e[0][j] = maxOf(h[0][j-1]+gapOpen, e[0][j-1]+gapExtend)
		f[0][j] = negInf
		h[0][j] = e[0][j]
	}

	bestScore, bestI, bestJ := 0, 0, 0
	for i := 1; i <= nr; i++ {
		for j := 1; j <= nq; j++ {
			if absDiff(i, j) > bandWidth {
				h[i][j], e[i][j], f[i][j] = negInf, negInf, negInf
				continue
			}
			e[i][j] = maxOf(h[i][j-1]+gapOpen, e[i][j-1]+gapExtend)
			f[i][j] = maxOf(h[i-1][j]+gapOpen, f[i-1][j]+gapExtend)
			diag := h[i-1][j-1] + subScore(ref[i-1], query[j-1])
			hij := maxOf3(diag, e[i][j], f[i][j])
			h[i][j] = hij
			if hij > bestScore {
				bestScore, bestI, bestJ = hij, i, j
			}
		}
	}

	ops = make([]byte, 0, bestI+bestJ)
	i, j := bestI, bestJ
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && h[i][j] == h[i-1][j-1]+subScore(ref[i-1], query[j-1]):
			ops = append(ops, 'M')
			i--
			j--
		case i > 0 && h[i][j] == f[i][j]:
			ops = append(ops, 'D')
			i--
		case j > 0 && h[i][j] == e[i][j]:
			ops = append(ops, 'I')
			j--
		default:
			i, j = 0, 0
		}
	}
	reverseOps(ops)
	return bestScore, bestI, bestJ, ops
}

func subScore(a, b byte) int {
	if a == b {
		return matchScore
	}
	return mismatchPenalty
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

func maxOf(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func maxOf3(a, b, c int) int {
	return maxOf(a, maxOf(b, c))
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[len(b)-1-i] = c
	}
	return out
}

func reverseOps(ops []byte) {
	for i, j := 0, len(ops)-1; i < j; i, j = i+1, j-1 {
		ops[i], ops[j] = ops[j], ops[i]
	}
}

// collapseCigar runs-length-encodes a slice of per-base ops into a CIGAR
// string, e.g. "3M1I5M".
func collapseCigar(ops []byte) string {
	if len(ops) == 0 {
		return ""
	}
	var out []byte
	run := 1
	for i := 1; i <= len(ops); i++ {
		if i < len(ops) && ops[i] == ops[i-1] {
			run++
			continue
		}
		out = append(out, []byte(fmt.Sprintf("%d", run))...)
		out = append(out, ops[i-1])
		run = 1
	}
	return string(out)
}
