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

package assembler

import (
	"github.com/kdna-bio/quipcore/align"
	"github.com/kdna-bio/quipcore/kmerindex"
	"github.com/kdna-bio/quipcore/kmerops"
	"github.com/kdna-bio/quipcore/seqset"
	"github.com/kdna-bio/quipcore/twobit"
)

var complementBase = map[byte]byte{'A': 'T', 'C': 'G', 'G': 'C', 'T': 'A'}

// reverseComplement builds the revcomp TwoBit of seq.
func reverseComplement(seq *twobit.TwoBit) *twobit.TwoBit {
	src := seq.Bytes()
	out := make([]byte, len(src))
	for i, b := range src {
		out[len(src)-1-i] = complementBase[b]
	}
	return twobit.New(out)
}

// alignReads seeds every read's k-mers against the contig index and
// extends each seed hit into a full alignment. A read's match and the
// indexed contig k-mer can each independently be on the forward or
// reverse strand, so every hit is dispatched to one of two aligners
// built per contig: a forward one over the contig as stored, and a
// reverse-complement one, chosen by whether the two orientations agree.
// Reads with no surviving seed above align.ScoreThreshold contribute no
// ReadAlignment and are left for the caller to treat as unaligned.
func alignReads(reads []seqset.Entry, idx *kmerindex.KmerIndex, contigs []*twobit.TwoBit, alignK int) []ReadAlignment {
	if len(contigs) == 0 {
		return nil
	}

	fwd := make([]*align.Aligner, len(contigs))
	rc := make([]*align.Aligner, len(contigs))
	for i, c := range contigs {
		fwd[i] = align.Alloc(c)
		rc[i] = align.Alloc(reverseComplement(c))
	}
	defer func() {
		for i := range contigs {
			fwd[i].Close()
			rc[i].Close()
		}
	}()

	mask := kmerops.KmerMask(alignK)
	var out []ReadAlignment

	for readIdx, e := range reads {
		seq := e.Seq
		n := seq.Len()
		if n < alignK {
			continue
		}
		var x uint64
		for j := 0; j < n; j++ {
			x = ((x << 2) | uint64(seq.Get(j))) & mask
			if j+1 < alignK {
				continue
			}
			y := kmerops.Canonical(x, alignK)
			readForward := x == y
			queryPos := j + 1 - alignK

			for _, pos := range idx.Get(y) {
				ci := pos.ContigIdx
				contigPos := pos.ContigPos()

				var a *align.Aligner
				var seedContigPos int
				usedRC := pos.Forward() != readForward
				if !usedRC {
					a = fwd[ci]
					seedContigPos = contigPos
				} else {
					a = rc[ci]
					seedContigPos = contigs[ci].Len() - alignK - contigPos
				}

				aln, ok := a.SeededAlign(seq, seedContigPos, queryPos, alignK)
				if !ok {
					continue
				}
				out = append(out, ReadAlignment{
					ReadIdx:   readIdx,
					ContigIdx: ci,
					UsedRC:    usedRC,
					Alignment: aln,
				})
			}
		}
	}
	return out
}
