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

// Package assembler builds contigs from a pile of reads by greedily
// extending the most abundant reads through a counting Bloom filter,
// then indexes and aligns the original reads back against what it
// built.
package assembler

import (
	"os"

	"github.com/pkg/errors"
	"github.com/shenwei356/go-logging"

	"github.com/kdna-bio/quipcore/align"
	"github.com/kdna-bio/quipcore/bloom"
	"github.com/kdna-bio/quipcore/contigio"
	"github.com/kdna-bio/quipcore/kmerindex"
	"github.com/kdna-bio/quipcore/kmerops"
	"github.com/kdna-bio/quipcore/seqset"
	"github.com/kdna-bio/quipcore/twobit"
)

var log = logging.MustGetLogger("assembler")

// Options configures one assembly run.
type Options struct {
	// AssembleK is the k-mer size the Bloom filter and contig extension
	// operate on.
	AssembleK int
	// AlignK is the (typically smaller) k-mer size used to seed
	// alignments of reads back against finished contigs.
	AlignK int
	// CountCutoff is the minimum read multiplicity a seed must have to
	// start a new contig.
	CountCutoff uint32
	// ContigPath is where finished contigs are written as FASTA.
	ContigPath string
	// Quick skips indexing and aligning reads back against contigs,
	// leaving every read unaligned. Useful for a fast size estimate.
	Quick bool
	// Verbose turns on progress logging.
	Verbose bool
	// BloomCells and BloomHashes size the counting Bloom filter.
	BloomCells  uint64
	BloomHashes int
}

// DefaultOptions returns the Options the CLI falls back to when a flag
// isn't set.
func DefaultOptions() Options {
	return Options{
		AssembleK:   25,
		AlignK:      12,
		CountCutoff: 2,
		ContigPath:  "contig.fa",
		BloomCells:  1 << 26,
		BloomHashes: 8,
	}
}

// ReadAlignment is one seeded alignment of a read against a contig.
type ReadAlignment struct {
	ReadIdx   int
	ContigIdx int
	UsedRC    bool
	Alignment align.Alignment
}

// Assembler accumulates reads, then assembles, indexes and aligns them
// in one Assemble call.
type Assembler struct {
	opts  Options
	reads *seqset.SeqSet
}

// New allocates an Assembler ready to accept reads via AddSeq.
func New(opts Options) *Assembler {
	if opts.CountCutoff == 0 {
		opts.CountCutoff = 1
	}
	return &Assembler{opts: opts, reads: seqset.New()}
}

// AddSeq records one occurrence of a read, deduplicating it against
// every prior occurrence. Reads containing bytes outside A/C/G/T are
// silently dropped; that is the only condition that rejects a read.
// Reads shorter than AssembleK are still counted -- they just
// contribute no k-mers and can never seed a contig.
func (a *Assembler) AddSeq(seq []byte) {
	tb := twobit.New(seq)
	if tb.Len() != len(seq) {
		// contained a non-ACGT byte; twobit.New silently dropped it,
		// which would desync the sequence from the caller's read. Reject
		// the whole read rather than assemble from a corrupted copy.
		return
	}
	a.reads.Inc(tb)
}

// NumReads returns the number of distinct reads recorded so far.
func (a *Assembler) NumReads() int { return a.reads.Size() }

// Result holds everything Assemble produced.
type Result struct {
	Contigs    []*twobit.TwoBit
	Index      *kmerindex.KmerIndex
	Alignments []ReadAlignment
}

// Assemble runs the full pipeline: populate the Bloom filter from every
// read, walk reads in descending abundance order extending each
// sufficiently abundant seed into a contig, write contigs to
// opts.ContigPath, then (unless Quick) index the contigs and align
// every read back against them.
func (a *Assembler) Assemble() (*Result, error) {
	dump := a.reads.Dump()
	seqset.SortByAbundance(dump)

	if a.opts.Verbose {
		log.Infof("read %d distinct sequences", len(dump))
	}

	k := a.opts.AssembleK
	mask := kmerops.KmerMask(k)
	m := a.opts.BloomCells
	if m == 0 {
		m = 1 << 20
	}
	nh := a.opts.BloomHashes
	if nh == 0 {
		nh = 4
	}
	bf := bloom.New(m, nh)

	for _, e := range dump {
		ingestKmers(bf, e.Seq, k, mask, e.Count)
	}

	f, err := os.Create(a.opts.ContigPath)
	if err != nil {
		return nil, errors.Wrapf(err, "assembler: creating contig file %q", a.opts.ContigPath)
	}
	defer f.Close()
	cw := contigio.NewContigWriter(f)

	var contigs []*twobit.TwoBit
	for seedIdx, e := range dump {
		if e.Count < a.opts.CountCutoff {
			break
		}
		if e.Seq.Len() < k {
			// no k-mer to extend from
			continue
		}
		contig := makeContig(bf, e.Seq, k)
		if contig.Len() < 3*k {
			continue
		}
		idx := len(contigs)
		contigs = append(contigs, contig)
		if err := cw.WriteContig(seedIdx, contig); err != nil {
			return nil, err
		}
		if a.opts.Verbose {
			log.Infof("contig %d: %d bases from a seed of abundance %d", idx, contig.Len(), e.Count)
		}
	}
	if err := cw.Flush(); err != nil {
		return nil, err
	}

	result := &Result{Contigs: contigs}
	if a.opts.Quick {
		return result, nil
	}

	result.Index = kmerindex.IndexContigs(contigs, a.opts.AlignK)
	result.Alignments = alignReads(dump, result.Index, contigs, a.opts.AlignK)
	if a.opts.Verbose {
		log.Infof("aligned %d read/contig seed hits", len(result.Alignments))
	}
	return result, nil
}

// ingestKmers adds every k-mer of seq to bf with weight count.
func ingestKmers(bf *bloom.Filter, seq *twobit.TwoBit, k int, mask uint64, count uint32) {
	n := seq.Len()
	if n < k {
		return
	}
	var x uint64
	for pos := 0; pos < n; pos++ {
		x = ((x << 2) | uint64(seq.Get(pos))) & mask
		if pos+1 < k {
			continue
		}
		bf.Add(kmerops.Canonical(x, k), count)
	}
}

// makeContig greedily extends seed left and right through bf, one base
// at a time, consuming (deleting) every k-mer it touches so no other
// seed can reuse it.
func makeContig(bf *bloom.Filter, seed *twobit.TwoBit, k int) *twobit.TwoBit {
	mask := kmerops.KmerMask(k)
	seedLen := seed.Len()

	// consume every k-mer of the seed except the leftmost up front (the
	// rightmost included; the right extension loop deletes it again);
	// the leftmost is consumed by the left extension loop below.
	x := seed.GetKmer(0, k)
	for i := k; i < seedLen; i++ {
		x = ((x << 2) | uint64(seed.Get(i))) & mask
		bf.Del(kmerops.Canonical(x, k))
	}

	contig := twobit.Alloc(seedLen * 2)

	x = seed.GetKmer(0, k)
	for {
		bf.Del(kmerops.Canonical(x, k))
		x = (x >> 2) & mask
		bestCount, bestNt := uint32(0), uint64(0)
		for nt := uint64(0); nt < 4; nt++ {
			y := x | (nt << uint(2*(k-1)))
			if cnt := bf.Get(kmerops.Canonical(y, k)); cnt > bestCount {
				bestCount, bestNt = cnt, nt
			}
		}
		if bestCount == 0 {
			break
		}
		x |= bestNt << uint(2*(k-1))
		contig.AppendPacked(bestNt, 1)
	}
	contig.Reverse()
	contig.AppendTwoBit(seed)

	x = seed.GetKmer(seedLen-k, k)
	for {
		bf.Del(kmerops.Canonical(x, k))
		x = (x << 2) & mask
		bestCount, bestNt := uint32(0), uint64(0)
		for nt := uint64(0); nt < 4; nt++ {
			y := x | nt
			if cnt := bf.Get(kmerops.Canonical(y, k)); cnt > bestCount {
				bestCount, bestNt = cnt, nt
			}
		}
		if bestCount == 0 {
			break
		}
		x |= bestNt
		contig.AppendPacked(bestNt, 1)
	}

	return contig
}
