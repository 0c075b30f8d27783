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

// Package twobit implements a bit-packed nucleotide buffer: every base
// occupies two bits, four bases per byte, little-endian within the word.
// It underpins seqset, kmerindex and the assembler's contig buffers.
package twobit

import (
	"github.com/kdna-bio/quipcore/kmerops"
)

// wordBases is the number of nucleotides packed per uint64 word.
const wordBases = 32

func wordsNeeded(nbases int) int {
	if nbases == 0 {
		return 0
	}
	return (nbases-1)/wordBases + 1
}

// TwoBit is an ordered sequence of nucleotides stored two bits per base.
// The zero value is not usable; construct with Alloc or New.
type TwoBit struct {
	seq []uint64
	len int
}

// Alloc returns an empty TwoBit with enough backing storage for lenHint
// bases without reallocating.
func Alloc(lenHint int) *TwoBit {
	if lenHint <= 0 {
		lenHint = 512
	}
	return &TwoBit{seq: make([]uint64, wordsNeeded(lenHint))}
}

// New builds a TwoBit from a nucleotide string, silently skipping bytes
// outside {A,C,G,T,a,c,g,t} -- unlike kmerops.Encode, which rejects the
// whole input on the first bad byte.
func New(seq []byte) *TwoBit {
	s := Alloc(len(seq))
	s.Append(seq)
	return s
}

// Len returns the number of stored bases.
func (s *TwoBit) Len() int { return s.len }

// Clear resets the sequence to empty without releasing storage.
func (s *TwoBit) Clear() {
	s.len = 0
	for i := range s.seq {
		s.seq[i] = 0
	}
}

// Dup returns an independent copy of s.
func (s *TwoBit) Dup() *TwoBit {
	t := &TwoBit{seq: make([]uint64, len(s.seq)), len: s.len}
	copy(t.seq, s.seq)
	return t
}

func (s *TwoBit) growTo(nbases int) {
	need := wordsNeeded(nbases)
	if need <= len(s.seq) {
		return
	}
	n := len(s.seq)
	if n == 0 {
		n = 1
	}
	for n < need {
		n *= 2
	}
	grown := make([]uint64, n)
	copy(grown, s.seq)
	s.seq = grown
}

var base2code = [256]int8{}

func init() {
	for i := range base2code {
		base2code[i] = -1
	}
	base2code['A'], base2code['a'] = 0, 0
	base2code['C'], base2code['c'] = 1, 1
	base2code['G'], base2code['g'] = 2, 2
	base2code['T'], base2code['t'] = 3, 3
}

var code2base = [4]byte{'A', 'C', 'G', 'T'}

// Set writes the 2-bit code nt (0-3) at position i, which must be < Len().
func (s *TwoBit) Set(i int, nt uint8) {
	idx, off := i/wordBases, uint((i%wordBases)*2)
	s.seq[idx] = (s.seq[idx] &^ (uint64(3) << off)) | (uint64(nt&3) << off)
}

// Get returns the 2-bit code (0-3) at position i, which must be < Len().
func (s *TwoBit) Get(i int) uint8 {
	idx, off := i/wordBases, uint((i%wordBases)*2)
	return uint8((s.seq[idx] >> off) & 3)
}

// AppendChar appends a single nucleotide byte, silently skipping invalid
// bytes.
func (s *TwoBit) AppendChar(c byte) {
	nt := base2code[c]
	if nt < 0 {
		return
	}
	s.growTo(s.len + 1)
	s.Set(s.len, uint8(nt))
	s.len++
}

// Append appends a nucleotide byte slice, silently skipping invalid bytes.
func (s *TwoBit) Append(seq []byte) {
	s.growTo(s.len + len(seq))
	for _, c := range seq {
		s.AppendChar(c)
	}
}

// CopyFromChars clears s and re-populates it from seq.
func (s *TwoBit) CopyFromChars(seq []byte) {
	s.Clear()
	s.Append(seq)
}

// AppendPacked appends the low 2k bits of a kmerops-style packed code, most
// significant base first, matching kmerops.Decode's ordering.
func (s *TwoBit) AppendPacked(code uint64, k int) {
	s.growTo(s.len + k)
	for i := k - 1; i >= 0; i-- {
		nt := (code >> uint(2*i)) & 3
		s.Set(s.len, uint8(nt))
		s.len++
	}
}

// AppendTwoBit appends all bases of other to s.
func (s *TwoBit) AppendTwoBit(other *TwoBit) {
	s.growTo(s.len + other.len)
	for i := 0; i < other.len; i++ {
		s.Set(s.len, other.Get(i))
		s.len++
	}
}

// GetKmer returns the k bases starting at i as a kmerops-compatible packed
// code (most significant base first). i+k must not exceed Len().
func (s *TwoBit) GetKmer(i, k int) uint64 {
	var x uint64
	for j := i; j < i+k; j++ {
		x = (x << 2) | uint64(s.Get(j))
	}
	return x
}

// Reverse reverses the base order in place. It does not complement; callers
// wanting a reverse complement XOR each base with 3 (kmerops.Complement's
// convention) after reversing, or use kmerops.RevComp on extracted kmers.
func (s *TwoBit) Reverse() {
	for i, j := 0, s.len-1; i < j; i, j = i+1, j-1 {
		a, b := s.Get(i), s.Get(j)
		s.Set(i, b)
		s.Set(j, a)
	}
}

// Bytes decodes the sequence to a nucleotide byte slice.
func (s *TwoBit) Bytes() []byte {
	out := make([]byte, s.len)
	for i := 0; i < s.len; i++ {
		out[i] = code2base[s.Get(i)]
	}
	return out
}

// String decodes the sequence to a string.
func (s *TwoBit) String() string {
	return string(s.Bytes())
}

// packedByteLen is the number of significant packed bytes for hashing and
// comparison: ceil(len/4).
func packedByteLen(nbases int) int {
	if nbases == 0 {
		return 0
	}
	return (nbases-1)/4 + 1
}

func (s *TwoBit) packedBytes() []byte {
	n := packedByteLen(s.len)
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		word := s.seq[i/8]
		shift := uint((i % 8) * 8)
		out[i] = byte(word >> shift)
	}
	return out
}

// Compare orders two TwoBit sequences length-first, then byte-wise over
// the packed storage. Returns -1, 0 or 1.
func Compare(a, b *TwoBit) int {
	if a.len != b.len {
		if a.len < b.len {
			return -1
		}
		return 1
	}
	ab, bb := a.packedBytes(), b.packedBytes()
	for i := range ab {
		if ab[i] != bb[i] {
			if ab[i] < bb[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Equal reports whether a and b hold the same sequence.
func Equal(a, b *TwoBit) bool {
	return Compare(a, b) == 0
}

// Hash computes a SuperFastHash-class mixing hash over the packed storage
// truncated to ceil(len/4) bytes. It is stable across runs on a
// little-endian host but not required to be portable across byte orders.
func (s *TwoBit) Hash() uint32 {
	data := s.packedBytes()
	return superFastHash(data)
}

func get16bits(d []byte) uint32 {
	return uint32(d[0]) | uint32(d[1])<<8
}

// superFastHash is Paul Hsieh's SuperFastHash, ported byte-for-byte from
// the classic public-domain reference implementation.
func superFastHash(data []byte) uint32 {
	length := len(data)
	if length == 0 {
		return 0
	}

	hash := uint32(length)
	rem := length & 3
	n := length >> 2

	i := 0
	for ; n > 0; n-- {
		hash += get16bits(data[i:])
		tmp := (get16bits(data[i+2:]) << 11) ^ hash
		hash = (hash << 16) ^ tmp
		i += 4
		hash += hash >> 11
	}

	switch rem {
	case 3:
		hash += get16bits(data[i:])
		hash ^= hash << 16
		hash ^= uint32(data[i+2]) << 18
		hash += hash >> 11
	case 2:
		hash += get16bits(data[i:])
		hash ^= hash << 11
		hash += hash >> 17
	case 1:
		hash += uint32(data[i])
		hash ^= hash << 10
		hash += hash >> 1
	}

	hash ^= hash << 3
	hash += hash >> 5
	hash ^= hash << 4
	hash += hash >> 17
	hash ^= hash << 25
	hash += hash >> 6

	return hash
}

// Canonical reports the canonical form of the k-mer at position i, using
// kmerops for the strand-invariant min(fwd, revcomp) rule.
func (s *TwoBit) Canonical(i, k int) kmerops.KmerCode {
	return kmerops.KmerCode{Code: s.GetKmer(i, k), K: k}.Canonical()
}
