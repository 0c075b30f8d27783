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

// Package kmerops encodes nucleotides into 2-bit k-mer codes and computes
// their canonical (strand-invariant) form.
package kmerops

import (
	"errors"
)

// ErrIllegalBase means a byte outside {A,C,G,T,a,c,g,t} was seen.
// Unlike IUPAC-aware tools, this package does not fold degenerate bases:
// callers reject the whole read instead.
var ErrIllegalBase = errors.New("kmerops: illegal base, only A/C/G/T allowed")

// ErrKOverflow means k is outside [1, 32].
var ErrKOverflow = errors.New("kmerops: k (1-32) overflow")

// ErrKMismatch means two KmerCode operands have different K.
var ErrKMismatch = errors.New("kmerops: k mismatch")

// Encode converts a nucleotide byte slice to a 2-bit packed code.
//
//	A    00
//	C    01
//	G    10
//	T    11
//
// Any other byte is illegal and aborts the whole encode: an invalid
// nucleotide terminates the surrounding operation.
func Encode(kmer []byte) (code uint64, err error) {
	k := len(kmer)
	if k == 0 || k > 32 {
		return 0, ErrKOverflow
	}

	for i := range kmer {
		switch kmer[k-1-i] {
		case 'G', 'g':
			code |= 2 << uint64(i*2)
		case 'T', 't':
			code |= 3 << uint64(i*2)
		case 'C', 'c':
			code |= 1 << uint64(i*2)
		case 'A', 'a':
			code |= 0 << uint64(i*2)
		default:
			return 0, ErrIllegalBase
		}
	}
	return code, nil
}

// MustEncodeFromFormerKmer computes the code for a window one position to
// the right of a previously-encoded window, given the previous code and the
// new trailing base, without re-encoding the whole window. The
// assembler's own k-mer scans do not call it; they shift in twobit codes
// directly.
func MustEncodeFromFormerKmer(newBase byte, k int, leftCode uint64) (uint64, error) {
	code := (leftCode & (KmerMask(k-1))) << 2
	switch newBase {
	case 'G', 'g':
		code |= 2
	case 'T', 't':
		code |= 3
	case 'C', 'c':
		code |= 1
	case 'A', 'a':
		// code |= 0
	default:
		return 0, ErrIllegalBase
	}
	return code, nil
}

// KmerMask returns the mask selecting the low 2k significant bits.
func KmerMask(k int) uint64 {
	if k <= 0 {
		return 0
	}
	if k >= 32 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(2*k)) - 1
}

// Reverse returns the code with nucleotide order reversed (no complement).
func Reverse(code uint64, k int) (c uint64) {
	if k <= 0 || k > 32 {
		panic(ErrKOverflow)
	}
	for i := 0; i < k; i++ {
		c <<= 2
		c |= code & 3
		code >>= 2
	}
	return
}

// Complement returns the code with every nucleotide complemented in place
// (A<->T, C<->G), without reversing order.
func Complement(code uint64, k int) (c uint64) {
	if k <= 0 || k > 32 {
		panic(ErrKOverflow)
	}
	for i := 0; i < k; i++ {
		c |= (code&3 ^ 3) << uint(i<<1)
		code >>= 2
	}
	return
}

// RevComp returns the reverse-complement code.
func RevComp(code uint64, k int) (c uint64) {
	if k <= 0 || k > 32 {
		panic(ErrKOverflow)
	}
	for i := 0; i < k; i++ {
		c <<= 2
		c |= code&3 ^ 3
		code >>= 2
	}
	return
}

// Canonical returns min(code, revcomp(code)) -- the strand-invariant form.
func Canonical(code uint64, k int) uint64 {
	rc := RevComp(code, k)
	if rc < code {
		return rc
	}
	return code
}

var bit2base = [4]byte{'A', 'C', 'G', 'T'}

// Decode converts a code back to its nucleotide string.
func Decode(code uint64, k int) []byte {
	if k <= 0 || k > 32 {
		panic(ErrKOverflow)
	}
	kmer := make([]byte, k)
	for i := 0; i < k; i++ {
		kmer[k-1-i] = bit2base[code&3]
		code >>= 2
	}
	return kmer
}

// KmerCode pairs a 2-bit packed code with its k-mer length.
type KmerCode struct {
	Code uint64
	K    int
}

// NewKmerCode builds a KmerCode from a nucleotide byte slice.
func NewKmerCode(kmer []byte) (KmerCode, error) {
	code, err := Encode(kmer)
	if err != nil {
		return KmerCode{}, err
	}
	return KmerCode{code, len(kmer)}, nil
}

// Equal reports whether two KmerCodes have the same K and Code.
func (kcode KmerCode) Equal(other KmerCode) bool {
	return kcode.K == other.K && kcode.Code == other.Code
}

// Rev returns the KmerCode with nucleotide order reversed.
func (kcode KmerCode) Rev() KmerCode {
	return KmerCode{Reverse(kcode.Code, kcode.K), kcode.K}
}

// Comp returns the complemented KmerCode.
func (kcode KmerCode) Comp() KmerCode {
	return KmerCode{Complement(kcode.Code, kcode.K), kcode.K}
}

// RevComp returns the reverse-complement KmerCode.
func (kcode KmerCode) RevComp() KmerCode {
	return KmerCode{RevComp(kcode.Code, kcode.K), kcode.K}
}

// Canonical returns the strand-invariant KmerCode: min(kcode, revcomp(kcode)).
func (kcode KmerCode) Canonical() KmerCode {
	rc := kcode.RevComp()
	if rc.Code < kcode.Code {
		return rc
	}
	return kcode
}

// Bytes decodes the KmerCode to its nucleotide string.
func (kcode KmerCode) Bytes() []byte {
	return Decode(kcode.Code, kcode.K)
}

// String returns the kmer as a string.
func (kcode KmerCode) String() string {
	return string(Decode(kcode.Code, kcode.K))
}
