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

// Package vbyte frames contigio's dump entries: each entry's
// (sequence length, read count) pair is packed behind a single control
// byte, sized to the pair's actual magnitudes.
//
// Most entries are a short read seen exactly once, so the layout is
// biased toward that case: a count of one is folded into the control
// byte itself and costs no payload bytes at all, and a typical
// sub-256-base read length costs one.
//
// Control byte layout:
//
//	bits 0-2   payload bytes for the length, minus one (1-8)
//	bit  3     count == 1; no count payload follows
//	bits 4-6   payload bytes for the count, minus one (unset if bit 3)
//	bit  7     reserved, always zero
//
// Payload bytes are little-endian, minimal width.
package vbyte

import "math/bits"

const countOne = 0x08

// PutPair encodes a (length, count) pair into buf, which must hold at
// least 16 bytes, returning the control byte and the number of payload
// bytes written.
func PutPair(buf []byte, length, count uint64) (ctrl byte, n int) {
	n = byteLen(length)
	putLE(buf, length, n)
	ctrl = byte(n - 1)

	if count == 1 {
		return ctrl | countOne, n
	}

	nc := byteLen(count)
	putLE(buf[n:], count, nc)
	return ctrl | byte(nc-1)<<4, n + nc
}

// PairByteLengths reports how many payload bytes PutPair wrote for the
// length and the count, given its control byte. A streaming reader
// needs this to know how many bytes to pull off the wire before it has
// enough to call Pair.
func PairByteLengths(ctrl byte) (n1, n2 int) {
	n1 = int(ctrl&0x07) + 1
	if ctrl&countOne != 0 {
		return n1, 0
	}
	return n1, int(ctrl>>4&0x07) + 1
}

// Pair decodes a (length, count) pair from buf given the control byte
// PutPair returned for it. n is the number of payload bytes consumed,
// or 0 if buf is too short.
func Pair(ctrl byte, buf []byte) (length, count uint64, n int) {
	n1, n2 := PairByteLengths(ctrl)
	if len(buf) < n1+n2 {
		return 0, 0, 0
	}

	length = getLE(buf, n1)
	if ctrl&countOne != 0 {
		return length, 1, n1
	}
	return length, getLE(buf[n1:], n2), n1 + n2
}

// byteLen is the minimal little-endian width of v, 1-8. Zero still
// takes one byte so PairByteLengths stays invertible.
func byteLen(v uint64) int {
	return (bits.Len64(v|1) + 7) / 8
}

func putLE(buf []byte, v uint64, n int) {
	for i := 0; i < n; i++ {
		buf[i] = byte(v >> uint(8*i))
	}
}

func getLE(buf []byte, n int) (v uint64) {
	for i := n - 1; i >= 0; i-- {
		v = v<<8 | uint64(buf[i])
	}
	return
}
